package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "kns.sqlite3", cfg.DB.DSN)
	assert.Equal(t, BlobDB, cfg.Blob.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "addr: \":9000\"\ndb:\n  dsn: file.sqlite3\nlog:\n  level: warn\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kns.yaml"), []byte(yaml), 0o644))
	t.Setenv("KNS_DB_DSN", "env.sqlite3")
	t.Setenv("KNS_NATS_URL", "nats://localhost:4222")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", ":8080", "")
	flags.String("db", "", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":7000"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr, "flag beats file")
	assert.Equal(t, "env.sqlite3", cfg.DB.DSN, "env beats file")
	assert.Equal(t, "warn", cfg.Log.Level, "file beats default")
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("missing.yaml", nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("KNS_DB_DRIVER", "mysql")
	_, err := Load("", nil)
	assert.ErrorContains(t, err, "mysql")

	t.Setenv("KNS_DB_DRIVER", "postgres")
	t.Setenv("KNS_BLOB_DRIVER", "s3")
	_, err = Load("", nil)
	assert.ErrorContains(t, err, "bucket")

	t.Setenv("KNS_BLOB_S3_BUCKET", "kns")
	t.Setenv("KNS_BLOB_S3_REGION", "eu-central-1")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "kns", cfg.S3().Bucket)
}
