// Package config loads server configuration from flags, the environment,
// an optional .env file and an optional kns.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/erazemk/kns/internal/blob"
	"github.com/erazemk/kns/internal/db"
)

// EnvPrefix prefixes every environment variable, e.g. KNS_DB_DSN.
const EnvPrefix = "KNS"

// Blob storage backends.
const (
	BlobDB = "db"
	BlobS3 = "s3"
)

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Path   string `mapstructure:"path"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	Endpoint         string `mapstructure:"endpoint"`
	CloudFrontDomain string `mapstructure:"cloudfront_domain"`
}

type BlobConfig struct {
	Driver string   `mapstructure:"driver"`
	S3     S3Config `mapstructure:"s3"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// Config is the complete server configuration.
type Config struct {
	Addr       string     `mapstructure:"addr"`
	BaseURL    string     `mapstructure:"base_url"`
	AdminEmail string     `mapstructure:"admin_email"`
	DB         DBConfig   `mapstructure:"db"`
	Log        LogConfig  `mapstructure:"log"`
	Blob       BlobConfig `mapstructure:"blob"`
	NATS       NATSConfig `mapstructure:"nats"`
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":   "addr",
	"db":     "db.dsn",
	"driver": "db.driver",
	"user":   "admin_email",
	"log":    "log.path",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("base_url", "")
	v.SetDefault("admin_email", "admin@kns.local")
	v.SetDefault("db.driver", db.DriverSQLite)
	v.SetDefault("db.dsn", "kns.sqlite3")
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("blob.driver", BlobDB)
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.region", "")
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.cloudfront_domain", "")
	v.SetDefault("nats.url", "")
}

// Load merges, lowest precedence first: defaults, the config file, the
// environment and the flags the user set. configPath may name a file;
// otherwise kns.yaml is looked up in the working directory.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("kns")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backends are known and configured.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver %q", c.DB.Driver)
	}
	switch c.Blob.Driver {
	case BlobDB:
	case BlobS3:
		if c.Blob.S3.Bucket == "" || c.Blob.S3.Region == "" {
			return errors.New("s3 blob storage needs a bucket and a region")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	return nil
}

// S3 returns the S3 settings in the form blob storage expects.
func (c *Config) S3() blob.S3Config {
	return blob.S3Config{
		Bucket:           c.Blob.S3.Bucket,
		Region:           c.Blob.S3.Region,
		AccessKeyID:      c.Blob.S3.AccessKeyID,
		SecretAccessKey:  c.Blob.S3.SecretAccessKey,
		Endpoint:         c.Blob.S3.Endpoint,
		CloudFrontDomain: c.Blob.S3.CloudFrontDomain,
	}
}
