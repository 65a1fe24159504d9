package store

import (
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/erazemk/kns/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"sqlite missing column", errors.New("table inventory_items has no column named brand"), model.ErrSchemaMismatch},
		{"sqlite select missing column", errors.New("SQL logic error: no such column: supplier (1)"), model.ErrSchemaMismatch},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: inventory_items.id (1555)"), model.ErrConflict},
		{"postgres undefined column", &pq.Error{Code: "42703", Message: `column "brand" does not exist`}, model.ErrSchemaMismatch},
		{"postgres unique", &pq.Error{Code: "23505", Message: "duplicate key value"}, model.ErrConflict},
		{"bad connection", driver.ErrBadConn, model.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, classify(nil))

	other := errors.New("disk full")
	assert.Equal(t, other, classify(other))
}
