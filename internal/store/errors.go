package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"

	"github.com/erazemk/kns/internal/model"
)

// Postgres error codes the store maps onto the model taxonomy.
const (
	pqUndefinedColumn = "42703"
	pqUniqueViolation = "23505"
)

// classify maps a driver error onto the model error taxonomy. The driver
// error stays in the chain so callers can still log the original message.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUndefinedColumn:
			return fmt.Errorf("%w: %w", model.ErrSchemaMismatch, err)
		case pqUniqueViolation:
			return fmt.Errorf("%w: %w", model.ErrConflict, err)
		}
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such column"), strings.Contains(msg, "has no column named"):
		return fmt.Errorf("%w: %w", model.ErrSchemaMismatch, err)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", model.ErrConflict, err)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", model.ErrTransport, err)
	}
	return err
}
