package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/erazemk/kns/internal/db"
	"github.com/erazemk/kns/internal/model"
)

// distinctFields whitelists the columns DistinctValues may read. Values are
// SQL expressions.
var distinctFields = map[string]map[string]string{
	model.EntityItems: {
		"category":   "category",
		"department": "COALESCE(NULLIF(department, ''), location)",
		"unit":       "unit",
		"brand":      "brand",
		"type":       "type",
		"supplier":   "supplier",
	},
	model.EntityUsers: {
		"department": "department",
	},
	model.EntityRequests: {
		"department": "department",
	},
}

// DistinctValues returns the sorted, non-empty distinct values of a field.
func DistinctValues(ctx context.Context, d *db.DB, entity, field string) ([]string, error) {
	expr, ok := distinctFields[entity][field]
	if !ok {
		return nil, model.Invalid("field", fmt.Sprintf("%s.%s is not listable", entity, field))
	}

	query := `SELECT DISTINCT ` + expr + ` AS v FROM ` + entity +
		` WHERE ` + expr + ` IS NOT NULL AND ` + expr + ` <> '' ORDER BY v`
	rows, err := d.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing distinct %s: %w", field, classify(err))
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", field, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Departments returns every department known to items or users, sorted.
func Departments(ctx context.Context, d *db.DB) ([]string, error) {
	seen := make(map[string]bool)
	for _, entity := range []string{model.EntityItems, model.EntityUsers} {
		values, err := DistinctValues(ctx, d, entity, "department")
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			seen[v] = true
		}
	}

	departments := make([]string, 0, len(seen))
	for v := range seen {
		departments = append(departments, v)
	}
	sort.Strings(departments)
	return departments, nil
}
