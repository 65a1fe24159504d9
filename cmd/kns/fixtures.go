package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/kns/internal/inventory"
)

// fixtureFile is the YAML layout accepted by kns import:
//
//	items:
//	  - item_name: Office chair
//	    category: Furniture
//	    department: Admin
//	    unit: pcs
//	    unit_price: "89.90"
//	    count: 4
type fixtureFile struct {
	Items []fixtureItem `yaml:"items"`
}

type fixtureItem struct {
	Name          string `yaml:"item_name"`
	Category      string `yaml:"category"`
	Department    string `yaml:"department"`
	Unit          string `yaml:"unit"`
	Description   string `yaml:"description"`
	UnitPrice     string `yaml:"unit_price"`
	MinStockLevel int    `yaml:"min_stock_level"`
	Brand         string `yaml:"brand"`
	Type          string `yaml:"type"`
	Supplier      string `yaml:"supplier"`
	Count         int    `yaml:"count"`
}

// loadFixtures decodes a fixture file. A missing count means one item.
func loadFixtures(r io.Reader) ([]inventory.BulkInput, error) {
	var f fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}

	inputs := make([]inventory.BulkInput, 0, len(f.Items))
	for i, it := range f.Items {
		price := decimal.Zero
		if s := strings.TrimSpace(it.UnitPrice); s != "" {
			p, err := decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("item %d: invalid unit_price %q", i+1, it.UnitPrice)
			}
			price = p
		}

		count := it.Count
		if count == 0 {
			count = 1
		}

		inputs = append(inputs, inventory.BulkInput{
			ItemInput: inventory.ItemInput{
				Name:          it.Name,
				Category:      it.Category,
				Department:    it.Department,
				Unit:          it.Unit,
				Description:   it.Description,
				UnitPrice:     price,
				MinStockLevel: it.MinStockLevel,
				Brand:         it.Brand,
				Type:          it.Type,
				Supplier:      it.Supplier,
			},
			Count: count,
		})
	}
	return inputs, nil
}

// importFixtures creates the items. Single items keep their name; counted
// items are numbered like a bulk add.
func importFixtures(ctx context.Context, ctl *inventory.Controller, inputs []inventory.BulkInput) (created, failed int) {
	for _, in := range inputs {
		if in.Count == 1 {
			if _, err := ctl.CreateItem(ctx, "", in.ItemInput); err != nil {
				log.Warn().Err(err).Str("name", in.Name).Msg("import failed")
				failed++
				continue
			}
			created++
			continue
		}

		res, err := ctl.BulkCreateItems(ctx, "", in)
		if err != nil {
			log.Warn().Err(err).Str("name", in.Name).Msg("import failed")
			failed += in.Count
			continue
		}
		created += res.SuccessCount
		failed += res.FailCount
	}
	return created, failed
}

func runImport(cmd *cobra.Command, configPath, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	inputs, err := loadFixtures(f)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, cmd, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	created, failed := importFixtures(ctx, a.controller, inputs)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items, %d failed.\n", created, failed)
	if failed > 0 {
		return fmt.Errorf("%d items could not be imported", failed)
	}
	return nil
}
