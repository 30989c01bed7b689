package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type unitRow struct {
	Name string `db:"name"`
}

// importCatalog upserts the whole file inside tx. Rows are matched by name
// within their parent, so re-running the same file is a no-op.
func importCatalog(tx *sqlx.Tx, f catalogFile) (summary, error) {
	var sum summary

	unitIDs := make(map[string]int64, len(f.Units))
	if len(f.Units) > 0 {
		rows := make([]unitRow, 0, len(f.Units))
		for _, u := range f.Units {
			rows = append(rows, unitRow{Name: strings.TrimSpace(u)})
		}
		if _, err := tx.NamedExec(`INSERT INTO units (name) VALUES (:name) ON CONFLICT (name) DO NOTHING`, rows); err != nil {
			return sum, fmt.Errorf("insert units: %w", err)
		}
		var stored []struct {
			ID   int64  `db:"id"`
			Name string `db:"name"`
		}
		if err := tx.Select(&stored, `SELECT id, name FROM units`); err != nil {
			return sum, fmt.Errorf("load units: %w", err)
		}
		for _, u := range stored {
			unitIDs[u.Name] = u.ID
		}
		sum.Units = len(f.Units)
	}

	for _, c := range f.Categories {
		var categoryID int64
		err := tx.Get(&categoryID, `
			INSERT INTO categories (name, description) VALUES ($1, NULLIF($2, ''))
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
			RETURNING id`, strings.TrimSpace(c.Name), c.Description)
		if err != nil {
			return sum, fmt.Errorf("upsert category %q: %w", c.Name, err)
		}
		sum.Categories++

		if err := importBrands(tx, &sum, unitIDs, c.Brands, sql.NullInt64{Int64: categoryID, Valid: true}, sql.NullInt64{}); err != nil {
			return sum, err
		}

		for _, s := range c.SubCategories {
			var subID int64
			err := tx.Get(&subID, `
				INSERT INTO sub_categories (category_id, name) VALUES ($1, $2)
				ON CONFLICT (category_id, name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`, categoryID, strings.TrimSpace(s.Name))
			if err != nil {
				return sum, fmt.Errorf("upsert sub category %q: %w", s.Name, err)
			}
			sum.SubCategories++
			if err := importBrands(tx, &sum, unitIDs, s.Brands, sql.NullInt64{}, sql.NullInt64{Int64: subID, Valid: true}); err != nil {
				return sum, err
			}
		}
	}
	return sum, nil
}

func importBrands(tx *sqlx.Tx, sum *summary, unitIDs map[string]int64, brands []brandRecord, categoryID, subCategoryID sql.NullInt64) error {
	for _, b := range brands {
		name := strings.TrimSpace(b.Name)
		var brandID int64
		err := tx.Get(&brandID, `
			SELECT id FROM brands
			WHERE name = $1
			  AND category_id IS NOT DISTINCT FROM $2
			  AND sub_category_id IS NOT DISTINCT FROM $3
			LIMIT 1`, name, categoryID, subCategoryID)
		if errors.Is(err, sql.ErrNoRows) {
			err = tx.Get(&brandID, `
				INSERT INTO brands (name, category_id, sub_category_id) VALUES ($1, $2, $3)
				RETURNING id`, name, categoryID, subCategoryID)
		}
		if err != nil {
			return fmt.Errorf("upsert brand %q: %w", name, err)
		}
		sum.Brands++

		for _, p := range b.Products {
			if err := upsertProduct(tx, brandID, unitIDs, p); err != nil {
				return err
			}
			sum.Products++
		}
	}
	return nil
}

func upsertProduct(tx *sqlx.Tx, brandID int64, unitIDs map[string]int64, p productRecord) error {
	var unitID sql.NullInt64
	if id, ok := unitIDs[strings.TrimSpace(p.Unit)]; ok {
		unitID = sql.NullInt64{Int64: id, Valid: true}
	}
	args := []any{
		strings.TrimSpace(p.Name),
		p.Price,
		brandID,
		unitID,
		p.ImageURL,
		p.metadata(),
		p.MinOrderQty,
		p.MinOrderUnit,
		p.MinOrderUnitEquivalent,
	}

	var productID int64
	err := tx.Get(&productID, `SELECT id FROM products WHERE brand_id = $1 AND name = $2 LIMIT 1`, brandID, args[0])
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.Exec(`
			INSERT INTO products (name, price, brand_id, unit_id, image_url, metadata,
			                      min_order_qty, min_order_unit, min_order_unit_equivalent)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6::jsonb, $7, NULLIF($8, ''), $9)`, args...)
	case err == nil:
		_, err = tx.Exec(`
			UPDATE products SET price = $2, unit_id = $4, image_url = NULLIF($5, ''), metadata = $6::jsonb,
			       min_order_qty = $7, min_order_unit = NULLIF($8, ''), min_order_unit_equivalent = $9
			WHERE id = $10 AND brand_id = $3 AND name = $1`, append(args, productID)...)
	}
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	return nil
}
