package db

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

const listCategories = `SELECT id, name, description, created_at FROM categories ORDER BY id`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Description, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getCategory = `SELECT id, name, description, created_at FROM categories WHERE id = $1`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	var i Category
	err := q.db.QueryRow(ctx, getCategory, id).Scan(&i.ID, &i.Name, &i.Description, &i.CreatedAt)
	return i, err
}

const createCategory = `INSERT INTO categories (name, description) VALUES ($1, $2)
RETURNING id, name, description, created_at`

type CreateCategoryParams struct {
	Name        string
	Description *string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	var i Category
	err := q.db.QueryRow(ctx, createCategory, arg.Name, arg.Description).Scan(&i.ID, &i.Name, &i.Description, &i.CreatedAt)
	return i, err
}

const updateCategory = `UPDATE categories SET name = $2, description = $3 WHERE id = $1
RETURNING id, name, description, created_at`

type UpdateCategoryParams struct {
	ID          int64
	Name        string
	Description *string
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	var i Category
	err := q.db.QueryRow(ctx, updateCategory, arg.ID, arg.Name, arg.Description).Scan(&i.ID, &i.Name, &i.Description, &i.CreatedAt)
	return i, err
}

const deleteCategory = `DELETE FROM categories WHERE id = $1`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listSubCategories = `SELECT id, category_id, name, created_at FROM sub_categories ORDER BY id`

func (q *Queries) ListSubCategories(ctx context.Context) ([]SubCategory, error) {
	rows, err := q.db.Query(ctx, listSubCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SubCategory
	for rows.Next() {
		var i SubCategory
		if err := rows.Scan(&i.ID, &i.CategoryID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createSubCategory = `INSERT INTO sub_categories (category_id, name) VALUES ($1, $2)
RETURNING id, category_id, name, created_at`

type CreateSubCategoryParams struct {
	CategoryID int64
	Name       string
}

func (q *Queries) CreateSubCategory(ctx context.Context, arg CreateSubCategoryParams) (SubCategory, error) {
	var i SubCategory
	err := q.db.QueryRow(ctx, createSubCategory, arg.CategoryID, arg.Name).Scan(&i.ID, &i.CategoryID, &i.Name, &i.CreatedAt)
	return i, err
}

const updateSubCategory = `UPDATE sub_categories SET category_id = $2, name = $3 WHERE id = $1
RETURNING id, category_id, name, created_at`

type UpdateSubCategoryParams struct {
	ID         int64
	CategoryID int64
	Name       string
}

func (q *Queries) UpdateSubCategory(ctx context.Context, arg UpdateSubCategoryParams) (SubCategory, error) {
	var i SubCategory
	err := q.db.QueryRow(ctx, updateSubCategory, arg.ID, arg.CategoryID, arg.Name).Scan(&i.ID, &i.CategoryID, &i.Name, &i.CreatedAt)
	return i, err
}

const deleteSubCategory = `DELETE FROM sub_categories WHERE id = $1`

func (q *Queries) DeleteSubCategory(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteSubCategory, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listBrands = `SELECT id, name, category_id, sub_category_id, created_at FROM brands ORDER BY id`

func (q *Queries) ListBrands(ctx context.Context) ([]Brand, error) {
	rows, err := q.db.Query(ctx, listBrands)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Brand
	for rows.Next() {
		var i Brand
		if err := rows.Scan(&i.ID, &i.Name, &i.CategoryID, &i.SubCategoryID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createBrand = `INSERT INTO brands (name, category_id, sub_category_id) VALUES ($1, $2, $3)
RETURNING id, name, category_id, sub_category_id, created_at`

type CreateBrandParams struct {
	Name          string
	CategoryID    *int64
	SubCategoryID *int64
}

func (q *Queries) CreateBrand(ctx context.Context, arg CreateBrandParams) (Brand, error) {
	var i Brand
	err := q.db.QueryRow(ctx, createBrand, arg.Name, arg.CategoryID, arg.SubCategoryID).
		Scan(&i.ID, &i.Name, &i.CategoryID, &i.SubCategoryID, &i.CreatedAt)
	return i, err
}

const updateBrand = `UPDATE brands SET name = $2, category_id = $3, sub_category_id = $4 WHERE id = $1
RETURNING id, name, category_id, sub_category_id, created_at`

type UpdateBrandParams struct {
	ID            int64
	Name          string
	CategoryID    *int64
	SubCategoryID *int64
}

func (q *Queries) UpdateBrand(ctx context.Context, arg UpdateBrandParams) (Brand, error) {
	var i Brand
	err := q.db.QueryRow(ctx, updateBrand, arg.ID, arg.Name, arg.CategoryID, arg.SubCategoryID).
		Scan(&i.ID, &i.Name, &i.CategoryID, &i.SubCategoryID, &i.CreatedAt)
	return i, err
}

const deleteBrand = `DELETE FROM brands WHERE id = $1`

func (q *Queries) DeleteBrand(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteBrand, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listUnits = `SELECT id, name, created_at FROM units ORDER BY name`

func (q *Queries) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := q.db.Query(ctx, listUnits)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Unit
	for rows.Next() {
		var i Unit
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createUnit = `INSERT INTO units (name) VALUES ($1) RETURNING id, name, created_at`

func (q *Queries) CreateUnit(ctx context.Context, name string) (Unit, error) {
	var i Unit
	err := q.db.QueryRow(ctx, createUnit, name).Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const updateUnit = `UPDATE units SET name = $2 WHERE id = $1 RETURNING id, name, created_at`

type UpdateUnitParams struct {
	ID   int64
	Name string
}

func (q *Queries) UpdateUnit(ctx context.Context, arg UpdateUnitParams) (Unit, error) {
	var i Unit
	err := q.db.QueryRow(ctx, updateUnit, arg.ID, arg.Name).Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const deleteUnit = `DELETE FROM units WHERE id = $1`

func (q *Queries) DeleteUnit(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteUnit, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const productColumns = `p.id, p.name, p.price, p.brand_id, p.unit_id, p.image_url, p.metadata,
p.min_order_qty, p.min_order_unit, p.min_order_unit_equivalent, p.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, extra ...any) (Product, error) {
	var i Product
	dest := []any{
		&i.ID, &i.Name, &i.Price, &i.BrandID, &i.UnitID, &i.ImageURL, &i.Metadata,
		&i.MinOrderQty, &i.MinOrderUnit, &i.MinOrderUnitEquivalent, &i.CreatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return i, err
}

const listCatalogProducts = `SELECT ` + productColumns + `, u.name
FROM products p
LEFT JOIN units u ON u.id = p.unit_id
ORDER BY p.id`

func (q *Queries) ListCatalogProducts(ctx context.Context) ([]CatalogProduct, error) {
	rows, err := q.db.Query(ctx, listCatalogProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogProduct
	for rows.Next() {
		var unitName *string
		p, err := scanProduct(rows, &unitName)
		if err != nil {
			return nil, err
		}
		items = append(items, CatalogProduct{Product: p, UnitName: unitName})
	}
	return items, rows.Err()
}

const getProduct = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

func (q *Queries) GetProduct(ctx context.Context, id int64) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

type ProductParams struct {
	Name                   string
	Price                  decimal.NullDecimal
	BrandID                int64
	UnitID                 *int64
	ImageURL               *string
	Metadata               json.RawMessage
	MinOrderQty            *int32
	MinOrderUnit           *string
	MinOrderUnitEquivalent *int32
}

func (p ProductParams) metadata() json.RawMessage {
	if len(p.Metadata) == 0 {
		return json.RawMessage("{}")
	}
	return p.Metadata
}

const createProduct = `INSERT INTO products AS p (name, price, brand_id, unit_id, image_url, metadata,
    min_order_qty, min_order_unit, min_order_unit_equivalent)
VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + productColumns

func (q *Queries) CreateProduct(ctx context.Context, arg ProductParams) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, createProduct,
		arg.Name, nullNumericArg(arg.Price), arg.BrandID, arg.UnitID, arg.ImageURL, arg.metadata(),
		arg.MinOrderQty, arg.MinOrderUnit, arg.MinOrderUnitEquivalent,
	))
}

const updateProduct = `UPDATE products AS p SET name = $2, price = $3::numeric, brand_id = $4, unit_id = $5,
    image_url = $6, metadata = $7, min_order_qty = $8, min_order_unit = $9, min_order_unit_equivalent = $10
WHERE p.id = $1
RETURNING ` + productColumns

func (q *Queries) UpdateProduct(ctx context.Context, id int64, arg ProductParams) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, updateProduct,
		id, arg.Name, nullNumericArg(arg.Price), arg.BrandID, arg.UnitID, arg.ImageURL, arg.metadata(),
		arg.MinOrderQty, arg.MinOrderUnit, arg.MinOrderUnitEquivalent,
	))
}

const deleteProduct = `DELETE FROM products WHERE id = $1`

func (q *Queries) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countCatalog = `SELECT
    (SELECT count(*) FROM products),
    (SELECT count(*) FROM categories),
    (SELECT count(*) FROM brands)`

func (q *Queries) CountCatalog(ctx context.Context) (CatalogCounts, error) {
	var c CatalogCounts
	err := q.db.QueryRow(ctx, countCatalog).Scan(&c.Products, &c.Categories, &c.Brands)
	return c, err
}
