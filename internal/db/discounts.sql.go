package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const tierColumns = `id, min_spend, max_spend, discount_percent, free_shipping, is_active, description, created_at`

func scanTier(row rowScanner) (TieredDiscount, error) {
	var i TieredDiscount
	err := row.Scan(&i.ID, &i.MinSpend, &i.MaxSpend, &i.DiscountPercent, &i.FreeShipping,
		&i.IsActive, &i.Description, &i.CreatedAt)
	return i, err
}

func (q *Queries) listTiers(ctx context.Context, query string) ([]TieredDiscount, error) {
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TieredDiscount
	for rows.Next() {
		i, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listTieredDiscounts = `SELECT ` + tierColumns + ` FROM tiered_discounts ORDER BY min_spend, id`

func (q *Queries) ListTieredDiscounts(ctx context.Context) ([]TieredDiscount, error) {
	return q.listTiers(ctx, listTieredDiscounts)
}

const listActiveTieredDiscounts = `SELECT ` + tierColumns + ` FROM tiered_discounts WHERE is_active ORDER BY min_spend, id`

func (q *Queries) ListActiveTieredDiscounts(ctx context.Context) ([]TieredDiscount, error) {
	return q.listTiers(ctx, listActiveTieredDiscounts)
}

type TieredDiscountParams struct {
	MinSpend        decimal.Decimal
	MaxSpend        decimal.NullDecimal
	DiscountPercent decimal.Decimal
	FreeShipping    bool
	IsActive        bool
	Description     *string
}

const createTieredDiscount = `INSERT INTO tiered_discounts (min_spend, max_spend, discount_percent, free_shipping, is_active, description)
VALUES ($1::numeric, $2::numeric, $3::numeric, $4, $5, $6)
RETURNING ` + tierColumns

func (q *Queries) CreateTieredDiscount(ctx context.Context, arg TieredDiscountParams) (TieredDiscount, error) {
	return scanTier(q.db.QueryRow(ctx, createTieredDiscount,
		numericArg(arg.MinSpend), nullNumericArg(arg.MaxSpend), numericArg(arg.DiscountPercent),
		arg.FreeShipping, arg.IsActive, arg.Description))
}

const updateTieredDiscount = `UPDATE tiered_discounts SET min_spend = $2::numeric, max_spend = $3::numeric,
    discount_percent = $4::numeric, free_shipping = $5, is_active = $6, description = $7
WHERE id = $1
RETURNING ` + tierColumns

func (q *Queries) UpdateTieredDiscount(ctx context.Context, id int64, arg TieredDiscountParams) (TieredDiscount, error) {
	return scanTier(q.db.QueryRow(ctx, updateTieredDiscount, id,
		numericArg(arg.MinSpend), nullNumericArg(arg.MaxSpend), numericArg(arg.DiscountPercent),
		arg.FreeShipping, arg.IsActive, arg.Description))
}

const deleteTieredDiscount = `DELETE FROM tiered_discounts WHERE id = $1`

func (q *Queries) DeleteTieredDiscount(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteTieredDiscount, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const setTieredDiscountActive = `UPDATE tiered_discounts SET is_active = $2 WHERE id = $1`

func (q *Queries) SetTieredDiscountActive(ctx context.Context, id int64, active bool) (int64, error) {
	tag, err := q.db.Exec(ctx, setTieredDiscountActive, id, active)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const promoCodeColumns = `id, code, discount_percent, start_date, end_date, is_active, created_at`

func scanPromoCode(row rowScanner) (PromoCode, error) {
	var i PromoCode
	err := row.Scan(&i.ID, &i.Code, &i.DiscountPercent, &i.StartDate, &i.EndDate, &i.IsActive, &i.CreatedAt)
	return i, err
}

const listPromoCodes = `SELECT ` + promoCodeColumns + ` FROM promo_codes ORDER BY created_at DESC, id DESC`

func (q *Queries) ListPromoCodes(ctx context.Context) ([]PromoCode, error) {
	rows, err := q.db.Query(ctx, listPromoCodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PromoCode
	for rows.Next() {
		i, err := scanPromoCode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getPromoCodeByCode = `SELECT ` + promoCodeColumns + ` FROM promo_codes WHERE code = $1`

// GetPromoCodeByCode matches the code exactly, case included.
func (q *Queries) GetPromoCodeByCode(ctx context.Context, code string) (PromoCode, error) {
	return scanPromoCode(q.db.QueryRow(ctx, getPromoCodeByCode, code))
}

type PromoCodeParams struct {
	Code            string
	DiscountPercent decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	IsActive        bool
}

const createPromoCode = `INSERT INTO promo_codes (code, discount_percent, start_date, end_date, is_active)
VALUES ($1, $2::numeric, $3::date, $4::date, $5)
RETURNING ` + promoCodeColumns

func (q *Queries) CreatePromoCode(ctx context.Context, arg PromoCodeParams) (PromoCode, error) {
	return scanPromoCode(q.db.QueryRow(ctx, createPromoCode,
		arg.Code, numericArg(arg.DiscountPercent), arg.StartDate, arg.EndDate, arg.IsActive))
}

const updatePromoCode = `UPDATE promo_codes SET code = $2, discount_percent = $3::numeric, start_date = $4::date,
    end_date = $5::date, is_active = $6
WHERE id = $1
RETURNING ` + promoCodeColumns

func (q *Queries) UpdatePromoCode(ctx context.Context, id int64, arg PromoCodeParams) (PromoCode, error) {
	return scanPromoCode(q.db.QueryRow(ctx, updatePromoCode, id,
		arg.Code, numericArg(arg.DiscountPercent), arg.StartDate, arg.EndDate, arg.IsActive))
}

const deletePromoCode = `DELETE FROM promo_codes WHERE id = $1`

func (q *Queries) DeletePromoCode(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deletePromoCode, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const setPromoCodeActive = `UPDATE promo_codes SET is_active = $2 WHERE id = $1`

func (q *Queries) SetPromoCodeActive(ctx context.Context, id int64, active bool) (int64, error) {
	tag, err := q.db.Exec(ctx, setPromoCodeActive, id, active)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
