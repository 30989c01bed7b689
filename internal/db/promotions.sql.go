package db

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const promotionColumns = `id, title, subtitle, cta_text, discount_percent, end_date, is_active, gimmick_type, type, created_at`

func scanPromotion(row rowScanner) (Promotion, error) {
	var i Promotion
	err := row.Scan(&i.ID, &i.Title, &i.Subtitle, &i.CTAText, &i.DiscountPercent, &i.EndDate,
		&i.IsActive, &i.GimmickType, &i.Type, &i.CreatedAt)
	return i, err
}

const listPromotions = `SELECT ` + promotionColumns + ` FROM promotions ORDER BY created_at DESC, id DESC`

func (q *Queries) ListPromotions(ctx context.Context) ([]Promotion, error) {
	rows, err := q.db.Query(ctx, listPromotions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Promotion
	for rows.Next() {
		i, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getPromotion = `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`

func (q *Queries) GetPromotion(ctx context.Context, id int64) (Promotion, error) {
	return scanPromotion(q.db.QueryRow(ctx, getPromotion, id))
}

const getActivePromotion = `SELECT ` + promotionColumns + ` FROM promotions
WHERE is_active AND end_date > $1
ORDER BY created_at DESC
LIMIT 1`

// GetActivePromotion returns pgx.ErrNoRows when nothing is running.
func (q *Queries) GetActivePromotion(ctx context.Context, now time.Time) (Promotion, error) {
	return scanPromotion(q.db.QueryRow(ctx, getActivePromotion, now))
}

type PromotionParams struct {
	Title           string
	Subtitle        *string
	CTAText         *string
	DiscountPercent decimal.Decimal
	EndDate         time.Time
	GimmickType     string
	Type            string
}

const createPromotion = `INSERT INTO promotions (title, subtitle, cta_text, discount_percent, end_date, gimmick_type, type)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
RETURNING ` + promotionColumns

func (q *Queries) CreatePromotion(ctx context.Context, arg PromotionParams) (Promotion, error) {
	return scanPromotion(q.db.QueryRow(ctx, createPromotion,
		arg.Title, arg.Subtitle, arg.CTAText, numericArg(arg.DiscountPercent), arg.EndDate, arg.GimmickType, arg.Type))
}

const updatePromotion = `UPDATE promotions SET title = $2, subtitle = $3, cta_text = $4, discount_percent = $5::numeric,
    end_date = $6, gimmick_type = $7, type = $8
WHERE id = $1
RETURNING ` + promotionColumns

func (q *Queries) UpdatePromotion(ctx context.Context, id int64, arg PromotionParams) (Promotion, error) {
	return scanPromotion(q.db.QueryRow(ctx, updatePromotion,
		id, arg.Title, arg.Subtitle, arg.CTAText, numericArg(arg.DiscountPercent), arg.EndDate, arg.GimmickType, arg.Type))
}

const deletePromotion = `DELETE FROM promotions WHERE id = $1`

func (q *Queries) DeletePromotion(ctx context.Context, id int64) (int64, error) {
	tag, err := q.db.Exec(ctx, deletePromotion, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listPromotionProductIDs = `SELECT product_id FROM promotion_products WHERE promotion_id = $1 ORDER BY product_id`

func (q *Queries) ListPromotionProductIDs(ctx context.Context, promotionID int64) ([]int64, error) {
	rows, err := q.db.Query(ctx, listPromotionProductIDs, promotionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const deletePromotionProducts = `DELETE FROM promotion_products WHERE promotion_id = $1`

func (q *Queries) DeletePromotionProducts(ctx context.Context, promotionID int64) error {
	_, err := q.db.Exec(ctx, deletePromotionProducts, promotionID)
	return err
}

const insertPromotionProducts = `INSERT INTO promotion_products (promotion_id, product_id)
SELECT $1, unnest($2::bigint[])
ON CONFLICT DO NOTHING`

func (q *Queries) InsertPromotionProducts(ctx context.Context, promotionID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := q.db.Exec(ctx, insertPromotionProducts, promotionID, productIDs)
	return err
}

const setPromotionActive = `UPDATE promotions SET is_active = $2 WHERE id = $1`

func (q *Queries) SetPromotionActive(ctx context.Context, id int64, active bool) (int64, error) {
	tag, err := q.db.Exec(ctx, setPromotionActive, id, active)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deactivateOtherPromotions = `UPDATE promotions SET is_active = FALSE WHERE is_active AND id <> $1`

func (q *Queries) DeactivateOtherPromotions(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deactivateOtherPromotions, id)
	return err
}

const expirePromotions = `UPDATE promotions SET is_active = FALSE
WHERE is_active AND end_date <= $1
RETURNING id`

func (q *Queries) ExpirePromotions(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := q.db.Query(ctx, expirePromotions, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const countActivePromotions = `SELECT count(*) FROM promotions WHERE is_active AND end_date > $1`

func (q *Queries) CountActivePromotions(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countActivePromotions, now).Scan(&n)
	return n, err
}
