package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
)

type ProductRepo struct {
	DB DBTX
}

const productCols = `id, seller_id, created_at, name, description, category, price_usd, weight_kg`

const createProduct = `-- name: CreateProduct
INSERT INTO products (id, seller_id, name, description, category, price_usd, weight_kg)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + productCols

func (r *ProductRepo) Create(ctx context.Context, p models.Product) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, createProduct, p.ID, p.SellerID, p.Name, p.Description, p.Category, p.PriceUSD, p.WeightKg)
	product, err := pgx.CollectOneRow(rows, rowToProduct)
	if err != nil {
		return product, fmt.Errorf("db error: %w", err)
	}
	return product, nil
}

const getProductByID = `-- name: GetProductByID
SELECT ` + productCols + ` FROM products
WHERE id = $1
`

func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, getProductByID, id)
	product, err := pgx.CollectOneRow(rows, rowToProduct)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return product, apperrors.ErrProductNotFound
	}

	return product, err
}

const listProducts = `-- name: ListProducts
SELECT ` + productCols + ` FROM products
WHERE ($1::uuid IS NULL OR seller_id = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

func (r *ProductRepo) List(ctx context.Context, opts repository.ListProductsOpts) ([]models.Product, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	rows, _ := r.DB.Query(ctx, listProducts, opts.SellerID, limit, opts.Offset)
	list, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

const deleteProduct = `-- name: DeleteProduct
DELETE FROM products
WHERE id = $1
`

func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteProduct, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

func rowToProduct(row pgx.CollectableRow) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.SellerID, &p.CreatedAt, &p.Name, &p.Description, &p.Category, &p.PriceUSD, &p.WeightKg)
	return p, err
}
