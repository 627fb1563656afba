package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-engine/internal/domain/product"
	"loan-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type ProductRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ product.Repository = (*ProductRepository)(nil)

func NewProductRepository(db DBPool, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger.With("component", "ProductRepository")}
}

const productColumns = `id, name, COALESCE(description, ''), interest_rate, interest_type,
        repayment_period_months, min_loan_amount, max_loan_amount, fees, penalty_rate, currency,
        is_active, created_at, updated_at`

const (
	insertProductSQL = `
        INSERT INTO loan_products (name, description, interest_rate, interest_type, repayment_period_months,
            min_loan_amount, max_loan_amount, fees, penalty_rate, currency, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	getProductSQL = `SELECT ` + productColumns + ` FROM loan_products WHERE id = $1`

	getActiveProductSQL = getProductSQL + ` AND is_active`

	listProductsSQL = `SELECT ` + productColumns + ` FROM loan_products
        WHERE (NOT $1 OR is_active)
        ORDER BY name ASC`

	updateProductSQL = `
        UPDATE loan_products
        SET name = $1, description = $2, interest_rate = $3, interest_type = $4,
            repayment_period_months = $5, min_loan_amount = $6, max_loan_amount = $7,
            fees = $8, penalty_rate = $9, currency = $10, updated_at = NOW()
        WHERE id = $11
        RETURNING updated_at`

	setProductActiveSQL = `UPDATE loan_products SET is_active = $1, updated_at = NOW() WHERE id = $2`
)

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.InterestRate, &p.InterestType,
		&p.RepaymentPeriodMonths, &p.MinLoanAmount, &p.MaxLoanAmount, &p.Fees, &p.PenaltyRate, &p.Currency,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	r.logger.InfoContext(ctx, "Attempting to insert loan product", slog.String("name", p.Name))
	err := r.db.QueryRow(ctx, insertProductSQL,
		p.Name, nullIfEmpty(p.Description), p.InterestRate, p.InterestType, p.RepaymentPeriodMonths,
		p.MinLoanAmount, p.MaxLoanAmount, p.Fees, p.PenaltyRate, p.Currency, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan product", slog.Any("error", err))
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	return r.find(ctx, "FindProductByID", getProductSQL, id)
}

// FindActiveByID hides inactive products from loan origination.
func (r *ProductRepository) FindActiveByID(ctx context.Context, id int64) (*product.Product, error) {
	return r.find(ctx, "FindActiveProductByID", getActiveProductSQL, id)
}

func (r *ProductRepository) find(ctx context.Context, name, query string, id int64) (*product.Product, error) {
	done := timeQuery(name)
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	done(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan product not found", slog.Int64("productID", id))
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrProductNotFound, id)
		}
		r.logger.ErrorContext(ctx, "Failed to get loan product", slog.Int64("productID", id), slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, activeOnly bool) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx, listProductsSQL, activeOnly)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loan products", slog.Any("error", err))
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	products := make([]*product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan product row", slog.Any("error", err))
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	err := r.db.QueryRow(ctx, updateProductSQL,
		p.Name, nullIfEmpty(p.Description), p.InterestRate, p.InterestType,
		p.RepaymentPeriodMonths, p.MinLoanAmount, p.MaxLoanAmount,
		p.Fees, p.PenaltyRate, p.Currency,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: id %d", apperrors.ErrProductNotFound, p.ID)
		}
		r.logger.ErrorContext(ctx, "Failed to update loan product", slog.Int64("productID", p.ID), slog.Any("error", err))
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *ProductRepository) SetActive(ctx context.Context, id int64, active bool) error {
	cmdTag, err := r.db.Exec(ctx, setProductActiveSQL, active, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to set loan product active flag", slog.Int64("productID", id), slog.Any("error", err))
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", apperrors.ErrProductNotFound, id)
	}
	return nil
}
