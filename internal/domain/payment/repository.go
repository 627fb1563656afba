package payment

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, p *Payment) error

	GetByID(ctx context.Context, paymentID int64) (*Payment, error)

	// GetForUpdate locks the payment row until tx ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, paymentID int64) (*Payment, error)

	DeleteInTx(ctx context.Context, tx pgx.Tx, paymentID int64) error

	List(ctx context.Context, filter Filter) ([]*Payment, error)
}
