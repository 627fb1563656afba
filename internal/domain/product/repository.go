package product

import "context"

// Lookup is the read path loans use. FindActiveByID returns
// apperrors.ErrProductNotFound for missing or inactive products.
type Lookup interface {
	FindActiveByID(ctx context.Context, id int64) (*Product, error)
}

type Repository interface {
	Lookup

	Create(ctx context.Context, p *Product) error

	FindByID(ctx context.Context, id int64) (*Product, error)

	List(ctx context.Context, activeOnly bool) ([]*Product, error)

	Update(ctx context.Context, p *Product) error

	SetActive(ctx context.Context, id int64, active bool) error
}
