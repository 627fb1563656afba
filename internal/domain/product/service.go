package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"loan-engine/internal/auth"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/pkg/apperrors"
)

type Service interface {
	CreateProduct(ctx context.Context, actor auth.Actor, p *Product) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, actor auth.Actor, id int64, changes Changes) (*Product, error)
	DeactivateProduct(ctx context.Context, actor auth.Actor, id int64) error
}

var _ Service = (*productService)(nil)

type productService struct {
	repo   Repository
	audit  audit.Sink
	logger *slog.Logger
}

func NewProductService(repo Repository, sink audit.Sink, logger *slog.Logger) Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &productService{
		repo:   repo,
		audit:  sink,
		logger: logger.With(slog.String("component", "productService")),
	}
}

func (s *productService) CreateProduct(ctx context.Context, actor auth.Actor, p *Product) (*Product, error) {
	if err := auth.Require(actor, auth.CapProductManage); err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "KES"
	}
	p.IsActive = true
	if err := p.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Product validation failed", slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create loan product: %w", err)
	}

	s.logger.InfoContext(ctx, "Loan product created", slog.Int64("productID", p.ID))
	s.audit.Record(ctx, audit.Entry{
		EntityType: audit.EntityProduct,
		EntityID:   p.ID,
		Action:     audit.ActionCreate,
		Payload:    p,
		ActorID:    actor.ID,
		ActorType:  actor.ActorType(),
	})
	return p, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrProductNotFound, id)
		}
		s.logger.ErrorContext(ctx, "Repository error finding product", slog.Int64("productID", id), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get loan product %d: %w", id, err)
	}
	return p, nil
}

func (s *productService) ListProducts(ctx context.Context, activeOnly bool) ([]*Product, error) {
	products, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing products", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loan products: %w", err)
	}
	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, actor auth.Actor, id int64, changes Changes) (*Product, error) {
	if err := auth.Require(actor, auth.CapProductManage); err != nil {
		return nil, err
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	changes.Apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to update product", slog.Int64("productID", id), slog.Any("error", err))
		return nil, fmt.Errorf("failed to update loan product %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Loan product updated", slog.Int64("productID", id))
	s.audit.Record(ctx, audit.Entry{
		EntityType: audit.EntityProduct,
		EntityID:   id,
		Action:     audit.ActionUpdate,
		Payload:    map[string]any{"changes": changes, "product": p},
		ActorID:    actor.ID,
		ActorType:  actor.ActorType(),
	})
	return p, nil
}

// DeactivateProduct hides a product from new originations. Existing loans keep
// the terms they copied at creation.
func (s *productService) DeactivateProduct(ctx context.Context, actor auth.Actor, id int64) error {
	if err := auth.Require(actor, auth.CapProductManage); err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: id %d", apperrors.ErrProductNotFound, id)
		}
		s.logger.ErrorContext(ctx, "Repository failed to deactivate product", slog.Int64("productID", id), slog.Any("error", err))
		return fmt.Errorf("failed to deactivate loan product %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Loan product deactivated", slog.Int64("productID", id))
	s.audit.Record(ctx, audit.Entry{
		EntityType: audit.EntityProduct,
		EntityID:   id,
		Action:     audit.ActionDelete,
		Payload:    map[string]any{"isActive": false},
		ActorID:    actor.ID,
		ActorType:  actor.ActorType(),
	})
	return nil
}
