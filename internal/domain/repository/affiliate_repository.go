package repository

import (
	"context"

	"gigspace/internal/domain/entity"
)

type AffiliateRepository interface {
	Create(ctx context.Context, affiliate *entity.Affiliate) error
	GetByUserID(ctx context.Context, userID string) (*entity.Affiliate, error)
	GetByCode(ctx context.Context, code string) (*entity.Affiliate, error)
	Update(ctx context.Context, affiliate *entity.Affiliate) error
	List(ctx context.Context, limit, offset int) ([]*entity.Affiliate, int64, error)
}
