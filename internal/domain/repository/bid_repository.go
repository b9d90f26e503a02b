package repository

import (
	"context"

	"gigspace/internal/domain/entity"
)

type BidRepository interface {
	Create(ctx context.Context, bid *entity.Bid) error
	GetByID(ctx context.Context, id string) (*entity.Bid, error)
	Update(ctx context.Context, bid *entity.Bid) error
	ListByJobID(ctx context.Context, jobID string, limit, offset int) ([]*entity.Bid, int64, error)
	ListByFreelancerID(ctx context.Context, freelancerID string, limit, offset int) ([]*entity.Bid, int64, error)
	GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID string) (*entity.Bid, error)
}
