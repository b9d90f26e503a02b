package repository

import (
	"context"

	"gigspace/internal/domain/entity"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	GetByID(ctx context.Context, id string) (*entity.Job, error)
	Update(ctx context.Context, job *entity.Job) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, status, category string, limit, offset int) ([]*entity.Job, int64, error)
	ListByClientID(ctx context.Context, clientID string, limit, offset int) ([]*entity.Job, int64, error)
}
