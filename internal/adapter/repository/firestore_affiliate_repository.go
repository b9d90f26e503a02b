package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/pkg/errors"
)

type firestoreAffiliateRepository struct {
	client *firestore.Client
}

func NewFirestoreAffiliateRepository(client *firestore.Client) repository.AffiliateRepository {
	return &firestoreAffiliateRepository{
		client: client,
	}
}

func (r *firestoreAffiliateRepository) Create(ctx context.Context, affiliate *entity.Affiliate) error {
	if affiliate.ID == "" {
		affiliate.ID = uuid.New().String()
	}

	now := time.Now()
	affiliate.CreatedAt = now
	affiliate.UpdatedAt = now

	_, err := r.client.Collection("affiliates").Doc(affiliate.ID).Set(ctx, affiliate)
	if err != nil {
		return errors.Internal("Failed to create affiliate", err)
	}
	return nil
}

func (r *firestoreAffiliateRepository) GetByUserID(ctx context.Context, userID string) (*entity.Affiliate, error) {
	query := r.client.Collection("affiliates").Where("userId", "==", userID).Limit(1)
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query affiliate", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("Affiliate", nil)
	}

	var affiliate entity.Affiliate
	if err := docs[0].DataTo(&affiliate); err != nil {
		return nil, errors.Internal("Failed to parse affiliate data", err)
	}
	affiliate.ID = docs[0].Ref.ID

	return &affiliate, nil
}

func (r *firestoreAffiliateRepository) GetByCode(ctx context.Context, code string) (*entity.Affiliate, error) {
	query := r.client.Collection("affiliates").Where("code", "==", code).Limit(1)
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query affiliate by code", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("Affiliate", nil)
	}

	var affiliate entity.Affiliate
	if err := docs[0].DataTo(&affiliate); err != nil {
		return nil, errors.Internal("Failed to parse affiliate data", err)
	}
	affiliate.ID = docs[0].Ref.ID

	return &affiliate, nil
}

func (r *firestoreAffiliateRepository) Update(ctx context.Context, affiliate *entity.Affiliate) error {
	affiliate.UpdatedAt = time.Now()

	_, err := r.client.Collection("affiliates").Doc(affiliate.ID).Set(ctx, affiliate)
	if err != nil {
		return errors.Internal("Failed to update affiliate", err)
	}
	return nil
}

func (r *firestoreAffiliateRepository) List(ctx context.Context, limit, offset int) ([]*entity.Affiliate, int64, error) {
	query := r.client.Collection("affiliates").OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to list affiliates", err)
	}
	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var affiliates []*entity.Affiliate
	for _, doc := range allDocs[start:end] {
		var affiliate entity.Affiliate
		if err := doc.DataTo(&affiliate); err != nil {
			continue // Skip malformed documents
		}
		affiliate.ID = doc.Ref.ID
		affiliates = append(affiliates, &affiliate)
	}

	return affiliates, total, nil
}
