package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/pkg/errors"
)

type firestoreBidRepository struct {
	client *firestore.Client
}

func NewFirestoreBidRepository(client *firestore.Client) repository.BidRepository {
	return &firestoreBidRepository{
		client: client,
	}
}

func (r *firestoreBidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}

	now := time.Now()
	bid.CreatedAt = now
	bid.UpdatedAt = now

	_, err := r.client.Collection("bids").Doc(bid.ID).Set(ctx, bid)
	if err != nil {
		return errors.Internal("Failed to create bid", err)
	}
	return nil
}

func (r *firestoreBidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	doc, err := r.client.Collection("bids").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Bid", err)
		}
		return nil, errors.Internal("Failed to get bid", err)
	}

	var bid entity.Bid
	if err := doc.DataTo(&bid); err != nil {
		return nil, errors.Internal("Failed to parse bid data", err)
	}
	bid.ID = doc.Ref.ID

	return &bid, nil
}

func (r *firestoreBidRepository) Update(ctx context.Context, bid *entity.Bid) error {
	bid.UpdatedAt = time.Now()

	_, err := r.client.Collection("bids").Doc(bid.ID).Set(ctx, bid)
	if err != nil {
		return errors.Internal("Failed to update bid", err)
	}
	return nil
}

func (r *firestoreBidRepository) ListByJobID(ctx context.Context, jobID string, limit, offset int) ([]*entity.Bid, int64, error) {
	query := r.client.Collection("bids").Where("jobId", "==", jobID).OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while listing bids for job %s: %v", jobID, err)
		return nil, 0, errors.Internal("Failed to list bids", err)
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

	var bids []*entity.Bid
	for _, doc := range allDocs[start:end] {
		var bid entity.Bid
		if err := doc.DataTo(&bid); err != nil {
			log.Printf("Error parsing bid data for job %s: %v", jobID, err)
			continue
		}
		bid.ID = doc.Ref.ID
		bids = append(bids, &bid)
	}

	return bids, total, nil
}

func (r *firestoreBidRepository) ListByFreelancerID(ctx context.Context, freelancerID string, limit, offset int) ([]*entity.Bid, int64, error) {
	query := r.client.Collection("bids").Where("freelancerId", "==", freelancerID).OrderBy("createdAt", firestore.Desc)

	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var bids []*entity.Bid

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating bids for freelancer %s: %v", freelancerID, err)
			return nil, 0, errors.Internal("Failed to iterate bids", err)
		}

		var bid entity.Bid
		if err := doc.DataTo(&bid); err != nil {
			log.Printf("Error parsing bid data for freelancer %s: %v", freelancerID, err)
			continue
		}
		bid.ID = doc.Ref.ID
		bids = append(bids, &bid)
	}

	return bids, int64(len(bids)), nil
}

func (r *firestoreBidRepository) GetByJobAndFreelancer(ctx context.Context, jobID, freelancerID string) (*entity.Bid, error) {
	query := r.client.Collection("bids").
		Where("jobId", "==", jobID).
		Where("freelancerId", "==", freelancerID).
		Limit(1)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query bid", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("Bid", nil)
	}

	var bid entity.Bid
	if err := docs[0].DataTo(&bid); err != nil {
		return nil, errors.Internal("Failed to parse bid data", err)
	}
	bid.ID = docs[0].Ref.ID

	return &bid, nil
}
