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

type firestoreJobRepository struct {
	client *firestore.Client
}

func NewFirestoreJobRepository(client *firestore.Client) repository.JobRepository {
	return &firestoreJobRepository{
		client: client,
	}
}

func (r *firestoreJobRepository) Create(ctx context.Context, job *entity.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.client.Collection("jobs").Doc(job.ID).Set(ctx, job)
	if err != nil {
		return errors.Internal("Failed to create job", err)
	}
	return nil
}

func (r *firestoreJobRepository) GetByID(ctx context.Context, id string) (*entity.Job, error) {
	doc, err := r.client.Collection("jobs").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Job", err)
		}
		return nil, errors.Internal("Failed to get job", err)
	}

	var job entity.Job
	if err := doc.DataTo(&job); err != nil {
		return nil, errors.Internal("Failed to parse job data", err)
	}
	job.ID = doc.Ref.ID

	return &job, nil
}

func (r *firestoreJobRepository) Update(ctx context.Context, job *entity.Job) error {
	job.UpdatedAt = time.Now()

	_, err := r.client.Collection("jobs").Doc(job.ID).Set(ctx, job)
	if err != nil {
		return errors.Internal("Failed to update job", err)
	}
	return nil
}

func (r *firestoreJobRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("jobs").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete job", err)
	}
	return nil
}

func (r *firestoreJobRepository) List(ctx context.Context, jobStatus, category string, limit, offset int) ([]*entity.Job, int64, error) {
	query := r.client.Collection("jobs").Query
	if jobStatus != "" {
		query = query.Where("status", "==", jobStatus)
	}
	if category != "" {
		query = query.Where("category", "==", category)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while listing jobs: %v", err)
		return nil, 0, errors.Internal("Failed to list jobs", err)
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

	var jobs []*entity.Job
	for _, doc := range allDocs[start:end] {
		var job entity.Job
		if err := doc.DataTo(&job); err != nil {
			log.Printf("Error parsing job data: %v", err)
			continue
		}
		job.ID = doc.Ref.ID
		jobs = append(jobs, &job)
	}

	return jobs, total, nil
}

func (r *firestoreJobRepository) ListByClientID(ctx context.Context, clientID string, limit, offset int) ([]*entity.Job, int64, error) {
	query := r.client.Collection("jobs").Where("clientId", "==", clientID).OrderBy("createdAt", firestore.Desc)

	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var jobs []*entity.Job

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating jobs for client %s: %v", clientID, err)
			return nil, 0, errors.Internal("Failed to iterate jobs", err)
		}

		var job entity.Job
		if err := doc.DataTo(&job); err != nil {
			log.Printf("Error parsing job data for client %s: %v", clientID, err)
			continue
		}
		job.ID = doc.Ref.ID
		jobs = append(jobs, &job)
	}

	return jobs, int64(len(jobs)), nil
}
