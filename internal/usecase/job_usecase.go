package usecase

import (
	"context"
	"log"
	"time"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/internal/infrastructure/queue"
	"gigspace/internal/infrastructure/ratelimit"
	"gigspace/pkg/errors"
)

type JobUseCase struct {
	jobRepo     repository.JobRepository
	bidRepo     repository.BidRepository
	userRepo    repository.UserRepository
	events      EventPublisher
	rateLimiter *ratelimit.RateLimiter
}

func NewJobUseCase(
	jobRepo repository.JobRepository,
	bidRepo repository.BidRepository,
	userRepo repository.UserRepository,
	events EventPublisher,
	rateLimiter *ratelimit.RateLimiter,
) *JobUseCase {
	return &JobUseCase{
		jobRepo:     jobRepo,
		bidRepo:     bidRepo,
		userRepo:    userRepo,
		events:      events,
		rateLimiter: rateLimiter,
	}
}

type CreateJobInput struct {
	Title       string
	Description string
	Category    string
	Budget      float64
}

func (uc *JobUseCase) CreateJob(ctx context.Context, clientID string, input CreateJobInput) (*entity.Job, error) {
	client, err := uc.userRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	if client.Role != "client" {
		return nil, errors.Forbidden("Only clients can post jobs", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(client.ID, "create_job")
	if !allowed {
		log.Printf("CreateJob Rate Limited: User %s must wait %v", client.ID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before posting another job")
	}

	job := &entity.Job{
		ClientID:    client.ID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Budget:      input.Budget,
		Status:      "open",
	}

	if err := uc.jobRepo.Create(ctx, job); err != nil {
		log.Printf("CreateJob Error: Failed to create job for client %s: %v", client.ID, err)
		return nil, err
	}

	return job, nil
}

func (uc *JobUseCase) GetJob(ctx context.Context, id string) (*entity.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (uc *JobUseCase) ListJobs(ctx context.Context, status, category string, limit, offset int) ([]*entity.Job, int64, error) {
	return uc.jobRepo.List(ctx, status, category, limit, offset)
}

func (uc *JobUseCase) ListMyJobs(ctx context.Context, clientID string, limit, offset int) ([]*entity.Job, int64, error) {
	return uc.jobRepo.ListByClientID(ctx, clientID, limit, offset)
}

type UpdateJobInput struct {
	Title       string
	Description string
	Category    string
	Budget      float64
}

func (uc *JobUseCase) UpdateJob(ctx context.Context, userID, jobID string, input UpdateJobInput) (*entity.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != userID {
		return nil, errors.Forbidden("You can only update your own jobs", nil)
	}
	if job.Status != "open" {
		return nil, errors.BadRequest("Only open jobs can be updated", nil)
	}

	if input.Title != "" {
		job.Title = input.Title
	}
	if input.Description != "" {
		job.Description = input.Description
	}
	if input.Category != "" {
		job.Category = input.Category
	}
	if input.Budget > 0 {
		job.Budget = input.Budget
	}

	if err := uc.jobRepo.Update(ctx, job); err != nil {
		log.Printf("UpdateJob Error: Failed to update job %s: %v", jobID, err)
		return nil, err
	}
	return job, nil
}

func (uc *JobUseCase) CancelJob(ctx context.Context, userID, jobID string) (*entity.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != userID {
		return nil, errors.Forbidden("You can only cancel your own jobs", nil)
	}
	if job.Status == "completed" || job.Status == "cancelled" {
		return nil, errors.BadRequest("Job is already closed", nil)
	}

	job.Status = "cancelled"
	if err := uc.jobRepo.Update(ctx, job); err != nil {
		log.Printf("CancelJob Error: Failed to cancel job %s: %v", jobID, err)
		return nil, err
	}
	return job, nil
}

// CompleteJob closes an assigned job and emits the payment event toward
// the assigned freelancer. Payment execution itself lives outside the
// platform; only the confirmation flows through here.
func (uc *JobUseCase) CompleteJob(ctx context.Context, userID, jobID string) (*entity.Job, error) {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != userID {
		return nil, errors.Forbidden("You can only complete your own jobs", nil)
	}
	if job.Status != "assigned" {
		return nil, errors.BadRequest("Only assigned jobs can be completed", nil)
	}

	job.Status = "completed"
	if err := uc.jobRepo.Update(ctx, job); err != nil {
		log.Printf("CompleteJob Error: Failed to complete job %s: %v", jobID, err)
		return nil, err
	}

	// Pay-out amount is the accepted bid's, not the posted budget.
	amount := job.Budget
	if bid, err := uc.bidRepo.GetByJobAndFreelancer(ctx, job.ID, job.AssignedTo); err == nil {
		amount = bid.Amount
	}

	event := queue.DomainEvent{
		Type:        queue.EventPaymentSent,
		ActorID:     userID,
		RecipientID: job.AssignedTo,
		JobID:       job.ID,
		Amount:      amount,
		OccurredAt:  time.Now(),
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		log.Printf("CompleteJob Error: Failed to publish payment event for job %s: %v", jobID, err)
	}

	return job, nil
}

// DeleteJob removes a job outright; admin only, enforced at the router.
func (uc *JobUseCase) DeleteJob(ctx context.Context, jobID string) error {
	if _, err := uc.jobRepo.GetByID(ctx, jobID); err != nil {
		return err
	}
	return uc.jobRepo.Delete(ctx, jobID)
}
