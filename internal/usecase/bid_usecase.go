package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/internal/infrastructure/changefeed"
	"gigspace/internal/infrastructure/queue"
	"gigspace/internal/infrastructure/ratelimit"
	"gigspace/internal/realtime"
	"gigspace/pkg/errors"
)

type BidUseCase struct {
	bidRepo     repository.BidRepository
	jobRepo     repository.JobRepository
	userRepo    repository.UserRepository
	events      EventPublisher
	feed        FeedPublisher
	rateLimiter *ratelimit.RateLimiter
}

func NewBidUseCase(
	bidRepo repository.BidRepository,
	jobRepo repository.JobRepository,
	userRepo repository.UserRepository,
	events EventPublisher,
	feed FeedPublisher,
	rateLimiter *ratelimit.RateLimiter,
) *BidUseCase {
	return &BidUseCase{
		bidRepo:     bidRepo,
		jobRepo:     jobRepo,
		userRepo:    userRepo,
		events:      events,
		feed:        feed,
		rateLimiter: rateLimiter,
	}
}

type PlaceBidInput struct {
	JobID    string
	Amount   float64
	Proposal string
}

func (uc *BidUseCase) PlaceBid(ctx context.Context, freelancerID string, input PlaceBidInput) (*entity.Bid, error) {
	freelancer, err := uc.userRepo.GetByID(ctx, freelancerID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	if freelancer.Role != "freelancer" {
		return nil, errors.Forbidden("Only freelancers can place bids", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(freelancer.ID, "place_bid")
	if !allowed {
		log.Printf("PlaceBid Rate Limited: User %s must wait %v", freelancer.ID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before placing another bid")
	}

	job, err := uc.jobRepo.GetByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != "open" {
		return nil, errors.BadRequest("Job is not open for bids", nil)
	}
	if job.ClientID == freelancer.ID {
		return nil, errors.BadRequest("You cannot bid on your own job", nil)
	}

	if existing, err := uc.bidRepo.GetByJobAndFreelancer(ctx, input.JobID, freelancer.ID); err == nil {
		if existing.Status != "withdrawn" {
			return nil, errors.Conflict("You have already bid on this job")
		}
	}

	bid := &entity.Bid{
		JobID:        input.JobID,
		FreelancerID: freelancer.ID,
		Amount:       input.Amount,
		Proposal:     input.Proposal,
		Status:       "pending",
	}

	if err := uc.bidRepo.Create(ctx, bid); err != nil {
		log.Printf("PlaceBid Error: Failed to create bid for job %s: %v", input.JobID, err)
		return nil, err
	}

	job.BidCount++
	if err := uc.jobRepo.Update(ctx, job); err != nil {
		log.Printf("PlaceBid Error: Failed to bump bid count for job %s: %v", input.JobID, err)
	}

	uc.publishBidChange(ctx, changefeed.OpInsert, bid)

	event := queue.DomainEvent{
		Type:        queue.EventBidPlaced,
		ActorID:     freelancer.ID,
		RecipientID: job.ClientID,
		JobID:       job.ID,
		BidID:       bid.ID,
		Amount:      bid.Amount,
		OccurredAt:  time.Now(),
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		log.Printf("PlaceBid Error: Failed to publish event for bid %s: %v", bid.ID, err)
	}

	return bid, nil
}

func (uc *BidUseCase) ListBidsByJob(ctx context.Context, userID, jobID string, limit, offset int) ([]*entity.Bid, int64, error) {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, 0, err
	}
	if job.ClientID != userID {
		return nil, 0, errors.Forbidden("Only the job owner can view its bids", nil)
	}
	return uc.bidRepo.ListByJobID(ctx, jobID, limit, offset)
}

func (uc *BidUseCase) ListMyBids(ctx context.Context, freelancerID string, limit, offset int) ([]*entity.Bid, int64, error) {
	return uc.bidRepo.ListByFreelancerID(ctx, freelancerID, limit, offset)
}

// AcceptBid assigns the job to the bid's freelancer and rejects every
// other pending bid, notifying each affected freelancer.
func (uc *BidUseCase) AcceptBid(ctx context.Context, userID, bidID string) (*entity.Bid, error) {
	bid, err := uc.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	job, err := uc.jobRepo.GetByID(ctx, bid.JobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != userID {
		return nil, errors.Forbidden("Only the job owner can accept bids", nil)
	}
	if job.Status != "open" {
		return nil, errors.BadRequest("Job is not open", nil)
	}
	if bid.Status != "pending" {
		return nil, errors.BadRequest("Bid is not pending", nil)
	}

	bid.Status = "accepted"
	if err := uc.bidRepo.Update(ctx, bid); err != nil {
		log.Printf("AcceptBid Error: Failed to accept bid %s: %v", bidID, err)
		return nil, err
	}

	job.Status = "assigned"
	job.AssignedTo = bid.FreelancerID
	if err := uc.jobRepo.Update(ctx, job); err != nil {
		log.Printf("AcceptBid Error: Failed to assign job %s: %v", job.ID, err)
		return nil, err
	}

	uc.publishBidChange(ctx, changefeed.OpUpdate, bid)
	uc.publishBidEvent(ctx, queue.EventBidAccepted, userID, bid)

	// Everyone else is out.
	others, _, err := uc.bidRepo.ListByJobID(ctx, job.ID, 0, 0)
	if err != nil {
		log.Printf("AcceptBid Error: Failed to list bids for job %s: %v", job.ID, err)
		return bid, nil
	}
	for _, other := range others {
		if other.ID == bid.ID || other.Status != "pending" {
			continue
		}
		other.Status = "rejected"
		if err := uc.bidRepo.Update(ctx, other); err != nil {
			log.Printf("AcceptBid Error: Failed to reject bid %s: %v", other.ID, err)
			continue
		}
		uc.publishBidChange(ctx, changefeed.OpUpdate, other)
		uc.publishBidEvent(ctx, queue.EventBidRejected, userID, other)
	}

	return bid, nil
}

func (uc *BidUseCase) RejectBid(ctx context.Context, userID, bidID string) (*entity.Bid, error) {
	bid, err := uc.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	job, err := uc.jobRepo.GetByID(ctx, bid.JobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != userID {
		return nil, errors.Forbidden("Only the job owner can reject bids", nil)
	}
	if bid.Status != "pending" {
		return nil, errors.BadRequest("Bid is not pending", nil)
	}

	bid.Status = "rejected"
	if err := uc.bidRepo.Update(ctx, bid); err != nil {
		log.Printf("RejectBid Error: Failed to reject bid %s: %v", bidID, err)
		return nil, err
	}

	uc.publishBidChange(ctx, changefeed.OpUpdate, bid)
	uc.publishBidEvent(ctx, queue.EventBidRejected, userID, bid)

	return bid, nil
}

func (uc *BidUseCase) WithdrawBid(ctx context.Context, userID, bidID string) (*entity.Bid, error) {
	bid, err := uc.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.FreelancerID != userID {
		return nil, errors.Forbidden("You can only withdraw your own bids", nil)
	}
	if bid.Status != "pending" {
		return nil, errors.BadRequest("Only pending bids can be withdrawn", nil)
	}

	bid.Status = "withdrawn"
	if err := uc.bidRepo.Update(ctx, bid); err != nil {
		log.Printf("WithdrawBid Error: Failed to withdraw bid %s: %v", bidID, err)
		return nil, err
	}

	if job, err := uc.jobRepo.GetByID(ctx, bid.JobID); err == nil && job.BidCount > 0 {
		job.BidCount--
		if err := uc.jobRepo.Update(ctx, job); err != nil {
			log.Printf("WithdrawBid Error: Failed to drop bid count for job %s: %v", job.ID, err)
		}
	}

	uc.publishBidChange(ctx, changefeed.OpUpdate, bid)

	return bid, nil
}

func (uc *BidUseCase) publishBidChange(ctx context.Context, op string, bid *entity.Bid) {
	row, err := json.Marshal(bid)
	if err != nil {
		return
	}
	topic := string(realtime.JobBidsTopic(bid.JobID))
	ev := changefeed.Event{Op: op, Table: changefeed.TableBids, Row: row}
	if err := uc.feed.Publish(ctx, topic, ev); err != nil {
		log.Printf("Bid Feed Error: Failed to publish %s for bid %s: %v", op, bid.ID, err)
	}
}

func (uc *BidUseCase) publishBidEvent(ctx context.Context, eventType, actorID string, bid *entity.Bid) {
	event := queue.DomainEvent{
		Type:        eventType,
		ActorID:     actorID,
		RecipientID: bid.FreelancerID,
		JobID:       bid.JobID,
		BidID:       bid.ID,
		Amount:      bid.Amount,
		OccurredAt:  time.Now(),
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		log.Printf("Bid Event Error: Failed to publish %s for bid %s: %v", eventType, bid.ID, err)
	}
}
