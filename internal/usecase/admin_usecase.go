package usecase

import (
	"context"
	"log"
	"time"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/pkg/errors"
)

type AdminUseCase struct {
	userRepo     repository.UserRepository
	jobRepo      repository.JobRepository
	firebaseAuth FirebaseAuthClient
}

func NewAdminUseCase(
	userRepo repository.UserRepository,
	jobRepo repository.JobRepository,
	firebaseAuth FirebaseAuthClient,
) *AdminUseCase {
	return &AdminUseCase{
		userRepo:     userRepo,
		jobRepo:      jobRepo,
		firebaseAuth: firebaseAuth,
	}
}

func (uc *AdminUseCase) ListUsers(ctx context.Context, role string, limit, offset int) ([]*entity.User, int64, error) {
	return uc.userRepo.List(ctx, role, limit, offset)
}

func (uc *AdminUseCase) BanUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	if user.Role == "admin" {
		return nil, errors.Forbidden("Admins cannot be banned", nil)
	}
	if user.Status == "banned" {
		return user, nil
	}

	user.Status = "banned"
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("BanUser Error: Failed to ban user %s: %v", userID, err)
		return nil, err
	}

	if err := uc.firebaseAuth.DisableUser(ctx, userID, true); err != nil {
		log.Printf("BanUser Error: Failed to disable auth for user %s: %v", userID, err)
	}

	return user, nil
}

func (uc *AdminUseCase) UnbanUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	if user.Status != "banned" {
		return user, nil
	}

	user.Status = "active"
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("UnbanUser Error: Failed to unban user %s: %v", userID, err)
		return nil, err
	}

	if err := uc.firebaseAuth.DisableUser(ctx, userID, false); err != nil {
		log.Printf("UnbanUser Error: Failed to enable auth for user %s: %v", userID, err)
	}

	return user, nil
}

type PlatformStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalClients  int64 `json:"total_clients"`
	Freelancers   int64 `json:"total_freelancers"`
	OpenJobs      int64 `json:"open_jobs"`
	AssignedJobs  int64 `json:"assigned_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
}

func (uc *AdminUseCase) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}

	_, total, err := uc.userRepo.List(ctx, "", 1, 0)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = total

	if _, n, err := uc.userRepo.List(ctx, "client", 1, 0); err == nil {
		stats.TotalClients = n
	}
	if _, n, err := uc.userRepo.List(ctx, "freelancer", 1, 0); err == nil {
		stats.Freelancers = n
	}
	if _, n, err := uc.jobRepo.List(ctx, "open", "", 1, 0); err == nil {
		stats.OpenJobs = n
	}
	if _, n, err := uc.jobRepo.List(ctx, "assigned", "", 1, 0); err == nil {
		stats.AssignedJobs = n
	}
	if _, n, err := uc.jobRepo.List(ctx, "completed", "", 1, 0); err == nil {
		stats.CompletedJobs = n
	}

	return stats, nil
}
