package usecase

import (
	"context"
	"log"
	"time"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/pkg/errors"
)

type UserUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	return user, nil
}

type UpdateProfileInput struct {
	Username string
	Phone    string
	Bio      string
	Headline string
	Skills   []string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.Headline != "" {
		user.Headline = input.Headline
	}
	if input.Skills != nil {
		user.Skills = input.Skills
	}
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("UpdateProfile Error: Failed to update user %s: %v", userID, err)
		return nil, err
	}

	return user, nil
}

// ListFreelancers returns active freelancer profiles for client browsing.
func (uc *UserUseCase) ListFreelancers(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	users, total, err := uc.userRepo.List(ctx, "freelancer", limit, offset)
	if err != nil {
		return nil, 0, err
	}

	active := make([]*entity.User, 0, len(users))
	for _, user := range users {
		if user.Status == "active" {
			active = append(active, user)
		}
	}
	return active, total, nil
}

func (uc *UserUseCase) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if err := uc.firebaseAuth.UpdateUserPassword(ctx, userID, newPassword); err != nil {
		log.Printf("UpdatePassword Error: %v", err)
		return errors.Internal("Failed to update password", err)
	}
	return nil
}

// Touch updates presence bookkeeping on user activity.
func (uc *UserUseCase) Touch(ctx context.Context, userID string) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return
	}
	user.LastSeen = time.Now()
	user.OnlineStatus = "online"
	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("Touch Error: Failed to update presence for %s: %v", userID, err)
	}
}
