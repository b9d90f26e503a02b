package usecase

import (
	"context"
	"log"
	"time"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/pkg/errors"
)

type AuthUseCase struct {
	userRepo      repository.UserRepository
	affiliateRepo repository.AffiliateRepository
	firebaseAuth  FirebaseAuthClient
	identity      IdentityClient
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	affiliateRepo repository.AffiliateRepository,
	firebaseAuth FirebaseAuthClient,
	identity IdentityClient,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:      userRepo,
		affiliateRepo: affiliateRepo,
		firebaseAuth:  firebaseAuth,
		identity:      identity,
	}
}

type RegisterInput struct {
	Email        string
	Password     string
	Username     string
	Phone        string
	Role         string // "client" or "freelancer"
	ReferralCode string
}

type AuthResult struct {
	User         *entity.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	// Check if email already exists
	existingUser, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existingUser != nil {
		return nil, errors.BadRequest("Email already in use", nil)
	}

	if input.Role != "client" && input.Role != "freelancer" {
		return nil, errors.BadRequest("Role must be client or freelancer", nil)
	}

	// Create user in Firebase Auth
	uid, err := uc.firebaseAuth.CreateUser(ctx, input.Email, input.Password, input.Username)
	if err != nil {
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	if err := uc.firebaseAuth.SetRole(ctx, uid, input.Role); err != nil {
		log.Printf("Register Error: Failed to set role claim for %s: %v", uid, err)
	}

	now := time.Now()
	user := &entity.User{
		ID:        uid,
		Email:     input.Email,
		Username:  input.Username,
		Phone:     input.Phone,
		Role:      input.Role,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Credit the referrer before the user row is written so a failed
	// signup never counts.
	if input.ReferralCode != "" {
		affiliate, err := uc.affiliateRepo.GetByCode(ctx, input.ReferralCode)
		if err == nil {
			user.ReferredBy = affiliate.UserID
			affiliate.Signups++
			if err := uc.affiliateRepo.Update(ctx, affiliate); err != nil {
				log.Printf("Register Error: Failed to credit referral %s: %v", input.ReferralCode, err)
			}
		} else {
			log.Printf("Register: Unknown referral code %s ignored", input.ReferralCode)
		}
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Internal("Failed to create user record", err)
	}

	token, refreshToken, err := uc.identity.SignInWithEmailPassword(input.Email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refreshToken,
	}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	token, refreshToken, err := uc.identity.SignInWithEmailPassword(email, password)
	if err != nil {
		log.Printf("Login failed: %v", err)
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	// Verify token to get UID
	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		log.Printf("Token verification failed: %v", err)
		return nil, errors.Internal("Failed to verify token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		log.Printf("Failed to get user by ID: %v", err)
		return nil, errors.NotFound("User", err)
	}

	if user.Status == "banned" {
		return nil, errors.Forbidden("Account is banned", nil)
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refreshToken,
	}, nil
}

func (uc *AuthUseCase) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, newRefresh, err := uc.identity.RefreshIDToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid refresh token", err)
	}

	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid refresh token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: newRefresh,
	}, nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	return user, nil
}
