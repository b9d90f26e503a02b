package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/pkg/errors"
)

type AffiliateUseCase struct {
	affiliateRepo repository.AffiliateRepository
}

func NewAffiliateUseCase(affiliateRepo repository.AffiliateRepository) *AffiliateUseCase {
	return &AffiliateUseCase{
		affiliateRepo: affiliateRepo,
	}
}

// GetOrCreate returns the user's referral record, minting a code on
// first use.
func (uc *AffiliateUseCase) GetOrCreate(ctx context.Context, userID string) (*entity.Affiliate, error) {
	affiliate, err := uc.affiliateRepo.GetByUserID(ctx, userID)
	if err == nil {
		return affiliate, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	affiliate = &entity.Affiliate{
		UserID: userID,
		Code:   newReferralCode(),
	}
	if err := uc.affiliateRepo.Create(ctx, affiliate); err != nil {
		log.Printf("GetOrCreate Affiliate Error: user %s: %v", userID, err)
		return nil, err
	}
	return affiliate, nil
}

// TrackClick counts a visit through a referral link. Unknown codes are
// ignored; the endpoint is public.
func (uc *AffiliateUseCase) TrackClick(ctx context.Context, code string) error {
	affiliate, err := uc.affiliateRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil
		}
		return err
	}

	affiliate.Clicks++
	if err := uc.affiliateRepo.Update(ctx, affiliate); err != nil {
		log.Printf("TrackClick Error: code %s: %v", code, err)
		return err
	}
	return nil
}

func (uc *AffiliateUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Affiliate, int64, error) {
	return uc.affiliateRepo.List(ctx, limit, offset)
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
