package service

import (
	"context"

	"klikpos/internal/apierror"
	"klikpos/internal/dto"
	"klikpos/internal/model"
	"klikpos/internal/repository"
)

// ProfileService exposes the caller's POS profile and its payment modes.
type ProfileService interface {
	Current(ctx context.Context, actor Actor) (*dto.POSProfileResponse, error)
	PaymentModes(ctx context.Context, actor Actor) ([]dto.PaymentModeResponse, error)
}

type profileService struct {
	repo repository.POSProfileRepository
}

func NewProfileService(repo repository.POSProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) Current(ctx context.Context, actor Actor) (*dto.POSProfileResponse, error) {
	p, err := loadProfile(ctx, s.repo, actor)
	if err != nil {
		return nil, err
	}
	return &dto.POSProfileResponse{
		ID:              p.ID.String(),
		Name:            p.Name,
		Company:         p.Company,
		Currency:        p.Currency,
		WriteOffAccount: p.WriteOffAccount,
		CashMode:        p.CashMode,
		PaymentModes:    paymentModesToResponse(p.PaymentModes),
	}, nil
}

func (s *profileService) PaymentModes(ctx context.Context, actor Actor) ([]dto.PaymentModeResponse, error) {
	p, err := loadProfile(ctx, s.repo, actor)
	if err != nil {
		return nil, err
	}
	return paymentModesToResponse(p.PaymentModes), nil
}

// loadProfile resolves the actor's POS profile. A disabled profile cannot be
// used to trade.
func loadProfile(ctx context.Context, repo repository.POSProfileRepository, actor Actor) (*model.POSProfile, error) {
	if actor.POSProfileID == nil {
		return nil, apierror.Validation("user has no POS profile assigned")
	}
	p, err := repo.FindByID(ctx, *actor.POSProfileID)
	if err != nil {
		return nil, lookupErr(err, "POS profile")
	}
	if p.Disabled {
		return nil, apierror.Validation("POS profile " + p.Name + " is disabled")
	}
	return p, nil
}

func paymentModesToResponse(modes []model.POSPaymentMode) []dto.PaymentModeResponse {
	out := make([]dto.PaymentModeResponse, len(modes))
	for i, m := range modes {
		out[i] = dto.PaymentModeResponse{
			ModeOfPayment: m.ModeOfPayment,
			Type:          m.Type,
			IsDefault:     m.IsDefault,
		}
	}
	return out
}
