package service

import (
	"context"
	"errors"
	"strconv"

	"merchquote/internal/dto"
	"merchquote/internal/model"
	"merchquote/internal/repository"

	"gorm.io/gorm"
)

// Persisted preference keys.
const (
	settingDefaultDiscountRate = "default_discount_rate"
	settingDefaultTruncation   = "default_truncation"
	settingDefaultVATIncluded  = "default_vat_included"
	settingDefaultLetterhead   = "default_letterhead"
)

type SettingsService interface {
	GetLetterhead(ctx context.Context, key string) (*dto.LetterheadResponse, error)
	UpdateLetterhead(ctx context.Context, key string, req dto.UpdateLetterheadRequest) (*dto.LetterheadResponse, error)
	GetDefaults(ctx context.Context) (*dto.DefaultsResponse, error)
	UpdateDefaults(ctx context.Context, req dto.UpdateDefaultsRequest) (*dto.DefaultsResponse, error)
	// LoadLetterhead returns the raw model for document assembly.
	LoadLetterhead(ctx context.Context, key string) (*model.Letterhead, error)
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) GetLetterhead(ctx context.Context, key string) (*dto.LetterheadResponse, error) {
	lh, err := s.LoadLetterhead(ctx, key)
	if err != nil {
		return nil, err
	}
	resp := toLetterheadResponse(lh)
	return &resp, nil
}

func (s *settingsService) LoadLetterhead(ctx context.Context, key string) (*model.Letterhead, error) {
	lh, err := s.repo.GetLetterhead(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Unconfigured letterhead renders as a blank block rather than a 404
		return &model.Letterhead{Key: key}, nil
	}
	if err != nil {
		return nil, err
	}
	return lh, nil
}

func (s *settingsService) UpdateLetterhead(ctx context.Context, key string, req dto.UpdateLetterheadRequest) (*dto.LetterheadResponse, error) {
	lh := &model.Letterhead{
		Key:            key,
		CompanyName:    req.CompanyName,
		Registration:   req.Registration,
		Representative: req.Representative,
		Address:        req.Address,
		Phone:          req.Phone,
		Email:          req.Email,
		BankAccount:    req.BankAccount,
		SealImagePath:  req.SealImagePath,
	}
	if err := s.repo.UpsertLetterhead(ctx, lh); err != nil {
		return nil, err
	}
	resp := toLetterheadResponse(lh)
	return &resp, nil
}

func (s *settingsService) GetDefaults(ctx context.Context) (*dto.DefaultsResponse, error) {
	resp := &dto.DefaultsResponse{
		DiscountRate: 0,
		Truncation:   "none",
		VATIncluded:  true,
		Letterhead:   "primary",
	}

	all, err := s.repo.AllSettings(ctx)
	if err != nil {
		return nil, err
	}
	for _, setting := range all {
		switch setting.Key {
		case settingDefaultDiscountRate:
			if n, err := strconv.Atoi(setting.Value); err == nil {
				resp.DiscountRate = n
			}
		case settingDefaultTruncation:
			resp.Truncation = setting.Value
		case settingDefaultVATIncluded:
			resp.VATIncluded = setting.Value == "true"
		case settingDefaultLetterhead:
			resp.Letterhead = setting.Value
		}
	}
	return resp, nil
}

func (s *settingsService) UpdateDefaults(ctx context.Context, req dto.UpdateDefaultsRequest) (*dto.DefaultsResponse, error) {
	if req.DiscountRate != nil {
		if err := s.repo.UpsertSetting(ctx, settingDefaultDiscountRate, strconv.Itoa(*req.DiscountRate)); err != nil {
			return nil, err
		}
	}
	if req.Truncation != nil {
		if err := s.repo.UpsertSetting(ctx, settingDefaultTruncation, *req.Truncation); err != nil {
			return nil, err
		}
	}
	if req.VATIncluded != nil {
		if err := s.repo.UpsertSetting(ctx, settingDefaultVATIncluded, strconv.FormatBool(*req.VATIncluded)); err != nil {
			return nil, err
		}
	}
	if req.Letterhead != nil {
		if err := s.repo.UpsertSetting(ctx, settingDefaultLetterhead, *req.Letterhead); err != nil {
			return nil, err
		}
	}
	return s.GetDefaults(ctx)
}

func toLetterheadResponse(lh *model.Letterhead) dto.LetterheadResponse {
	return dto.LetterheadResponse{
		Key:            lh.Key,
		CompanyName:    lh.CompanyName,
		Registration:   lh.Registration,
		Representative: lh.Representative,
		Address:        lh.Address,
		Phone:          lh.Phone,
		Email:          lh.Email,
		BankAccount:    lh.BankAccount,
		SealImagePath:  lh.SealImagePath,
	}
}
