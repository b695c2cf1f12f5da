package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mapshare/internal/auth"
	"mapshare/internal/models"
	"mapshare/internal/storage"
	"mapshare/internal/store"
)

type BusinessProfileStore interface {
	Upsert(ctx context.Context, profile models.BusinessProfile) error
	Get(ctx context.Context, userID string) (models.BusinessProfile, error)
	List(ctx context.Context) ([]models.BusinessProfile, error)
}

type BusinessProfileInput struct {
	Name        string
	Description string
	Website     *string
	Image       *Attachment
}

type BusinessService struct {
	profiles BusinessProfileStore
	files    FileStorage
	logger   *slog.Logger
	maxBytes int64
}

func NewBusinessService(profiles BusinessProfileStore, files FileStorage, logger *slog.Logger, maxBytes int64) *BusinessService {
	return &BusinessService{profiles: profiles, files: files, logger: logger, maxBytes: maxBytes}
}

// Upsert keeps the previous image when input.Image is nil. The name defaults
// to the company name on the session.
func (s *BusinessService) Upsert(ctx context.Context, session auth.Session, input BusinessProfileInput) (models.BusinessProfile, error) {
	if !session.IsCompany {
		return models.BusinessProfile{}, ErrNotCompany
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSpace(session.CompanyName)
	}
	if name == "" {
		return models.BusinessProfile{}, ErrInvalidProfile
	}
	profile := models.BusinessProfile{
		UserID:      session.UserID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Website:     input.Website,
	}
	if input.Image != nil {
		saved, err := uploadImage(ctx, s.files, storage.BusinessProfiles, *input.Image, s.maxBytes)
		if err != nil {
			return models.BusinessProfile{}, err
		}
		profile.ImagePath = &saved
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		if profile.ImagePath != nil {
			removeImage(ctx, s.files, s.logger, storage.BusinessProfiles, *profile.ImagePath)
		}
		return models.BusinessProfile{}, fmt.Errorf("upsert business profile: %w", err)
	}
	return s.Get(ctx, session.UserID)
}

func (s *BusinessService) Get(ctx context.Context, userID string) (models.BusinessProfile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if store.IsNotFound(err) {
		return models.BusinessProfile{}, ErrNotFound
	}
	if err != nil {
		return models.BusinessProfile{}, err
	}
	return s.withImage(profile), nil
}

func (s *BusinessService) List(ctx context.Context) ([]models.BusinessProfile, error) {
	rows, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = s.withImage(rows[i])
	}
	return rows, nil
}

func (s *BusinessService) withImage(p models.BusinessProfile) models.BusinessProfile {
	if p.ImagePath != nil {
		p.ImageURL = s.files.PublicURL(storage.BusinessProfiles, *p.ImagePath)
	}
	return p
}
