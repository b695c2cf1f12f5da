package store

import (
	"context"

	"mapshare/internal/models"
)

type ProfileStore struct {
	db DB
}

func NewProfileStore(db DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Upsert runs on s.db when tx is nil.
func (s *ProfileStore) Upsert(ctx context.Context, tx Execer, profile models.Profile) error {
	if tx == nil {
		tx = s.db
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name, avatar_url = EXCLUDED.avatar_url, updated_at = NOW()
	`, profile.UserID, profile.DisplayName, profile.AvatarURL)
	return err
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, `
		SELECT user_id, display_name, avatar_url, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID)
	return profile, err
}

type BusinessProfileStore struct {
	db DB
}

func NewBusinessProfileStore(db DB) *BusinessProfileStore {
	return &BusinessProfileStore{db: db}
}

// Upsert keeps the stored image when profile.ImagePath is nil.
func (s *BusinessProfileStore) Upsert(ctx context.Context, profile models.BusinessProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO business_profiles (user_id, name, description, website, image_path)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    website = EXCLUDED.website,
		    image_path = COALESCE(EXCLUDED.image_path, business_profiles.image_path),
		    updated_at = NOW()
	`, profile.UserID, profile.Name, profile.Description, profile.Website, profile.ImagePath)
	return err
}

func (s *BusinessProfileStore) Get(ctx context.Context, userID string) (models.BusinessProfile, error) {
	var profile models.BusinessProfile
	err := s.db.GetContext(ctx, &profile, `
		SELECT user_id, name, description, website, image_path, updated_at
		FROM business_profiles
		WHERE user_id = $1
	`, userID)
	return profile, err
}

func (s *BusinessProfileStore) List(ctx context.Context) ([]models.BusinessProfile, error) {
	var rows []models.BusinessProfile
	err := s.db.SelectContext(ctx, &rows, `
		SELECT user_id, name, description, website, image_path, updated_at
		FROM business_profiles
		ORDER BY name
	`)
	return rows, err
}
