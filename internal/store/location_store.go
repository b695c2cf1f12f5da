package store

import (
	"context"

	"mapshare/internal/models"
)

type LocationStore struct {
	db DB
}

func NewLocationStore(db DB) *LocationStore {
	return &LocationStore{db: db}
}

// Upsert overwrites the caller's single location row.
func (s *LocationStore) Upsert(ctx context.Context, loc models.Location) (models.Location, error) {
	var row models.Location
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO locations (user_id, latitude, longitude, is_company)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude,
		    is_company = EXCLUDED.is_company,
		    updated_at = NOW()
		RETURNING user_id, latitude, longitude, is_company, updated_at
	`, loc.UserID, loc.Latitude, loc.Longitude, loc.IsCompany)
	return row, err
}

func (s *LocationStore) Delete(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *LocationStore) List(ctx context.Context) ([]models.Location, error) {
	var rows []models.Location
	err := s.db.SelectContext(ctx, &rows, `
		SELECT user_id, latitude, longitude, is_company, updated_at
		FROM locations
		ORDER BY user_id
	`)
	return rows, err
}
