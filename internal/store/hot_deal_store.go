package store

import (
	"context"

	"mapshare/internal/models"
)

type HotDealStore struct {
	db DB
}

func NewHotDealStore(db DB) *HotDealStore {
	return &HotDealStore{db: db}
}

const hotDealColumns = `id, user_id, title, description, start_time, duration_hours, image_path, created_at`

func (s *HotDealStore) Create(ctx context.Context, deal models.HotDeal) (models.HotDeal, error) {
	var row models.HotDeal
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO hot_deals (id, user_id, title, description, start_time, duration_hours, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+hotDealColumns,
		deal.ID, deal.UserID, deal.Title, deal.Description, deal.StartTime.UTC(), deal.DurationHours, deal.ImagePath)
	return row, err
}

func (s *HotDealStore) GetByID(ctx context.Context, id string) (models.HotDeal, error) {
	var row models.HotDeal
	err := s.db.GetContext(ctx, &row, `SELECT `+hotDealColumns+` FROM hot_deals WHERE id = $1`, id)
	return row, err
}

func (s *HotDealStore) List(ctx context.Context) ([]models.HotDeal, error) {
	var rows []models.HotDeal
	err := s.db.SelectContext(ctx, &rows, `SELECT `+hotDealColumns+` FROM hot_deals ORDER BY start_time DESC`)
	return rows, err
}

func (s *HotDealStore) ListByUser(ctx context.Context, userID string) ([]models.HotDeal, error) {
	var rows []models.HotDeal
	err := s.db.SelectContext(ctx, &rows, `SELECT `+hotDealColumns+` FROM hot_deals WHERE user_id = $1 ORDER BY start_time DESC`, userID)
	return rows, err
}

func (s *HotDealStore) Delete(ctx context.Context, id, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM hot_deals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
