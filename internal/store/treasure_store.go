package store

import (
	"context"

	"mapshare/internal/models"
)

type TreasureStore struct {
	db DB
}

func NewTreasureStore(db DB) *TreasureStore {
	return &TreasureStore{db: db}
}

const treasureColumns = `id, created_by, latitude, longitude, reward_amount, hint, created_at`

func (s *TreasureStore) Create(ctx context.Context, treasure models.Treasure) (models.Treasure, error) {
	var row models.Treasure
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO treasures (id, created_by, latitude, longitude, reward_amount, hint)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+treasureColumns,
		treasure.ID, treasure.CreatedBy, treasure.Latitude, treasure.Longitude, treasure.RewardAmount, treasure.Hint)
	return row, err
}

func (s *TreasureStore) GetByID(ctx context.Context, tx Getter, id string) (models.Treasure, error) {
	if tx == nil {
		tx = s.db
	}
	var row models.Treasure
	err := tx.GetContext(ctx, &row, `SELECT `+treasureColumns+` FROM treasures WHERE id = $1`, id)
	return row, err
}

func (s *TreasureStore) List(ctx context.Context) ([]models.Treasure, error) {
	var rows []models.Treasure
	err := s.db.SelectContext(ctx, &rows, `SELECT `+treasureColumns+` FROM treasures ORDER BY created_at DESC`)
	return rows, err
}

// InsertFound reports false when the user already claimed the treasure.
func (s *TreasureStore) InsertFound(ctx context.Context, tx Execer, treasureID, userID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO treasures_found (treasure_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (treasure_id, user_id) DO NOTHING
	`, treasureID, userID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (s *TreasureStore) ListFoundByUser(ctx context.Context, userID string) ([]models.TreasureFound, error) {
	var rows []models.TreasureFound
	err := s.db.SelectContext(ctx, &rows, `
		SELECT treasure_id, user_id, found_at
		FROM treasures_found
		WHERE user_id = $1
		ORDER BY found_at DESC
	`, userID)
	return rows, err
}
