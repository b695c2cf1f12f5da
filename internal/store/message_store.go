package store

import (
	"context"

	"mapshare/internal/models"
)

type MessageStore struct {
	db DB
}

func NewMessageStore(db DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) InsertMany(ctx context.Context, tx Execer, messages []models.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, file_path, file_type, read, payment_request_id)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`
	for _, m := range messages {
		if _, err := tx.ExecContext(ctx, query, m.ID, m.SenderID, m.ReceiverID, m.FilePath, m.FileType, m.PaymentRequestID); err != nil {
			return err
		}
	}
	return nil
}

const messageColumns = `id, sender_id, receiver_id, file_path, file_type, read, feedback, payment_request_id, created_at`

func (s *MessageStore) GetByID(ctx context.Context, id string) (models.Message, error) {
	var row models.Message
	err := s.db.GetContext(ctx, &row, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	return row, err
}

func (s *MessageStore) ListByPaymentRequest(ctx context.Context, q Selecter, requestID string) ([]models.Message, error) {
	if q == nil {
		q = s.db
	}
	var rows []models.Message
	err := q.SelectContext(ctx, &rows, `SELECT `+messageColumns+` FROM messages WHERE payment_request_id = $1 ORDER BY receiver_id`, requestID)
	return rows, err
}

func (s *MessageStore) ListInbox(ctx context.Context, userID string) ([]models.Message, error) {
	var rows []models.Message
	err := s.db.SelectContext(ctx, &rows, `SELECT `+messageColumns+` FROM messages WHERE receiver_id = $1 ORDER BY created_at DESC`, userID)
	return rows, err
}

func (s *MessageStore) ListSent(ctx context.Context, userID string) ([]models.Message, error) {
	var rows []models.Message
	err := s.db.SelectContext(ctx, &rows, `SELECT `+messageColumns+` FROM messages WHERE sender_id = $1 ORDER BY created_at DESC`, userID)
	return rows, err
}

func (s *MessageStore) MarkRead(ctx context.Context, id, receiverID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE messages SET read = TRUE WHERE id = $1 AND receiver_id = $2`, id, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetFeedback only writes when no feedback has been recorded yet.
func (s *MessageStore) SetFeedback(ctx context.Context, id, receiverID, feedback string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages
		SET feedback = $3, read = TRUE
		WHERE id = $1 AND receiver_id = $2 AND feedback IS NULL
	`, id, receiverID, feedback)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
