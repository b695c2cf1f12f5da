package store

import (
	"context"

	"mapshare/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input models.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, description)
		VALUES ($1, $2, $3, $4)
	`, input.ID, input.UserID, input.Amount, input.Description)
	return err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, amount, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return rows, err
}

type PaymentRequestStore struct {
	db DB
}

func NewPaymentRequestStore(db DB) *PaymentRequestStore {
	return &PaymentRequestStore{db: db}
}

// Claim records a client request id. It reports false when the id was already used.
func (s *PaymentRequestStore) Claim(ctx context.Context, tx Execer, input models.PaymentRequest) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO payment_requests (id, user_id, transaction_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, input.ID, input.UserID, input.TransactionID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (s *PaymentRequestStore) Get(ctx context.Context, tx Getter, id string) (models.PaymentRequest, error) {
	if tx == nil {
		tx = s.db
	}
	var row models.PaymentRequest
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, transaction_id, created_at
		FROM payment_requests
		WHERE id = $1
	`, id)
	return row, err
}
