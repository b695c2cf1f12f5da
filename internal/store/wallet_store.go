package store

import (
	"context"
	"database/sql"
	"errors"
)

type WalletStore struct {
	db DB
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

// Balance returns zero for users that have never been credited.
func (s *WalletStore) Balance(ctx context.Context, q Getter, userID string) (int64, error) {
	if q == nil {
		q = s.db
	}
	var balance int64
	err := q.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

// Credit creates the wallet on first use.
func (s *WalletStore) Credit(ctx context.Context, tx Getter, userID string, amount int64) (int64, error) {
	var balance int64
	err := tx.GetContext(ctx, &balance, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`, userID, amount)
	return balance, err
}

// Debit is a single conditional update; it never lets the balance go below zero.
func (s *WalletStore) Debit(ctx context.Context, tx Getter, userID string, amount int64) (int64, error) {
	var balance int64
	err := tx.GetContext(ctx, &balance, `
		UPDATE wallets
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance
	`, userID, amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientBalance
	}
	return balance, err
}
