package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mapshare/internal/db"
	"mapshare/internal/models"
	"mapshare/internal/money"
	"mapshare/internal/realtime"
	"mapshare/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type WalletStore interface {
	Balance(ctx context.Context, q store.Getter, userID string) (int64, error)
	Credit(ctx context.Context, tx store.Getter, userID string, amount int64) (int64, error)
	Debit(ctx context.Context, tx store.Getter, userID string, amount int64) (int64, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input models.Transaction) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

// WalletService owns every balance mutation. Each mutation and its
// transaction row commit together.
type WalletService struct {
	txRunner db.TxRunner
	wallets  WalletStore
	txStore  TransactionStore
	feed     realtime.Publisher
}

func NewWalletService(txRunner db.TxRunner, wallets WalletStore, txStore TransactionStore, feed realtime.Publisher) *WalletService {
	return &WalletService{
		txRunner: txRunner,
		wallets:  wallets,
		txStore:  txStore,
		feed:     feed,
	}
}

type LedgerEntry struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Balance       int64  `json:"balance"`
}

func (s *WalletService) Balance(ctx context.Context, userID string) (int64, error) {
	return s.wallets.Balance(ctx, nil, userID)
}

func (s *WalletService) History(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.txStore.ListByUser(ctx, userID, limit, offset)
}

func (s *WalletService) Credit(ctx context.Context, userID string, amount int64, description string) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, ErrInvalidAmount
	}
	return s.mutate(ctx, userID, amount, description)
}

func (s *WalletService) Debit(ctx context.Context, userID string, amount int64, description string) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, ErrInvalidAmount
	}
	return s.mutate(ctx, userID, -amount, description)
}

func (s *WalletService) mutate(ctx context.Context, userID string, delta int64, description string) (LedgerEntry, error) {
	var entry LedgerEntry
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		entry, err = s.apply(ctx, tx, userID, delta, description)
		return err
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	s.announce(userID, entry.Balance)
	return entry, nil
}

// Transfer moves amount from sender to receiver in one transaction.
func (s *WalletService) Transfer(ctx context.Context, senderID, receiverID string, amount int64) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, ErrInvalidAmount
	}
	if senderID == receiverID {
		return LedgerEntry{}, ErrSelfPayment
	}
	var debit, credit LedgerEntry
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		debit, err = s.apply(ctx, tx, senderID, -amount, "Payment to user "+receiverID)
		if err != nil {
			return err
		}
		credit, err = s.apply(ctx, tx, receiverID, amount, "Payment from user "+senderID)
		return err
	})
	if err != nil {
		return LedgerEntry{}, err
	}
	s.announce(senderID, debit.Balance)
	s.announce(receiverID, credit.Balance)
	return debit, nil
}

// apply runs inside the caller's transaction. Negative deltas are debits.
func (s *WalletService) apply(ctx context.Context, tx *sqlx.Tx, userID string, delta int64, description string) (LedgerEntry, error) {
	var balance int64
	var err error
	if delta < 0 {
		balance, err = s.wallets.Debit(ctx, tx, userID, -delta)
	} else {
		balance, err = s.wallets.Credit(ctx, tx, userID, delta)
	}
	if errors.Is(err, store.ErrInsufficientBalance) {
		return LedgerEntry{}, ErrInsufficientFunds
	}
	if err != nil {
		return LedgerEntry{}, fmt.Errorf("update wallet: %w", err)
	}
	txID := uuid.NewString()
	if err := s.txStore.Create(ctx, tx, models.Transaction{
		ID:          txID,
		UserID:      userID,
		Amount:      delta,
		Description: description,
	}); err != nil {
		return LedgerEntry{}, fmt.Errorf("insert transaction: %w", err)
	}
	return LedgerEntry{TransactionID: txID, Amount: delta, Balance: balance}, nil
}

func (s *WalletService) announce(userID string, balance int64) {
	s.feed.Publish(realtime.ChangeEvent{
		Table:   realtime.TableWallets,
		Op:      realtime.OpUpdate,
		UserID:  userID,
		Balance: money.FormatMinor(balance),
		At:      time.Now().UTC(),
	})
}
