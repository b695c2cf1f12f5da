package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mapshare/internal/auth"
	"mapshare/internal/db"
	"mapshare/internal/models"
	"mapshare/internal/realtime"
	"mapshare/internal/store"
	"mapshare/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

const (
	FindFound        = "found"
	FindAlreadyFound = "already_found"
)

var errAlreadyFound = errors.New("treasure already found")

type TreasureStore interface {
	Create(ctx context.Context, treasure models.Treasure) (models.Treasure, error)
	GetByID(ctx context.Context, tx store.Getter, id string) (models.Treasure, error)
	List(ctx context.Context) ([]models.Treasure, error)
	InsertFound(ctx context.Context, tx store.Execer, treasureID, userID string) (bool, error)
	ListFoundByUser(ctx context.Context, userID string) ([]models.TreasureFound, error)
}

type CreateTreasureInput struct {
	Latitude     float64
	Longitude    float64
	RewardAmount int64
	Hint         string
}

type TreasureView struct {
	models.Treasure
	Found bool `json:"found"`
}

type FindResult struct {
	Status  string `json:"status"`
	Reward  int64  `json:"reward"`
	Balance int64  `json:"balance"`
}

type TreasureService struct {
	txRunner  db.TxRunner
	wallet    *WalletService
	treasures TreasureStore
	feed      realtime.Publisher
	baseURL   string
}

func NewTreasureService(txRunner db.TxRunner, wallet *WalletService, treasures TreasureStore, feed realtime.Publisher, publicBaseURL string) *TreasureService {
	return &TreasureService{
		txRunner:  txRunner,
		wallet:    wallet,
		treasures: treasures,
		feed:      feed,
		baseURL:   strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *TreasureService) Create(ctx context.Context, session auth.Session, input CreateTreasureInput) (models.Treasure, error) {
	if err := validator.ValidateCoordinates(input.Latitude, input.Longitude); err != nil {
		return models.Treasure{}, err
	}
	if input.RewardAmount <= 0 {
		return models.Treasure{}, ErrInvalidTreasure
	}
	treasure, err := s.treasures.Create(ctx, models.Treasure{
		ID:           uuid.NewString(),
		CreatedBy:    session.UserID,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		RewardAmount: input.RewardAmount,
		Hint:         strings.TrimSpace(input.Hint),
	})
	if err != nil {
		return models.Treasure{}, fmt.Errorf("create treasure: %w", err)
	}
	s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableTreasures, Op: realtime.OpInsert})
	return treasure, nil
}

// List marks the treasures userID has already claimed.
func (s *TreasureService) List(ctx context.Context, userID string) ([]TreasureView, error) {
	treasures, err := s.treasures.List(ctx)
	if err != nil {
		return nil, err
	}
	found, err := s.treasures.ListFoundByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	claimed := make(map[string]struct{}, len(found))
	for _, f := range found {
		claimed[f.TreasureID] = struct{}{}
	}
	out := make([]TreasureView, 0, len(treasures))
	for _, t := range treasures {
		_, ok := claimed[t.ID]
		out = append(out, TreasureView{Treasure: t, Found: ok})
	}
	return out, nil
}

// Find records the claim and pays the reward in one transaction. A repeated
// claim reports already_found and pays nothing.
func (s *TreasureService) Find(ctx context.Context, session auth.Session, treasureID string) (FindResult, error) {
	var result FindResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		treasure, err := s.treasures.GetByID(ctx, tx, treasureID)
		if store.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if treasure.CreatedBy == session.UserID {
			return ErrOwnTreasure
		}
		inserted, err := s.treasures.InsertFound(ctx, tx, treasureID, session.UserID)
		if err != nil {
			return err
		}
		if !inserted {
			return errAlreadyFound
		}
		entry, err := s.wallet.apply(ctx, tx, session.UserID, treasure.RewardAmount, "Treasure found: "+treasure.ID)
		if err != nil {
			return err
		}
		result = FindResult{Status: FindFound, Reward: treasure.RewardAmount, Balance: entry.Balance}
		return nil
	})
	if errors.Is(err, errAlreadyFound) || db.IsUniqueViolation(err) {
		balance, balErr := s.wallet.Balance(ctx, session.UserID)
		if balErr != nil {
			return FindResult{}, balErr
		}
		return FindResult{Status: FindAlreadyFound, Balance: balance}, nil
	}
	if err != nil {
		return FindResult{}, err
	}
	s.wallet.announce(session.UserID, result.Balance)
	return result, nil
}

func (s *TreasureService) ClaimURL(treasureID string) string {
	return s.baseURL + "/treasure/" + treasureID
}

// QRCode renders the claim URL of an existing treasure as a PNG.
func (s *TreasureService) QRCode(ctx context.Context, treasureID string) ([]byte, error) {
	if _, err := s.treasures.GetByID(ctx, nil, treasureID); err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	png, err := qrcode.Encode(s.ClaimURL(treasureID), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
