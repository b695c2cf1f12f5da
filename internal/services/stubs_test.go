package services

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"

	"mapshare/internal/logging"
	"mapshare/internal/models"
	"mapshare/internal/realtime"
	"mapshare/internal/storage"
	"mapshare/internal/store"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// memLedger is an in-memory wallet and transaction store.
type memLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	txns     []models.Transaction
	createFn func(input models.Transaction) error
}

func newMemLedger(balances map[string]int64) *memLedger {
	if balances == nil {
		balances = map[string]int64{}
	}
	return &memLedger{balances: balances}
}

func (m *memLedger) Balance(_ context.Context, _ store.Getter, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID], nil
}

func (m *memLedger) Credit(_ context.Context, _ store.Getter, userID string, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += amount
	return m.balances[userID], nil
}

func (m *memLedger) Debit(_ context.Context, _ store.Getter, userID string, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[userID] < amount {
		return 0, store.ErrInsufficientBalance
	}
	m.balances[userID] -= amount
	return m.balances[userID], nil
}

func (m *memLedger) Create(_ context.Context, _ store.Execer, input models.Transaction) error {
	if m.createFn != nil {
		if err := m.createFn(input); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, input)
	return nil
}

func (m *memLedger) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, tx := range m.txns {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type recordingFeed struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func (f *recordingFeed) Publish(event realtime.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *recordingFeed) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Table == table {
			n++
		}
	}
	return n
}

type stubFiles struct {
	uploadFn func(ctx context.Context, bucket storage.Bucket, name, contentType string, data []byte) (string, error)
	uploads   []string
	deleted   []string
	deleteErr error
}

func (s *stubFiles) Upload(ctx context.Context, bucket storage.Bucket, name, contentType string, data []byte) (string, error) {
	if s.uploadFn != nil {
		return s.uploadFn(ctx, bucket, name, contentType, data)
	}
	s.uploads = append(s.uploads, name)
	return name, nil
}

func (s *stubFiles) Delete(_ context.Context, _ storage.Bucket, path string) error {
	s.deleted = append(s.deleted, path)
	return s.deleteErr
}

func (s *stubFiles) PublicURL(bucket storage.Bucket, path string) string {
	return "http://files.test/" + string(bucket) + "/" + path
}

type stubMessageStore struct {
	insertManyFn  func(ctx context.Context, tx store.Execer, messages []models.Message) error
	getByIDFn     func(ctx context.Context, id string) (models.Message, error)
	byRequestFn   func(ctx context.Context, requestID string) ([]models.Message, error)
	markReadFn    func(ctx context.Context, id, receiverID string) (int64, error)
	setFeedbackFn func(ctx context.Context, id, receiverID, feedback string) (int64, error)
	inserted      []models.Message
}

func (s *stubMessageStore) InsertMany(ctx context.Context, tx store.Execer, messages []models.Message) error {
	if s.insertManyFn != nil {
		if err := s.insertManyFn(ctx, tx, messages); err != nil {
			return err
		}
	}
	s.inserted = append(s.inserted, messages...)
	return nil
}

func (s *stubMessageStore) GetByID(ctx context.Context, id string) (models.Message, error) {
	if s.getByIDFn == nil {
		return models.Message{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, id)
}

func (s *stubMessageStore) ListByPaymentRequest(ctx context.Context, _ store.Selecter, requestID string) ([]models.Message, error) {
	if s.byRequestFn == nil {
		return nil, nil
	}
	return s.byRequestFn(ctx, requestID)
}

func (s *stubMessageStore) ListInbox(context.Context, string) ([]models.Message, error) {
	return nil, nil
}

func (s *stubMessageStore) ListSent(context.Context, string) ([]models.Message, error) {
	return nil, nil
}

func (s *stubMessageStore) MarkRead(ctx context.Context, id, receiverID string) (int64, error) {
	if s.markReadFn == nil {
		return 1, nil
	}
	return s.markReadFn(ctx, id, receiverID)
}

func (s *stubMessageStore) SetFeedback(ctx context.Context, id, receiverID, feedback string) (int64, error) {
	if s.setFeedbackFn == nil {
		return 1, nil
	}
	return s.setFeedbackFn(ctx, id, receiverID, feedback)
}

type stubPaymentRequestStore struct {
	claimFn func(ctx context.Context, input models.PaymentRequest) (bool, error)
	getFn   func(ctx context.Context, id string) (models.PaymentRequest, error)
}

func (s stubPaymentRequestStore) Claim(ctx context.Context, _ store.Execer, input models.PaymentRequest) (bool, error) {
	if s.claimFn == nil {
		return true, nil
	}
	return s.claimFn(ctx, input)
}

func (s stubPaymentRequestStore) Get(ctx context.Context, _ store.Getter, id string) (models.PaymentRequest, error) {
	if s.getFn == nil {
		return models.PaymentRequest{}, sql.ErrNoRows
	}
	return s.getFn(ctx, id)
}

type stubTreasureStore struct {
	getByIDFn     func(ctx context.Context, id string) (models.Treasure, error)
	insertFoundFn func(ctx context.Context, treasureID, userID string) (bool, error)
	listFn        func(ctx context.Context) ([]models.Treasure, error)
	foundFn       func(ctx context.Context, userID string) ([]models.TreasureFound, error)
}

func (s stubTreasureStore) Create(_ context.Context, treasure models.Treasure) (models.Treasure, error) {
	return treasure, nil
}

func (s stubTreasureStore) GetByID(ctx context.Context, _ store.Getter, id string) (models.Treasure, error) {
	if s.getByIDFn == nil {
		return models.Treasure{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, id)
}

func (s stubTreasureStore) List(ctx context.Context) ([]models.Treasure, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubTreasureStore) InsertFound(ctx context.Context, _ store.Execer, treasureID, userID string) (bool, error) {
	if s.insertFoundFn == nil {
		return true, nil
	}
	return s.insertFoundFn(ctx, treasureID, userID)
}

func (s stubTreasureStore) ListFoundByUser(ctx context.Context, userID string) ([]models.TreasureFound, error) {
	if s.foundFn == nil {
		return nil, nil
	}
	return s.foundFn(ctx, userID)
}

type stubHotDealStore struct {
	deals    map[string]models.HotDeal
	createFn func(ctx context.Context, deal models.HotDeal) (models.HotDeal, error)
}

func (s *stubHotDealStore) Create(ctx context.Context, deal models.HotDeal) (models.HotDeal, error) {
	if s.createFn != nil {
		return s.createFn(ctx, deal)
	}
	if s.deals == nil {
		s.deals = map[string]models.HotDeal{}
	}
	s.deals[deal.ID] = deal
	return deal, nil
}

func (s *stubHotDealStore) GetByID(_ context.Context, id string) (models.HotDeal, error) {
	deal, ok := s.deals[id]
	if !ok {
		return models.HotDeal{}, sql.ErrNoRows
	}
	return deal, nil
}

func (s *stubHotDealStore) List(context.Context) ([]models.HotDeal, error) {
	out := make([]models.HotDeal, 0, len(s.deals))
	for _, d := range s.deals {
		out = append(out, d)
	}
	return out, nil
}

func (s *stubHotDealStore) Delete(_ context.Context, id, userID string) (int64, error) {
	deal, ok := s.deals[id]
	if !ok || deal.UserID != userID {
		return 0, nil
	}
	delete(s.deals, id)
	return 1, nil
}

type stubLocationStore struct {
	rows     []models.Location
	upsertFn func(ctx context.Context, loc models.Location) (models.Location, error)
	deleteFn func(ctx context.Context, userID string) (int64, error)
}

func (s stubLocationStore) Upsert(ctx context.Context, loc models.Location) (models.Location, error) {
	if s.upsertFn == nil {
		return loc, nil
	}
	return s.upsertFn(ctx, loc)
}

func (s stubLocationStore) Delete(ctx context.Context, userID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, userID)
}

func (s stubLocationStore) List(context.Context) ([]models.Location, error) {
	return s.rows, nil
}

func newTestWallet(ledger *memLedger, feed realtime.Publisher) *WalletService {
	return NewWalletService(fakeTxRunner{}, ledger, ledger, feed)
}

func newBufferLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return logger, &buf
}

func newTestMessageService(t *testing.T, ledger *memLedger, messages *stubMessageStore, requests stubPaymentRequestStore, files *stubFiles, feed *recordingFeed) *MessageService {
	t.Helper()
	svc, err := NewMessageService(fakeTxRunner{}, newTestWallet(ledger, feed), messages, requests, files, feed, nil, logging.Discard(), "0.10", 0)
	if err != nil {
		t.Fatalf("failed to build message service: %v", err)
	}
	return svc
}
