package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mapshare/internal/auth"
	"mapshare/internal/config"
	"mapshare/internal/logging"
	"mapshare/internal/middleware"
	"mapshare/internal/models"
	"mapshare/internal/realtime"
	"mapshare/internal/services"
	"mapshare/internal/storage"
	"mapshare/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb/geojson"
)

const (
	messageID      = "3f1b6c2d-8e4a-4d7b-9c05-6a2e1f3b4d01"
	treasureID     = "9e2d4b6a-1c3f-4a5e-8b7d-0f2c4e6a8b02"
	ownTreasureID  = "b4f6a8c0-2e4d-4b6f-9a1c-3e5f7a9b1c03"
	lostTreasureID = "d0a2c4e6-3f5b-4d7a-8c9e-1b3d5f7a9c04"
	shopID         = "e1c3a5b7-4d6f-4e8a-9b0c-2d4f6a8c0e05"
	ghostUserID    = "f2d4b6c8-5e7a-4f9b-8c1d-3e5a7b9c1d06"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, user models.User) error
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDFn    func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, user models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, user)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, sql.ErrNoRows
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, userID)
}

type stubProfileStore struct {
	upsertFn func(ctx context.Context, tx store.Execer, profile models.Profile) error
	getFn    func(ctx context.Context, userID string) (models.Profile, error)
}

func (s stubProfileStore) Upsert(ctx context.Context, tx store.Execer, profile models.Profile) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, tx, profile)
}

func (s stubProfileStore) Get(ctx context.Context, userID string) (models.Profile, error) {
	if s.getFn == nil {
		return models.Profile{}, sql.ErrNoRows
	}
	return s.getFn(ctx, userID)
}

type stubWallet struct {
	balanceFn  func(ctx context.Context, userID string) (int64, error)
	creditFn   func(ctx context.Context, userID string, amount int64, description string) (services.LedgerEntry, error)
	debitFn    func(ctx context.Context, userID string, amount int64, description string) (services.LedgerEntry, error)
	transferFn func(ctx context.Context, senderID, receiverID string, amount int64) (services.LedgerEntry, error)
	historyFn  func(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

func (s stubWallet) Balance(ctx context.Context, userID string) (int64, error) {
	if s.balanceFn == nil {
		return 0, nil
	}
	return s.balanceFn(ctx, userID)
}

func (s stubWallet) History(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, userID, limit, offset)
}

func (s stubWallet) Credit(ctx context.Context, userID string, amount int64, description string) (services.LedgerEntry, error) {
	if s.creditFn == nil {
		return services.LedgerEntry{Amount: amount, Balance: amount}, nil
	}
	return s.creditFn(ctx, userID, amount, description)
}

func (s stubWallet) Debit(ctx context.Context, userID string, amount int64, description string) (services.LedgerEntry, error) {
	if s.debitFn == nil {
		return services.LedgerEntry{Amount: -amount}, nil
	}
	return s.debitFn(ctx, userID, amount, description)
}

func (s stubWallet) Transfer(ctx context.Context, senderID, receiverID string, amount int64) (services.LedgerEntry, error) {
	if s.transferFn == nil {
		return services.LedgerEntry{Amount: -amount}, nil
	}
	return s.transferFn(ctx, senderID, receiverID, amount)
}

type stubMessages struct {
	sendFn func(ctx context.Context, req services.SendRequest) (services.SendResult, error)
	openFn func(ctx context.Context, userID, messageID string) (services.MessageView, error)
	rateFn func(ctx context.Context, userID, messageID, feedback string) (services.MessageView, error)
}

func (s stubMessages) Fee() int64 { return 10 }

func (s stubMessages) Send(ctx context.Context, req services.SendRequest) (services.SendResult, error) {
	if s.sendFn == nil {
		return services.SendResult{}, nil
	}
	return s.sendFn(ctx, req)
}

func (s stubMessages) Inbox(context.Context, string) ([]services.MessageView, error) {
	return []services.MessageView{}, nil
}

func (s stubMessages) Sent(context.Context, string) ([]services.MessageView, error) {
	return []services.MessageView{}, nil
}

func (s stubMessages) Open(ctx context.Context, userID, messageID string) (services.MessageView, error) {
	if s.openFn == nil {
		return services.MessageView{}, nil
	}
	return s.openFn(ctx, userID, messageID)
}

func (s stubMessages) Rate(ctx context.Context, userID, messageID, feedback string) (services.MessageView, error) {
	if s.rateFn == nil {
		return services.MessageView{}, nil
	}
	return s.rateFn(ctx, userID, messageID, feedback)
}

type stubLocations struct {
	shareFn func(ctx context.Context, session auth.Session, latitude, longitude float64) (models.Location, error)
}

func (s stubLocations) Share(ctx context.Context, session auth.Session, latitude, longitude float64) (models.Location, error) {
	if s.shareFn == nil {
		return models.Location{UserID: session.UserID, Latitude: latitude, Longitude: longitude}, nil
	}
	return s.shareFn(ctx, session, latitude, longitude)
}

func (s stubLocations) Remove(context.Context, auth.Session) error { return nil }

func (s stubLocations) List(context.Context) ([]models.Location, error) { return nil, nil }

func (s stubLocations) Nearby(context.Context, float64, float64, float64, models.VisibilityFilter) ([]services.NearbyLocation, error) {
	return nil, nil
}

type stubDeals struct {
	createFn func(ctx context.Context, session auth.Session, input services.CreateDealInput, now time.Time) (services.DealView, error)
	activeFn func(ctx context.Context, now time.Time) ([]services.DealView, error)
}

func (s stubDeals) Create(ctx context.Context, session auth.Session, input services.CreateDealInput, now time.Time) (services.DealView, error) {
	if s.createFn == nil {
		return services.DealView{}, nil
	}
	return s.createFn(ctx, session, input, now)
}

func (s stubDeals) List(context.Context, time.Time) ([]services.DealView, error) {
	return []services.DealView{}, nil
}

func (s stubDeals) ListActive(ctx context.Context, now time.Time) ([]services.DealView, error) {
	if s.activeFn == nil {
		return []services.DealView{}, nil
	}
	return s.activeFn(ctx, now)
}

func (s stubDeals) Delete(context.Context, auth.Session, string) error { return nil }

type stubTreasures struct {
	findFn func(ctx context.Context, session auth.Session, treasureID string) (services.FindResult, error)
}

func (s stubTreasures) Create(_ context.Context, session auth.Session, input services.CreateTreasureInput) (models.Treasure, error) {
	return models.Treasure{CreatedBy: session.UserID, RewardAmount: input.RewardAmount}, nil
}

func (s stubTreasures) List(context.Context, string) ([]services.TreasureView, error) {
	return []services.TreasureView{}, nil
}

func (s stubTreasures) Find(ctx context.Context, session auth.Session, treasureID string) (services.FindResult, error) {
	if s.findFn == nil {
		return services.FindResult{}, nil
	}
	return s.findFn(ctx, session, treasureID)
}

func (s stubTreasures) QRCode(context.Context, string) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

type stubBusinesses struct {
	getFn func(ctx context.Context, userID string) (models.BusinessProfile, error)
}

func (s stubBusinesses) Upsert(_ context.Context, session auth.Session, input services.BusinessProfileInput) (models.BusinessProfile, error) {
	return models.BusinessProfile{UserID: session.UserID, Name: input.Name}, nil
}

func (s stubBusinesses) Get(ctx context.Context, userID string) (models.BusinessProfile, error) {
	if s.getFn == nil {
		return models.BusinessProfile{}, services.ErrNotFound
	}
	return s.getFn(ctx, userID)
}

func (s stubBusinesses) List(context.Context) ([]models.BusinessProfile, error) {
	return []models.BusinessProfile{}, nil
}

type stubMap struct {
	filters     []models.VisibilityFilter
	refreshedAt time.Time
}

func (s *stubMap) Features(filter models.VisibilityFilter) *geojson.FeatureCollection {
	s.filters = append(s.filters, filter)
	return geojson.NewFeatureCollection()
}

func (s *stubMap) RefreshedAt() time.Time { return s.refreshedAt }

type stubFiles struct {
	readFn func(ctx context.Context, bucket storage.Bucket, path string) ([]byte, string, error)
}

func (s stubFiles) Read(ctx context.Context, bucket storage.Bucket, path string) ([]byte, string, error) {
	if s.readFn == nil {
		return nil, "", storage.ErrNotFound
	}
	return s.readFn(ctx, bucket, path)
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
		MapAccessToken: "pk.test",
		ClusterRadius:  50,
		ClusterMaxZoom: 14,
		MaxUploadBytes: 5 * 1024 * 1024,
	}
}

// newTestHandler fills every dependency left empty in deps with a stub.
func newTestHandler(deps Deps) *Handler {
	if deps.TxRunner == nil {
		deps.TxRunner = fakeTxRunner{}
	}
	if deps.Users == nil {
		deps.Users = stubUserStore{}
	}
	if deps.Profiles == nil {
		deps.Profiles = stubProfileStore{}
	}
	if deps.Wallet == nil {
		deps.Wallet = stubWallet{}
	}
	if deps.Messages == nil {
		deps.Messages = stubMessages{}
	}
	if deps.Locations == nil {
		deps.Locations = stubLocations{}
	}
	if deps.HotDeals == nil {
		deps.HotDeals = stubDeals{}
	}
	if deps.Treasures == nil {
		deps.Treasures = stubTreasures{}
	}
	if deps.Businesses == nil {
		deps.Businesses = stubBusinesses{}
	}
	if deps.Map == nil {
		deps.Map = &stubMap{}
	}
	if deps.Files == nil {
		deps.Files = stubFiles{}
	}
	if deps.Hub == nil {
		deps.Hub = realtime.NewHub()
	}
	return New(testConfig(), logging.Discard(), deps)
}

func testToken(t *testing.T, session auth.Session) string {
	t.Helper()
	token, err := auth.GenerateToken("secret", session, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// serve runs req through the full router, authenticated as session when its
// UserID is set.
func serve(t *testing.T, h *Handler, req *http.Request, session auth.Session) *httptest.ResponseRecorder {
	t.Helper()
	if session.UserID != "" {
		req.Header.Set("Authorization", "Bearer "+testToken(t, session))
	}
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	return rr
}

func serveWithAuth(t *testing.T, handler http.HandlerFunc, session auth.Session, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+testToken(t, session))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}
