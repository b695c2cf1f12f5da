package handlers

import (
	"context"
	"time"

	"mapshare/internal/auth"
	"mapshare/internal/models"
	"mapshare/internal/services"
	"mapshare/internal/storage"
	"mapshare/internal/store"

	"github.com/paulmach/orb/geojson"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, user models.User) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, tx store.Execer, profile models.Profile) error
	Get(ctx context.Context, userID string) (models.Profile, error)
}

type WalletService interface {
	Balance(ctx context.Context, userID string) (int64, error)
	History(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
	Credit(ctx context.Context, userID string, amount int64, description string) (services.LedgerEntry, error)
	Debit(ctx context.Context, userID string, amount int64, description string) (services.LedgerEntry, error)
	Transfer(ctx context.Context, senderID, receiverID string, amount int64) (services.LedgerEntry, error)
}

type MessageService interface {
	Fee() int64
	Send(ctx context.Context, req services.SendRequest) (services.SendResult, error)
	Inbox(ctx context.Context, userID string) ([]services.MessageView, error)
	Sent(ctx context.Context, userID string) ([]services.MessageView, error)
	Open(ctx context.Context, userID, messageID string) (services.MessageView, error)
	Rate(ctx context.Context, userID, messageID, feedback string) (services.MessageView, error)
}

type LocationService interface {
	Share(ctx context.Context, session auth.Session, latitude, longitude float64) (models.Location, error)
	Remove(ctx context.Context, session auth.Session) error
	List(ctx context.Context) ([]models.Location, error)
	Nearby(ctx context.Context, latitude, longitude, radius float64, filter models.VisibilityFilter) ([]services.NearbyLocation, error)
}

type HotDealService interface {
	Create(ctx context.Context, session auth.Session, input services.CreateDealInput, now time.Time) (services.DealView, error)
	List(ctx context.Context, now time.Time) ([]services.DealView, error)
	ListActive(ctx context.Context, now time.Time) ([]services.DealView, error)
	Delete(ctx context.Context, session auth.Session, id string) error
}

type TreasureService interface {
	Create(ctx context.Context, session auth.Session, input services.CreateTreasureInput) (models.Treasure, error)
	List(ctx context.Context, userID string) ([]services.TreasureView, error)
	Find(ctx context.Context, session auth.Session, treasureID string) (services.FindResult, error)
	QRCode(ctx context.Context, treasureID string) ([]byte, error)
}

type BusinessService interface {
	Upsert(ctx context.Context, session auth.Session, input services.BusinessProfileInput) (models.BusinessProfile, error)
	Get(ctx context.Context, userID string) (models.BusinessProfile, error)
	List(ctx context.Context) ([]models.BusinessProfile, error)
}

type MapSource interface {
	Features(filter models.VisibilityFilter) *geojson.FeatureCollection
	RefreshedAt() time.Time
}

type FileReader interface {
	Read(ctx context.Context, bucket storage.Bucket, path string) ([]byte, string, error)
}
