package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"mapshare/internal/auth"
	"mapshare/internal/models"
	"mapshare/internal/realtime"
	"mapshare/internal/storage"
	"mapshare/internal/store"
	"mapshare/internal/validator"

	"github.com/google/uuid"
)

const maxDealHours = 720

type HotDealStore interface {
	Create(ctx context.Context, deal models.HotDeal) (models.HotDeal, error)
	GetByID(ctx context.Context, id string) (models.HotDeal, error)
	List(ctx context.Context) ([]models.HotDeal, error)
	Delete(ctx context.Context, id, userID string) (int64, error)
}

type CreateDealInput struct {
	Title         string
	Description   string
	StartTime     time.Time
	DurationHours int
	Image         *Attachment
}

type DealView struct {
	models.HotDeal
	Status   models.DealStatus `json:"status"`
	EndsAt   time.Time         `json:"ends_at"`
	ImageURL string            `json:"image_url,omitempty"`
}

type HotDealService struct {
	deals    HotDealStore
	files    FileStorage
	feed     realtime.Publisher
	logger   *slog.Logger
	maxBytes int64
}

func NewHotDealService(deals HotDealStore, files FileStorage, feed realtime.Publisher, logger *slog.Logger, maxBytes int64) *HotDealService {
	return &HotDealService{deals: deals, files: files, feed: feed, logger: logger, maxBytes: maxBytes}
}

func (s *HotDealService) Create(ctx context.Context, session auth.Session, input CreateDealInput, now time.Time) (DealView, error) {
	if !session.IsCompany {
		return DealView{}, ErrNotCompany
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || input.StartTime.IsZero() {
		return DealView{}, ErrInvalidDeal
	}
	if input.DurationHours <= 0 || input.DurationHours > maxDealHours {
		return DealView{}, ErrInvalidDeal
	}
	var imagePath *string
	if input.Image != nil {
		uploaded, err := uploadImage(ctx, s.files, storage.HotDeals, *input.Image, s.maxBytes)
		if err != nil {
			return DealView{}, err
		}
		imagePath = &uploaded
	}
	deal, err := s.deals.Create(ctx, models.HotDeal{
		ID:            uuid.NewString(),
		UserID:        session.UserID,
		Title:         input.Title,
		Description:   strings.TrimSpace(input.Description),
		StartTime:     input.StartTime.UTC(),
		DurationHours: input.DurationHours,
		ImagePath:     imagePath,
	})
	if err != nil {
		if imagePath != nil {
			removeImage(ctx, s.files, s.logger, storage.HotDeals, *imagePath)
		}
		return DealView{}, fmt.Errorf("create hot deal: %w", err)
	}
	s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableHotDeals, Op: realtime.OpInsert})
	return s.view(deal, now), nil
}

func (s *HotDealService) List(ctx context.Context, now time.Time) ([]DealView, error) {
	deals, err := s.deals.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DealView, 0, len(deals))
	for _, d := range deals {
		out = append(out, s.view(d, now))
	}
	return out, nil
}

func (s *HotDealService) ListActive(ctx context.Context, now time.Time) ([]DealView, error) {
	all, err := s.List(ctx, now)
	if err != nil {
		return nil, err
	}
	active := make([]DealView, 0, len(all))
	for _, d := range all {
		if d.Status == models.DealActive {
			active = append(active, d)
		}
	}
	return active, nil
}

// Delete is restricted to the deal's owner.
func (s *HotDealService) Delete(ctx context.Context, session auth.Session, id string) error {
	deal, err := s.deals.GetByID(ctx, id)
	if store.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if deal.UserID != session.UserID {
		return ErrForbidden
	}
	deleted, err := s.deals.Delete(ctx, id, session.UserID)
	if err != nil {
		return fmt.Errorf("delete hot deal: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	if deal.ImagePath != nil {
		removeImage(ctx, s.files, s.logger, storage.HotDeals, *deal.ImagePath)
	}
	s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableHotDeals, Op: realtime.OpDelete})
	return nil
}

func (s *HotDealService) view(d models.HotDeal, now time.Time) DealView {
	v := DealView{HotDeal: d, Status: d.Status(now), EndsAt: d.EndTime().UTC()}
	if d.ImagePath != nil {
		v.ImageURL = s.files.PublicURL(storage.HotDeals, *d.ImagePath)
	}
	return v
}

func uploadImage(ctx context.Context, files FileStorage, bucket storage.Bucket, img Attachment, maxBytes int64) (string, error) {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", ErrInvalidImage
	}
	if err := validator.ValidateAttachment(img.ContentType, int64(len(img.Data)), maxBytes); err != nil {
		return "", err
	}
	saved, err := files.Upload(ctx, bucket, uuid.NewString()+path.Ext(img.Name), img.ContentType, img.Data)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return saved, nil
}

// removeImage deletes a stored image. Failures leave an orphaned object and
// are only logged.
func removeImage(ctx context.Context, files FileStorage, logger *slog.Logger, bucket storage.Bucket, filePath string) {
	if err := files.Delete(ctx, bucket, filePath); err != nil {
		logger.Warn("failed to delete stored image", "bucket", string(bucket), "path", filePath, "error", err)
	}
}
