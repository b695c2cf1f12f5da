package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"mapshare/internal/auth"
	"mapshare/internal/logging"
	"mapshare/internal/models"
)

type memBusinessStore struct {
	rows      map[string]models.BusinessProfile
	upsertErr error
}

func (m *memBusinessStore) Upsert(_ context.Context, profile models.BusinessProfile) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.rows == nil {
		m.rows = map[string]models.BusinessProfile{}
	}
	if existing, ok := m.rows[profile.UserID]; ok && profile.ImagePath == nil {
		profile.ImagePath = existing.ImagePath
	}
	m.rows[profile.UserID] = profile
	return nil
}

func (m *memBusinessStore) Get(_ context.Context, userID string) (models.BusinessProfile, error) {
	row, ok := m.rows[userID]
	if !ok {
		return models.BusinessProfile{}, sql.ErrNoRows
	}
	return row, nil
}

func (m *memBusinessStore) List(context.Context) ([]models.BusinessProfile, error) {
	out := make([]models.BusinessProfile, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

func TestBusinessUpsertKeepsImage(t *testing.T) {
	profiles := &memBusinessStore{}
	files := &stubFiles{}
	svc := NewBusinessService(profiles, files, logging.Discard(), 0)

	first, err := svc.Upsert(context.Background(), company, BusinessProfileInput{
		Description: "Fresh bread",
		Image:       &Attachment{Name: "logo.png", ContentType: "image/png", Data: []byte("png")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name != "Bakery" || first.ImageURL == "" {
		t.Fatalf("unexpected profile: %+v", first)
	}
	second, err := svc.Upsert(context.Background(), company, BusinessProfileInput{Name: "Bakery & Co"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Name != "Bakery & Co" || second.ImageURL != first.ImageURL {
		t.Fatalf("expected image to persist: %+v", second)
	}
}

func TestBusinessUpsertRequiresCompany(t *testing.T) {
	svc := NewBusinessService(&memBusinessStore{}, &stubFiles{}, logging.Discard(), 0)
	if _, err := svc.Upsert(context.Background(), auth.Session{UserID: "u"}, BusinessProfileInput{Name: "x"}); !errors.Is(err, ErrNotCompany) {
		t.Fatalf("expected ErrNotCompany, got %v", err)
	}
	if _, err := svc.Upsert(context.Background(), auth.Session{UserID: "c", IsCompany: true}, BusinessProfileInput{}); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBusinessUpsertFailureRemovesNewImage(t *testing.T) {
	logger, logs := newBufferLogger(t)
	files := &stubFiles{deleteErr: errors.New("bucket offline")}
	svc := NewBusinessService(&memBusinessStore{upsertErr: errors.New("insert failed")}, files, logger, 0)

	_, err := svc.Upsert(context.Background(), company, BusinessProfileInput{
		Image: &Attachment{Name: "logo.png", ContentType: "image/png", Data: []byte("png")},
	})
	if err == nil || !strings.Contains(err.Error(), "insert failed") {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(files.deleted) != 1 || files.deleted[0] != files.uploads[0] {
		t.Fatalf("expected uploaded image delete attempted, uploads=%v deleted=%v", files.uploads, files.deleted)
	}
	if !strings.Contains(logs.String(), "failed to delete stored image") {
		t.Fatalf("expected cleanup warning, got %s", logs.String())
	}
}
