package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"mapshare/internal/models"
)

func TestMessageStoreInsertMany(t *testing.T) {
	calls := 0
	exec := stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO messages") || !strings.Contains(query, "FALSE") {
				t.Fatalf("unexpected query: %s", query)
			}
			calls++
			return stubResult{rows: 1}, nil
		},
	}
	messages := []models.Message{
		{ID: "m1", SenderID: "s", ReceiverID: "r1", FilePath: "f", FileType: "image/png", PaymentRequestID: "p"},
		{ID: "m2", SenderID: "s", ReceiverID: "r2", FilePath: "f", FileType: "image/png", PaymentRequestID: "p"},
	}
	if err := NewMessageStore(stubDB{}).InsertMany(context.Background(), exec, messages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 inserts, got %d", calls)
	}
}

func TestMessageStoreSetFeedbackOnce(t *testing.T) {
	s := NewMessageStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "feedback IS NULL") {
				t.Fatalf("feedback must be one-shot: %s", query)
			}
			if args[2] != models.FeedbackInterested {
				t.Fatalf("unexpected feedback arg: %#v", args)
			}
			return stubResult{rows: 0}, nil
		},
	})
	rows, err := s.SetFeedback(context.Background(), "m1", "r1", models.FeedbackInterested)
	if err != nil || rows != 0 {
		t.Fatalf("expected 0 rows, got %d (%v)", rows, err)
	}
}
