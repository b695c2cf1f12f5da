package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestTreasureStoreInsertFound(t *testing.T) {
	affected := int64(1)
	exec := stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "ON CONFLICT (treasure_id, user_id) DO NOTHING") {
				t.Fatalf("unexpected query: %s", query)
			}
			return stubResult{rows: affected}, nil
		},
	}
	s := NewTreasureStore(stubDB{})
	first, err := s.InsertFound(context.Background(), exec, "t1", "u1")
	if err != nil || !first {
		t.Fatalf("expected first claim, got %v (%v)", first, err)
	}
	affected = 0
	again, err := s.InsertFound(context.Background(), exec, "t1", "u1")
	if err != nil || again {
		t.Fatalf("expected duplicate claim to be reported, got %v (%v)", again, err)
	}
}
