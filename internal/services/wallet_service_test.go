package services

import (
	"context"
	"errors"
	"testing"

	"mapshare/internal/models"
	"mapshare/internal/realtime"
)

func TestWalletCreditCreatesWalletAndLogsTransaction(t *testing.T) {
	ledger := newMemLedger(nil)
	feed := &recordingFeed{}
	svc := newTestWallet(ledger, feed)

	entry, err := svc.Credit(context.Background(), "user-1", 500, "Top up")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Balance != 500 || entry.Amount != 500 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(ledger.txns) != 1 || ledger.txns[0].Description != "Top up" {
		t.Fatalf("expected one transaction row, got %+v", ledger.txns)
	}
	if feed.count(realtime.TableWallets) != 1 {
		t.Fatal("expected a balance broadcast")
	}
	if feed.events[0].UserID != "user-1" || feed.events[0].Balance != "5.00" {
		t.Fatalf("unexpected wallet event: %+v", feed.events[0])
	}
}

func TestWalletDebitInsufficientFunds(t *testing.T) {
	ledger := newMemLedger(map[string]int64{"user-1": 10})
	feed := &recordingFeed{}
	svc := newTestWallet(ledger, feed)

	_, err := svc.Debit(context.Background(), "user-1", 11, "Paid message")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if ledger.balances["user-1"] != 10 {
		t.Fatalf("balance changed: %d", ledger.balances["user-1"])
	}
	if len(ledger.txns) != 0 {
		t.Fatal("expected no transaction row")
	}
	if len(feed.events) != 0 {
		t.Fatal("expected no broadcast on failure")
	}
}

func TestWalletRejectsNonPositiveAmounts(t *testing.T) {
	svc := newTestWallet(newMemLedger(nil), &recordingFeed{})
	for _, amount := range []int64{0, -5} {
		if _, err := svc.Credit(context.Background(), "u", amount, ""); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("credit %d: expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := svc.Debit(context.Background(), "u", amount, ""); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("debit %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestWalletTransferWritesTwoRows(t *testing.T) {
	ledger := newMemLedger(map[string]int64{"alice": 100})
	feed := &recordingFeed{}
	svc := newTestWallet(ledger, feed)

	entry, err := svc.Transfer(context.Background(), "alice", "bob", 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Balance != 60 || ledger.balances["bob"] != 40 {
		t.Fatalf("unexpected balances: %+v", ledger.balances)
	}
	if len(ledger.txns) != 2 || ledger.txns[0].Amount != -40 || ledger.txns[1].Amount != 40 {
		t.Fatalf("unexpected transactions: %+v", ledger.txns)
	}
	if feed.count(realtime.TableWallets) != 2 {
		t.Fatal("expected both parties to be notified")
	}
}

func TestWalletTransferRejectsSelf(t *testing.T) {
	svc := newTestWallet(newMemLedger(map[string]int64{"alice": 100}), &recordingFeed{})
	if _, err := svc.Transfer(context.Background(), "alice", "alice", 1); !errors.Is(err, ErrSelfPayment) {
		t.Fatalf("expected ErrSelfPayment, got %v", err)
	}
}

func TestWalletTransactionInsertFailureSurfaces(t *testing.T) {
	ledger := newMemLedger(map[string]int64{"alice": 100})
	ledger.createFn = func(models.Transaction) error { return errors.New("boom") }
	svc := newTestWallet(ledger, &recordingFeed{})
	if _, err := svc.Debit(context.Background(), "alice", 10, "x"); err == nil {
		t.Fatal("expected error")
	}
}
