package sync

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"finlink/internal/domain/link"
	"finlink/internal/infrastructure/bankfeed"
)

func TestListAccounts_PartialFailure(t *testing.T) {
	registry := &mockRegistry{
		listItemsFunc: func(_ context.Context, _ int64) ([]*link.LinkedItem, error) {
			return []*link.LinkedItem{
				{ID: 3, UserID: 7, RemoteItemID: "item-1", InstitutionName: "Good Bank"},
				{ID: 4, UserID: 7, RemoteItemID: "item-2", InstitutionName: "Flaky Bank"},
			}, nil
		},
	}
	feed := &mockFeed{
		getAccountsFunc: func(_ context.Context, accessToken string) ([]bankfeed.Account, error) {
			if accessToken == "token-item-2" {
				return nil, &bankfeed.APIError{Status: 500, Code: "INTERNAL_SERVER_ERROR", Message: "institution down"}
			}
			return []bankfeed.Account{
				{AccountID: "acc-1", Name: "Checking", CurrentBalance: "1523.40", Currency: "USD"},
			}, nil
		},
	}

	a := NewAggregator(registry, feed, zerolog.Nop())

	results, err := a.ListAccounts(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListAccounts() failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d entries, want 2", len(results))
	}

	good := results[0]
	if good.RemoteItemID != "item-1" || good.Error != "" || len(good.Accounts) != 1 {
		t.Errorf("healthy item = %+v, want one account and no error", good)
	}

	bad := results[1]
	if bad.RemoteItemID != "item-2" || bad.Error == "" || len(bad.Accounts) != 0 {
		t.Errorf("failing item = %+v, want captured error and no accounts", bad)
	}
	if !strings.Contains(bad.Error, "institution down") {
		t.Errorf("captured error = %q, want the upstream message", bad.Error)
	}
}

func TestListAccounts_CredentialFailureCaptured(t *testing.T) {
	registry := &mockRegistry{
		listItemsFunc: func(_ context.Context, _ int64) ([]*link.LinkedItem, error) {
			return []*link.LinkedItem{
				{ID: 3, UserID: 7, RemoteItemID: "item-1", InstitutionName: "Test Bank"},
			}, nil
		},
		credentialFunc: func(_ *link.LinkedItem) (string, error) {
			return "", errors.New("ciphertext corrupt")
		},
	}
	feed := &mockFeed{
		getAccountsFunc: func(_ context.Context, _ string) ([]bankfeed.Account, error) {
			t.Error("feed called despite credential failure")
			return nil, nil
		},
	}

	a := NewAggregator(registry, feed, zerolog.Nop())

	results, err := a.ListAccounts(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListAccounts() failed: %v", err)
	}
	if len(results) != 1 || results[0].Error == "" {
		t.Errorf("results = %+v, want one entry with captured error", results)
	}
}

func TestListAccounts_NoItems(t *testing.T) {
	registry := &mockRegistry{
		listItemsFunc: func(_ context.Context, _ int64) ([]*link.LinkedItem, error) {
			return nil, nil
		},
	}

	a := NewAggregator(registry, &mockFeed{}, zerolog.Nop())

	results, err := a.ListAccounts(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListAccounts() failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d entries, want empty listing", len(results))
	}
}
