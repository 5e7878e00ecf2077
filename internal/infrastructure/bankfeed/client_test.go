package bankfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL:  srv.URL,
		ClientID: "test-client",
		Secret:   "test-secret",
	})
	return client, srv
}

func TestSyncTransactions_DecodesPage(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != syncPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Feed-Client-Id"); got != "test-client" {
			t.Errorf("Feed-Client-Id = %q, want test-client", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body["cursor"] != "c0" {
			t.Errorf("cursor = %q, want c0", body["cursor"])
		}

		json.NewEncoder(w).Encode(SyncPage{
			Added: []Delta{{
				TransactionID: "tx-1",
				Amount:        "42.50",
				Name:          "Coffee Shop",
				Date:          "2025-06-01",
				Category:      &StructuredCategory{Primary: "FOOD_AND_DRINK"},
			}},
			Removed:    []RemovedDelta{{TransactionID: "tx-0"}},
			NextCursor: "c1",
			HasMore:    true,
		})
	})
	defer srv.Close()

	page, err := client.SyncTransactions(context.Background(), "token", "c0")
	if err != nil {
		t.Fatalf("SyncTransactions() failed: %v", err)
	}

	if len(page.Added) != 1 || page.Added[0].TransactionID != "tx-1" {
		t.Errorf("Added = %+v, want one delta tx-1", page.Added)
	}
	if len(page.Removed) != 1 || page.Removed[0].TransactionID != "tx-0" {
		t.Errorf("Removed = %+v, want one delta tx-0", page.Removed)
	}
	if page.NextCursor != "c1" || !page.HasMore {
		t.Errorf("cursor/hasMore = %q/%v, want c1/true", page.NextCursor, page.HasMore)
	}
}

func TestSyncTransactions_APIError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{
			"error_code":    "RATE_LIMIT",
			"error_message": "too many requests",
		})
	})
	defer srv.Close()

	_, err := client.SyncTransactions(context.Background(), "token", "")
	if err == nil {
		t.Fatal("SyncTransactions() expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests || apiErr.Code != "RATE_LIMIT" {
		t.Errorf("APIError = %+v, want status 429 code RATE_LIMIT", apiErr)
	}
}

func TestExchangePublicToken(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ExchangeResult{
			AccessToken:  "access-123",
			RemoteItemID: "item-abc",
		})
	})
	defer srv.Close()

	result, err := client.ExchangePublicToken(context.Background(), "public-xyz")
	if err != nil {
		t.Fatalf("ExchangePublicToken() failed: %v", err)
	}
	if result.AccessToken != "access-123" || result.RemoteItemID != "item-abc" {
		t.Errorf("ExchangePublicToken() = %+v", result)
	}
}

func TestExchangePublicToken_IncompleteResponse(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "only-half"})
	})
	defer srv.Close()

	_, err := client.ExchangePublicToken(context.Background(), "public-xyz")
	if err == nil {
		t.Fatal("ExchangePublicToken() expected error for incomplete response")
	}
}

func TestGetAccounts(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"accounts": []Account{
				{AccountID: "acc-1", Name: "Checking", CurrentBalance: "1250.00", Currency: "USD"},
			},
		})
	})
	defer srv.Close()

	accounts, err := client.GetAccounts(context.Background(), "token")
	if err != nil {
		t.Fatalf("GetAccounts() failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].AccountID != "acc-1" {
		t.Errorf("GetAccounts() = %+v, want one account acc-1", accounts)
	}
}

func TestRemoveItem_ErrorTolerableByCaller(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error_code":    "ITEM_NOT_FOUND",
			"error_message": "item already removed",
		})
	})
	defer srv.Close()

	err := client.RemoveItem(context.Background(), "token")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("RemoveItem() error = %v, want *APIError", err)
	}
}
