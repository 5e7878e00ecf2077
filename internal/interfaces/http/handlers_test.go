package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"finlink/internal/domain/link"
	"finlink/internal/domain/sync"
	"finlink/internal/infrastructure/bankfeed"
	"finlink/internal/shared/middleware"
)

type mockLinkService struct {
	linkAccountFunc func(ctx context.Context, userID int64, publicToken, institutionID, institutionName string) (*link.LinkResult, error)
	disconnectFunc  func(ctx context.Context, userID int64, remoteItemID string) (*link.DisconnectResult, error)
}

func (m *mockLinkService) LinkAccount(ctx context.Context, userID int64, publicToken, institutionID, institutionName string) (*link.LinkResult, error) {
	return m.linkAccountFunc(ctx, userID, publicToken, institutionID, institutionName)
}

func (m *mockLinkService) Disconnect(ctx context.Context, userID int64, remoteItemID string) (*link.DisconnectResult, error) {
	return m.disconnectFunc(ctx, userID, remoteItemID)
}

type mockReconciler struct {
	syncAllFunc func(ctx context.Context, userID int64) (*sync.SyncResult, error)
}

func (m *mockReconciler) SyncAll(ctx context.Context, userID int64) (*sync.SyncResult, error) {
	return m.syncAllFunc(ctx, userID)
}

type mockAggregator struct {
	listAccountsFunc func(ctx context.Context, userID int64) ([]sync.ItemAccounts, error)
}

func (m *mockAggregator) ListAccounts(ctx context.Context, userID int64) ([]sync.ItemAccounts, error) {
	return m.listAccountsFunc(ctx, userID)
}

func authedRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), 7))
}

func TestHandleLink(t *testing.T) {
	svc := &mockLinkService{
		linkAccountFunc: func(_ context.Context, userID int64, publicToken, institutionID, institutionName string) (*link.LinkResult, error) {
			if userID != 7 || publicToken != "public-abc" {
				t.Errorf("got user %d token %q, want 7/public-abc", userID, publicToken)
			}
			return &link.LinkResult{RemoteItemID: "item-1", InstitutionName: institutionName}, nil
		},
	}
	h := NewLinkHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleLink(rec, authedRequest(http.MethodPost, "/api/link",
		`{"publicToken":"public-abc","institutionId":"ins_1","institutionName":"Test Bank"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var result link.LinkResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.RemoteItemID != "item-1" || result.InstitutionName != "Test Bank" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleLink_MissingToken(t *testing.T) {
	h := NewLinkHandler(&mockLinkService{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleLink(rec, authedRequest(http.MethodPost, "/api/link", `{"institutionId":"ins_1"}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDisconnect_NotFound(t *testing.T) {
	svc := &mockLinkService{
		disconnectFunc: func(_ context.Context, _ int64, _ string) (*link.DisconnectResult, error) {
			return nil, link.ErrItemNotFound
		},
	}
	h := NewLinkHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleDisconnect(rec, authedRequest(http.MethodDelete, "/api/link", `{"itemId":"item-unknown"}`))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSync_FeedErrorMapsToBadGateway(t *testing.T) {
	r := &mockReconciler{
		syncAllFunc: func(_ context.Context, _ int64) (*sync.SyncResult, error) {
			return nil, &bankfeed.APIError{Status: 429, Code: "RATE_LIMIT_EXCEEDED", Message: "slow down"}
		},
	}
	h := NewSyncHandler(r, &mockAggregator{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleSync(rec, authedRequest(http.MethodPost, "/api/sync", ""))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandleSync_Counts(t *testing.T) {
	r := &mockReconciler{
		syncAllFunc: func(_ context.Context, userID int64) (*sync.SyncResult, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want 7", userID)
			}
			return &sync.SyncResult{Added: 5, Modified: 1, Removed: 2}, nil
		},
	}
	h := NewSyncHandler(r, &mockAggregator{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleSync(rec, authedRequest(http.MethodPost, "/api/sync", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result sync.SyncResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Added != 5 || result.Modified != 1 || result.Removed != 2 {
		t.Errorf("result = %+v, want 5/1/2", result)
	}
}

func TestHandleAccounts_EmptyListing(t *testing.T) {
	a := &mockAggregator{
		listAccountsFunc: func(_ context.Context, _ int64) ([]sync.ItemAccounts, error) {
			return nil, nil
		},
	}
	h := NewSyncHandler(&mockReconciler{}, a, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleAccounts(rec, authedRequest(http.MethodGet, "/api/accounts", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"items":[]}` {
		t.Errorf("body = %s, want empty items array", body)
	}
}

func TestHandlers_Unauthenticated(t *testing.T) {
	linkHandler := NewLinkHandler(&mockLinkService{}, zerolog.Nop())
	syncHandler := NewSyncHandler(&mockReconciler{}, &mockAggregator{}, zerolog.Nop())

	tests := []struct {
		name string
		call func(w http.ResponseWriter, r *http.Request)
	}{
		{"link", linkHandler.HandleLink},
		{"disconnect", linkHandler.HandleDisconnect},
		{"sync", syncHandler.HandleSync},
		{"accounts", syncHandler.HandleAccounts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.call(rec, httptest.NewRequest(http.MethodPost, "/api/x", nil))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
