package link

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"finlink/internal/domain/ledger"
	"finlink/internal/infrastructure/bankfeed"
)

// Service owns the linked-item registry and the credential vault. Every
// credential that enters the service is encrypted before it reaches the
// repository and decrypted only on its way out to the feed client.
type Service struct {
	repo  ItemRepository
	enc   Encryptor
	feed  bankfeed.ClientInterface
	store ledger.Store
	scope CleanupScope
	log   zerolog.Logger
}

func NewService(repo ItemRepository, enc Encryptor, feed bankfeed.ClientInterface, store ledger.Store, scope CleanupScope, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		enc:   enc,
		feed:  feed,
		store: store,
		scope: scope,
		log:   log,
	}
}

// LinkAccount exchanges a short-lived public token for a durable
// credential, encrypts it, and registers the item for the user.
func (s *Service) LinkAccount(ctx context.Context, userID int64, publicToken, institutionID, institutionName string) (*LinkResult, error) {
	exchange, err := s.feed.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}

	encrypted, err := s.enc.Encrypt(exchange.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt credential: %w", err)
	}

	item, err := s.repo.Upsert(ctx, UpsertItemParams{
		UserID:              userID,
		EncryptedCredential: encrypted,
		RemoteItemID:        exchange.RemoteItemID,
		InstitutionID:       institutionID,
		InstitutionName:     institutionName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store linked item: %w", err)
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("remote_item_id", item.RemoteItemID).
		Str("institution", item.InstitutionName).
		Msg("linked account")

	return &LinkResult{
		RemoteItemID:    item.RemoteItemID,
		InstitutionName: item.InstitutionName,
	}, nil
}

// ListItems returns the user's linked items, oldest first.
func (s *Service) ListItems(ctx context.Context, userID int64) ([]*LinkedItem, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Credential decrypts and returns the stored access credential for an
// item. Callers must not persist or log the returned value.
func (s *Service) Credential(item *LinkedItem) (string, error) {
	token, err := s.enc.Decrypt(item.EncryptedCredential)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential for item %s: %w", item.RemoteItemID, err)
	}
	return token, nil
}

// AdvanceCursor persists the item's new sync cursor.
func (s *Service) AdvanceCursor(ctx context.Context, itemID int64, cursor string) error {
	return s.repo.AdvanceCursor(ctx, itemID, cursor)
}

// ListUserIDsWithItems returns users eligible for background syncs.
func (s *Service) ListUserIDsWithItems(ctx context.Context) ([]int64, error) {
	return s.repo.ListUserIDsWithItems(ctx)
}

// Disconnect revokes the credential upstream, deletes the item, and
// erases synced transactions according to the configured cleanup scope.
// A failed upstream revocation is logged and tolerated: the local
// cleanup is the part the user can observe, and it must happen even
// when the feed is unreachable.
func (s *Service) Disconnect(ctx context.Context, userID int64, remoteItemID string) (*DisconnectResult, error) {
	item, err := s.repo.GetByRemoteID(ctx, userID, remoteItemID)
	if err != nil {
		return nil, err
	}

	token, err := s.Credential(item)
	if err != nil {
		return nil, err
	}

	if err := s.feed.RemoveItem(ctx, token); err != nil {
		s.log.Warn().
			Err(err).
			Int64("user_id", userID).
			Str("remote_item_id", remoteItemID).
			Msg("upstream item removal failed, continuing with local cleanup")
	}

	var removed int64
	switch s.scope {
	case CleanupScopeItem:
		removed, err = s.store.DeleteRemoteForItem(ctx, userID, item.ID)
	default:
		removed, err = s.store.DeleteRemoteForUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete synced transactions: %w", err)
	}

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("failed to delete linked item: %w", err)
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("remote_item_id", remoteItemID).
		Int64("transactions_removed", removed).
		Str("scope", string(s.scope)).
		Msg("disconnected item")

	return &DisconnectResult{TransactionsRemoved: removed}, nil
}
