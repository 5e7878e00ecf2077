package main

import (
	"github.com/rs/zerolog"

	"finlink/internal/domain/link"
	"finlink/internal/domain/sync"
	"finlink/internal/infrastructure/bankfeed"
	"finlink/internal/infrastructure/crypto"
	"finlink/internal/infrastructure/postgres"
	httphandlers "finlink/internal/interfaces/http"
	"finlink/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	LinkHandler *httphandlers.LinkHandler
	SyncHandler *httphandlers.SyncHandler

	// Domain services (for the scheduler job provider)
	LinkService *link.Service
	Reconciler  *sync.Reconciler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info().Msg("connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	itemRepo := postgres.NewItemRepository(db)
	transactionStore := postgres.NewTransactionStore(db)

	feedClient := bankfeed.NewClient(bankfeed.Config{
		BaseURL:  cfg.Feed.BaseURL,
		ClientID: cfg.Feed.ClientID,
		Secret:   cfg.Feed.Secret,
		Timeout:  cfg.Feed.Timeout,
	})

	linkService := link.NewService(
		itemRepo, encryptor, feedClient, transactionStore,
		link.CleanupScope(cfg.Disconnect.Scope), log,
	)
	reconciler := sync.NewReconciler(linkService, feedClient, transactionStore, log)
	aggregator := sync.NewAggregator(linkService, feedClient, log)

	return &Dependencies{
		DB:          db,
		LinkHandler: httphandlers.NewLinkHandler(linkService, log),
		SyncHandler: httphandlers.NewSyncHandler(reconciler, aggregator, log),
		LinkService: linkService,
		Reconciler:  reconciler,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
