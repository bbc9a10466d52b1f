package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/codex/internal/backend/assets"
	"github.com/jo-hoe/codex/internal/backend/database"
	"github.com/jo-hoe/codex/internal/backend/notify"
	"github.com/jo-hoe/codex/internal/catalog"
	"github.com/jo-hoe/codex/internal/metrics"
)

// CoreService owns the entry store, the image store and the change publisher.
// It satisfies the store contract used by the dispatcher and announces every
// committed mutation.
type CoreService struct {
	config          *ServiceConfig
	databaseService database.EntryStore
	publisher       notify.Publisher
	resolver        *assets.Resolver
	images          *assets.ImageStore
	now             func() time.Time
}

// NewCoreService opens the entry store and the asset directories. A failure
// here is a startup failure.
func NewCoreService(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(ctx, config)
	if err != nil {
		return nil, err
	}

	resolver, err := assets.NewResolver(config.Storage.Root)
	if err != nil {
		_ = databaseService.Close()
		return nil, err
	}
	images, err := assets.NewImageStore(resolver)
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}

	publisher := notify.NewPublisher(notify.Config{
		Address:  config.Redis.Address,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
		Channel:  config.Redis.Channel,
	})

	return newCoreService(config, databaseService, publisher, resolver, images), nil
}

func newCoreService(config *ServiceConfig, databaseService database.EntryStore, publisher notify.Publisher,
	resolver *assets.Resolver, images *assets.ImageStore) *CoreService {
	return &CoreService{
		config:          config,
		databaseService: databaseService,
		publisher:       publisher,
		resolver:        resolver,
		images:          images,
		now:             time.Now,
	}
}

func getDatabaseService(ctx context.Context, config *ServiceConfig) (database.EntryStore, error) {
	databaseService, err := database.NewDatabase(ctx, config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

func (service *CoreService) Images() *assets.ImageStore {
	return service.images
}

func (service *CoreService) Resolver() *assets.Resolver {
	return service.resolver
}

func (service *CoreService) Exists(ctx context.Context, sku string) (bool, error) {
	return service.databaseService.Exists(ctx, sku)
}

func (service *CoreService) Get(ctx context.Context, sku string) (catalog.Entry, error) {
	return service.databaseService.Get(ctx, sku)
}

func (service *CoreService) List(ctx context.Context) ([]catalog.Entry, error) {
	return service.databaseService.List(ctx)
}

func (service *CoreService) Upsert(ctx context.Context, entry catalog.Entry) error {
	err := service.databaseService.Upsert(ctx, entry)
	metrics.ObserveStoreMutation(string(notify.EventUpsert), err)
	if err != nil {
		return err
	}
	service.announce(ctx, notify.EventUpsert, entry.SKU)
	return nil
}

func (service *CoreService) Delete(ctx context.Context, sku string) error {
	err := service.databaseService.Delete(ctx, sku)
	metrics.ObserveStoreMutation(string(notify.EventDelete), err)
	if err != nil {
		return err
	}
	service.announce(ctx, notify.EventDelete, sku)
	return nil
}

// announce publishes a change event. The mutation is already committed, so a
// failed publish is only logged.
func (service *CoreService) announce(ctx context.Context, kind notify.EventKind, sku string) {
	event := notify.Event{Kind: kind, SKU: sku, At: service.now().UTC()}
	if err := service.publisher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish change event", "kind", kind, "sku", sku, "error", err)
	}
}

func (service *CoreService) Close() error {
	return errors.Join(service.publisher.Close(), service.databaseService.Close())
}
