package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-storage-sync/internal/adapter"
	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/crypto"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/internal/telemetry"
	"github.com/MKhiriev/go-storage-sync/internal/updater"
	"github.com/MKhiriev/go-storage-sync/internal/workers"
	"github.com/MKhiriev/go-storage-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(buildInfo)

	log := logger.NewClientLogger("storage-sync-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" && buildInfo.Known() {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err = run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("client run error")
	}
	log.Info().Msg("client stopped")
}

func run(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Err(err).Msg("telemetry shutdown")
		}
	}()

	storages, err := store.NewClientStorages(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("create local storage: %w", err)
	}
	defer storages.Close()

	keyChain := crypto.NewKeyChainService()
	keys := service.NewDeviceKeyStore(storages.KV)

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, cfg.App, keyChain, keys, log)
	if err != nil {
		return fmt.Errorf("create remote store adapter: %w", err)
	}
	messenger, err := adapter.NewHTTPSyncMessenger(cfg.Adapter, cfg.App, log)
	if err != nil {
		return fmt.Errorf("create sync messenger: %w", err)
	}

	services := service.NewClientServices(service.ClientDeps{
		KV:             storages.KV,
		Keys:           keys,
		Remote:         remote,
		Messenger:      messenger,
		LocalRecipient: updater.NewLocalRecipient(storages.Account),
		Updaters:       updater.NewRecordUpdaters(storages, log),
		KeyChain:       keyChain,
	}, *cfg, log)
	defer services.Close()

	if err = services.ProvisionStorageKey(ctx); err != nil {
		return fmt.Errorf("provision storage key: %w", err)
	}

	if err = services.Manager.RequestRestoreOrCreate().Wait(ctx); err != nil {
		// the restore poll worker keeps retrying
		log.Err(err).Msg("initial restore failed")
	}
	services.Manager.RequestCleanup()

	background := workers.NewWorkers(
		workers.NewRestorePollWorker(services.Manager, cfg.Workers.RestoreInterval, log),
		workers.NewSyncMessagesWorker(services.SyncMessages, cfg.Workers.SyncMessagesInterval, log),
		workers.NewCallLinkCleanupWorker(storages.CallLinks, services.Manager,
			cfg.Workers.CallLinkDeletionThreshold, cfg.Workers.CallLinkCleanupInterval, log),
	)
	background.Start(ctx)
	log.Info().Msg("sync engine started")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// rotates only once a restore has merged the remote manifest
		return services.RecordIkmMigrator.Migrate(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		background.Stop()
		return gCtx.Err()
	})
	return g.Wait()
}
