package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-storage-sync/internal/config"
	"github.com/MKhiriev/go-storage-sync/internal/handler"
	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/server"
	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/internal/telemetry"
	"github.com/MKhiriev/go-storage-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	fmt.Println(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	log := logger.NewLogger("storage-sync-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	if cfg.IssueToken != "" {
		if err = issueToken(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("error issuing token")
		}
		return
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("error setting up telemetry")
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Err(err).Msg("telemetry shutdown")
		}
	}()

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services := service.NewServices(storages, *cfg, log)

	handlers, err := handler.NewHandlers(services, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

// issueToken prints a device token for "<account>:<device>". Accounts are
// provisioned out of band, so this is the only way to mint one.
func issueToken(cfg *config.StructuredConfig, log *logger.Logger) error {
	accountID, deviceID, ok := strings.Cut(cfg.IssueToken, ":")
	if !ok {
		return fmt.Errorf("expected <account>:<device>, got %q", cfg.IssueToken)
	}

	token, err := service.NewAuthService(cfg.App, log).CreateToken(context.Background(), accountID, deviceID)
	if err != nil {
		return err
	}

	fmt.Println(token.String())
	return nil
}
