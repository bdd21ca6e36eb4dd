package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/dakoku-app/dakoku-backend-go/internal/config"
	"github.com/dakoku-app/dakoku-backend-go/internal/domain/identity"
	appHTTP "github.com/dakoku-app/dakoku-backend-go/internal/handler/http"
	"github.com/dakoku-app/dakoku-backend-go/internal/pkg/database"
	"github.com/dakoku-app/dakoku-backend-go/internal/repository/sqlite"
	attendanceService "github.com/dakoku-app/dakoku-backend-go/internal/service/attendance"
	"github.com/dakoku-app/dakoku-backend-go/internal/service/assetcache"
	relayService "github.com/dakoku-app/dakoku-backend-go/internal/service/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logLevel := slog.LevelInfo
	if cfg.App.LogLevel == "debug" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	db, err := database.NewSQLiteDB(cfg.Store.Path)
	if err != nil {
		fmt.Println("Error opening record store:", err)
		return
	}
	defer db.Close()

	recordRepo := sqlite.NewRecordRepository(db)
	identityRepo := sqlite.NewIdentityRepository(db)

	dispatcher := relayService.NewDispatcher(cfg.Relay.Endpoint, &http.Client{
		Timeout: cfg.Relay.Timeout,
	})

	attendanceSvc := attendanceService.NewAttendanceService(
		recordRepo,
		identityRepo,
		dispatcher,
		identity.UserIdentity{
			UserID:   cfg.Identity.DefaultUserID,
			UserName: cfg.Identity.DefaultUserName,
		},
	)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	var assetHandler appHTTP.AssetHandler
	if cfg.Cache.Upstream != "" {
		manager, err := assetcache.NewManager(assetcache.Config{
			Root:            cfg.Cache.Root,
			NamePrefix:      cfg.Cache.NamePrefix,
			Version:         cfg.Cache.Version,
			Upstream:        cfg.Cache.Upstream,
			Manifest:        cfg.Cache.Manifest,
			OfflineFallback: cfg.Cache.OfflineFallback,
			BypassHosts:     cfg.Cache.BypassHosts,
		}, nil)
		if err != nil {
			fmt.Println("Error initializing asset cache:", err)
			return
		}

		ctx := context.Background()
		if err := manager.Install(ctx); err != nil {
			// A prior generation, if any, keeps serving until a successful
			// install replaces it.
			slog.Error("asset cache install failed", "error", err)
		}
		if err := manager.Activate(ctx); err != nil {
			slog.Warn("asset cache not activated, serving live", "error", err)
		}
		assetHandler = appHTTP.NewAssetHandler(manager)
	} else {
		slog.Info("CACHE_UPSTREAM not set, asset cache disabled")
	}

	router := appHTTP.NewRouter(cfg, attendanceHandler, assetHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
