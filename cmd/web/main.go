// cmd/web/main.go
//
// Stocklot – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start the daily rotating logger (tees to console in a TTY).
//
//  2. Load configuration (conf/.env → conf/global.yaml → STOCKLOT_*
//     overrides) and resolve vault: references.
//
//  3. Open the embedded control store, apply control-scope and
//     tenant-scope migrations, and register it as the default store.
//     Shared-strategy tenants live inside it; dedicated stores are
//     provisioned lazily on first request.
//
//  4. Build the tenant cache, resolver, authenticator selector, audit
//     recorder, and permission enforcer, then assemble the route table.
//
//  5. Serve until SIGINT/SIGTERM, then drain and close every store.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/stocklot/stocklot/internal/audit"
	"github.com/stocklot/stocklot/internal/auth"
	"github.com/stocklot/stocklot/internal/authz"
	"github.com/stocklot/stocklot/internal/config"
	"github.com/stocklot/stocklot/internal/database"
	"github.com/stocklot/stocklot/internal/logger"
	"github.com/stocklot/stocklot/internal/middleware"
	"github.com/stocklot/stocklot/internal/secrets"
	"github.com/stocklot/stocklot/internal/server"
	"github.com/stocklot/stocklot/internal/store"
	"github.com/stocklot/stocklot/internal/tenant"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	rootDir, _ := os.Getwd()
	if _, err := logger.New(rootDir, runningInTTY()); err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	cfg, err := config.Load()
	if err != nil {
		zap.S().Fatalw("load config", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if secrets.IsRef(cfg.Auth.SecretKey) {
		sc, err := secrets.New()
		if err != nil {
			zap.S().Fatalw("secrets client", "err", err)
		}
		if cfg.Auth.SecretKey, err = sc.Resolve(ctx, cfg.Auth.SecretKey); err != nil {
			zap.S().Fatalw("resolve auth.secret_key", "err", err)
		}
	}

	//
	// Control store: open, migrate both scopes, register as default.
	//
	if err := os.MkdirAll(cfg.Database.DataDir, 0o755); err != nil {
		zap.S().Fatalw("create data dir", "err", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.ControlPath), 0o755); err != nil {
		zap.S().Fatalw("create control dir", "err", err)
	}
	controlDB, err := database.Open(database.DriverSQLite, database.SQLiteDSN(cfg.Database.ControlPath))
	if err != nil {
		zap.S().Fatalw("open control store", "err", err)
	}
	if err := store.MigrateControl(ctx, controlDB); err != nil {
		zap.S().Fatalw("migrate control scope", "err", err)
	}
	if err := store.MigrateTenant(ctx, controlDB, store.EngineSQLite); err != nil {
		zap.S().Fatalw("migrate tenant scope", "err", err)
	}

	registry := store.NewRegistry(cfg.Database.DataDir)
	registry.SetDefault(&store.Store{Name: store.DefaultName, Engine: store.EngineSQLite, DB: controlDB})
	defer registry.Close()

	var activeTenants int
	_ = controlDB.Get(&activeTenants, `
	    SELECT COUNT(*) FROM tenants
	    WHERE is_active = 1 AND is_deleted = 0`)
	zap.S().Infow("control store online",
		"path", cfg.Database.ControlPath, "active_tenants", activeTenants)

	//
	// Runtime wiring.
	//
	stores := tenant.NewStores(registry)
	cache := tenant.NewCache(controlDB)
	resolver := tenant.NewResolver(cache)
	idCache := auth.NewIdentityCache()

	defaultScheme := tenant.AuthToken
	if cfg.Auth.DefaultScheme != "" {
		defaultScheme = tenant.AuthenticationType(cfg.Auth.DefaultScheme)
	}
	selector := auth.NewSelector(controlDB, idCache, cfg.Auth.SecretKey, defaultScheme)

	recorder := audit.NewRecorder(stores)
	enforcer := authz.NewEnforcer(stores, recorder)
	loader := authz.NewLoader(stores)

	mux := buildRouter(deps{
		control:  controlDB,
		stores:   stores,
		cache:    cache,
		resolver: resolver,
		selector: selector,
		idCache:  idCache,
		enforcer: enforcer,
		recorder: recorder,
		loader:   loader,
		secret:   cfg.Auth.SecretKey,
	})
	resolver.BindRouter(mux)

	var handler = middleware.Security(mux)
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(handler)
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler)
	if err := server.Run(ctx, srv); err != nil {
		zap.S().Fatalw("http server", "err", err)
	}
}
