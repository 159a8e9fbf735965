package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/mosaic-hrd/website/internal/cache"
	"github.com/mosaic-hrd/website/internal/config"
	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/i18n"
	"github.com/mosaic-hrd/website/internal/middleware"
	"github.com/mosaic-hrd/website/internal/module/catalog"
	"github.com/mosaic-hrd/website/internal/module/contact"
	"github.com/mosaic-hrd/website/internal/module/donations"
	"github.com/mosaic-hrd/website/internal/module/home"
	"github.com/mosaic-hrd/website/internal/module/joinus"
	"github.com/mosaic-hrd/website/web"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	store  cache.Store
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config: logger,
// database, response cache, content client, modules, middleware, templates
// and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	debug := cfg.Server.Mode == gin.DebugMode
	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()
	if debug && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes debug templates and permissive CORS")
	}

	// Migration runs in every mode.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger, &domain.ContactMessage{})
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if !success {
			closeDB(db, log.Logger)
		}
	}()

	revalidate := config.Duration(cfg.Content.Revalidate, time.Hour)
	store, err := cache.New(context.Background(), cache.Options{
		Driver:     cfg.Cache.Driver,
		TTL:        revalidate,
		MaxEntries: cfg.Cache.MaxEntries,
		RedisAddr:  cfg.Cache.Redis.Addr,
		KeyPrefix:  cfg.Cache.Redis.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("setup cache: %w", err)
	}
	defer func() {
		if !success {
			_ = store.Close()
		}
	}()

	client, err := content.New(content.Options{
		BaseURL:    cfg.Content.BaseURL,
		Timeout:    config.Duration(cfg.Content.Timeout, 10*time.Second),
		Revalidate: revalidate,
		Store:      store,
		Logger:     log.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("setup content client: %w", err)
	}

	cat, err := i18n.Default()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	// Manual dependency injection: repository → service → handler.
	contactSvc := contact.NewService(contact.NewRepository(db))
	modules := []Module{
		home.NewModule(home.NewHandler(client, cfg.Content.MaxPages)),
		catalog.NewModule(catalog.NewHandler(client), catalog.NewAPIHandler(client)),
		contact.NewModule(contact.NewHandler(contactSvc), contact.NewPageHandler(contactSvc)),
		joinus.NewModule(joinus.NewHandler(client)),
		donations.NewModule(donations.NewHandler(cfg.Site.Banks)),
	}

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.TrustProxy,
		}),
		middleware.Locale(cat),
		middleware.Logger(log.Logger, "/health", "/metrics"),
		middleware.Metrics(),
		middleware.SecureHeaders(middleware.SecureConfig{
			Development: debug,
			SSLRedirect: cfg.Server.SSLRedirect,
		}, log.Logger),
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
			Burst:             cfg.Server.RateLimit.Burst,
		}, errorPage(http.StatusTooManyRequests)),
		middleware.Deadline(config.Duration(cfg.Server.Timeout, 0)),
	)

	var fsys fs.FS = web.EmbeddedFS
	if debug {
		fsys, err = resolveDebugWebFS()
		if err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	}
	renderer, err := NewTemplateRenderer(fsys, debug, cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer

	csrfSecret, err := resolveCSRFSecret(cfg.Server.CSRFSecret, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}
	if csrfSecret != cfg.Server.CSRFSecret {
		log.Warn("no csrf_secret configured, using random secret in non-release mode (will change on restart)")
	}

	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:    modules,
		DB:         db,
		Catalog:    cat,
		Mode:       cfg.Server.Mode,
		CSRFSecret: csrfSecret,
		CORS:       resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS),
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	log.Info("application ready",
		slog.String("content_api", client.BaseURL()),
		slog.String("cache_driver", cacheDriverName(cfg.Cache.Driver)),
		slog.Int("modules", len(modules)),
	)

	success = true
	return &App{
		engine: engine,
		db:     db,
		store:  store,
		logger: log,
		cfg:    cfg,
	}, nil
}

func cacheDriverName(d string) string {
	if d == "" {
		return cache.DriverMemory
	}
	return d
}

// resolveCSRFSecret returns the configured secret, or a random one outside
// release mode when the configured value is a placeholder.
func resolveCSRFSecret(secret, mode string) (string, error) {
	if !isPlaceholderCSRFSecret(secret) {
		return secret, nil
	}
	if mode == gin.ReleaseMode {
		return "", errors.New("csrf_secret must be a non-placeholder value in release mode")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func isPlaceholderCSRFSecret(secret string) bool {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return true
	}
	switch strings.ToLower(trimmed) {
	case "change-me-to-a-random-secret", "change-me-in-env", "change-me-in-production":
		return true
	default:
		return false
	}
}

// resolveCORSConfig builds the API CORS policy. In release mode an empty
// allowlist denies cross-origin requests.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	out := middleware.DefaultCORSConfig()
	if cfg == nil {
		cfg = &config.CORSConfig{}
	}
	switch {
	case len(cfg.AllowOrigins) > 0:
		out.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		out.AllowOrigins = nil
	}
	if d := config.Duration(cfg.MaxAge, 0); d > 0 {
		out.MaxAge = strconv.Itoa(int(d.Seconds()))
	}
	return out
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// Shutdown is graceful with a 5-second budget, after which the cache and the
// database are closed.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}
	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Error("cache close error", slog.Any("error", err))
		}
	}
	closeDB(a.db, log)

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
	return runErr
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}
