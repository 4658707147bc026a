package main

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/sitekb/auth"
	"github.com/hazyhaar/sitekb/config"
	"github.com/hazyhaar/sitekb/hub"
	"github.com/hazyhaar/sitekb/internal/store"
	"github.com/hazyhaar/sitekb/notify"
	"github.com/hazyhaar/sitekb/observability"
	"github.com/hazyhaar/sitekb/summarize"
)

func main() {
	// Logging first, so config problems are reported structurally.
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	cfg := loadConfig(logger)

	secretInput := os.Getenv("SESSION_SECRET")
	if secretInput == "" {
		slog.Error("SESSION_SECRET is required")
		os.Exit(1)
	}
	// Derive the 32-byte JWT secret via SHA-256 (satisfies auth.MinSecretLen).
	secretHash := sha256.Sum256([]byte(secretInput))
	jwtSecret := secretHash[:]

	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminHash == "" {
		if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
			var err error
			adminHash, err = auth.HashPassword(pw)
			if err != nil {
				slog.Error("hash admin password", "error", err)
				os.Exit(1)
			}
		}
	}
	if adminHash == "" {
		slog.Warn("no admin credentials configured, admin endpoints disabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Additive lead columns for databases created before they existed.
	if err := st.EnsureLeadColumns(ctx); err != nil {
		slog.Error("ensure lead columns", "error", err)
		os.Exit(1)
	}

	events, err := observability.NewEventLogger(st.DB)
	if err != nil {
		slog.Error("event logger", "error", err)
		os.Exit(1)
	}

	summarizer := summarize.New(summarizerConfig(cfg), logger)

	var notifier notify.Notifier = notify.Null{}
	if url := env("LEAD_WEBHOOK_URL", cfg.Notify.WebhookURL); url != "" {
		notifier = notify.NewWebhook(url, cfg.Notify.Timeout)
	}

	svc := hub.New(st, cfg, logger,
		hub.WithSummarizer(summarizer),
		hub.WithNotifier(notifier),
		hub.WithEvents(events),
		hub.WithAuth(jwtSecret, adminHash),
	)

	// MCP stdio mode: serve tools on stdin/stdout and exit when the client
	// disconnects. The HTTP server does not start in this mode.
	if env("MCP_TRANSPORT", "") == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "sitekb",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)

		slog.Info("MCP stdio serving")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.ListenAddr, "languages", cfg.Languages)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// loadConfig reads the optional YAML config, then lets environment variables
// override the deployment-specific fields.
func loadConfig(logger *slog.Logger) *config.Config {
	var cfg *config.Config
	if path := os.Getenv("CONFIG"); path != "" {
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			logger.Error("load config", "path", path, "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Default()
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SITE_BASE_URL"); v != "" {
		cfg.SiteBaseURL = v
	}
	if v := os.Getenv("SITE_NAME"); v != "" {
		cfg.SiteName = v
	}
	return cfg
}

// summarizerConfig resolves the summarizer settings: environment variables
// win, the YAML config is the fallback.
func summarizerConfig(cfg *config.Config) summarize.Config {
	return summarize.Config{
		APIKey:   env("OPENAI_API_KEY", cfg.Summarizer.APIKey),
		BaseURL:  env("OPENAI_BASE_URL", cfg.Summarizer.BaseURL),
		Model:    cfg.Summarizer.Model,
		Timeout:  cfg.Summarizer.Timeout,
		MaxWords: cfg.Summarizer.MaxWords,
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
