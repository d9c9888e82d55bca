package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/repwise/repwise/internal/analysis"
	"github.com/repwise/repwise/internal/catalog"
	"github.com/repwise/repwise/internal/envstruct"
	"github.com/repwise/repwise/internal/logging"
	"github.com/repwise/repwise/internal/player"
	"github.com/repwise/repwise/internal/sqlite"
)

//go:embed templates
var templatesFS embed.FS

type application struct {
	logger          *slog.Logger
	db              *sqlite.Database
	sessionManager  *scs.SessionManager
	templateFS      fs.FS
	analysisService *analysis.Service
	playerService   *player.Service
	catalogService  *catalog.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"REPWISE_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"REPWISE_SQLITE_URL" envDefault:"./repwise.sqlite3"`
	// OpenAIAPIKey enables AI-generated exercise descriptions. Leave empty to
	// fall back to minimal placeholder content.
	OpenAIAPIKey string `env:"REPWISE_OPENAI_API_KEY" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return fmt.Errorf("populate config: %w", err)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return fmt.Errorf("open db %s: %w", cfg.SqliteURL, err)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	templateFS, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return fmt.Errorf("sub template fs: %w", err)
	}

	app := application{
		logger:          logger,
		db:              db,
		sessionManager:  initializeSessionManager(db),
		templateFS:      templateFS,
		analysisService: analysis.NewService(db, logger),
		playerService:   player.NewService(db, logger),
		catalogService:  catalog.NewService(db, logger, cfg.OpenAIAPIKey),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func initializeSessionManager(db *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(db.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                               //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", slog.Any("error", err))
		os.Exit(1)
	}
}
