package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/kadrio/clientkit/internal/client/api"
	"github.com/kadrio/clientkit/internal/client/appstate"
	"github.com/kadrio/clientkit/internal/client/config"
	"github.com/kadrio/clientkit/internal/client/session"
	"github.com/kadrio/clientkit/internal/client/store"
	"github.com/kadrio/clientkit/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires configuration, the local credential store, the API client and
// the session manager behind an interactive REPL.
type App struct {
	config  *config.Config
	session *session.Manager
	replica *appstate.Store
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := store.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	repo := store.NewSQLiteRepository(db)
	deviceID, err := store.EnsureDeviceID(ctx, repo)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerBaseURL, deviceID, api.WithTimeout(c.RequestTimeout))
	replica := appstate.NewStore()

	m := session.NewManager(session.Options{
		API:         apiClient,
		Credentials: repo,
		Replica:     replica,
		Logger:      log,
		DemoMode:    c.DemoMode,
	})

	return &App{
		config:  c,
		session: m,
		replica: replica,
		db:      db,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores the session from the local cache and starts the REPL. It
// blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	snaps, cancel := a.replica.Subscribe()
	defer cancel()
	go func() {
		for snap := range snaps {
			a.log.Debug(ctx, "session state changed", "authenticated", snap.Authenticated)
		}
	}()

	if err := a.session.Bootstrap(ctx); err != nil && a.session.RetryAvailable() {
		a.log.Warn(ctx, "session restore failed, retry with 'reload'", "error", err)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}
