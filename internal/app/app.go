package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"desideri-go/internal/db"
	"desideri-go/internal/domain"
	"desideri-go/internal/events"
)

type Config struct {
	Addr    string
	BaseURL string

	DBDriver string
	DBDSN    string

	AMQPURL      string
	AMQPExchange string

	CatalogFile string

	SessionHashKey []byte
	SessionTTL     time.Duration

	// RolePasswords are hashed into role_credentials at startup. Roles
	// without an entry keep whatever is already stored.
	RolePasswords map[domain.Role]string
}

type App struct {
	cfg       Config
	store     *db.Store
	log       *slog.Logger
	sseHub    *SSEHub
	publisher events.Publisher
	router    *domain.Router
	floor     domain.FloorPlan
	validate  *validator.Validate
}

func New(ctx context.Context, cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = db.DialectSQLite
	}
	if cfg.DBDSN == "" && cfg.DBDriver == db.DialectSQLite {
		cfg.DBDSN = "desideri.db"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	if len(cfg.SessionHashKey) < 32 {
		cfg.SessionHashKey = make([]byte, 32)
		_, _ = rand.Read(cfg.SessionHashKey)
		logger.Warn("session hash key not set (or too short), generating ephemeral key; sessions will reset on restart")
	}

	catalog, err := db.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	store, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{
		cfg:       cfg,
		store:     store,
		log:       logger,
		sseHub:    NewSSEHub(logger),
		publisher: events.Nop{},
		router:    domain.DefaultRouter(),
		floor:     catalog.Floor,
		validate:  newValidator(),
	}

	if err := a.bootstrapRoles(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	// Seed catalog ONLY if empty.
	empty, err := store.IsCatalogEmpty(ctx)
	if err != nil {
		a.log.Warn("catalog empty check failed", "err", err)
	} else if empty {
		if err := store.SeedCatalog(ctx, catalog); err != nil {
			a.log.Warn("catalog seed failed", "err", err)
		} else {
			a.log.Info("catalog seeded", "items", len(catalog.Menu))
		}
	}

	if cfg.AMQPURL != "" {
		conn, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			a.log.Warn("event broker unavailable, events disabled", "err", err)
		} else {
			a.publisher = events.NewAMQPPublisher(conn, cfg.AMQPExchange, logger)
			a.log.Info("publishing events", "exchange", cfg.AMQPExchange)
		}
	}

	return a, nil
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (a *App) bootstrapRoles(ctx context.Context) error {
	for _, role := range domain.Roles {
		pw, ok := a.cfg.RolePasswords[role]
		if !ok || pw == "" {
			continue
		}
		current, err := a.store.Q.GetRoleCredential(ctx, role)
		if err != nil {
			return fmt.Errorf("load credential %s: %w", role, err)
		}
		if CheckPassword(current, pw) {
			continue
		}
		hash, err := HashPassword(pw)
		if err != nil {
			return fmt.Errorf("password for %s: %w", role, err)
		}
		if err := a.store.Q.UpsertRoleCredential(ctx, role, hash); err != nil {
			return fmt.Errorf("store credential %s: %w", role, err)
		}
		a.log.Info("role credential set", "role", role)
	}
	return nil
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("close publisher", "err", err)
		}
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

func (a *App) Store() *db.Store                { return a.store }
func (a *App) SSE() *SSEHub                    { return a.sseHub }
func (a *App) Config() Config                  { return a.cfg }
func (a *App) Log() *slog.Logger               { return a.log }
func (a *App) Publisher() events.Publisher     { return a.publisher }
func (a *App) Router() *domain.Router          { return a.router }
func (a *App) FloorPlan() domain.FloorPlan     { return a.floor }
func (a *App) Validator() *validator.Validate  { return a.validate }
func (a *App) SetPublisher(p events.Publisher) { a.publisher = p }
