package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/sudokuduo/internal/dependencies/clock"
	"github.com/mcoot/sudokuduo/internal/dependencies/ids"
	"github.com/mcoot/sudokuduo/internal/dependencies/random"
	"github.com/mcoot/sudokuduo/internal/notify"
	"github.com/mcoot/sudokuduo/internal/services/ai"
	"github.com/mcoot/sudokuduo/internal/services/auth"
	"github.com/mcoot/sudokuduo/internal/services/game"
	"github.com/mcoot/sudokuduo/internal/services/invite"
	"github.com/mcoot/sudokuduo/internal/services/janitor"
	"github.com/mcoot/sudokuduo/internal/services/lobby"
	"github.com/mcoot/sudokuduo/internal/services/matchmaking"
	"github.com/mcoot/sudokuduo/internal/services/profile"
	"github.com/mcoot/sudokuduo/internal/services/puzzle"
	"github.com/mcoot/sudokuduo/internal/services/settlement"
	"github.com/mcoot/sudokuduo/internal/storage"
	"github.com/mcoot/sudokuduo/internal/storage/memory"
	redisstorage "github.com/mcoot/sudokuduo/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage and cross-instance signalling
	Storage  storage.Storage
	Notifier notify.Notifier

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Services
	PuzzleGenerator    *puzzle.Generator
	InviteAllocator    *invite.Allocator
	AIFactory          *ai.Factory
	AuthService        *auth.Service
	ProfileService     *profile.Service
	LobbyService       *lobby.Service
	MatchmakingService *matchmaking.Service
	SettlementService  *settlement.Service
	GameController     *game.Controller
	Janitor            *janitor.Janitor

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// MatchmakingConfig tunes the ranked queue (optional)
	MatchmakingConfig matchmaking.Config
	// JanitorConfig sets the sweep interval and batch size (optional)
	JanitorConfig janitor.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// dependencies are the replaceable leaves of the object graph
type dependencies struct {
	store    storage.Storage
	notifier notify.Notifier
	clock    clock.Clock
	random   random.Random
	// puzzleRandom drives puzzle generation separately so tests can script codes and AI rolls
	puzzleRandom random.Random
	ids          ids.Generator
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	rnd := random.New()
	deps := dependencies{
		clock:        clock.New(),
		random:       rnd,
		puzzleRandom: rnd,
		ids:          ids.New(),
	}
	var closers []io.Closer

	// Memory storage pairs with the in-process hub; Redis shares pub/sub across instances
	switch storageType {
	case StorageTypeMemory:
		deps.store = memory.New(deps.clock)
		deps.notifier = notify.NewHub(logger)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		deps.store = redisStore
		deps.notifier = notify.NewRedisNotifier(redisStore.Client(), logger)
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	app := newWithDependencies(deps, cfg, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, cfg Config, logger *slog.Logger) *App {
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	puzzles := puzzle.New(deps.puzzleRandom)
	allocator := invite.New(deps.random, logger)
	aiFactory := ai.NewFactory(deps.random, logger)

	return &App{
		Storage:         deps.store,
		Notifier:        deps.notifier,
		Clock:           deps.clock,
		Random:          deps.random,
		IDs:             deps.ids,
		PuzzleGenerator: puzzles,
		InviteAllocator: allocator,
		AIFactory:       aiFactory,
		AuthService:     auth.New(deps.store, deps.clock, deps.ids, authCfg, logger),
		ProfileService:  profile.New(deps.store),
		LobbyService:    lobby.NewService(deps.store, puzzles, allocator, deps.clock, deps.ids, logger),
		MatchmakingService: matchmaking.NewService(
			deps.store,
			deps.notifier,
			puzzles,
			aiFactory,
			deps.clock,
			deps.ids,
			cfg.MatchmakingConfig,
			logger,
		),
		SettlementService: settlement.NewService(deps.store, deps.clock, logger),
		GameController:    game.NewController(deps.store, deps.clock, logger),
		Janitor:           janitor.New(deps.store, deps.clock, cfg.JanitorConfig, logger),
	}
}

// Close stops the janitor and releases storage connections
func (a *App) Close() error {
	errs := []error{a.Janitor.Stop()}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
