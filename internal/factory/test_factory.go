package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/sudokuduo/internal/dependencies/mocks"
	"github.com/mcoot/sudokuduo/internal/dependencies/random"
	"github.com/mcoot/sudokuduo/internal/notify"
	"github.com/mcoot/sudokuduo/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDs
	Hub        *notify.Hub
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Puzzles still use real randomness; invite codes and AI rolls come from MockRandom.
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{})
}

// NewTestAppWithConfig is NewTestApp with service tuning applied
func NewTestAppWithConfig(cfg Config) *TestApp {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDs()
	hub := notify.NewHub(logger)

	app := newWithDependencies(dependencies{
		store:        memory.New(mockClock),
		notifier:     hub,
		clock:        mockClock,
		random:       mockRandom,
		puzzleRandom: random.New(),
		ids:          mockIDs,
	}, cfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
		Hub:        hub,
	}
}
