package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"roster-lab/domain/roster"
	"roster-lab/projection"
	"roster-lab/runtime"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

// BaseEngineSuite runs every test against a fresh store and a started engine.
type BaseEngineSuite struct {
	suite.Suite
	Config Config
	DB     *badger.DB
	Index  *bluge.Writer
	Engine *runtime.Engine
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseEngineSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseEngineSuite) SetupTest() {
	var err error
	s.DB, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	s.Index, err = projection.OpenWriter("")
	s.Require().NoError(err)

	s.Engine = runtime.NewEngine(slog.Default(), s.DB, s.Index, runtime.Options{
		EventBufferSize:   4 * s.Config.Concurrency,
		NumberOfWorkers:   s.Config.Workers,
		MaxTxAttempts:     s.Config.Concurrency + 10,
		TxRetryDelay:      time.Millisecond,
		ReconcileInterval: 0,
		RestartInterval:   10 * time.Millisecond,
		SearchLimit:       50,
	})
	s.Engine.Start(context.Background())
}

func (s *BaseEngineSuite) TearDownTest() {
	s.Engine.Stop()
	s.Require().NoError(s.Index.Close())
	s.Require().NoError(s.DB.Close())
}

// Step prints a colorized header and runs fn with a bounded context
func (s *BaseEngineSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	fn(ctx)
}

// Dump logs the roster as JSON when E2E_DEBUG_JSON is enabled
func (s *BaseEngineSuite) Dump(ros roster.Roster) {
	if !s.Config.DebugJSON {
		return
	}
	data, err := json.MarshalIndent(ros, "", "  ")
	s.Require().NoError(err)
	s.T().Log(string(data))
}
