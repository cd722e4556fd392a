package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	carterrors "github.com/abgdnv/shopcart/internal/cart/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "CART_SVC_SKIP_INTEGRATION_TESTS"

// PgStoreSuite is a test suite for the PgStore implementation.
type PgStoreSuite struct {
	suite.Suite                             // Embedding testify's suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool
	store       Store                       //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite
}

// SetupSuite starts a PostgreSQL container and applies the embedded migrations.
func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container and wait for it to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("carts"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Create the pool, retrying the ping while the server finishes starting
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration, twice to check it is idempotent
	require.NoError(s.T(), MigratePostgres(connStr), "Failed to apply migrations")
	require.NoError(s.T(), MigratePostgres(connStr), "Re-applying migrations should be a no-op")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for PgStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest truncates the cart_state table.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE cart_state")
	require.NoError(s.T(), err, "Failed to truncate cart_state table")
}

// TestPgStoreIntegration runs the PgStore integration tests.
func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) TestGet_NotFound() {
	_, err := s.store.Get(s.ctx, "justinchats-cart:missing")
	require.ErrorIs(s.T(), err, carterrors.ErrNotFound)
}

func (s *PgStoreSuite) TestSetAndGet() {
	// 1. Store a value
	err := s.store.Set(s.ctx, "justinchats-cart:1", []byte(`[{"id":1,"name":"Example Item 1","price":20,"image":"/placeholder/product-1.jpg","quantity":2}]`))
	require.NoError(s.T(), err)

	// 2. Read it back
	got, err := s.store.Get(s.ctx, "justinchats-cart:1")
	require.NoError(s.T(), err)
	require.JSONEq(s.T(), `[{"id":1,"name":"Example Item 1","price":20,"image":"/placeholder/product-1.jpg","quantity":2}]`, string(got))
}

func (s *PgStoreSuite) TestSet_Overwrites() {
	require.NoError(s.T(), s.store.Set(s.ctx, "k", []byte("first")))
	require.NoError(s.T(), s.store.Set(s.ctx, "k", []byte("second")))

	got, err := s.store.Get(s.ctx, "k")
	require.NoError(s.T(), err)
	require.Equal(s.T(), "second", string(got))

	var rows int
	require.NoError(s.T(), s.dbPool.QueryRow(s.ctx, "SELECT count(*) FROM cart_state").Scan(&rows))
	require.Equal(s.T(), 1, rows, "upsert must keep a single row per key")
}

func (s *PgStoreSuite) TestSet_InvalidTextIsStoredVerbatim() {
	require.NoError(s.T(), s.store.Set(s.ctx, "k", []byte("{not json")))
	got, err := s.store.Get(s.ctx, "k")
	require.NoError(s.T(), err)
	require.Equal(s.T(), "{not json", string(got))
}
