package testutil

import (
	"context"
	"testing"
	"time"

	"go-ticket-core/config"
	"go-ticket-core/internal/model"
	"go-ticket-core/migrations"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// NewTestPool connects to the test database from config.LoadTestConfig and
// skips the test when it is unreachable, so the suite runs without backing
// services.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	cfg := config.LoadTestConfig()
	dsn := "host=" + cfg.Database.Host +
		" port=" + cfg.Database.Port +
		" user=" + cfg.Database.User +
		" password=" + cfg.Database.Password +
		" dbname=" + cfg.Database.DBName +
		" sslmode=" + cfg.Database.SSLMode

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("failed to parse test pool config: %v", err)
	}
	poolConfig.MaxConns = 8

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create test pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping Postgres integration test: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

// NewTestRedis connects to the test Redis and skips when it is unreachable.
func NewTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	cfg := config.LoadTestConfig()
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("skipping Redis integration test: %v", err)
	}

	t.Cleanup(func() {
		_ = rdb.Close()
	})

	return rdb
}

func ApplyMigrations(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
}

func TruncateAll(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, "TRUNCATE reservations, tickets, auth_tokens, offers, capacities RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// InsertCapacity creates a capacity row and returns its id.
func InsertCapacity(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name string, scheduledAt time.Time, units int) int {
	t.Helper()

	var id int
	err := pool.QueryRow(ctx, `
		INSERT INTO capacities (capacity_id, name, scheduled_at, total_units, available_units)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, uuid.New(), name, scheduledAt, units).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert capacity: %v", err)
	}
	return id
}

// InsertOffer creates an offer row against a capacity and returns its id.
func InsertOffer(t *testing.T, ctx context.Context, pool *pgxpool.Pool, capacityID int, name string, expiresAt time.Time, status model.OfferStatus) int {
	t.Helper()

	var id int
	err := pool.QueryRow(ctx, `
		INSERT INTO offers (offer_id, capacity_id, name, price, remaining_quantity, expires_at, status)
		VALUES ($1, $2, $3, 25.00, 100, $4, $5)
		RETURNING id
	`, uuid.New(), capacityID, name, expiresAt, status).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert offer: %v", err)
	}
	return id
}

// InsertTicket creates an unscanned ticket and returns its final key.
func InsertTicket(t *testing.T, ctx context.Context, pool *pgxpool.Pool, ownerID int, offerID int) string {
	t.Helper()

	finalKey := uuid.New().String() + "-" + uuid.New().String()
	_, err := pool.Exec(ctx, `
		INSERT INTO tickets (final_key, owner_id, offer_id, scanned)
		VALUES ($1, $2, $3, FALSE)
	`, finalKey, ownerID, offerID)
	if err != nil {
		t.Fatalf("failed to insert ticket: %v", err)
	}
	return finalKey
}
