// Package testutil provides helpers for env-gated integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/burgasvv/parking-service/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates the full schema for tests.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", "000001_init.down.sql")
	upPath := filepath.Join(root, "migrations", "000001_init.up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestIdentity creates an identity with unique username and email.
// Password holds a placeholder hash; tests that authenticate replace it.
func NewTestIdentity(t testing.TB) *model.Identity {
	t.Helper()
	n := time.Now().UnixNano()
	return &model.Identity{
		ID:         uuid.New(),
		Authority:  model.AuthorityUser,
		Username:   fmt.Sprintf("user-%d", n),
		Password:   fmt.Sprintf("hash-%d", n),
		Email:      fmt.Sprintf("user-%d@example.com", n),
		Enabled:    true,
		Firstname:  "Test",
		Lastname:   "User",
		Patronymic: "T",
	}
}

// NewTestCar creates a car owned by the given identity, with unique
// model and description.
func NewTestCar(t testing.TB, identityID uuid.UUID) *model.Car {
	t.Helper()
	n := time.Now().UnixNano()
	return &model.Car{
		ID:          uuid.New(),
		Brand:       "TestBrand",
		Model:       fmt.Sprintf("model-%d", n),
		Description: fmt.Sprintf("description-%d", n),
		IdentityID:  identityID,
	}
}

// NewTestAddress creates an address with a unique house number.
func NewTestAddress(t testing.TB) *model.Address {
	t.Helper()
	return &model.Address{
		ID:     uuid.New(),
		City:   "Novosibirsk",
		Street: "Lenina",
		House:  fmt.Sprintf("%d", time.Now().UnixNano()%100000),
	}
}

// UniqueEmail generates a unique email for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
