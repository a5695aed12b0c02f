//go:build integration

package drainers_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/duragraph/mdf/internal/drainers"
	"github.com/duragraph/mdf/internal/mdf"
)

// Run with: go test ./internal/drainers/... -tags integration -run Postgres
//
// Grounded on testcontainers-go/modules/postgres's own container-per-test
// idiom, in place of the teacher's (deleted) persistence integration test,
// which assumed a pre-provisioned TEST_DATABASE_URL instead of spinning one
// up — using a real container here avoids a dependency on external test
// infrastructure being already running.
func TestPostgres_Accept_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("mdf"),
		postgres.WithUsername("mdf"),
		postgres.WithPassword("mdf"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, container.Terminate(ctx)) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	drainer, err := drainers.NewPostgres(ctx, drainers.PostgresConfig{
		Host:     host,
		Port:     portNum,
		User:     "mdf",
		Password: "mdf",
		Database: "mdf",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	defer drainer.Close()

	require.NoError(t, drainer.Accept(ctx, mdf.NodeId(1), mdf.WrapValue(42)))
	require.NoError(t, drainer.Accept(ctx, mdf.NodeId(2), mdf.WrapValue("hello")))
}
