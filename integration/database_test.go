//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDcurvesWithMySQL tests the dcurves CLI with a MySQL history backend.
func TestDcurvesWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "dcurves",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/dcurves?parseTime=true", host, port.Port())
	runHistoryLifecycle(t, "mysql", connStr)
}

// TestDcurvesWithPostgres tests the dcurves CLI with a PostgreSQL history backend.
func TestDcurvesWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runHistoryLifecycle(t, "postgresql", connStr)
}

// runHistoryLifecycle exercises the full run history lifecycle against the
// given backend: clear, analyze, then inspect status and run listings.
func runHistoryLifecycle(t *testing.T, backend, connStr string) {
	t.Helper()

	// Set environment variables
	_ = os.Setenv("DCURVES_HISTORY_BACKEND", backend)
	_ = os.Setenv("DCURVES_HISTORY_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("DCURVES_HISTORY_BACKEND") }()
	defer func() { _ = os.Unsetenv("DCURVES_HISTORY_DB_CONNECT") }()

	cohort := writeSyntheticCohort(t, 200)

	// Run dcurves history clear
	err := runDcurvesCommand(t, "history", "clear")
	require.NoError(t, err)

	// Run a binary analysis that records its rows
	err = runDcurvesCommand(t, "binary", cohort, "--outcome", "cancer", "-p", "model")
	require.NoError(t, err)

	// Run dcurves history status
	err = runDcurvesCommand(t, "history", "status")
	require.NoError(t, err)

	// Run dcurves history runs
	err = runDcurvesCommand(t, "history", "runs", "--limit", "5")
	require.NoError(t, err)
}

func runDcurvesCommand(t *testing.T, args ...string) error {
	dcurvesPath := getDcurvesBinary()
	cmd := exec.Command(dcurvesPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
