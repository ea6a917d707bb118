//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestGitgradeWithMySQL tests the gitgrade CLI with a MySQL backend.
func TestGitgradeWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "gitgrade",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	// Cache and analysis share the database but not the connection string
	base := fmt.Sprintf("root:secret123@tcp(%s:%s)/gitgrade", host, port.Port())
	runBackendScenario(t, []string{
		"GITGRADE_CACHE_BACKEND=mysql",
		"GITGRADE_CACHE_DB_CONNECT=" + base,
		"GITGRADE_ANALYSIS_BACKEND=mysql",
		"GITGRADE_ANALYSIS_DB_CONNECT=" + base + "?parseTime=true&multiStatements=true",
	})
}

// TestGitgradeWithPostgres tests the gitgrade CLI with a PostgreSQL backend.
func TestGitgradeWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	base := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, []string{
		"GITGRADE_CACHE_BACKEND=postgresql",
		"GITGRADE_CACHE_DB_CONNECT=" + base,
		"GITGRADE_ANALYSIS_BACKEND=postgresql",
		"GITGRADE_ANALYSIS_DB_CONNECT=" + base + " application_name=gitgrade-analysis",
	})
}

// runBackendScenario clears both stores, analyzes a fixture repository twice
// and checks status, migration and export against the configured backend.
func runBackendScenario(t *testing.T, env []string) {
	env = append(env, "HOME="+t.TempDir(), "GITHUB_TOKEN=", "OPENAI_API_KEY=", "GEMINI_API_KEY=")
	repo := newFixtureRepo(t, defaultFixture())

	_, err := runGitgrade(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runGitgrade(t, env, "analysis", "clear")
	require.NoError(t, err)

	_, err = runGitgrade(t, env, "analysis", "migrate")
	require.NoError(t, err)

	_, err = runGitgrade(t, env, "analyze", repo, "--source", "local")
	require.NoError(t, err)
	second, err := runGitgrade(t, env, "analyze", repo, "--source", "local")
	require.NoError(t, err)
	assert.Contains(t, second, "cached: true")

	cacheStatus, err := runGitgrade(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, cacheStatus, "Total Entries: 1")

	analysisStatus, err := runGitgrade(t, env, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, analysisStatus, "Total Runs: 1")

	exported, err := runGitgrade(t, env, "analysis", "export", "--output-file", t.TempDir()+"/runs")
	require.NoError(t, err)
	assert.Contains(t, exported, "Exported 1 analysis runs")
}
