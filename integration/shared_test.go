//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a shared gitgrade binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getGitgradeBinary returns the path to the gitgrade binary, building it once if needed.
func getGitgradeBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "gitgrade-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "gitgrade")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build gitgrade: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// fixtureCommit is one commit written by newFixtureRepo.
type fixtureCommit struct {
	author  string
	email   string
	message string
	file    string
	lines   int
	when    time.Time
}

// defaultFixture is a small history with two authors, a giant commit and a vague message.
func defaultFixture() []fixtureCommit {
	base := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	return []fixtureCommit{
		{"Alice", "alice@example.com", "feat(core): add widget registry", "core/registry.go", 40, base},
		{"Alice", "alice@example.com", "fix(core): guard nil widget lookups", "core/registry.go", 6, base.Add(2 * time.Hour)},
		{"Bob", "bob@example.com", "docs: explain widget registration", "README.md", 12, base.Add(26 * time.Hour)},
		{"Bob", "bob@example.com", "update", "docs/notes.md", 3, base.Add(27 * time.Hour)},
		{"Alice", "alice@example.com", "feat(api): import generated client", "api/client.go", 1200, base.Add(50 * time.Hour)},
	}
}

// newFixtureRepo creates a git repository in a temp dir with the given commits.
func newFixtureRepo(t *testing.T, commits []fixtureCommit) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, nil, "init", "--quiet")
	for i, c := range commits {
		path := filepath.Join(dir, c.file)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		body := strings.Repeat(fmt.Sprintf("line %d of commit %d\n", i, i), c.lines)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		_, err = f.WriteString(body)
		require.NoError(t, err)
		require.NoError(t, f.Close())

		env := []string{
			"GIT_AUTHOR_NAME=" + c.author,
			"GIT_AUTHOR_EMAIL=" + c.email,
			"GIT_AUTHOR_DATE=" + c.when.Format(time.RFC3339),
			"GIT_COMMITTER_NAME=" + c.author,
			"GIT_COMMITTER_EMAIL=" + c.email,
			"GIT_COMMITTER_DATE=" + c.when.Format(time.RFC3339),
		}
		runGit(t, dir, env, "add", c.file)
		runGit(t, dir, env, "commit", "--quiet", "-m", c.message)
	}
	return dir
}

func runGit(t *testing.T, dir string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), string(out))
	return string(out)
}

// runGitgrade runs the binary with extra environment and returns stdout.
func runGitgrade(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getGitgradeBinary(), args...)
	cmd.Dir = t.TempDir() // keep any .gitgrade.yaml of the developer out of the run
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
	}
	return stdout.String(), err
}
