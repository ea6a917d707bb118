package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitgrade/schema"
)

// LocalOwner is the owner reported for repositories read from disk.
const LocalOwner = "local"

// Record and field separators used in the git log format.
const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// logFormat emits sha, parents, author name, author email, strict ISO date and
// the raw message, followed by numstat lines.
var logFormat = "--format=" + recordSep + strings.Join([]string{"%H", "%P", "%an", "%ae", "%aI", "%B"}, fieldSep) + fieldSep

// LocalGitClient implements the HostingClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct {
	RepoPath string
}

var _ HostingClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// NewLocalRepoClient creates a local Git client bound to a repository root.
func NewLocalRepoClient(repoPath string) *LocalGitClient {
	return &LocalGitClient{RepoPath: repoPath}
}

// Run executes a git command and returns its stdout.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// RepoRoot returns the absolute path to the root of the Git repository
// containing the given context path.
func (c *LocalGitClient) RepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// FetchRepository implements the HostingClient interface. Owner and repo
// only label the result; the bound RepoPath is read.
func (c *LocalGitClient) FetchRepository(ctx context.Context, owner, repo string) (schema.RepositoryMetadata, error) {
	if c.RepoPath == "" {
		return schema.RepositoryMetadata{}, NewHostingError(NotFoundError, "fetch repository", errors.New("no local repository path"))
	}
	if repo == "" {
		repo = filepath.Base(c.RepoPath)
	}
	if owner == "" {
		owner = LocalOwner
	}
	meta := schema.RepositoryMetadata{Owner: owner, Name: repo, FullName: owner + "/" + repo}

	branch, err := c.Run(ctx, c.RepoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return meta, NewHostingError(NotFoundError, "fetch repository", err)
	}
	meta.DefaultBranch = strings.TrimSpace(string(branch))
	if url, err := c.Run(ctx, c.RepoPath, "config", "--get", "remote.origin.url"); err == nil {
		meta.URL = strings.TrimSpace(string(url))
	}
	return meta, nil
}

// FetchCommits implements the HostingClient interface.
func (c *LocalGitClient) FetchCommits(ctx context.Context, _, _ string, limit int) ([]schema.Commit, error) {
	if c.RepoPath == "" {
		return nil, NewHostingError(NotFoundError, "fetch commits", errors.New("no local repository path"))
	}
	out, err := c.Run(ctx, c.RepoPath, "log", "-n", strconv.Itoa(limit), "--numstat", logFormat)
	if err != nil {
		return nil, NewHostingError(UnknownError, "fetch commits", err)
	}
	return parseGitLog(out), nil
}

// parseGitLog turns the output of the log format above into commits.
func parseGitLog(out []byte) []schema.Commit {
	records := strings.Split(string(out), recordSep)
	commits := make([]schema.Commit, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		fields := strings.SplitN(rec, fieldSep, 7)
		if len(fields) < 6 {
			continue
		}
		c := schema.Commit{
			SHA:        strings.TrimSpace(fields[0]),
			ParentSHAs: strings.Fields(fields[1]),
			Author:     schema.Author{Name: fields[2], Email: fields[3]},
			Message:    strings.TrimRight(fields[5], "\n"),
		}
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[4])); err == nil {
			c.Timestamp = ts
		}
		if len(fields) == 7 {
			parseNumstat(fields[6], &c)
		}
		commits = append(commits, c)
	}
	return commits
}

// parseNumstat fills stats and changed paths from numstat lines.
func parseNumstat(block string, c *schema.Commit) {
	for line := range strings.SplitSeq(block, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), "\t", 3)
		if len(parts) < 3 {
			continue
		}
		c.Stats.Additions += parseChurnValue(parts[0])
		c.Stats.Deletions += parseChurnValue(parts[1])
		c.Stats.FilesChanged++
		path := parts[2]
		if strings.Contains(path, " => ") {
			if _, newPath := parseRenamePath(path); newPath != "" {
				path = newPath
			}
		}
		c.Files = append(c.Files, path)
	}
	c.Stats.Total = c.Stats.Additions + c.Stats.Deletions
}

// parseChurnValue converts a churn string to int, handling "-" as 0.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// parseRenamePath extracts old and new paths from a rename string.
func parseRenamePath(path string) (string, string) {
	if !strings.Contains(path, "{") {
		// Simple format: "old => new"
		parts := strings.SplitN(path, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	// Braced format: prefix{old => new}suffix
	braceStart := strings.Index(path, "{")
	braceEnd := strings.Index(path, "}")
	if braceStart == -1 || braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := path[:braceStart]
	renamePart := path[braceStart+1 : braceEnd]
	suffix := path[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	oldPath := strings.ReplaceAll(prefix+renameParts[0]+suffix, "//", "/")
	newPath := strings.ReplaceAll(prefix+renameParts[1]+suffix, "//", "/")
	return oldPath, newPath
}
