// Package hosting builds the commit-history clients used by analysis runs.
package hosting

import (
	"fmt"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
)

// NewClient returns the hosting client selected by cfg.Source.
func NewClient(cfg *contract.Config) (contract.HostingClient, error) {
	switch cfg.Source {
	case schema.LocalSource:
		return contract.NewLocalRepoClient(cfg.RepoPath), nil
	case schema.GitHubSource, "":
		return NewGitHubClient(cfg.GitHubToken, cfg.GitHubAPIURL, cfg.Workers)
	default:
		return nil, fmt.Errorf("unsupported source: %s", cfg.Source)
	}
}
