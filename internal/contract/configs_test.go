package contract

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/gitgrade/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() *ConfigRawInput {
	return &ConfigRawInput{
		RepoStr:       "golang/go",
		Limit:         DefaultCommitLimit,
		Workers:       DefaultWorkers,
		Precision:     DefaultPrecision,
		Output:        "text",
		Top:           DefaultTop,
		CacheBackend:  "sqlite",
		BatchSize:     DefaultBatchSize,
		AIConcurrency: DefaultAIConcurrency,
		Emoji:         "no",
		Color:         "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GITHUB_TOKEN", "")

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, false},
		{"zero limit", func(in *ConfigRawInput) { in.Limit = 0 }, true},
		{"limit above max", func(in *ConfigRawInput) { in.Limit = MaxCommitLimit + 1 }, true},
		{"limit at max", func(in *ConfigRawInput) { in.Limit = MaxCommitLimit }, false},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }, true},
		{"precision too high", func(in *ConfigRawInput) { in.Precision = 5 }, true},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "xml" }, true},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }, true},
		{"parquet with file", func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out" }, false},
		{"invalid source", func(in *ConfigRawInput) { in.Source = "gitlab" }, true},
		{"invalid provider", func(in *ConfigRawInput) { in.AIProvider = "claude" }, true},
		{"batch size above max", func(in *ConfigRawInput) { in.BatchSize = 21 }, true},
		{"concurrency above max", func(in *ConfigRawInput) { in.AIConcurrency = 4 }, true},
		{"bad timeout", func(in *ConfigRawInput) { in.Timeout = "soon" }, true},
		{"negative ttl", func(in *ConfigRawInput) { in.CacheTTL = "-1h" }, true},
		{"zero top", func(in *ConfigRawInput) { in.Top = 0 }, true},
		{"bad emoji", func(in *ConfigRawInput) { in.Emoji = "maybe" }, true},
		{"bad repo", func(in *ConfigRawInput) { in.RepoStr = "justaname" }, true},
		{"invalid cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, true},
		{"mysql without connection", func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, true},
		{"same sqlite file", func(in *ConfigRawInput) {
			in.AnalysisBackend = "sqlite"
			in.CacheDBConnect = "/tmp/x.db"
			in.AnalysisDBConnect = "/tmp/x.db"
		}, true},
		{"different sqlite files", func(in *ConfigRawInput) { in.AnalysisBackend = "sqlite" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := baseInput()
			tt.mutate(input)
			err := ProcessAndValidate(context.Background(), &Config{}, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(context.Background(), cfg, baseInput()))

	assert.Equal(t, schema.GitHubSource, cfg.Source)
	assert.Equal(t, "golang", cfg.Owner)
	assert.Equal(t, "go", cfg.Repo)
	assert.Equal(t, "golang/go", cfg.Slug())
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, schema.NoProvider, cfg.Provider)
	assert.NotEmpty(t, cfg.AIDisabledReason)
	assert.Equal(t, "env-token", cfg.GitHubToken)
	assert.Equal(t, "v1", cfg.Policy.Version)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
}

func TestProcessOutputOnly(t *testing.T) {
	input := baseInput()
	input.RepoStr = ""
	input.Output = "json"
	cfg := &Config{}
	require.NoError(t, ProcessOutputOnly(cfg, input))
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.Empty(t, cfg.Owner)
	assert.Equal(t, "v1", cfg.Policy.Version)

	input.Precision = 0
	assert.Error(t, ProcessOutputOnly(&Config{}, input))
}

func TestProcessAndValidateOptionalRepo(t *testing.T) {
	input := baseInput()
	input.RepoStr = ""
	assert.ErrorContains(t, ProcessAndValidate(context.Background(), &Config{}, input), "owner/repo")

	input.OptionalRepo = true
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(context.Background(), cfg, input))
	assert.Empty(t, cfg.Owner)

	err := RevalidateAnalysis(context.Background(), cfg.Clone(), AnalysisOverrides{})
	assert.ErrorContains(t, err, "invalid repository")
}

func TestProcessProviderCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	t.Run("missing key disables provider", func(t *testing.T) {
		input := baseInput()
		input.AIProvider = "openai"
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(context.Background(), cfg, input))
		assert.Equal(t, schema.NoProvider, cfg.Provider)
		assert.Contains(t, cfg.AIDisabledReason, "openai")
	})

	t.Run("key from environment", func(t *testing.T) {
		input := baseInput()
		input.AIProvider = "Gemini"
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(context.Background(), cfg, input))
		assert.Equal(t, schema.GeminiProvider, cfg.Provider)
		assert.Equal(t, "gem-key", cfg.AIAPIKey)
		assert.Equal(t, DefaultGeminiModel, cfg.AIModel)
		assert.Empty(t, cfg.AIDisabledReason)
	})

	t.Run("explicit key and model", func(t *testing.T) {
		input := baseInput()
		input.AIProvider = "openai"
		input.AIAPIKey = "sk-test"
		input.AIModel = "gpt-4o"
		input.Timeout = "90s"
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(context.Background(), cfg, input))
		assert.Equal(t, schema.OpenAIProvider, cfg.Provider)
		assert.Equal(t, "gpt-4o", cfg.AIModel)
		assert.Equal(t, 90*time.Second, cfg.Timeout)
	})
}

func TestParseRepoSlug(t *testing.T) {
	tests := []struct {
		in          string
		owner, repo string
		expectError bool
	}{
		{"golang/go", "golang", "go", false},
		{"https://github.com/spf13/cobra", "spf13", "cobra", false},
		{"https://github.com/spf13/cobra.git", "spf13", "cobra", false},
		{"github.com/spf13/viper/", "spf13", "viper", false},
		{"git@github.com:huangsam/gitgrade.git", "huangsam", "gitgrade", false},
		{"https://github.com/a/b/tree/main", "a", "b", false},
		{"  owner/repo.name  ", "owner", "repo.name", false},
		{"", "", "", true},
		{"noslash", "", "", true},
		{"bad owner/repo", "", "", true},
		{"/repo", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ParseRepoSlug(tt.in)
		if tt.expectError {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.owner, owner)
		assert.Equal(t, tt.repo, repo)
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Owner: "a", Repo: "b", Policy: schema.DefaultScoringPolicy()}
	clone := cfg.Clone()
	clone.Owner = "c"
	clone.Policy.ConventionalTypes[0] = "changed"

	assert.Equal(t, "a", cfg.Owner)
	assert.Equal(t, "feat", cfg.Policy.ConventionalTypes[0])
	assert.Equal(t, "a/b", cfg.Params()["repository"])
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "u:p@tcp(localhost:3306)/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "u:p@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=x"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=x"))
}

func TestProcessProfilingConfig(t *testing.T) {
	p := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(p, ""))
	assert.False(t, p.Enabled)
	require.NoError(t, ProcessProfilingConfig(p, "gitgrade"))
	assert.True(t, p.Enabled)
	assert.Equal(t, "gitgrade", p.Prefix)
}

func TestRevalidateAnalysis(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	base := &Config{Source: schema.GitHubSource, Owner: "golang", Repo: "go", Limit: 100, Provider: schema.NoProvider}

	tests := []struct {
		name      string
		overrides AnalysisOverrides
		wantSlug  string
		wantLimit int
		wantProv  schema.ProviderKind
		wantErr   string
	}{
		{"keeps base", AnalysisOverrides{}, "golang/go", 100, schema.NoProvider, ""},
		{"new repository", AnalysisOverrides{Owner: "octo", Repo: "hello", Limit: 20}, "octo/hello", 20, schema.NoProvider, ""},
		{"provider with env key", AnalysisOverrides{Provider: "gemini"}, "golang/go", 100, schema.GeminiProvider, ""},
		{"provider without key", AnalysisOverrides{Provider: "openai"}, "golang/go", 100, schema.NoProvider, ""},
		{"missing repo", AnalysisOverrides{Owner: "octo"}, "", 0, "", "invalid repository"},
		{"limit too large", AnalysisOverrides{Limit: MaxCommitLimit + 1}, "", 0, "", "limit must be greater than 0"},
		{"bad source", AnalysisOverrides{Source: "svn"}, "", 0, "", "invalid source"},
		{"bad provider", AnalysisOverrides{Provider: "llama"}, "", 0, "", "invalid ai-provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base.Clone()
			err := RevalidateAnalysis(context.Background(), cfg, tt.overrides)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, cfg.Slug())
			assert.Equal(t, tt.wantLimit, cfg.Limit)
			assert.Equal(t, tt.wantProv, cfg.Provider)
		})
	}
	assert.Equal(t, "golang/go", base.Slug(), "base config must not change")
}
