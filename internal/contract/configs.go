package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/huangsam/gitgrade/schema"
)

// Default values for configuration.
const (
	DefaultCommitLimit   = 100
	MaxCommitLimit       = 1000
	DefaultWorkers       = 8
	DefaultPrecision     = 1
	MaxPrecision         = 4
	DefaultTop           = 5
	DefaultBatchSize     = 20
	MaxBatchSize         = 20
	DefaultAIConcurrency = 3
	MaxAIConcurrency     = 3
	DefaultTimeout       = 5 * time.Minute
	DefaultCacheTTL      = 24 * time.Hour

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Source   schema.SourceKind
	Owner    string
	Repo     string
	RepoPath string // local source only

	Limit   int
	Workers int
	Timeout time.Duration

	Provider         schema.ProviderKind
	AIModel          string
	AIBaseURL        string
	AIAPIKey         string // Please use env var as this is plaintext
	AIDisabledReason string
	BatchSize        int
	AIConcurrency    int

	GitHubToken  string // Please use env var as this is plaintext
	GitHubAPIURL string

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Top        int
	Width      int // Terminal width override (0 = auto-detect)

	CacheTTL time.Duration
	NoCache  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	Policy schema.ScoringPolicy

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	RepoStr string
	// OptionalRepo lets a github source start without a repository (mcp mode)
	OptionalRepo bool

	// --- Fields from rootCmd.PersistentFlags() ---
	Source            string `mapstructure:"source"`
	Limit             int    `mapstructure:"limit"`
	Workers           int    `mapstructure:"workers"`
	Timeout           string `mapstructure:"timeout"`
	Precision         int    `mapstructure:"precision"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Top               int    `mapstructure:"top"`
	Width             int    `mapstructure:"width"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Emoji             string `mapstructure:"emoji"`
	Color             string `mapstructure:"color"`

	// --- Fields from analyzeCmd.Flags() ---
	AIProvider    string `mapstructure:"ai-provider"`
	AIModel       string `mapstructure:"ai-model"`
	AIBaseURL     string `mapstructure:"ai-base-url"`
	AIAPIKey      string `mapstructure:"ai-api-key"`
	BatchSize     int    `mapstructure:"batch-size"`
	AIConcurrency int    `mapstructure:"ai-concurrency"`
	GitHubToken   string `mapstructure:"github-token"`
	GitHubAPIURL  string `mapstructure:"github-api-url"`
	CacheTTL      string `mapstructure:"cache-ttl"`
	NoCache       bool   `mapstructure:"no-cache"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Policy = c.Policy.Clone()
	return &clone
}

// Slug returns owner/repo.
func (c *Config) Slug() string {
	return c.Owner + "/" + c.Repo
}

// Params returns the non-secret settings recorded with an analysis run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"source":         string(c.Source),
		"repository":     c.Slug(),
		"limit":          c.Limit,
		"ai_provider":    string(c.Provider),
		"ai_model":       c.AIModel,
		"batch_size":     c.BatchSize,
		"ai_concurrency": c.AIConcurrency,
		"policy_version": c.Policy.Version,
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := processProvider(cfg, input); err != nil {
		return err
	}
	if err := resolveRepository(ctx, cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessOutputOnly validates the settings of commands that print without
// resolving a repository, such as score and policy.
func ProcessOutputOnly(cfg *Config, input *ConfigRawInput) error {
	return validateSimpleInputs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidCacheBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	if cfg.CacheBackend != cfg.AnalysisBackend || cfg.CacheBackend == schema.NoneBackend {
		return nil
	}
	cacheConn, analysisConn := cfg.CacheDBConnect, cfg.AnalysisDBConnect
	if cfg.CacheBackend == schema.SQLiteBackend {
		// Resolve to actual file paths to catch default path conflicts
		if cacheConn == "" {
			cacheConn = GetCacheDBFilePath()
		}
		if analysisConn == "" {
			analysisConn = GetAnalysisDBFilePath()
		}
	}
	if cacheConn == analysisConn {
		return fmt.Errorf("cache and analysis storage must use different databases. Both resolve to %q", cacheConn)
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.NoCache = input.NoCache
	cfg.Policy = schema.DefaultScoringPolicy()

	emojis, err := ParseBoolString(defaultString(input.Emoji, "no"))
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(defaultString(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxCommitLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxCommitLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Top < 1 {
		return fmt.Errorf("top must be at least 1 (received %d)", input.Top)
	}
	cfg.Top = input.Top

	cfg.Output = schema.OutputMode(strings.ToLower(defaultString(input.Output, string(schema.TextOut))))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.Source = schema.SourceKind(strings.ToLower(defaultString(input.Source, string(schema.GitHubSource))))
	if _, ok := schema.ValidSources[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be github, local", input.Source)
	}

	return validateBackendConfigs(cfg, input)
}

// processDurations parses timeout and cache TTL.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout '%s'. must be a positive duration like 5m", input.Timeout)
		}
		cfg.Timeout = d
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		d, err := time.ParseDuration(input.CacheTTL)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid cache-ttl '%s'. must be a non-negative duration like 24h", input.CacheTTL)
		}
		cfg.CacheTTL = d
	}
	return nil
}

// processProvider resolves the semantic provider and its credentials.
// A configured provider without a key is downgraded to none.
func processProvider(cfg *Config, input *ConfigRawInput) error {
	cfg.Provider = schema.ProviderKind(strings.ToLower(defaultString(input.AIProvider, string(schema.NoProvider))))
	if _, ok := schema.ValidProviders[cfg.Provider]; !ok {
		return fmt.Errorf("invalid ai-provider '%s'. must be none, openai, gemini", input.AIProvider)
	}

	if input.BatchSize < 1 || input.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch-size must be between 1 and %d (received %d)", MaxBatchSize, input.BatchSize)
	}
	cfg.BatchSize = input.BatchSize

	if input.AIConcurrency < 1 || input.AIConcurrency > MaxAIConcurrency {
		return fmt.Errorf("ai-concurrency must be between 1 and %d (received %d)", MaxAIConcurrency, input.AIConcurrency)
	}
	cfg.AIConcurrency = input.AIConcurrency

	cfg.GitHubToken = defaultString(input.GitHubToken, os.Getenv("GITHUB_TOKEN"))
	cfg.GitHubAPIURL = input.GitHubAPIURL
	cfg.AIBaseURL = input.AIBaseURL

	switch cfg.Provider {
	case schema.OpenAIProvider:
		cfg.AIAPIKey = defaultString(input.AIAPIKey, os.Getenv("OPENAI_API_KEY"))
		cfg.AIModel = defaultString(input.AIModel, DefaultOpenAIModel)
	case schema.GeminiProvider:
		cfg.AIAPIKey = defaultString(input.AIAPIKey, os.Getenv("GEMINI_API_KEY"))
		cfg.AIModel = defaultString(input.AIModel, DefaultGeminiModel)
	default:
		cfg.AIDisabledReason = "no ai-provider configured"
		return nil
	}

	if cfg.AIAPIKey == "" {
		cfg.AIDisabledReason = fmt.Sprintf("no API key for %s", cfg.Provider)
		cfg.Provider = schema.NoProvider
		cfg.AIModel = ""
	}
	return nil
}

// resolveRepository sets owner and repo from the positional argument.
func resolveRepository(ctx context.Context, cfg *Config, input *ConfigRawInput) error {
	if cfg.Source == schema.LocalSource {
		path := defaultString(strings.TrimSpace(input.RepoStr), ".")
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		root, err := NewLocalGitClient().RepoRoot(ctx, abs)
		if err != nil {
			return err
		}
		cfg.RepoPath = root
		cfg.Owner = LocalOwner
		cfg.Repo = filepath.Base(root)
		return nil
	}

	if input.OptionalRepo && strings.TrimSpace(input.RepoStr) == "" {
		return nil
	}
	owner, repo, err := ParseRepoSlug(input.RepoStr)
	if err != nil {
		return err
	}
	cfg.Owner, cfg.Repo = owner, repo
	return nil
}

var slugPartRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ParseRepoSlug extracts owner and repository name from "owner/repo" or a
// GitHub URL in https, scheme-less or scp-like SSH form.
func ParseRepoSlug(s string) (string, string, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return "", "", fmt.Errorf("repository must be given as owner/repo")
	}

	slug := raw
	for _, prefix := range []string{"https://", "http://", "ssh://", "git@"} {
		slug = strings.TrimPrefix(slug, prefix)
	}
	slug = strings.TrimPrefix(slug, "www.")
	if rest, ok := strings.CutPrefix(slug, "github.com"); ok {
		slug = strings.TrimLeft(rest, ":/")
	}
	slug = strings.TrimSuffix(strings.TrimSuffix(slug, "/"), ".git")

	parts := strings.Split(slug, "/")
	if len(parts) > 2 {
		parts = parts[:2] // tolerate /tree/main and similar suffixes
	}
	if len(parts) != 2 || !slugPartRe.MatchString(parts[0]) || !slugPartRe.MatchString(parts[1]) {
		return "", "", fmt.Errorf("invalid repository %q. expected owner/repo", raw)
	}
	return parts[0], parts[1], nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// AnalysisOverrides holds per-request settings that replace parts of a base Config.
// Zero values keep the base setting.
type AnalysisOverrides struct {
	Owner    string
	Repo     string
	RepoPath string
	Source   string
	Provider string
	Limit    int
}

// RevalidateAnalysis applies overrides to a cloned Config and validates the result.
func RevalidateAnalysis(ctx context.Context, cfg *Config, o AnalysisOverrides) error {
	if o.Source != "" {
		cfg.Source = schema.SourceKind(strings.ToLower(o.Source))
		if _, ok := schema.ValidSources[cfg.Source]; !ok {
			return fmt.Errorf("invalid source '%s'. must be github, local", o.Source)
		}
	}
	if o.Limit != 0 {
		if o.Limit < 0 || o.Limit > MaxCommitLimit {
			return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxCommitLimit, o.Limit)
		}
		cfg.Limit = o.Limit
	}
	if o.Provider != "" {
		if err := overrideProvider(cfg, schema.ProviderKind(strings.ToLower(o.Provider))); err != nil {
			return err
		}
	}

	if cfg.Source == schema.LocalSource {
		input := &ConfigRawInput{RepoStr: defaultString(o.RepoPath, cfg.RepoPath)}
		return resolveRepository(ctx, cfg, input)
	}
	if o.Owner == "" && o.Repo == "" && cfg.Owner != "" && cfg.Repo != "" {
		return nil
	}
	owner, repo, err := ParseRepoSlug(o.Owner + "/" + o.Repo)
	if err != nil {
		return err
	}
	cfg.Owner, cfg.Repo, cfg.RepoPath = owner, repo, ""
	return nil
}

// overrideProvider switches the semantic provider, picking its key from the environment
// unless it is the provider the base Config was built with.
func overrideProvider(cfg *Config, provider schema.ProviderKind) error {
	if _, ok := schema.ValidProviders[provider]; !ok {
		return fmt.Errorf("invalid ai-provider '%s'. must be none, openai, gemini", provider)
	}
	if provider == cfg.Provider {
		return nil
	}
	cfg.Provider = provider
	cfg.AIBaseURL = ""
	switch provider {
	case schema.OpenAIProvider:
		cfg.AIAPIKey, cfg.AIModel = os.Getenv("OPENAI_API_KEY"), DefaultOpenAIModel
	case schema.GeminiProvider:
		cfg.AIAPIKey, cfg.AIModel = os.Getenv("GEMINI_API_KEY"), DefaultGeminiModel
	default:
		cfg.AIAPIKey, cfg.AIModel = "", ""
		cfg.AIDisabledReason = "no ai-provider configured"
		return nil
	}
	if cfg.AIAPIKey == "" {
		cfg.AIDisabledReason = fmt.Sprintf("no API key for %s", provider)
		cfg.Provider, cfg.AIModel = schema.NoProvider, ""
	}
	return nil
}
