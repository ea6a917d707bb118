package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// SourceKind represents where commit history is fetched from.
	SourceKind string

	// ProviderKind represents the semantic-analysis provider.
	ProviderKind string

	// AIStatus represents how much of a run was enhanced by the provider.
	AIStatus string

	// Category classifies a contributor by average score.
	Category string

	// AntiPatternType names a commit-level anti-pattern.
	AntiPatternType string

	// Intent is the semantic intent of a commit as judged by the provider.
	Intent string

	// RiskLevel grades knowledge-silo risk.
	RiskLevel string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All commit sources supported.
const (
	GitHubSource SourceKind = "github" // default
	LocalSource  SourceKind = "local"
)

// All semantic providers supported.
const (
	NoProvider     ProviderKind = "none" // default
	OpenAIProvider ProviderKind = "openai"
	GeminiProvider ProviderKind = "gemini"
)

// AI enhancement states attached to every result.
const (
	AIFull     AIStatus = "full"
	AIPartial  AIStatus = "partial"
	AIDisabled AIStatus = "disabled"
)

// Contributor categories.
const (
	Excellent        Category = "Excellent"
	Good             Category = "Good"
	NeedsImprovement Category = "NeedsImprovement"
)

// Anti-pattern types.
const (
	GiantCommit AntiPatternType = "giant_commit"
	TinyCommit  AntiPatternType = "tiny_commit"
	WIPCommit   AntiPatternType = "wip_commit"
	MergeCommit AntiPatternType = "merge_commit"
)

// Semantic intents.
const (
	FeatureIntent       Intent = "feature"
	BugfixIntent        Intent = "bugfix"
	RefactorIntent      Intent = "refactor"
	DocumentationIntent Intent = "documentation"
	TestingIntent       Intent = "testing"
	PerformanceIntent   Intent = "performance"
	StyleIntent         Intent = "style"
	MaintenanceIntent   Intent = "maintenance"
	OtherIntent         Intent = "other"
)

// Knowledge-silo risk levels.
const (
	HighRisk   RiskLevel = "high"
	MediumRisk RiskLevel = "medium"
	LowRisk    RiskLevel = "low"
)

// AllAntiPatternTypes lists anti-pattern types in display order.
var AllAntiPatternTypes = []AntiPatternType{GiantCommit, TinyCommit, WIPCommit, MergeCommit}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSources lists all valid commit sources.
var ValidSources = map[SourceKind]struct{}{
	GitHubSource: {},
	LocalSource:  {},
}

// ValidProviders lists all valid semantic providers.
var ValidProviders = map[ProviderKind]struct{}{
	NoProvider:     {},
	OpenAIProvider: {},
	GeminiProvider: {},
}

// ValidIntents is the closed set of intents a provider may return.
var ValidIntents = map[Intent]struct{}{
	FeatureIntent:       {},
	BugfixIntent:        {},
	RefactorIntent:      {},
	DocumentationIntent: {},
	TestingIntent:       {},
	PerformanceIntent:   {},
	StyleIntent:         {},
	MaintenanceIntent:   {},
	OtherIntent:         {},
}
