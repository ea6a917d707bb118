package algo

import "github.com/huangsam/gitgrade/schema"

// scoreSize scores the diff magnitude of a commit against the policy.
func scoreSize(p *schema.ScoringPolicy, stats schema.CommitStats) schema.SizeScore {
	lines := stats.Lines()
	files := max(0, stats.FilesChanged)

	out := schema.SizeScore{
		Lines:   schema.LookupTier(p.LineTiers, lines),
		Files:   schema.LookupTier(p.FileTiers, files),
		IsGiant: lines > p.GiantThreshold,
		IsTiny:  lines < p.TinyThreshold,
	}
	out.Total = ClampInt(out.Lines+out.Files, 0, 100)
	return out
}
