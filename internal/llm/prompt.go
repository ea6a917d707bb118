package llm

import (
	"encoding/json"
	"strings"

	"github.com/huangsam/gitgrade/schema"
)

// systemPrompt instructs the model on the judgment and response shape.
const systemPrompt = `You review git commit messages for a code quality report.
For every commit you receive, judge the message and return one JSON object per commit.
Respond with JSON only, no prose and no Markdown, shaped as {"results": [...]} where each element is:
{"sha": "<sha as given>", "intent": "<one of: feature, bugfix, refactor, documentation, testing, performance, style, maintenance, other>", "clarity": <0-100>, "completeness": <0-100>, "technicalQuality": <0-100>, "summary": "<one sentence>"}
clarity: how easily a reviewer understands what changed.
completeness: whether the message explains what and why, not only how.
technicalQuality: precision of the vocabulary and scope of the change.`

// userPrompt renders the batch as a JSON list the model can echo shas from.
func userPrompt(items []schema.SemanticItem) string {
	var sb strings.Builder
	sb.WriteString("Analyze these commits:\n")
	data, _ := json.MarshalIndent(items, "", "  ") // strings only, cannot fail
	sb.Write(data)
	return sb.String()
}
