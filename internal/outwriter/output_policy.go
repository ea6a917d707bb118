package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"

	"github.com/olekukonko/tablewriter"
)

// WritePolicy displays the scoring policy: tiers, weights and thresholds.
// This is a static display that does not require any fetching.
func WritePolicy(policy schema.ScoringPolicy, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, policy)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePolicyCSV(w, policy)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("%s output is not supported for the scoring policy", cfg.Output)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePolicyText(w, policy, cfg)
		}, "Wrote policy")
	}
}

// policyRow is one flattened policy entry shared by the CSV and text renderers.
type policyRow struct {
	Section string
	Name    string
	Value   string
}

// policyRows flattens the policy in display order.
func policyRows(p schema.ScoringPolicy) []policyRow {
	var rows []policyRow
	add := func(section, name string, value any) {
		rows = append(rows, policyRow{Section: section, Name: name, Value: fmt.Sprint(value)})
	}
	addTiers := func(section, unit string, tiers []schema.Tier) {
		for _, t := range tiers {
			add(section, tierRange(t)+" "+unit, t.Points)
		}
	}

	add("message", "conventional (known type)", p.ConventionKnown)
	add("message", "conventional (other type)", p.ConventionUnknown)
	addTiers("message", "chars", p.LengthTiers)
	add("message", "imperative verb", p.ImperativeExact)
	add("message", "third-person verb", p.ImperativeThird)
	add("message", "past/progressive verb", p.ImperativeTense)
	add("message", fmt.Sprintf("capitalized (>= %d chars)", p.CapitalizedMinChars), p.ImperativeCapital)
	add("message", "other", p.ImperativeFallback)

	addTiers("size", "lines", p.LineTiers)
	addTiers("size", "files", p.FileTiers)
	add("size", "giant above lines", p.GiantThreshold)
	add("size", "tiny below lines", p.TinyThreshold)

	add("weights", "message", p.MessageWeight)
	add("weights", "size", p.SizeWeight)
	add("enhanced", "heuristic", p.EnhancedHeuristicWeight)
	add("enhanced", "clarity", p.EnhancedClarityWeight)
	add("enhanced", "completeness", p.EnhancedCompletenessWeight)
	add("enhanced", "size", p.EnhancedSizeWeight)
	add("enhanced", "technical", p.EnhancedTechnicalWeight)

	add("category", string(schema.Excellent), fmt.Sprintf(">= %d", p.ExcellentMin))
	add("category", string(schema.Good), fmt.Sprintf(">= %d", p.GoodMin))
	add("category", string(schema.NeedsImprovement), fmt.Sprintf("< %d", p.GoodMin))
	return rows
}

// tierRange renders a tier's bounds, e.g. "10-72" or "101+".
func tierRange(t schema.Tier) string {
	switch {
	case t.Max == schema.Unbounded:
		return strconv.Itoa(t.Min) + "+"
	case t.Min == t.Max:
		return strconv.Itoa(t.Min)
	default:
		return fmt.Sprintf("%d-%d", t.Min, t.Max)
	}
}

func writePolicyCSV(w io.Writer, p schema.ScoringPolicy) error {
	return writeCSVWithHeader(w, []string{"version", "section", "name", "value"}, func(csvWriter *csv.Writer) error {
		for _, r := range policyRows(p) {
			if err := csvWriter.Write([]string{p.Version, r.Section, r.Name, r.Value}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writePolicyText(w io.Writer, p schema.ScoringPolicy, cfg *contract.Config) error {
	out := &textWriter{w: w}
	out.heading(cfg, "📏", "Scoring Policy "+p.Version)
	out.printf("Commit score = %d%% message quality + %d%% size\n", p.MessageWeight, p.SizeWeight)
	out.printf("Conventional types: %s\n", strings.Join(p.ConventionalTypes, ", "))
	if out.err != nil {
		return out.err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Section", "Rule", "Points"})
	var data [][]string
	for _, r := range policyRows(p) {
		data = append(data, []string{r.Section, r.Name, r.Value})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
