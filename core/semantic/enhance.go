// Package semantic blends heuristic commit scores with language-model judgments.
// It is the only part of the pipeline that performs I/O, through an injected
// contract.SemanticProvider, and it never fails a run: commits whose batch
// fails keep their heuristic score.
package semantic

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huangsam/gitgrade/core/algo"
	"github.com/huangsam/gitgrade/internal/contract"
	"github.com/huangsam/gitgrade/schema"
	"golang.org/x/sync/errgroup"
)

// Options tunes batching, concurrency and retries.
type Options struct {
	BatchSize      int           // items per provider call, at most 20
	MaxConcurrent  int           // batches in flight, at most 3
	MaxAttempts    int           // provider calls per batch including the first
	InitialBackoff time.Duration // first retry delay, doubled per attempt
	Policy         *schema.ScoringPolicy
	Warn           func(msg string, err error) // called for failed batches; must be goroutine-safe
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		BatchSize:      contract.MaxBatchSize,
		MaxConcurrent:  contract.MaxAIConcurrency,
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		Warn:           contract.LogWarn,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 || o.BatchSize > contract.MaxBatchSize {
		o.BatchSize = d.BatchSize
	}
	if o.MaxConcurrent <= 0 || o.MaxConcurrent > contract.MaxAIConcurrency {
		o.MaxConcurrent = d.MaxConcurrent
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = d.InitialBackoff
	}
	if o.Warn == nil {
		o.Warn = func(string, error) {}
	}
	return o
}

// EnhancementResult is the output of one enhancement run.
type EnhancementResult struct {
	Enhanced []schema.EnhancedCommitScore // one per input score, same order
	Analyses map[string]schema.SemanticAnalysis
	Usage    schema.TokenUsage
	Status   schema.AIStatus
	Analyzed int
	Provider string
}

// OverallIndex maps sha to enhanced overall score.
func (r EnhancementResult) OverallIndex() map[string]int {
	idx := make(map[string]int, len(r.Enhanced))
	for _, e := range r.Enhanced {
		idx[e.SHA] = e.Overall
	}
	return idx
}

// Enhancer runs batched semantic analysis against one provider.
type Enhancer struct {
	provider contract.SemanticProvider
	opts     Options
	scorer   *algo.Scorer
}

// NewEnhancer creates an enhancer. A nil provider disables enhancement.
func NewEnhancer(provider contract.SemanticProvider, opts Options) *Enhancer {
	opts = opts.normalized()
	policy := schema.DefaultScoringPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	return &Enhancer{provider: provider, opts: opts, scorer: algo.NewScorer(policy)}
}

// batchResult is owned by exactly one goroutine until the group settles.
type batchResult struct {
	outcomes map[string]ParseOutcome
	usage    schema.TokenUsage
}

// Enhance analyzes the commits behind scores and merges the analyses by sha.
// Cancelling ctx abandons in-flight batches; their commits fall back to the
// heuristic score. The result is always complete.
func (e *Enhancer) Enhance(ctx context.Context, commits []schema.Commit, scores []schema.CommitScore) EnhancementResult {
	if e.provider == nil {
		return e.merge(scores, nil, schema.TokenUsage{}, schema.AIDisabled, "")
	}

	batches := Batch(Items(commits), e.opts.BatchSize)
	results := make([]batchResult, len(batches))

	var g errgroup.Group
	g.SetLimit(e.opts.MaxConcurrent)
	for i, batch := range batches {
		g.Go(func() error {
			results[i] = e.runBatch(ctx, i, batch)
			return nil // failures degrade, they never cancel siblings
		})
	}
	_ = g.Wait()

	analyses := make(map[string]schema.SemanticAnalysis)
	var usage schema.TokenUsage
	for _, r := range results {
		usage = usage.Add(r.usage)
		for sha, o := range r.outcomes {
			if o.OK() {
				analyses[sha] = *o.Analysis
			}
		}
	}

	res := e.merge(scores, analyses, usage, schema.AIDisabled, e.provider.Name())
	res.Status = StatusOf(res.Analyzed, len(scores))
	return res
}

// StatusOf classifies coverage: full when every commit was analyzed, partial
// when some were, disabled when none were.
func StatusOf(analyzed, total int) schema.AIStatus {
	switch {
	case analyzed <= 0 || total <= 0:
		return schema.AIDisabled
	case analyzed < total:
		return schema.AIPartial
	default:
		return schema.AIFull
	}
}

func (e *Enhancer) runBatch(ctx context.Context, idx int, batch []schema.SemanticItem) batchResult {
	var res batchResult
	var resp contract.BatchResponse

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = e.opts.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(e.opts.MaxAttempts-1)), ctx)

	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		r, err := e.provider.AnalyzeBatch(ctx, batch)
		// Failed attempts may still have been billed.
		u := r.Usage
		u.Requests = max(1, u.Requests)
		u.FailedBatches = 0
		res.usage = res.usage.Add(u)
		if err != nil {
			if !contract.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}, policy)
	if err != nil {
		res.usage.FailedBatches = 1
		e.opts.Warn(fmt.Sprintf("semantic batch %d (%d commits) failed", idx+1, len(batch)), err)
		return res
	}

	res.outcomes = ParseBatchResponse(resp.Content, batch)
	if failed := countFailed(res.outcomes); failed == len(batch) {
		res.usage.FailedBatches = 1
		e.opts.Warn(fmt.Sprintf("semantic batch %d returned no usable analyses", idx+1), firstErr(res.outcomes))
	}
	return res
}

func (e *Enhancer) merge(scores []schema.CommitScore, analyses map[string]schema.SemanticAnalysis, usage schema.TokenUsage, status schema.AIStatus, provider string) EnhancementResult {
	out := EnhancementResult{
		Enhanced: make([]schema.EnhancedCommitScore, 0, len(scores)),
		Analyses: make(map[string]schema.SemanticAnalysis, len(analyses)),
		Usage:    usage,
		Status:   status,
		Provider: provider,
	}
	for _, s := range scores {
		var ptr *schema.SemanticAnalysis
		if a, ok := analyses[s.SHA]; ok {
			ptr = &a
			out.Analyses[s.SHA] = a
			out.Analyzed++
		}
		out.Enhanced = append(out.Enhanced, e.scorer.Enhanced(s, ptr))
	}
	return out
}

// Items converts commits to provider input, dropping repeated shas.
func Items(commits []schema.Commit) []schema.SemanticItem {
	seen := make(map[string]struct{}, len(commits))
	items := make([]schema.SemanticItem, 0, len(commits))
	for _, c := range commits {
		if _, dup := seen[c.SHA]; dup {
			continue
		}
		seen[c.SHA] = struct{}{}
		items = append(items, schema.SemanticItem{SHA: c.SHA, Message: algo.Subject(c.Message), Body: algo.Body(c.Message)})
	}
	return items
}

// Batch splits items into consecutive chunks of at most size.
func Batch(items []schema.SemanticItem, size int) [][]schema.SemanticItem {
	if size <= 0 {
		size = contract.MaxBatchSize
	}
	var out [][]schema.SemanticItem
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}

func countFailed(outcomes map[string]ParseOutcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

func firstErr(outcomes map[string]ParseOutcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}
