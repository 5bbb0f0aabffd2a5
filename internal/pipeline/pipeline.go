// Package pipeline runs one end-to-end triage pass: tokenize, classify,
// ask the advisory service, recover its reply and merge the result.
// Independent runs share no state.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/logtriage/logtriage/internal/ai"
	"github.com/logtriage/logtriage/internal/classify"
	"github.com/logtriage/logtriage/internal/common"
	"github.com/logtriage/logtriage/internal/merge"
	"github.com/logtriage/logtriage/internal/parser"
	"github.com/logtriage/logtriage/internal/prompt"
	"github.com/logtriage/logtriage/internal/recovery"
)

// FallbackRecommendation fills the recommendation field of records
// synthesized when the advisory reply yields nothing usable.
const FallbackRecommendation = "Не удалось получить рекомендации от LLM."

// Options wire the pipeline stages. Nil stages get defaults; a nil
// Provider selects offline mode, which skips the advisory call entirely.
type Options struct {
	Tokenizer  *parser.Tokenizer
	Classifier *classify.Classifier
	Recovery   *recovery.Engine
	Merger     *merge.Merger
	Provider   ai.Provider
	Logger     *logrus.Logger

	// MinLevel applies to the lenient fallback ingestion used when the
	// structured tokenizer matches nothing.
	MinLevel common.LogLevel
}

// Result is the outcome of one pass.
type Result struct {
	// Classified groups, sorted by descending frequency.
	Classified []*common.ClassifiedError

	// Problems is the final merged record list.
	Problems []common.ProblemRecord

	// Strategy tags how the advisory reply was recovered; StrategyNone
	// means the fallback floor was used.
	Strategy recovery.Strategy

	// Offline is set when no advisory call was made.
	Offline bool
}

type Pipeline struct {
	tokenizer  *parser.Tokenizer
	classifier *classify.Classifier
	recovery   *recovery.Engine
	merger     *merge.Merger
	provider   ai.Provider
	minLevel   common.LogLevel
	log        *logrus.Logger
}

func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	tok := opts.Tokenizer
	if tok == nil {
		tok = parser.New(parser.DefaultOptions())
	}
	cls := opts.Classifier
	if cls == nil {
		cls = classify.New(classify.DefaultOptions())
	}
	rec := opts.Recovery
	if rec == nil {
		rec = recovery.New(log)
	}
	mrg := opts.Merger
	if mrg == nil {
		mrg = merge.New(merge.DefaultOptions())
	}
	minLevel := opts.MinLevel
	if minLevel == 0 {
		minLevel = common.LevelWarn
	}
	return &Pipeline{
		tokenizer:  tok,
		classifier: cls,
		recovery:   rec,
		merger:     mrg,
		provider:   opts.Provider,
		minLevel:   minLevel,
		log:        log,
	}
}

// Run executes one pass over raw log content. The only hard failure that
// crosses this boundary is the advisory call itself; everything else
// degrades to the fallback floor or an empty result.
func (p *Pipeline) Run(ctx context.Context, content string) (*Result, error) {
	records, err := p.tokenizer.Tokenize(content)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	if len(records) == 0 {
		records, err = parser.TokenizeFallback(content, p.minLevel)
		if err != nil {
			p.log.WithError(err).Debug("fallback ingestion failed")
		} else if len(records) > 0 {
			p.log.WithField("records", len(records)).Info("structured pattern matched nothing, used auto-detected format")
		}
	}
	p.log.WithField("records", len(records)).Info("tokenized warning/error records")

	classified := p.classifier.Classify(records)
	p.log.WithField("groups", len(classified)).Info("classified error groups")
	if len(classified) == 0 {
		return &Result{Strategy: recovery.StrategyNone, Offline: p.provider == nil}, nil
	}

	if p.provider == nil {
		p.log.Info("no advisory provider configured, using classification only")
		return &Result{
			Classified: classified,
			Problems:   p.merger.Merge(synthesizeFallback(classified)),
			Strategy:   recovery.StrategyNone,
			Offline:    true,
		}, nil
	}

	built := prompt.Build(classified)
	resp, err := p.provider.Complete(ctx, &ai.CompletionRequest{
		Prompt:       built.String(),
		SystemPrompt: built.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("advisory call: %w", err)
	}

	recovered := p.recovery.Recover(resp.Content)
	problems := recovered.Records
	if len(problems) == 0 {
		p.log.Warn("advisory reply yielded no records, synthesizing from classification")
		problems = synthesizeFallback(classified)
	} else {
		problems = correlate(problems, classified)
	}

	return &Result{
		Classified: classified,
		Problems:   p.merger.Merge(problems),
		Strategy:   recovered.Strategy,
	}, nil
}

// correlate backfills recovered records rank-for-rank against the
// classified groups: the example is injected, the frequency is overwritten
// with the authoritative count and the criticality is never lowered.
func correlate(problems []common.ProblemRecord, classified []*common.ClassifiedError) []common.ProblemRecord {
	out := make([]common.ProblemRecord, len(problems))
	for i, pr := range problems {
		if i < len(classified) {
			c := classified[i]
			pr.ExampleMessage = c.ExampleMessages
			pr.Frequency = c.Frequency
			pr.Criticality = common.MaxCriticality(pr.Criticality, c.Criticality)
		}
		out[i] = pr
	}
	return out
}

// synthesizeFallback is the guaranteed total-failure floor: one record per
// classified group with a placeholder recommendation.
func synthesizeFallback(classified []*common.ClassifiedError) []common.ProblemRecord {
	out := make([]common.ProblemRecord, 0, len(classified))
	for _, c := range classified {
		out = append(out, common.ProblemRecord{
			Message:        c.Message,
			ExampleMessage: c.ExampleMessages,
			Frequency:      c.Frequency,
			Criticality:    c.Criticality,
			Recommendation: FallbackRecommendation,
		})
	}
	return out
}
