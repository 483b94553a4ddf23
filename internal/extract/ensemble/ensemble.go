// Package ensemble fans out several extraction strategies for one URL and
// merges their candidates with weighted per-field voting. A strategy
// failure costs only that strategy's vote; the ensemble itself fails only
// when every strategy does.
package ensemble

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/extract/confidence"

	"golang.org/x/sync/errgroup"
)

// Strategy is one independent extraction attempt.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, url string) (domain.ExtractedJob, error)
}

// Outcome is one strategy's contribution, kept for diagnostics.
type Outcome struct {
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	Confidence float64 `json:"confidence"`
	Err        string  `json:"error,omitempty"`

	data domain.ExtractedJob
	ok   bool
}

// Result is the merged ensemble output.
type Result struct {
	Data       domain.ExtractedJob `json:"data"`
	Confidence float64             `json:"confidence"`
	Strategies []Outcome           `json:"strategies"`
	Consensus  bool                `json:"consensus"`
}

var ErrAllStrategiesFailed = errors.New("all strategies failed")

// Run executes all strategies concurrently and joins them, tolerating
// individual failures. The only shared state across attempts is the
// read-only URL; each goroutine writes its own slice slot.
func Run(ctx context.Context, url string, strategies []Strategy, scorer *confidence.Scorer) (Result, error) {
	outcomes := make([]Outcome, len(strategies))

	var g errgroup.Group
	for i, st := range strategies {
		i, st := i, st
		g.Go(func() error {
			out := Outcome{Name: st.Name(), Weight: confidence.StrategyWeight(st.Name())}

			data, err := st.Extract(ctx, url)
			if err != nil {
				out.Err = err.Error()
				log.Printf("[ensemble] strategy=%s err=%v", st.Name(), err)
			} else if !data.IsEmpty() {
				out.data = data
				out.ok = true
				out.Confidence = scorer.Score(data, url, st.Name(), false).Overall
			} else {
				out.Err = "no fields extracted"
			}

			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	anyOK := false
	for _, o := range outcomes {
		if o.ok {
			anyOK = true
			break
		}
	}
	if !anyOK {
		return Result{Strategies: outcomes}, ErrAllStrategiesFailed
	}

	merged := mergeFields(url, outcomes)
	consensus := hasConsensus(outcomes)

	res := Result{
		Data:       merged,
		Strategies: outcomes,
		Consensus:  consensus,
	}
	res.Confidence = scorer.Score(merged, url, "ensemble", consensus).Overall
	return res, nil
}

// mergeFields picks, per field, the candidate value with the highest total
// weight, where each strategy contributes confidence x strategy weight.
// Ties go to the first-seen candidate.
func mergeFields(url string, outcomes []Outcome) domain.ExtractedJob {
	merged := domain.ExtractedJob{SourceURL: url}

	pick := func(get func(domain.ExtractedJob) string) string {
		type cand struct {
			value  string
			weight float64
			order  int
		}
		byNorm := map[string]*cand{}
		order := 0

		for _, o := range outcomes {
			if !o.ok {
				continue
			}
			v := strings.TrimSpace(get(o.data))
			if v == "" {
				continue
			}
			k := normalize(v)
			c, seen := byNorm[k]
			if !seen {
				c = &cand{value: v, order: order}
				byNorm[k] = c
				order++
			}
			c.weight += o.Confidence * o.Weight
		}

		var best *cand
		for _, c := range byNorm {
			if best == nil ||
				c.weight > best.weight ||
				(c.weight == best.weight && c.order < best.order) {
				best = c
			}
		}
		if best == nil {
			return ""
		}
		return best.value
	}

	merged.Company = pick(func(d domain.ExtractedJob) string { return d.Company })
	merged.Position = pick(func(d domain.ExtractedJob) string { return d.Position })
	merged.Salary = pick(func(d domain.ExtractedJob) string { return d.Salary })
	merged.HourlyRate = pick(func(d domain.ExtractedJob) string { return d.HourlyRate })
	merged.Location = pick(func(d domain.ExtractedJob) string { return d.Location })
	return merged
}

// hasConsensus requires, for both company and position, at least two
// non-empty votes whose distinct normalized values form a majority
// cluster: distinct count <= ceil(votes/2).
func hasConsensus(outcomes []Outcome) bool {
	return fieldConsensus(outcomes, func(d domain.ExtractedJob) string { return d.Company }) &&
		fieldConsensus(outcomes, func(d domain.ExtractedJob) string { return d.Position })
}

func fieldConsensus(outcomes []Outcome, get func(domain.ExtractedJob) string) bool {
	distinct := map[string]bool{}
	votes := 0
	for _, o := range outcomes {
		if !o.ok {
			continue
		}
		v := strings.TrimSpace(get(o.data))
		if v == "" {
			continue
		}
		votes++
		distinct[normalize(v)] = true
	}
	if votes < 2 {
		return false
	}
	return len(distinct) <= int(math.Ceil(float64(votes)/2))
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
