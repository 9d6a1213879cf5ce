package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
	"github.com/vanshika/wormsim/internal/engine"
)

// TrialOptions controls a batch of independent runs.
type TrialOptions struct {
	Trials  int
	Workers int
	// BaseSeed seeds trial i with BaseSeed+i. Zero picks a time-based base.
	BaseSeed int64
}

// TrialSummary aggregates a batch.
type TrialSummary struct {
	Trials     int                    `json:"trials"`
	BaseSeed   int64                  `json:"baseSeed"`
	Outcomes   map[domain.Outcome]int `json:"outcomes"`
	MinRounds  int                    `json:"minRounds"`
	MaxRounds  int                    `json:"maxRounds"`
	MeanRounds float64                `json:"meanRounds"`
	Results    []Result               `json:"results,omitempty"`
}

type trialResult struct {
	index  int
	result Result
	err    error
}

// RunTrials runs opts.Trials independent simulations over the shared graph
// using a bounded worker pool. Failed trials are reported through a
// domain.TaskError alongside the summary of every trial.
func (d *Driver) RunTrials(ctx context.Context, g Graph, cfg Config, opts TrialOptions) (TrialSummary, error) {
	if err := cfg.Validate(); err != nil {
		return TrialSummary{}, err
	}
	if err := checkReferences(g, cfg); err != nil {
		return TrialSummary{}, err
	}
	if opts.Trials <= 0 {
		opts.Trials = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.BaseSeed == 0 {
		opts.BaseSeed = time.Now().UnixNano()
	}

	indexCh := make(chan int)
	resultCh := make(chan trialResult, opts.Trials)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			rng := engine.NewSource(opts.BaseSeed + int64(idx))
			res, err := d.trial(ctx, g, cfg, rng)
			if err != nil {
				err = errors.Wrapf(err, "trial %d", idx)
			}
			resultCh <- trialResult{index: idx, result: res, err: err}
		}
	}

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < opts.Trials; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(resultCh)

	summary := TrialSummary{
		Trials:   opts.Trials,
		BaseSeed: opts.BaseSeed,
		Outcomes: make(map[domain.Outcome]int),
		Results:  make([]Result, opts.Trials),
	}
	var taskErr domain.TaskError
	completed, totalRounds := 0, 0
	for tr := range resultCh {
		summary.Results[tr.index] = tr.result
		if tr.err != nil {
			if errors.Is(tr.err, context.Canceled) || errors.Is(tr.err, context.DeadlineExceeded) {
				return summary, ctx.Err()
			}
			taskErr.Append(tr.err)
		}
		if tr.result.Mode == "" {
			// Rejected before round 0.
			continue
		}
		summary.Outcomes[tr.result.Outcome]++
		if completed == 0 || tr.result.Rounds < summary.MinRounds {
			summary.MinRounds = tr.result.Rounds
		}
		if tr.result.Rounds > summary.MaxRounds {
			summary.MaxRounds = tr.result.Rounds
		}
		totalRounds += tr.result.Rounds
		completed++
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if completed > 0 {
		summary.MeanRounds = float64(totalRounds) / float64(completed)
	}
	d.logger.Debug("trials complete",
		"trials", opts.Trials,
		"workers", opts.Workers,
		"base_seed", opts.BaseSeed,
		"failed", len(taskErr.Errors),
	)
	return summary, taskErr.Err()
}

func (d *Driver) trial(ctx context.Context, g Graph, cfg Config, rng engine.Source) (Result, error) {
	seeds, err := Resolve(g, cfg, rng)
	if err != nil {
		return Result{}, err
	}
	return d.run(ctx, g, cfg, seeds, rng, NopReporter{})
}
