package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pidsim/internal/dynamo"
)

// Job is one independent closed-loop run. Each job needs its own simulator:
// controllers and plants carry state and are not safe to share.
type Job struct {
	Name      string
	Simulator *Simulator
	X0        dynamo.State
	Config    dynamo.Config
}

// RunAll runs jobs concurrently and returns results in job order. The first
// failing job cancels the others.
func RunAll(ctx context.Context, jobs []Job) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		g.Go(func() error {
			res, err := job.Simulator.Run(ctx, job.X0, job.Config)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
