// Package pipeline applies an ordered chain of record-level stages
// (filters, validators, processors) to a single record at a time.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dguimard/easy-batch/pkg/batch"
)

// Outcome is the three-way result of running one record through a Pipeline.
type Outcome int

const (
	// Accepted means every stage kept the record; Result.Output holds it.
	Accepted Outcome = iota
	// Filtered means some stage dropped the record without error.
	Filtered
	// Errored means some stage raised; Result.Cause holds the error.
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "Accepted"
	case Filtered:
		return "Filtered"
	case Errored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// Result is the return value of Pipeline.Process.
type Result struct {
	Outcome Outcome
	Output  batch.Record[any]
	Cause   error
}

// Pipeline is an ordered, immutable chain of stages.
type Pipeline struct {
	stages []batch.Stage
}

// New builds a Pipeline from zero or more stages, applied in order.
func New(stages ...batch.Stage) *Pipeline {
	cp := make([]batch.Stage, len(stages))
	copy(cp, stages)
	return &Pipeline{stages: cp}
}

// Process runs rec through every stage in order. The first stage that
// drops or raises short-circuits the remaining stages; subsequent stages
// are not invoked. A stage that panics is treated like one that returned
// an error: the result is Errored with the panic as its Cause.
func (p *Pipeline) Process(ctx context.Context, rec batch.Record[any]) (result Result) {
	current := rec
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			result = Result{Outcome: Errored, Output: current, Cause: err}
		}
	}()
	for _, stage := range p.stages {
		out, ok, err := stage.Apply(ctx, current)
		if err != nil {
			return Result{Outcome: Errored, Output: current, Cause: err}
		}
		if !ok {
			return Result{Outcome: Filtered, Output: current}
		}
		current = out
	}
	return Result{Outcome: Accepted, Output: current}
}
