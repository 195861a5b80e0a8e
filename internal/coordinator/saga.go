// Package coordinator runs an order's side effects as a saga: each step has
// a compensating action, and a failing step rolls back the ones before it.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// ErrCompensationFailed is matched by a saga Error when at least one rollback
// did not succeed and the side effects of the saga are only partly undone.
var ErrCompensationFailed = errors.New("saga compensation failed")

// Step is a single unit of work in the saga.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Error reports a failed saga: the step that failed, the steps rolled back
// cleanly and those whose rollback failed.
type Error struct {
	SagaID string

	// Step is the name of the step whose Execute failed.
	Step string
	Err  error

	// Compensated lists the steps rolled back cleanly, most recent first.
	Compensated []string

	// CompensationErrs maps each step whose Compensate failed to its error.
	CompensationErrs map[string]error
}

func (e *Error) Error() string {
	if len(e.CompensationErrs) == 0 {
		return e.Err.Error()
	}
	names := slices.Sorted(maps.Keys(e.CompensationErrs))
	return fmt.Sprintf("%v (rollback of %s failed)", e.Err, strings.Join(names, ", "))
}

// Unwrap exposes the step error and, when a rollback failed,
// ErrCompensationFailed together with each compensation error.
func (e *Error) Unwrap() []error {
	errs := []error{e.Err}
	if len(e.CompensationErrs) > 0 {
		errs = append(errs, ErrCompensationFailed)
		for _, err := range e.CompensationErrs {
			errs = append(errs, err)
		}
	}
	return errs
}

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	sagaID string
	steps  []Step
}

func NewOrchestrator(sagaID string, steps []Step) *Orchestrator {
	return &Orchestrator{sagaID: sagaID, steps: steps}
}

// Start runs the steps in order. When one fails, the steps that already
// succeeded are compensated in reverse and a *Error is returned.
//
// Compensation runs even if ctx was cancelled while a step executed, so an
// abandoned request still releases what it reserved.
func (o *Orchestrator) Start(ctx context.Context) error {
	var successfulSteps []Step

	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "saga step failed, rolling back", "saga_id", o.sagaID, "step", step.Name(), "error", err)
			sagaErr := &Error{SagaID: o.sagaID, Step: step.Name(), Err: err}
			o.rollback(context.WithoutCancel(ctx), successfulSteps, sagaErr)
			return sagaErr
		}
		successfulSteps = append(successfulSteps, step)
	}

	slog.InfoContext(ctx, "saga completed", "saga_id", o.sagaID)
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step, sagaErr *Error) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating saga step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate saga step", "saga_id", o.sagaID, "step", step.Name(), "error", err)
			if sagaErr.CompensationErrs == nil {
				sagaErr.CompensationErrs = make(map[string]error)
			}
			sagaErr.CompensationErrs[step.Name()] = err
			continue
		}
		sagaErr.Compensated = append(sagaErr.Compensated, step.Name())
	}
}
