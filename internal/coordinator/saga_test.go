package coordinator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront-cart/internal/coordinator"
)

type recordingStep struct {
	name    string
	fail    error
	log     *[]string
	compErr error
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Execute(context.Context) error {
	*s.log = append(*s.log, "exec:"+s.name)
	return s.fail
}

func (s *recordingStep) Compensate(context.Context) error {
	*s.log = append(*s.log, "comp:"+s.name)
	return s.compErr
}

func TestOrchestrator(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var log []string
		o := coordinator.NewOrchestrator("o1", []coordinator.Step{
			&recordingStep{name: "a", log: &log},
			&recordingStep{name: "b", log: &log},
		})

		require.NoError(t, o.Start(ctx))
		assert.Equal(t, []string{"exec:a", "exec:b"}, log)
	})

	t.Run("Failure compensates in reverse", func(t *testing.T) {
		var log []string
		boom := errors.New("boom")
		o := coordinator.NewOrchestrator("o1", []coordinator.Step{
			&recordingStep{name: "a", log: &log},
			&recordingStep{name: "b", log: &log, compErr: errors.New("ignored")},
			&recordingStep{name: "c", log: &log, fail: boom},
			&recordingStep{name: "d", log: &log},
		})

		err := o.Start(ctx)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"exec:a", "exec:b", "exec:c", "comp:b", "comp:a"}, log)
	})

	t.Run("Failure reports compensation results", func(t *testing.T) {
		var log []string
		boom := errors.New("boom")
		stuck := errors.New("release refused")
		o := coordinator.NewOrchestrator("o2", []coordinator.Step{
			&recordingStep{name: "a", log: &log},
			&recordingStep{name: "b", log: &log, compErr: stuck},
			&recordingStep{name: "c", log: &log, fail: boom},
		})

		err := o.Start(ctx)

		var sagaErr *coordinator.Error
		require.ErrorAs(t, err, &sagaErr)
		assert.Equal(t, "o2", sagaErr.SagaID)
		assert.Equal(t, "c", sagaErr.Step)
		assert.Equal(t, []string{"a"}, sagaErr.Compensated)
		assert.Equal(t, map[string]error{"b": stuck}, sagaErr.CompensationErrs)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, stuck)
		assert.ErrorIs(t, err, coordinator.ErrCompensationFailed)
		assert.EqualError(t, err, "boom (rollback of b failed)")
	})

	t.Run("Clean rollback keeps the step message", func(t *testing.T) {
		var log []string
		o := coordinator.NewOrchestrator("o3", []coordinator.Step{
			&recordingStep{name: "a", log: &log},
			&recordingStep{name: "b", log: &log, fail: errors.New("card declined")},
		})

		err := o.Start(ctx)

		assert.EqualError(t, err, "card declined")
		assert.NotErrorIs(t, err, coordinator.ErrCompensationFailed)
	})

	t.Run("Compensation outlives a cancelled request", func(t *testing.T) {
		var log []string
		cctx, cancel := context.WithCancel(ctx)
		o := coordinator.NewOrchestrator("o4", []coordinator.Step{
			&ctxAwareStep{name: "a", log: &log},
			&cancellingStep{cancel: cancel},
			&recordingStep{name: "never", log: &log},
		})

		err := o.Start(cctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, coordinator.ErrCompensationFailed)
		assert.Equal(t, []string{"exec:a", "comp:a"}, log)

		var sagaErr *coordinator.Error
		require.ErrorAs(t, err, &sagaErr)
		assert.Equal(t, []string{"a"}, sagaErr.Compensated)
	})
}

// cancellingStep cancels the saga's context and fails with its error.
type cancellingStep struct {
	cancel context.CancelFunc
}

func (s *cancellingStep) Name() string { return "cancel" }

func (s *cancellingStep) Execute(ctx context.Context) error {
	s.cancel()
	return ctx.Err()
}

func (s *cancellingStep) Compensate(context.Context) error { return nil }

// ctxAwareStep fails its compensation when handed a done context.
type ctxAwareStep struct {
	name string
	log  *[]string
}

func (s *ctxAwareStep) Name() string { return s.name }

func (s *ctxAwareStep) Execute(context.Context) error {
	*s.log = append(*s.log, "exec:"+s.name)
	return nil
}

func (s *ctxAwareStep) Compensate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	*s.log = append(*s.log, "comp:"+s.name)
	return nil
}
