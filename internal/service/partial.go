package service

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/observability"
)

// Secondary steps that may fail after a primary write succeeded.
const (
	StepAudit        = "audit"
	StepNotification = "notification"
	StepEvent        = "event"
	StepRealtime     = "realtime"
)

// StepFailure is one failed secondary step.
type StepFailure struct {
	Step string
	Err  error
}

// PartialFailure reports that the primary effect of Operation was kept while
// one or more secondary steps failed. Callers receive it together with the
// result of the primary write.
type PartialFailure struct {
	Operation string
	Failures  []StepFailure
}

func (p *PartialFailure) Error() string {
	steps := make([]string, 0, len(p.Failures))
	for _, f := range p.Failures {
		steps = append(steps, f.Step)
	}
	return p.Operation + " completed with failed steps: " + strings.Join(steps, ", ")
}

// Unwrap exposes the step errors to errors.Is and errors.As.
func (p *PartialFailure) Unwrap() []error {
	errs := make([]error, 0, len(p.Failures))
	for _, f := range p.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Steps lists the failed step names.
func (p *PartialFailure) Steps() []string {
	steps := make([]string, 0, len(p.Failures))
	for _, f := range p.Failures {
		steps = append(steps, f.Step)
	}
	return steps
}

// AsPartial extracts a PartialFailure from err.
func AsPartial(err error) (*PartialFailure, bool) {
	var p *PartialFailure
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}

// stepTracker collects secondary failures of one operation, logging and
// counting each as it happens.
type stepTracker struct {
	operation string
	logger    *zap.Logger
	metrics   *observability.Metrics
	fields    []zap.Field
	failures  []StepFailure
}

func newStepTracker(operation string, logger *zap.Logger, metrics *observability.Metrics, fields ...zap.Field) *stepTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &stepTracker{operation: operation, logger: logger, metrics: metrics, fields: fields}
}

func (t *stepTracker) record(step string, err error) {
	if err == nil {
		return
	}
	fields := append([]zap.Field{zap.String("operation", t.operation), zap.String("step", step), zap.Error(err)}, t.fields...)
	t.logger.Warn("secondary write failed", fields...)
	t.metrics.RecordPartialFailure(t.operation, step)
	t.failures = append(t.failures, StepFailure{Step: step, Err: err})
}

func (t *stepTracker) err() error {
	if len(t.failures) == 0 {
		return nil
	}
	return &PartialFailure{Operation: t.operation, Failures: t.failures}
}
