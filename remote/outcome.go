package remote

import (
	"github.com/goliatone/go-permissiongate/failure"
	"github.com/goliatone/go-permissiongate/gate"
)

// Outcome is the current stage of the fetch-decode pipeline. The zero value
// is NotStarted.
type Outcome struct {
	stage  gate.Stage
	err    failure.Error
	record gate.Record
}

// NotStarted is the outcome before the pipeline ever ran.
func NotStarted() Outcome {
	return Outcome{stage: gate.StageNotStarted}
}

// Pending is the outcome while a fetch is in flight.
func Pending() Outcome {
	return Outcome{stage: gate.StagePending}
}

// Failed wraps a pipeline failure.
func Failed(err failure.Error) Outcome {
	return Outcome{stage: gate.StageFailed, err: err}
}

// Succeeded wraps a decoded record.
func Succeeded(rec gate.Record) Outcome {
	return Outcome{stage: gate.StageSucceeded, record: rec}
}

// Stage returns the lifecycle stage.
func (o Outcome) Stage() gate.Stage {
	if o.stage == "" {
		return gate.StageNotStarted
	}
	return o.stage
}

// Err returns the failure of a Failed outcome.
func (o Outcome) Err() failure.Error {
	return o.err
}

// Record returns the record of a Succeeded outcome.
func (o Outcome) Record() (gate.Record, bool) {
	if o.Stage() != gate.StageSucceeded {
		return gate.Record{}, false
	}
	return o.record, true
}

// Fold maps o through the handler of its stage. All four handlers are
// required.
func Fold[T any](
	o Outcome,
	onNotStarted func() T,
	onPending func() T,
	onFailed func(failure.Error) T,
	onSucceeded func(gate.Record) T,
) T {
	switch o.Stage() {
	case gate.StagePending:
		return onPending()
	case gate.StageFailed:
		return onFailed(o.err)
	case gate.StageSucceeded:
		return onSucceeded(o.record)
	default:
		return onNotStarted()
	}
}
