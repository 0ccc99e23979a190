package custom

import (
	"fmt"

	"zombiezen.com/go/sqlite"
)

// Failures holds the first error raised by a callback since the last Take.
// A statement whose callback erred is only failed if the connection owner
// checks Take after every step. A nil *Failures discards errors.
type Failures struct {
	err error
}

func (f *Failures) record(err error) error {
	if f != nil && err != nil && f.err == nil {
		f.err = err
	}
	return err
}

// Take returns the recorded error, if any, and clears it.
func (f *Failures) Take() error {
	if f == nil {
		return nil
	}
	err := f.err
	f.err = nil
	return err
}

// ScalarImpl adapts s to the engine function callback. Errors from Call or
// from converting its result are recorded in failures.
func ScalarImpl(s Scalar, failures *Failures) *sqlite.FunctionImpl {
	return &sqlite.FunctionImpl{
		NArgs:         s.ArgumentCount(),
		Deterministic: s.Flags()&Deterministic != 0,
		Scalar: func(_ sqlite.Context, args []sqlite.Value) (sqlite.Value, error) {
			out, err := s.Call(fromValues(args)...)
			if err != nil {
				return sqlite.Value{}, failures.record(err)
			}
			v, err := ToValue(out)
			return v, failures.record(err)
		},
	}
}

// AggregateImpl adapts agg to the engine aggregate callbacks. Each SQL
// invocation gets a fresh accumulator; errors from Step or Final are
// recorded in failures.
func AggregateImpl[S any](agg Aggregate[S], failures *Failures) *sqlite.FunctionImpl {
	return &sqlite.FunctionImpl{
		NArgs: agg.ArgumentCount(),
		MakeAggregate: func(sqlite.Context) (sqlite.AggregateFunction, error) {
			return &aggregateRun[S]{agg: agg, failures: failures}, nil
		},
	}
}

// aggregateRun is the state of one aggregate invocation.
type aggregateRun[S any] struct {
	agg      Aggregate[S]
	failures *Failures
	acc      Accumulator[S]
	rows     int
}

func (r *aggregateRun[S]) Step(_ sqlite.Context, rowArgs []sqlite.Value) error {
	r.rows++
	next, err := r.agg.Step(r.acc, r.rows, fromValues(rowArgs)...)
	if err != nil {
		return r.failures.record(err)
	}
	r.acc = Accumulate(next)
	return nil
}

func (r *aggregateRun[S]) WindowInverse(sqlite.Context, []sqlite.Value) error {
	return r.failures.record(fmt.Errorf("custom: %s cannot be used as a window function", r.agg.Name()))
}

func (r *aggregateRun[S]) WindowValue(sqlite.Context) (sqlite.Value, error) {
	out, err := r.agg.Final(r.acc, 0)
	if err != nil {
		return sqlite.Value{}, r.failures.record(err)
	}
	v, err := ToValue(out)
	return v, r.failures.record(err)
}

func (r *aggregateRun[S]) Finalize(sqlite.Context) {}

// CompareFunc adapts c to the engine collation callback, clamping results to
// -1, 0 or 1.
func CompareFunc(c Collation) func(a, b string) int {
	return func(a, b string) int {
		switch n := c.Compare(a, b); {
		case n < 0:
			return -1
		case n > 0:
			return 1
		default:
			return 0
		}
	}
}
