package custom

// Flags is a bitset describing a scalar function.
type Flags int

const (
	// Deterministic marks a function that always returns the same result
	// for the same inputs within a single statement, letting the engine
	// factor calls out.
	Deterministic Flags = 0x800
)

// Variadic is the argument count of a function accepting any number of
// arguments.
const Variadic = -1

// Scalar is an SQL function evaluated once per row per usage site.
//
// Arguments arrive as int64, float64, string, []byte or nil. Call must
// return one of those types (bool and the other Go integer and float kinds
// are converted). Implementations flagged Deterministic must be free of side
// effects.
type Scalar interface {
	// Name is the SQL name of the function to create or redefine.
	Name() string
	// ArgumentCount is the number of arguments taken, or Variadic.
	ArgumentCount() int
	// Flags returns the function flags.
	Flags() Flags
	// Call computes the function result.
	Call(args ...any) (any, error)
}

// Accumulator holds the state threaded through aggregate steps. It is empty
// on the first step, and when Final runs after zero rows.
type Accumulator[S any] struct {
	state S
	valid bool
}

// Accumulate wraps state as a non-empty accumulator.
func Accumulate[S any](state S) Accumulator[S] {
	return Accumulator[S]{state: state, valid: true}
}

// Get returns the state and whether any step has produced one.
func (a Accumulator[S]) Get() (S, bool) { return a.state, a.valid }

// Aggregate is an SQL aggregate function expressed as a fold.
//
// Step is called once per row with the accumulator returned by the previous
// step and the 1-based row number; Final is called exactly once after the
// last row, with rowNumber 0.
type Aggregate[S any] interface {
	Name() string
	ArgumentCount() int
	Step(acc Accumulator[S], rowNumber int, args ...any) (S, error)
	Final(acc Accumulator[S], rowNumber int) (any, error)
}

// Collation is a named text comparator. Compare must be a strict weak
// ordering; a negative result sorts a before b, positive after, zero equal.
type Collation interface {
	Name() string
	Compare(a, b string) int
}
