package functions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viant/sqlitekit/custom"
)

// Median is median(x): the middle of the non-NULL numeric values, or the
// mean of the two middle values for an even count. It is NULL over no values.
type Median struct{}

func (Median) Name() string       { return "median" }
func (Median) ArgumentCount() int { return 1 }

func (Median) Step(acc custom.Accumulator[[]float64], _ int, args ...any) ([]float64, error) {
	values, _ := acc.Get()
	switch v := args[0].(type) {
	case nil:
		return values, nil
	case int64:
		return append(values, float64(v)), nil
	case float64:
		return append(values, v), nil
	default:
		return nil, fmt.Errorf("median: non-numeric argument %T", v)
	}
}

func (Median) Final(acc custom.Accumulator[[]float64], _ int) (any, error) {
	values, _ := acc.Get()
	if len(values) == 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// DistinctConcat is distinct_concat(x, sep): the distinct non-NULL values in
// first-seen order, joined by sep.
type DistinctConcat struct{}

type distinctState struct {
	seen  map[string]struct{}
	parts []string
	sep   string
}

func (DistinctConcat) Name() string       { return "distinct_concat" }
func (DistinctConcat) ArgumentCount() int { return 2 }

func (DistinctConcat) Step(acc custom.Accumulator[distinctState], row int, args ...any) (distinctState, error) {
	state, ok := acc.Get()
	if !ok {
		state = distinctState{seen: map[string]struct{}{}}
	}
	if row == 1 {
		sep, err := text(args[1])
		if err != nil {
			return state, fmt.Errorf("distinct_concat: separator: %w", err)
		}
		state.sep = sep
	}
	if args[0] == nil {
		return state, nil
	}
	s, err := text(args[0])
	if err != nil {
		return state, fmt.Errorf("distinct_concat: %w", err)
	}
	if _, dup := state.seen[s]; !dup {
		state.seen[s] = struct{}{}
		state.parts = append(state.parts, s)
	}
	return state, nil
}

func (DistinctConcat) Final(acc custom.Accumulator[distinctState], _ int) (any, error) {
	state, _ := acc.Get()
	if len(state.parts) == 0 {
		return nil, nil
	}
	return strings.Join(state.parts, state.sep), nil
}

func text(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case int64, float64:
		return fmt.Sprint(t), nil
	default:
		return "", fmt.Errorf("unsupported value %T", v)
	}
}
