package functions

import (
	"fmt"

	"github.com/viant/vec/search"

	"github.com/viant/sqlitekit/custom"
)

// VecCosine is vec_cosine(a, b): the cosine similarity of two embedding
// BLOBs. A NULL or empty argument yields NULL.
type VecCosine struct{}

func (VecCosine) Name() string        { return "vec_cosine" }
func (VecCosine) ArgumentCount() int  { return 2 }
func (VecCosine) Flags() custom.Flags { return custom.Deterministic }

func (f VecCosine) Call(args ...any) (any, error) {
	a, b, err := embeddingPair(f.Name(), args)
	if a == nil || b == nil || err != nil {
		return nil, err
	}
	va, vb := search.Float32s(a), search.Float32s(b)
	if va.Magnitude() == 0 || vb.Magnitude() == 0 {
		return nil, fmt.Errorf("%s: zero-magnitude vector", f.Name())
	}
	return float64(1 - va.CosineDistance(b)), nil
}

// VecL2 is vec_l2(a, b): the Euclidean distance of two embedding BLOBs.
type VecL2 struct{}

func (VecL2) Name() string        { return "vec_l2" }
func (VecL2) ArgumentCount() int  { return 2 }
func (VecL2) Flags() custom.Flags { return custom.Deterministic }

func (f VecL2) Call(args ...any) (any, error) {
	a, b, err := embeddingPair(f.Name(), args)
	if a == nil || b == nil || err != nil {
		return nil, err
	}
	return float64(search.Float32s(a).EuclideanDistance(b)), nil
}

func embeddingPair(fn string, args []any) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", fn, len(args))
	}
	a, err := embeddingArg(fn, args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := embeddingArg(fn, args[1])
	if err != nil {
		return nil, nil, err
	}
	if a != nil && b != nil && len(a) != len(b) {
		return nil, nil, fmt.Errorf("%s: dimension mismatch %d vs %d", fn, len(a), len(b))
	}
	return a, b, nil
}
