package custom

import (
	"fmt"
	"math"

	"zombiezen.com/go/sqlite"
)

// FromValue converts an engine value into int64, float64, string, []byte or nil.
func FromValue(v sqlite.Value) any {
	switch v.Type() {
	case sqlite.TypeInteger:
		return v.Int64()
	case sqlite.TypeFloat:
		return v.Float()
	case sqlite.TypeText:
		return v.Text()
	case sqlite.TypeBlob:
		return v.Blob()
	default:
		return nil
	}
}

func fromValues(args []sqlite.Value) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = FromValue(a)
	}
	return out
}

// ToValue converts a Go scalar into an engine value. nil yields SQL NULL.
func ToValue(x any) (sqlite.Value, error) {
	switch v := x.(type) {
	case nil:
		return sqlite.Value{}, nil
	case int64:
		return sqlite.IntegerValue(v), nil
	case int:
		return sqlite.IntegerValue(int64(v)), nil
	case int32:
		return sqlite.IntegerValue(int64(v)), nil
	case int16:
		return sqlite.IntegerValue(int64(v)), nil
	case int8:
		return sqlite.IntegerValue(int64(v)), nil
	case uint32:
		return sqlite.IntegerValue(int64(v)), nil
	case uint16:
		return sqlite.IntegerValue(int64(v)), nil
	case uint8:
		return sqlite.IntegerValue(int64(v)), nil
	case uint:
		return unsignedValue(uint64(v))
	case uint64:
		return unsignedValue(v)
	case bool:
		if v {
			return sqlite.IntegerValue(1), nil
		}
		return sqlite.IntegerValue(0), nil
	case float64:
		return sqlite.FloatValue(v), nil
	case float32:
		return sqlite.FloatValue(float64(v)), nil
	case string:
		return sqlite.TextValue(v), nil
	case []byte:
		return sqlite.BlobValue(v), nil
	default:
		return sqlite.Value{}, fmt.Errorf("custom: unsupported result type %T", x)
	}
}

func unsignedValue(v uint64) (sqlite.Value, error) {
	if v > math.MaxInt64 {
		return sqlite.Value{}, fmt.Errorf("custom: result %d overflows INTEGER", v)
	}
	return sqlite.IntegerValue(int64(v)), nil
}
