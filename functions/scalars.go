package functions

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/viant/sqlitekit/custom"
)

// XXH3 is xxh3(x): the 64-bit XXH3 hash of a TEXT or BLOB, reinterpreted as
// a signed INTEGER. Numbers hash their decimal text form.
type XXH3 struct{}

func (XXH3) Name() string        { return "xxh3" }
func (XXH3) ArgumentCount() int  { return 1 }
func (XXH3) Flags() custom.Flags { return custom.Deterministic }

func (XXH3) Call(args ...any) (any, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return int64(xxh3.HashString(v)), nil
	case []byte:
		return int64(xxh3.Hash(v)), nil
	case int64:
		return int64(xxh3.HashString(strconv.FormatInt(v, 10))), nil
	case float64:
		return int64(xxh3.HashString(strconv.FormatFloat(v, 'g', -1, 64))), nil
	default:
		return nil, fmt.Errorf("xxh3: unsupported argument type %T", v)
	}
}

// UUID is uuid(): a random version 4 UUID. It is not deterministic, so the
// engine evaluates it once per row.
type UUID struct{}

func (UUID) Name() string        { return "uuid" }
func (UUID) ArgumentCount() int  { return 0 }
func (UUID) Flags() custom.Flags { return 0 }

func (UUID) Call(...any) (any, error) {
	return uuid.NewString(), nil
}

// HumanizeBytes is humanize_bytes(n): a byte count in SI units ("82 MB").
type HumanizeBytes struct{}

func (HumanizeBytes) Name() string        { return "humanize_bytes" }
func (HumanizeBytes) ArgumentCount() int  { return 1 }
func (HumanizeBytes) Flags() custom.Flags { return custom.Deterministic }

func (HumanizeBytes) Call(args ...any) (any, error) {
	var n int64
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case int64:
		n = v
	case float64:
		n = int64(v)
	default:
		return nil, fmt.Errorf("humanize_bytes: want a number, got %T", v)
	}
	if n < 0 {
		return nil, fmt.Errorf("humanize_bytes: negative size %d", n)
	}
	return humanize.Bytes(uint64(n)), nil
}

// ParseBytes is parse_bytes(text): the byte count of a human readable size
// such as "42 MB" or "1.5GiB".
type ParseBytes struct{}

func (ParseBytes) Name() string        { return "parse_bytes" }
func (ParseBytes) ArgumentCount() int  { return 1 }
func (ParseBytes) Flags() custom.Flags { return custom.Deterministic }

func (ParseBytes) Call(args ...any) (any, error) {
	s, ok := args[0].(string)
	if !ok {
		if args[0] == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("parse_bytes: want TEXT, got %T", args[0])
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return nil, fmt.Errorf("parse_bytes: %w", err)
	}
	return n, nil
}
