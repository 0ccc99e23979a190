package functions

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/viant/sqlitekit/custom"
	"github.com/viant/sqlitekit/database"
)

// Scalars returns every scalar function in the package.
func Scalars() []custom.Scalar {
	return []custom.Scalar{VecCosine{}, VecL2{}, XXH3{}, UUID{}, HumanizeBytes{}, ParseBytes{}}
}

// Register installs the package's functions and collations on conn:
// vec_cosine, vec_l2, xxh3, uuid, humanize_bytes, parse_bytes, median,
// distinct_concat and the UNICODE / UNICODE_NOCASE collations.
func Register(conn *database.Conn) error {
	for _, fn := range Scalars() {
		if err := conn.RegisterScalarFunction(fn); err != nil {
			return err
		}
	}
	if err := database.RegisterAggregate[[]float64](conn, Median{}); err != nil {
		return err
	}
	if err := database.RegisterAggregate[distinctState](conn, DistinctConcat{}); err != nil {
		return err
	}
	if err := conn.RegisterCollation(NewUnicodeCollation("UNICODE", language.Und)); err != nil {
		return err
	}
	return conn.RegisterCollation(NewUnicodeCollation("UNICODE_NOCASE", language.Und, collate.IgnoreCase))
}
