package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/sqlitekit/database"
)

// parseBinds turns key=value pairs into a BindMap. Values that parse as
// integers or floats are bound as numbers, NULL as SQL NULL, a value in
// single quotes as the quoted text, and anything else as text.
func parseBinds(pairs []string) (database.BindMap, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	binds := make(database.BindMap, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid bind %q (want key=value)", pair)
		}
		binds[key] = parseBindValue(value)
	}
	return binds, nil
}

func parseBindValue(s string) any {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	if strings.EqualFold(s, "null") {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
