package database

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viant/sqlitekit/custom"
)

// Kind identifies the type of a registered callback.
type Kind int

const (
	KindScalar Kind = iota + 1
	KindAggregate
	KindCollation
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindAggregate:
		return "aggregate"
	case KindCollation:
		return "collation"
	default:
		return "unknown"
	}
}

// Registration describes a callback registered on a connection.
type Registration struct {
	Kind          Kind
	Name          string
	ArgumentCount int
	Impl          any

	seq int
}

// Functions and collations live in separate engine namespaces. Functions
// are keyed by name and argument count, collations by name alone.
type registryKey struct {
	collation bool
	name      string
	args      int
}

func keyOf(r Registration) registryKey {
	if r.Kind == KindCollation {
		return registryKey{collation: true, name: strings.ToLower(r.Name)}
	}
	return registryKey{name: strings.ToLower(r.Name), args: r.ArgumentCount}
}

// Registered returns the most recently registered function named name,
// falling back to a collation of that name.
func (c *Conn) Registered(name string) (Registration, bool) {
	var (
		found Registration
		ok    bool
	)
	for key, r := range c.registry {
		if key.collation || key.name != strings.ToLower(name) {
			continue
		}
		if !ok || r.seq > found.seq {
			found, ok = r, true
		}
	}
	if ok {
		return found, true
	}
	found, ok = c.registry[registryKey{collation: true, name: strings.ToLower(name)}]
	return found, ok
}

// Registrations lists every registration sorted by kind, name, then
// argument count.
func (c *Conn) Registrations() []Registration {
	out := make([]Registration, 0, len(c.registry))
	for _, r := range c.registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ArgumentCount < out[j].ArgumentCount
	})
	return out
}

func (c *Conn) remember(r Registration) {
	c.seq++
	r.seq = c.seq
	c.registry[keyOf(r)] = r
	c.logger.Debug().Str("kind", r.Kind.String()).Str("name", r.Name).Int("args", r.ArgumentCount).Msg("registered")
}

func (c *Conn) registerFailed(kind Kind, name string, err error) error {
	c.setLastError(err)
	c.logger.Warn().Err(err).Str("kind", kind.String()).Str("name", name).Msg("register failed")
	return fmt.Errorf("database: register %s %s: %w", kind, name, err)
}

// RegisterScalarFunction creates or redefines an SQL scalar function. It
// applies to statements prepared afterwards on this connection.
func (c *Conn) RegisterScalarFunction(fn custom.Scalar) error {
	conn, err := c.raw()
	if err != nil {
		return err
	}
	if err := conn.CreateFunction(fn.Name(), custom.ScalarImpl(fn, &c.failures)); err != nil {
		return c.registerFailed(KindScalar, fn.Name(), err)
	}
	c.clearLastError()
	c.remember(Registration{Kind: KindScalar, Name: fn.Name(), ArgumentCount: fn.ArgumentCount(), Impl: fn})
	return nil
}

// RegisterAggregate creates or redefines an SQL aggregate function on c.
func RegisterAggregate[S any](c *Conn, agg custom.Aggregate[S]) error {
	conn, err := c.raw()
	if err != nil {
		return err
	}
	if err := conn.CreateFunction(agg.Name(), custom.AggregateImpl(agg, &c.failures)); err != nil {
		return c.registerFailed(KindAggregate, agg.Name(), err)
	}
	c.clearLastError()
	c.remember(Registration{Kind: KindAggregate, Name: agg.Name(), ArgumentCount: agg.ArgumentCount(), Impl: agg})
	return nil
}

// RegisterCollation creates or redefines a collating sequence.
func (c *Conn) RegisterCollation(col custom.Collation) error {
	conn, err := c.raw()
	if err != nil {
		return err
	}
	if err := conn.SetCollation(col.Name(), custom.CompareFunc(col)); err != nil {
		return c.registerFailed(KindCollation, col.Name(), err)
	}
	c.clearLastError()
	c.remember(Registration{Kind: KindCollation, Name: col.Name(), Impl: col})
	return nil
}
