package database

import (
	"fmt"
	"strconv"
)

// Row is a result row indexed by column position.
type Row []any

// Record is a result row keyed by column name.
type Record map[string]any

// Column selects a result column by zero-based position or by name.
type Column struct {
	index  int
	name   string
	byName bool
}

// ByIndex selects the column at zero-based position i.
func ByIndex(i int) Column { return Column{index: i} }

// ByName selects the column named name.
func ByName(name string) Column { return Column{name: name, byName: true} }

func (col Column) String() string {
	if col.byName {
		return col.name
	}
	return strconv.Itoa(col.index)
}

func (col Column) resolve(cur *Cursor) (int, error) {
	if col.byName {
		for i, name := range cur.columns {
			if name == col.name {
				return i, nil
			}
		}
	} else if col.index >= 0 && col.index < len(cur.columns) {
		return col.index, nil
	}
	return 0, &QueryError{
		SQL:         cur.sql,
		EngineError: EngineError{Code: codeRange, Message: fmt.Sprintf("no such column: %s", col)},
		Err:         fmt.Errorf("%w: %s", ErrNoSuchColumn, col),
	}
}

// SafeExecuteNoResult runs a statement and discards any rows.
func (c *Conn) SafeExecuteNoResult(template string, binds BindMap) error {
	_, err := SafeExecute[struct{}](c, template, binds, nil)
	return err
}

// SafeModify runs an UPDATE or DELETE and returns the number of affected
// rows; a statement matching nothing returns 0.
func (c *Conn) SafeModify(template string, binds BindMap) (int, error) {
	return SafeExecute(c, template, binds, func(*Cursor) (int, error) {
		return c.AffectedRowCount(), nil
	})
}

// SafeInsert runs an INSERT and returns the rowid it produced.
func (c *Conn) SafeInsert(template string, binds BindMap) (int64, error) {
	return SafeExecute(c, template, binds, func(*Cursor) (int64, error) {
		return c.LastInsertID(), nil
	})
}

// SafeQueryAll collects every row positionally, in engine order.
func (c *Conn) SafeQueryAll(template string, binds BindMap) ([]Row, error) {
	return SafeExecute(c, template, binds, func(cur *Cursor) ([]Row, error) {
		rows := []Row{}
		for {
			row, ok, err := cur.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				return rows, nil
			}
			rows = append(rows, row)
		}
	})
}

// SafeQueryOneRow returns the first row keyed by column name. ok is false
// when the query produced no rows.
func (c *Conn) SafeQueryOneRow(template string, binds BindMap) (rec Record, ok bool, err error) {
	_, err = SafeExecute(c, template, binds, func(cur *Cursor) (struct{}, error) {
		rec, ok, err = cur.NextRecord()
		return struct{}{}, err
	})
	if err != nil {
		return nil, false, err
	}
	return rec, ok, nil
}

// SafeQueryOneColumn returns col from every row.
func (c *Conn) SafeQueryOneColumn(template string, binds BindMap, col Column) ([]any, error) {
	return SafeExecute(c, template, binds, func(cur *Cursor) ([]any, error) {
		idx, err := col.resolve(cur)
		if err != nil {
			return nil, err
		}
		values := []any{}
		for {
			ok, err := cur.advance()
			if err != nil {
				return nil, err
			}
			if !ok {
				return values, nil
			}
			values = append(values, cur.Value(idx))
		}
	})
}

// SafeQueryOneField returns col from the first row. ok is false when the
// query produced no rows.
func (c *Conn) SafeQueryOneField(template string, binds BindMap, col Column) (value any, ok bool, err error) {
	_, err = SafeExecute(c, template, binds, func(cur *Cursor) (struct{}, error) {
		idx, err := col.resolve(cur)
		if err != nil {
			return struct{}{}, err
		}
		if ok, err = cur.advance(); ok && err == nil {
			value = cur.Value(idx)
		}
		return struct{}{}, err
	})
	if err != nil {
		return nil, false, err
	}
	return value, ok, nil
}
