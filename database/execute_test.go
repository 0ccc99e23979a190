package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCompany(t *testing.T, conn *Conn) {
	t.Helper()
	require.NoError(t, conn.SafeExecuteNoResult(`CREATE TABLE company(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		address CHAR(50),
		salary REAL
	)`, nil))
}

// TestCompanyScenario walks the create / insert / query / drop cycle.
func TestCompanyScenario(t *testing.T) {
	conn := openMemory(t)
	seedCompany(t, conn)

	const insert = `INSERT INTO company(name, age, address, salary) VALUES(:name, :age, :address, :salary)`
	id, err := conn.SafeInsert(insert, BindMap{":name": "Paul", ":age": 32, ":address": "California", ":salary": 20000.00})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = conn.SafeInsert(insert, BindMap{":name": "Allen", ":age": 25, ":address": "Texas", ":salary": 15000.00})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	rows, err := conn.SafeQueryAll("SELECT id, name FROM company", nil)
	require.NoError(t, err)
	assert.Equal(t, []Row{{int64(1), "Paul"}, {int64(2), "Allen"}}, rows)

	again, err := conn.SafeQueryAll("SELECT id, name FROM company", nil)
	require.NoError(t, err)
	assert.Equal(t, rows, again)

	field, ok, err := conn.SafeQueryOneField("SELECT id FROM company WHERE name = :name", BindMap{":name": "Allen"}, ByName("id"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), field)

	require.NoError(t, conn.SafeExecuteNoResult("DROP TABLE company", nil))
	assert.Equal(t, 0, conn.OpenStatementCount())
}

func TestSafeModify(t *testing.T) {
	conn := openMemory(t)
	seedCompany(t, conn)
	require.NoError(t, conn.Execute(`INSERT INTO company(name, age) VALUES ('a', 20), ('b', 30), ('c', 40)`))

	n, err := conn.SafeModify("UPDATE company SET salary = :salary WHERE age >= :age", BindMap{":salary": 1.5, ":age": 30})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = conn.SafeModify("UPDATE company SET salary = 0 WHERE age > :age", BindMap{"age": 100})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = conn.SafeModify("DELETE FROM company", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSafeInsertIncreasingIDs(t *testing.T) {
	conn := openMemory(t)
	seedCompany(t, conn)
	assert.Equal(t, int64(0), conn.LastInsertID())

	var prev int64
	for i := 0; i < 5; i++ {
		id, err := conn.SafeInsert("INSERT INTO company(name, age) VALUES(@name, $age)", BindMap{"@name": "n", "$age": i})
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id

		got, ok, err := conn.SafeQueryOneField("SELECT id FROM company WHERE id = :id", BindMap{":id": id}, ByIndex(0))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id, got)
	}
}

func TestSafeQueryOneRow(t *testing.T) {
	conn := openMemory(t)
	seedCompany(t, conn)
	_, err := conn.SafeInsert("INSERT INTO company(name, age, address) VALUES(:name, :age, :address)", BindMap{":name": "Paul", ":age": 32, ":address": nil})
	require.NoError(t, err)

	rec, ok, err := conn.SafeQueryOneRow("SELECT name, age, address FROM company WHERE name = :name", BindMap{":name": "Paul"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{"name": "Paul", "age": int64(32), "address": nil}, rec)

	rec, ok, err = conn.SafeQueryOneRow("SELECT name FROM company WHERE name = :name", BindMap{":name": "nobody"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestSafeQueryOneColumn(t *testing.T) {
	conn := openMemory(t)
	seedCompany(t, conn)
	require.NoError(t, conn.Execute(`INSERT INTO company(name, age) VALUES ('a', 20), ('b', 30)`))

	names, err := conn.SafeQueryOneColumn("SELECT id, name FROM company ORDER BY id", nil, ByName("name"))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, names)

	ids, err := conn.SafeQueryOneColumn("SELECT id, name FROM company ORDER BY id", nil, ByIndex(0))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, ids)

	empty, err := conn.SafeQueryOneColumn("SELECT id FROM company WHERE age > 100", nil, ByIndex(0))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = conn.SafeQueryOneColumn("SELECT id FROM company", nil, ByName("salary"))
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.ErrorIs(t, err, ErrNoSuchColumn)
}

func TestSafeQueryOneField_NoRow(t *testing.T) {
	conn := openMemory(t)
	seedCompany(t, conn)

	v, ok, err := conn.SafeQueryOneField("SELECT name FROM company WHERE id = :id", BindMap{":id": 42}, ByIndex(0))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestBindValueTypes(t *testing.T) {
	conn := openMemory(t)
	row, ok, err := conn.SafeQueryOneRow(
		"SELECT :i AS i, :f AS f, :s AS s, :b AS b, :n AS n, :t AS t, :u AS u",
		BindMap{":i": int8(-3), ":f": float32(0.5), ":s": "txt", ":b": []byte{0, 1, 2}, ":n": nil, ":t": true, ":u": uint32(7)},
	)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Record{
		"i": int64(-3),
		"f": 0.5,
		"s": "txt",
		"b": []byte{0, 1, 2},
		"n": nil,
		"t": int64(1),
		"u": int64(7),
	}, row)
}

func TestBindError_UnknownKey(t *testing.T) {
	conn := openMemory(t)
	_, err := conn.SafeQueryAll("SELECT :a", BindMap{":a": 1, ":missing": 2})

	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, ":missing", bindErr.Key)
	assert.Equal(t, 2, bindErr.Value)
	assert.Equal(t, "SELECT :a", bindErr.SQL)
	assert.Equal(t, codeRange, bindErr.Code)
	assert.Equal(t, codeRange, conn.LastErrorCode())
	assert.Equal(t, 0, conn.OpenStatementCount())
}

func TestBindError_UnsupportedType(t *testing.T) {
	conn := openMemory(t)
	type point struct{ X, Y int }
	_, err := conn.SafeQueryAll("SELECT :p", BindMap{":p": point{1, 2}})

	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, ":p", bindErr.Key)
	assert.Equal(t, codeMismatch, bindErr.Code)
}

func TestBindError_Overflow(t *testing.T) {
	conn := openMemory(t)
	_, err := conn.SafeQueryAll("SELECT :u", BindMap{"u": uint64(1 << 63)})

	var bindErr *BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "u", bindErr.Key)
	assert.Equal(t, codeRange, bindErr.Code)
}

func TestPrepareError(t *testing.T) {
	conn := openMemory(t)
	for _, query := range []string{"SELEKT 1", "SELECT * FROM nowhere", "   ", ";", "-- just a comment", "/* c */", " ; -- c\n;"} {
		_, err := conn.SafeQueryAll(query, nil)
		var prepErr *PrepareError
		require.True(t, errors.As(err, &prepErr), "query %q: %v", query, err)
		assert.Equal(t, query, prepErr.SQL)
		assert.NotZero(t, prepErr.Code)
		assert.NotEmpty(t, prepErr.Message)
		assert.Equal(t, prepErr.Code, conn.LastErrorCode())
	}
	assert.Equal(t, 0, conn.OpenStatementCount())
}

func TestQueryError_Execute(t *testing.T) {
	conn := openMemory(t)
	require.NoError(t, conn.Execute("CREATE TABLE u(k TEXT PRIMARY KEY)"))
	require.NoError(t, conn.SafeExecuteNoResult("INSERT INTO u(k) VALUES(:k)", BindMap{":k": "x"}))

	err := conn.SafeExecuteNoResult("INSERT INTO u(k) VALUES(:k)", BindMap{":k": "x"})
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, "INSERT INTO u(k) VALUES(:k)", queryErr.SQL)
	assert.Contains(t, queryErr.Message, "UNIQUE")
	assert.Equal(t, 0, conn.OpenStatementCount())
}

func TestSafeExecute_ReleasesOnConsumerError(t *testing.T) {
	conn := openMemory(t)
	require.NoError(t, conn.Execute("CREATE TABLE t(x); INSERT INTO t VALUES (1), (2), (3);"))

	boom := errors.New("consumer failed")
	var kept *Cursor
	_, err := SafeExecute(conn, "SELECT x FROM t WHERE x > :min", BindMap{":min": 0}, func(cur *Cursor) (int, error) {
		kept = cur
		if _, _, err := cur.Next(); err != nil {
			return 0, err
		}
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, conn.OpenStatementCount())

	_, _, err = kept.Next()
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr), "cursor must not outlive SafeExecute")
	assert.Nil(t, kept.Value(0))

	// The connection is still usable.
	rows, err := conn.SafeQueryAll("SELECT x FROM t", nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSafeExecute_ReleasesOnConsumerPanic(t *testing.T) {
	conn := openMemory(t)
	assert.Panics(t, func() {
		_, _ = SafeExecute(conn, "SELECT 1", nil, func(*Cursor) (int, error) {
			panic("consumer panic")
		})
	})
	assert.Equal(t, 0, conn.OpenStatementCount())
}

func TestSafeExecute_NilConsumer(t *testing.T) {
	conn := openMemory(t)
	got, err := SafeExecute[[]Row](conn, "SELECT 1", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCursor_ExhaustionIsNotAnError(t *testing.T) {
	conn := openMemory(t)
	count, err := SafeExecute(conn, "SELECT 1 UNION ALL SELECT 2", nil, func(cur *Cursor) (int, error) {
		assert.Equal(t, []string{"1"}, cur.Columns())
		n := 0
		for {
			_, ok, err := cur.Next()
			if err != nil {
				return n, err
			}
			if !ok {
				break
			}
			n++
		}
		_, ok, err := cur.Next()
		assert.False(t, ok)
		assert.NoError(t, err)
		return n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCursor_StepErrorIsQueryError(t *testing.T) {
	conn := openMemory(t)
	// The second row overflows abs(), failing mid-iteration.
	_, err := conn.SafeQueryAll("SELECT abs(v) FROM (SELECT 1 AS v UNION ALL SELECT -9223372036854775808)", nil)
	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Contains(t, queryErr.Message, "overflow")
	assert.Equal(t, 0, conn.OpenStatementCount())
}

func TestExecute_TrailingCommentsAndBlanks(t *testing.T) {
	conn := openMemory(t)
	require.NoError(t, conn.Execute("CREATE TABLE a(x); -- c"))
	require.NoError(t, conn.Execute("/* lead */ INSERT INTO a VALUES (1);; ; /* tail */"))
	require.NoError(t, conn.Execute("-- first line\nINSERT INTO a VALUES (2); -- note\n/* block"))
	require.NoError(t, conn.Execute("-- nothing at all"))
	require.NoError(t, conn.Execute(""))

	n, _, err := conn.QuerySingleField("SELECT count(*) FROM a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 0, conn.LastErrorCode())
	assert.Equal(t, 0, conn.OpenStatementCount())
}

func TestSkipBlank(t *testing.T) {
	assert.Equal(t, "", skipBlank(" ;\n-- c"))
	assert.Equal(t, "", skipBlank("/* open"))
	assert.Equal(t, "SELECT 1 -- c", skipBlank("/* a */ -- b\n ; SELECT 1 -- c"))
	assert.Equal(t, "SELECT '--'", skipBlank("SELECT '--'"))
}
