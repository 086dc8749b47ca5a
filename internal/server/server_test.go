package server

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashagw/relcore/internal/loader"
	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/value"
)

func newTestServer() *Server {
	return NewServer(metadata.NewManager(loader.SampleCatalog()), zerolog.Nop())
}

func TestExecuteSelect(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	resp := s.Execute(ctx, "SELECT name FROM managers WHERE id < 3;")
	assert.Equal(t, TypeTable, resp.Type)
	assert.Equal(t, []string{"name"}, resp.Columns)
	assert.Equal(t, [][]value.Value{{value.Str("John Smith")}, {value.Str("Jane Doe")}}, resp.Rows)

	resp = s.Execute(ctx, "SELECT COUNT(*) FROM employees")
	assert.Equal(t, TypeAggregate, resp.Type)
	assert.Equal(t, []value.Value{value.Int(8)}, resp.Values)

	resp = s.Execute(ctx, "SELECT * FROM payroll")
	assert.Equal(t, TypeError, resp.Type)
	assert.Contains(t, resp.Error, "table not found")
}

func TestExecuteCommands(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	resp := s.Execute(ctx, "tables")
	require.Equal(t, TypeTables, resp.Type)
	require.Len(t, resp.Tables, 7)
	assert.Equal(t, TableInfo{Name: "Students", Columns: []string{"ID", "Name", "Age", "Major"}, Rows: 6}, resp.Tables[0])

	resp = s.Execute(ctx, "EXPLAIN SELECT name FROM managers")
	assert.Equal(t, TypeExplain, resp.Type)
	assert.Equal(t, "Project(name)\n  Table(managers)", resp.Plan)

	resp = s.Execute(ctx, "SAVE engineers AS SELECT name, salary FROM employees WHERE department = 'Engineering'")
	require.Equal(t, TypeOK, resp.Type, resp.Error)
	assert.Equal(t, "saved engineers (3 rows)", resp.Message)

	resp = s.Execute(ctx, "SELECT MAX(salary) FROM engineers")
	assert.Equal(t, []value.Value{value.Int(85000)}, resp.Values)

	resp = s.Execute(ctx, "DROP engineers")
	assert.Equal(t, TypeOK, resp.Type)
	resp = s.Execute(ctx, "DROP engineers")
	assert.Equal(t, TypeError, resp.Type)

	for _, bad := range []string{"SAVE", "SAVE x", "SAVE x INTO SELECT * FROM managers", "SAVE x AS"} {
		resp = s.Execute(ctx, bad)
		assert.Equal(t, TypeError, resp.Type, bad)
	}
	resp = s.Execute(ctx, "SAVE x AS SELECT * FROM nowhere")
	assert.Equal(t, TypeError, resp.Type)
}

func TestExecuteExport(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	resp := s.Execute(ctx, "SAVE hr AS SELECT name, salary FROM employees WHERE department = 'HR'")
	require.Equal(t, TypeOK, resp.Type, resp.Error)

	resp = s.Execute(ctx, "EXPORT "+path)
	require.Equal(t, TypeOK, resp.Type, resp.Error)
	assert.Equal(t, "exported 8 tables to "+path, resp.Message)

	catalog, err := loader.FromSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 8, catalog.Len())
	hr, err := catalog.Get("hr")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "salary"}, hr.Columns())
	assert.Equal(t, 2, hr.Len())

	resp = s.Execute(ctx, "EXPORT")
	assert.Equal(t, TypeError, resp.Type)
	resp = s.Execute(ctx, "EXPORT "+filepath.Join(t.TempDir(), "missing", "x.db"))
	assert.Equal(t, TypeError, resp.Type)
}

func TestHandleConnection(t *testing.T) {
	s := newTestServer()
	client, conn := net.Pipe()
	done := make(chan struct{})
	go func() {
		s.HandleConnection(context.Background(), conn)
		close(done)
	}()

	reader := bufio.NewReader(client)
	send := func(line string) string {
		_, err := client.Write([]byte(line + "\n"))
		require.NoError(t, err)
		out, err := reader.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSpace(out)
	}

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(send("SELECT department, COUNT(*) FROM employees GROUP BY department HAVING COUNT(*) > 1")), &resp))
	assert.Equal(t, TypeTable, resp.Type)
	assert.Equal(t, []string{"department", "COUNT(*)"}, resp.Columns)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, "Engineering", resp.Rows[0][0].String())
	assert.Equal(t, "3", resp.Rows[0][1].String())

	resp = Response{}
	require.NoError(t, json.Unmarshal([]byte(send("UPDATE employees SET salary = 0")), &resp))
	assert.Equal(t, TypeError, resp.Type)
	assert.Contains(t, resp.Error, "unsupported query")

	assert.Equal(t, "Goodbye!", send("quit"))
	<-done
}

func TestServe(t *testing.T) {
	s := newTestServer()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, listener) }()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("SELECT AVG(budget) FROM departments\n"))
	require.NoError(t, err)
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"aggregate","columns":["AVG(budget)"],"values":["300000.00"]}`, line)
	require.NoError(t, conn.Close())

	cancel()
	assert.NoError(t, <-served)
}
