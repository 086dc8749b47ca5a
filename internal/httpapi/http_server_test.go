package httpapi

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashagw/relcore/internal/loader"
	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/normalize"
	"github.com/yashagw/relcore/internal/plan"
)

func newTestServer() *HTTPServer {
	return NewHTTPServer(metadata.NewManager(loader.SampleCatalog()), normalize.NewAnalyzer(0), zerolog.Nop())
}

func do(t *testing.T, s *HTTPServer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/hc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestQuery(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/query", `{"sql": "SELECT name FROM employees WHERE salary > 80000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"type":"table","columns":["name"],"rows":[["Diana Evans"]]}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/query", `{"sql": "SELECT COUNT(*), AVG(salary) FROM employees"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res plan.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, plan.Aggregate, res.Kind)
	assert.Equal(t, "8", res.Values[0].String())
	assert.Equal(t, "67750.00", res.Values[1].String())

	rec = do(t, s, http.MethodPost, "/query?format=csv", `{"sql": "SELECT name, department FROM managers"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "name,department\nJohn Smith,Engineering\nJane Doe,Marketing\nBob Wilson,Engineering\n", rec.Body.String())
}

func TestQueryErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		body string
		code int
	}{
		{`{"sql": "SELECT * FROM payroll"}`, http.StatusNotFound},
		{`{"sql": "SELECT FROM"}`, http.StatusBadRequest},
		{`{"sql": "DELETE FROM employees"}`, http.StatusBadRequest},
		{`{"sql": ""}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
		{`{"sql": 42}`, http.StatusBadRequest},
		{`{"sql": `, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/query", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestExplain(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/explain", `{"sql": "SELECT name FROM managers WHERE id > 1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plan":"Project(name)\n  Select(id > 1)\n    Table(managers)"}`, rec.Body.String())
}

func TestAlgebra(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/algebra", `{"op": "select", "left": "Students", "condition": "Age > 20"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out relationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "σ(Age > 20)(Students)", out.Name)
	assert.Len(t, out.Rows, 3)

	rec = do(t, s, http.MethodPost, "/algebra", `{"op": "project", "left": "students", "columns": ["Major"], "save_as": "majors"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "majors", out.Name)
	assert.Len(t, out.Rows, 3)

	rec = do(t, s, http.MethodGet, "/tables/majors", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/algebra", `{"op": "join", "left": "Students", "right": "Grades", "condition": "Students.ID = Grades.StudentID"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Students ⋈ Grades", out.Name)
	assert.Len(t, out.Rows, 7)
	assert.Equal(t, "Students.ID", out.Columns[0])
}

func TestAlgebraErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		body string
		code int
	}{
		{`{"op": "rotate", "left": "Students"}`, http.StatusBadRequest},
		{`{"op": "select"}`, http.StatusBadRequest},
		{`{"op": "select", "left": "Nope", "condition": "a = 1"}`, http.StatusNotFound},
		{`{"op": "union", "left": "Students"}`, http.StatusBadRequest},
		{`{"op": "union", "left": "Students", "right": "Nope"}`, http.StatusNotFound},
		{`{"op": "union", "left": "Students", "right": "Grades"}`, http.StatusBadRequest},
		{`{"op": "project", "left": "Students"}`, http.StatusBadRequest},
		{`{"op": "project", "left": "Students", "columns": ["GPA"]}`, http.StatusBadRequest},
		{`{"op": "join", "left": "Students", "right": "Grades", "condition": "ID = StudentID"}`, http.StatusBadRequest},
		{`{"op": "select", "left": "Students", "condition": "Age >"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/algebra", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestTables(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tables []tableInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tables))
	require.Len(t, tables, 7)
	assert.Equal(t, tableInfo{Name: "managers", Columns: []string{"id", "name", "department"}, Rows: 3}, tables[6])

	rec = do(t, s, http.MethodPost, "/tables", `{"name": "hr", "sql": "SELECT name, salary FROM employees WHERE department = 'HR'"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"name":"hr","columns":["name","salary"],"rows":2}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/tables/HR?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "name,salary\nAlice Brown,55000\nFiona Garcia,52000\n", rec.Body.String())

	rec = do(t, s, http.MethodPost, "/query", `{"sql": "SELECT SUM(salary) FROM hr"}`)
	assert.JSONEq(t, `{"type":"aggregate","columns":["SUM(salary)"],"values":[107000]}`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/tables/hr", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, s, http.MethodDelete, "/tables/hr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s, http.MethodGet, "/tables/hr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/tables", `{"name": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNormalize(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/normalize", `{
		"name": "StudentCourse",
		"attributes": ["sid", "sname", "cid", "cname", "instructor"],
		"dependencies": ["SID -> SNAME", "CID -> CNAME, INSTRUCTOR"],
		"rows": [
			[1, "Arjun", "CSE301", "Database Systems", "Dr. Rao"],
			[2, "Priya", "CSE301", "Database Systems", "Dr. Rao"],
			[2, "Priya", "MAT201", "Calculus", "Dr. Mehta"]
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report normalize.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, []normalize.AttrSet{{"CID", "SID"}}, report.CandidateKeys)
	assert.Equal(t, "1NF", report.Highest())
	assert.Len(t, report.Decomposition, 3)
	assert.True(t, report.Lossless)
	assert.True(t, report.LosslessVerified)
	assert.True(t, report.DependencyPreserving)

	rec = do(t, s, http.MethodGet, "/normalize/demo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"SID → SNAME is a partial dependency on key {CID, SID}"`)
}

func TestNormalizeErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		body string
		code int
	}{
		{`{"attributes": []}`, http.StatusBadRequest},
		{`{"attributes": ["A", ""]}`, http.StatusBadRequest},
		{`{"attributes": ["A", "B"], "dependencies": ["A -> C"]}`, http.StatusUnprocessableEntity},
		{`{"attributes": ["A", "B"], "dependencies": ["A B"]}`, http.StatusUnprocessableEntity},
		{`{"attributes": ["A", "B"], "dependencies": ["A -> B"], "rows": [[1]]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/normalize", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}

	capped := NewHTTPServer(metadata.NewManager(nil), normalize.NewAnalyzer(1), zerolog.Nop())
	rec := do(t, capped, http.MethodGet, "/normalize/demo", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStartAndShutdown(t *testing.T) {
	s := newTestServer()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan error, 1)
	go func() { started <- s.Start(listener) }()

	url := "http://" + listener.Addr().String() + "/hc"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-started)
}
