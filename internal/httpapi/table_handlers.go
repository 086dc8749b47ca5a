package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yashagw/relcore/internal/relation"
	"github.com/yashagw/relcore/internal/value"
)

type (
	tableInfo struct {
		Name    string   `json:"name"`
		Columns []string `json:"columns"`
		Rows    int      `json:"rows"`
	}

	relationResponse struct {
		Name    string          `json:"name"`
		Columns []string        `json:"columns"`
		Rows    [][]value.Value `json:"rows"`
	}

	saveTableRequest struct {
		Name string `json:"name" validate:"required,max=128"`
		SQL  string `json:"sql" validate:"required"`
	}
)

func newTableInfo(rel *relation.Relation) tableInfo {
	return tableInfo{Name: rel.Name(), Columns: rel.Columns(), Rows: rel.Len()}
}

func newRelationResponse(rel *relation.Relation) relationResponse {
	rows := rel.Rows()
	if rows == nil {
		rows = [][]value.Value{}
	}
	return relationResponse{Name: rel.Name(), Columns: rel.Columns(), Rows: rows}
}

func (s *HTTPServer) ListTables(c *CustomContext) error {
	catalog := s.tables.Snapshot()
	tables := []tableInfo{}
	for _, name := range catalog.Names() {
		rel, err := catalog.Get(name)
		if err != nil {
			return c.InternalError(err, "catalog lost a table while listing")
		}
		tables = append(tables, newTableInfo(rel))
	}
	return c.JSON(http.StatusOK, tables)
}

// GetTable returns the rows of a table, as CSV with ?format=csv.
func (s *HTTPServer) GetTable(c *CustomContext) error {
	rel, err := s.tables.GetTable(c.Param("name"))
	if err != nil {
		return c.Fail(err)
	}
	if c.QueryParam("format") == "csv" {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().WriteHeader(http.StatusOK)
		return rel.WriteCSV(c.Response())
	}
	return c.JSON(http.StatusOK, newRelationResponse(rel))
}

// SaveTable stores the result of a query as a new table, replacing any
// table of the same name.
func (s *HTTPServer) SaveTable(c *CustomContext) error {
	var req saveTableRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}
	res, err := s.planner.Execute(req.SQL, s.tables.Snapshot())
	if err != nil {
		return c.Fail(err)
	}
	rel, err := res.ToRelation(req.Name)
	if err != nil {
		return c.Fail(err)
	}
	s.tables.CreateTable(rel)
	return c.JSON(http.StatusCreated, newTableInfo(rel))
}

func (s *HTTPServer) DropTable(c *CustomContext) error {
	if !s.tables.DropTable(c.Param("name")) {
		return echo.NewHTTPError(http.StatusNotFound, "table not found: "+c.Param("name"))
	}
	return c.NoContent(http.StatusNoContent)
}
