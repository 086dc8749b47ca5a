package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yashagw/relcore/internal/normalize"
	"github.com/yashagw/relcore/internal/relation"
)

type normalizeRequest struct {
	Name         string   `json:"name" validate:"max=128"`
	Attributes   []string `json:"attributes" validate:"required,min=1,dive,required"`
	Dependencies []string `json:"dependencies" validate:"dive,required"`
	// Rows are optional sample rows, one value per attribute in the order
	// given; with rows the decomposition is also checked for lossless join.
	Rows [][]any `json:"rows"`
}

// Normalize analyzes a schema given as attribute names and dependencies
// written like "SID -> SNAME".
func (s *HTTPServer) Normalize(c *CustomContext) error {
	var req normalizeRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}

	attrs := normalize.NewAttrSet(req.Attributes...)
	var fds []normalize.FD
	for _, text := range req.Dependencies {
		fd, err := normalize.ParseDependency(text, attrs)
		if err != nil {
			return c.Fail(err)
		}
		fds = append(fds, fd)
	}
	name := req.Name
	if name == "" {
		name = "R"
	}
	schema := normalize.Schema{Name: name, Attributes: attrs, FDs: fds}

	if len(req.Rows) == 0 {
		report, err := s.analyzer.Analyze(schema)
		if err != nil {
			return c.Fail(err)
		}
		return c.JSON(http.StatusOK, report)
	}

	columns := make([]string, len(req.Attributes))
	for i, a := range req.Attributes {
		columns[i] = normalize.Normalize(a)
	}
	rel, err := relation.New(name, columns)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for _, row := range req.Rows {
		if err := rel.AddAny(row...); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	report, err := s.analyzer.AnalyzeRelation(schema, rel)
	if err != nil {
		return c.Fail(err)
	}
	return c.JSON(http.StatusOK, report)
}

// NormalizeDemo analyzes the built-in enrollment schema and its rows.
func (s *HTTPServer) NormalizeDemo(c *CustomContext) error {
	report, err := s.analyzer.AnalyzeRelation(normalize.DemoSchema(), normalize.DemoRelation())
	if err != nil {
		return c.Fail(err)
	}
	return c.JSON(http.StatusOK, report)
}
