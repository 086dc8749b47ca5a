package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yashagw/relcore/internal/relation"
)

type algebraRequest struct {
	Op        string   `json:"op" validate:"required,oneof=select project join natural_join union difference intersect"`
	Left      string   `json:"left" validate:"required"`
	Right     string   `json:"right"`
	Condition string   `json:"condition"`
	Columns   []string `json:"columns" validate:"dive,required"`
	// SaveAs stores the result in the catalog under that name.
	SaveAs string `json:"save_as" validate:"omitempty,max=128"`
}

// Algebra applies one relational algebra operator to catalog tables.
func (s *HTTPServer) Algebra(c *CustomContext) error {
	var req algebraRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}

	catalog := s.tables.Snapshot()
	left, err := catalog.Get(req.Left)
	if err != nil {
		return c.Fail(err)
	}
	var right *relation.Relation
	switch req.Op {
	case "join", "natural_join", "union", "difference", "intersect":
		if req.Right == "" {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s needs a right relation", req.Op))
		}
		if right, err = catalog.Get(req.Right); err != nil {
			return c.Fail(err)
		}
	}

	var out *relation.Relation
	switch req.Op {
	case "select":
		out, err = left.Select(req.Condition)
	case "project":
		if len(req.Columns) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "project needs at least one column")
		}
		out, err = left.Project(req.Columns...)
	case "join":
		out, err = left.Join(right, req.Condition)
	case "natural_join":
		out = left.NaturalJoin(right)
	case "union":
		out, err = left.Union(right)
	case "difference":
		out, err = left.Difference(right)
	case "intersect":
		out, err = left.Intersect(right)
	}
	if err != nil {
		return c.Fail(err)
	}

	if req.SaveAs != "" {
		out = out.Rename(req.SaveAs)
		s.tables.CreateTable(out)
	}
	return c.JSON(http.StatusOK, newRelationResponse(out))
}
