package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type queryRequest struct {
	SQL string `json:"sql" validate:"required"`
}

type explainResponse struct {
	Plan string `json:"plan"`
}

// Query runs a SELECT statement. With ?format=csv the result is returned as
// CSV instead of JSON.
func (s *HTTPServer) Query(c *CustomContext) error {
	var req queryRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}
	res, err := s.planner.Execute(req.SQL, s.tables.Snapshot())
	if err != nil {
		return c.Fail(err)
	}
	if c.QueryParam("format") == "csv" {
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().WriteHeader(http.StatusOK)
		return res.WriteCSV(c.Response())
	}
	return c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) Explain(c *CustomContext) error {
	var req queryRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}
	text, err := s.planner.Explain(req.SQL, s.tables.Snapshot())
	if err != nil {
		return c.Fail(err)
	}
	return c.JSON(http.StatusOK, explainResponse{Plan: text})
}
