package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yashagw/relcore/internal/logger"
	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/normalize"
)

type CustomContext struct {
	echo.Context
	RequestID string
}

func (s *HTTPServer) createReqContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Request().Header.Get(echo.HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := logger.WithRequestID(c.Request().Context(), s.logger, reqID)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)
		cc := &CustomContext{
			Context:   c,
			RequestID: reqID,
		}
		return next(cc)
	}
}

// Casts to custom context for the handler, so this doesn't have to be done per handler
func ccHandler(h func(*CustomContext) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c.(*CustomContext))
	}
}

func (c *CustomContext) internalErrorMessage() string {
	return "internal error, request id: " + c.RequestID
}

func (c *CustomContext) InternalError(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		zerolog.Ctx(c.Request().Context()).Warn().CallerSkipFrame(1).Msg(err.Error())
	} else {
		zerolog.Ctx(c.Request().Context()).Error().CallerSkipFrame(1).Err(err).Msg(msg)
	}
	return c.String(http.StatusInternalServerError, c.internalErrorMessage())
}

// Fail turns an evaluation error into an HTTP error: unknown tables are 404,
// schemas the analyzer can't work with are 422, everything else is a bad
// request.
func (c *CustomContext) Fail(err error) error {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, metadata.ErrTableNotFound):
		status = http.StatusNotFound
	case errors.Is(err, normalize.ErrBadDependency),
		errors.Is(err, normalize.ErrUnknownAttribute),
		errors.Is(err, normalize.ErrEmptySchema),
		errors.Is(err, normalize.ErrDecompositionNonConvergence):
		status = http.StatusUnprocessableEntity
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}
