package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/normalize"
	"github.com/yashagw/relcore/internal/plan"
)

type HTTPServer struct {
	Echo     *echo.Echo
	tables   *metadata.Manager
	planner  *plan.Planner
	analyzer *normalize.Analyzer
	logger   zerolog.Logger
}

type CustomValidator struct {
	validator *validator.Validate
}

// NewHTTPServer sets up the routes; Start begins serving them.
func NewHTTPServer(tables *metadata.Manager, analyzer *normalize.Analyzer, logger zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		Echo:     echo.New(),
		tables:   tables,
		planner:  plan.NewPlanner(),
		analyzer: analyzer,
		logger:   logger,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.JSONSerializer = &NoEscapeJSONSerializer{}

	s.Echo.Use(s.createReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Use(middleware.Recover())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	s.Echo.GET("/hc", s.HealthCheck)

	s.Echo.POST("/query", ccHandler(s.Query))
	s.Echo.POST("/explain", ccHandler(s.Explain))
	s.Echo.POST("/algebra", ccHandler(s.Algebra))

	s.Echo.POST("/normalize", ccHandler(s.Normalize))
	s.Echo.GET("/normalize/demo", ccHandler(s.NormalizeDemo))

	tableGroup := s.Echo.Group("/tables")
	tableGroup.GET("", ccHandler(s.ListTables))
	tableGroup.POST("", ccHandler(s.SaveTable))
	tableGroup.GET("/:name", ccHandler(s.GetTable))
	tableGroup.DELETE("/:name", ccHandler(s.DropTable))

	return s
}

// Start serves h2c on the listener until Shutdown is called.
func (s *HTTPServer) Start(listener net.Listener) error {
	s.Echo.Listener = listener
	s.logger.Info().Msg("starting h2c server on " + listener.Addr().String())
	err := s.Echo.StartH2CServer("", &http2.Server{})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("h2c server: %w", err)
	}
	return nil
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("req_uri", req.RequestURI).Str("handler_path", c.Path()).Str("path", p).Int("status", res.Status).Int64("latency_ns", int64(stop)).Str("protocol", req.Proto).Str("bytes_in", cl).Int64("bytes_out", res.Size).Msg("req received")
		return nil
	}
}

// NoEscapeJSONSerializer encodes with goccy/go-json and leaves <, > and &
// alone, so conditions like "Age > 20" come back readable.
type NoEscapeJSONSerializer struct{}

func (NoEscapeJSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (NoEscapeJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unmarshal type error: expected=%v, got=%v, field=%v, offset=%v", typeErr.Type, typeErr.Value, typeErr.Field, typeErr.Offset)).SetInternal(err)
	case errors.As(err, &syntaxErr):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("syntax error: offset=%v, error=%v", syntaxErr.Offset, syntaxErr.Error())).SetInternal(err)
	}
	return err
}
