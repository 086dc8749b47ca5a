package logger

import (
	"context"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey string

const ReqIDKey ctxKey = "reqID"

func init() {
	l := NewLogger()
	zerolog.DefaultContextLogger = &l
	zerolog.CallerMarshalFunc = shortCaller
}

// Options selects where and how log lines are written.
type Options struct {
	Out io.Writer
	// Pretty switches to the human readable console writer.
	Pretty bool
	Debug  bool
}

// NewLogger writes JSON lines to stdout. PRETTY=1 switches to the console
// writer on stderr and DEBUG=1 lowers the global level to debug.
func NewLogger() zerolog.Logger {
	opts := Options{Out: os.Stdout, Pretty: os.Getenv("PRETTY") == "1", Debug: os.Getenv("DEBUG") == "1"}
	if opts.Pretty {
		opts.Out = os.Stderr
	}
	return New(opts)
}

func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"

	out := opts.Out
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if opts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return zerolog.New(out).With().Timestamp().Logger().Hook(CallerHook{})
}

// CallerHook adds the caller of the logging call site to every event.
type CallerHook struct{}

func (h CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Caller(3)
}

// shortCaller renders a caller as "file:line pkg.Func()", trimming the
// import path from the function name.
func shortCaller(pc uintptr, file string, line int) string {
	caller := file + ":" + strconv.Itoa(line)
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return caller
	}
	name := fn.Name()
	if slash := strings.LastIndex(name, "/"); slash > 0 {
		name = name[slash+1:]
	}
	return caller + " " + name + "()"
}

// WithRequestID stores id in ctx together with a child of l that adds it to
// every line as reqID.
func WithRequestID(ctx context.Context, l zerolog.Logger, id string) context.Context {
	ctx = context.WithValue(ctx, ReqIDKey, id)
	return l.With().Str("reqID", id).Logger().WithContext(ctx)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ReqIDKey).(string)
	return id
}
