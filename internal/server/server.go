package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yashagw/relcore/internal/loader"
	"github.com/yashagw/relcore/internal/logger"
	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/plan"
	"github.com/yashagw/relcore/internal/value"
)

const (
	TypeTable     = "table"
	TypeAggregate = "aggregate"
	TypeTables    = "tables"
	TypeExplain   = "explain"
	TypeOK        = "ok"
	TypeError     = "error"
)

// TableInfo describes one table of the catalog.
type TableInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// Response is written as a single JSON line per request.
type Response struct {
	Type    string          `json:"type"`
	Columns []string        `json:"columns,omitempty"`
	Rows    [][]value.Value `json:"rows,omitempty"`
	Values  []value.Value   `json:"values,omitempty"`
	Tables  []TableInfo     `json:"tables,omitempty"`
	Plan    string          `json:"plan,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Server speaks the line protocol: one statement or command per line, one
// JSON response per line. Besides SELECT statements it understands
//
//	TABLES                    list the tables
//	EXPLAIN <select>          show the plan
//	SAVE <name> AS <select>   store the result as a new table
//	DROP <name>               remove a table
//	EXPORT <path>             write every table to a SQLite file
//	QUIT | EXIT               close the connection
type Server struct {
	tables  *metadata.Manager
	planner *plan.Planner
	logger  zerolog.Logger
}

func NewServer(tables *metadata.Manager, logger zerolog.Logger) *Server {
	return &Server{
		tables:  tables,
		planner: plan.NewPlanner(),
		logger:  logger,
	}
}

// Serve accepts connections until ctx is done or the listener fails.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("line protocol server listening")
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.HandleConnection(ctx, conn)
	}
}

// HandleConnection runs one client session.
func (s *Server) HandleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	ctx = logger.WithRequestID(ctx, s.logger, uuid.NewString())
	log := zerolog.Ctx(ctx)
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("session started")

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)

	for {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && err != io.EOF {
				log.Warn().Err(err).Msg("error reading from client")
			}
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if cmd := strings.ToUpper(line); cmd == "QUIT" || cmd == "EXIT" {
			writer.WriteString("Goodbye!\n")
			writer.Flush()
			break
		}

		start := time.Now()
		response := s.Execute(ctx, line)
		event := log.Debug()
		if response.Type == TypeError {
			event = log.Info().Str("error", response.Error)
		}
		event.Str("statement", line).Str("type", response.Type).Dur("latency", time.Since(start)).Msg("statement handled")

		jsonData, err := json.Marshal(response)
		if err != nil {
			jsonData, _ = json.Marshal(errorResponse(fmt.Errorf("serialize response: %w", err)))
		}
		writer.Write(jsonData)
		writer.WriteString("\n")
		if err := writer.Flush(); err != nil {
			log.Warn().Err(err).Msg("error writing to client")
			break
		}
	}
	log.Debug().Msg("session ended")
}

// Execute handles a single line.
func (s *Server) Execute(ctx context.Context, line string) Response {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	word, rest := splitWord(line)

	switch strings.ToUpper(word) {
	case "TABLES":
		return s.listTables()
	case "EXPLAIN":
		text, err := s.planner.Explain(rest, s.tables.Snapshot())
		if err != nil {
			return errorResponse(err)
		}
		return Response{Type: TypeExplain, Plan: text}
	case "SAVE":
		return s.save(rest)
	case "DROP":
		name := strings.TrimSpace(rest)
		if !s.tables.DropTable(name) {
			return errorResponse(fmt.Errorf("%w: %s", metadata.ErrTableNotFound, name))
		}
		return Response{Type: TypeOK, Message: "dropped " + name}
	case "EXPORT":
		return s.export(ctx, rest)
	}

	res, err := s.planner.Execute(line, s.tables.Snapshot())
	if err != nil {
		return errorResponse(err)
	}
	return resultResponse(res)
}

// save handles "SAVE <name> AS <select>".
func (s *Server) save(rest string) Response {
	name, rest := splitWord(rest)
	as, sql := splitWord(rest)
	if name == "" || !strings.EqualFold(as, "AS") || sql == "" {
		return errorResponse(errors.New("usage: SAVE <name> AS <select>"))
	}
	res, err := s.planner.Execute(sql, s.tables.Snapshot())
	if err != nil {
		return errorResponse(err)
	}
	rel, err := res.ToRelation(name)
	if err != nil {
		return errorResponse(err)
	}
	s.tables.CreateTable(rel)
	return Response{Type: TypeOK, Message: fmt.Sprintf("saved %s (%d rows)", name, rel.Len())}
}

// export handles "EXPORT <path>".
func (s *Server) export(ctx context.Context, path string) Response {
	path = strings.TrimSpace(path)
	if path == "" {
		return errorResponse(errors.New("usage: EXPORT <path>"))
	}
	catalog := s.tables.Snapshot()
	if err := loader.SaveSQLite(ctx, path, catalog); err != nil {
		return errorResponse(err)
	}
	return Response{Type: TypeOK, Message: fmt.Sprintf("exported %d tables to %s", catalog.Len(), path)}
}

func (s *Server) listTables() Response {
	catalog := s.tables.Snapshot()
	tables := []TableInfo{}
	for _, name := range catalog.Names() {
		rel, err := catalog.Get(name)
		if err != nil {
			continue
		}
		tables = append(tables, TableInfo{Name: rel.Name(), Columns: rel.Columns(), Rows: rel.Len()})
	}
	return Response{Type: TypeTables, Tables: tables}
}

func resultResponse(res *plan.Result) Response {
	if res.Kind == plan.Aggregate {
		return Response{Type: TypeAggregate, Columns: res.Columns, Values: res.Values}
	}
	return Response{Type: TypeTable, Columns: res.Columns, Rows: res.Rows}
}

func errorResponse(err error) Response {
	return Response{Type: TypeError, Error: err.Error()}
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
