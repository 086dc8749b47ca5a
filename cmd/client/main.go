package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/goccy/go-json"

	"github.com/yashagw/relcore/internal/config"
	"github.com/yashagw/relcore/internal/server"
)

const (
	DefaultHost = "localhost"
)

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	okColor     = color.New(color.FgGreen)
	headerColor = color.New(color.FgCyan, color.Bold)
	countColor  = color.New(color.FgYellow)
)

type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
}

func NewClient(host, port string) (*Client, error) {
	address := net.JoinHostPort(host, port)
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Execute(statement string) (*server.Response, error) {
	if _, err := c.writer.WriteString(statement + "\n"); err != nil {
		return nil, fmt.Errorf("failed to send statement: %w", err)
	}
	if err := c.writer.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush statement: %w", err)
	}

	responseLine, err := c.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("server closed connection")
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response server.Response
	if err := json.Unmarshal([]byte(strings.TrimSpace(responseLine)), &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &response, nil
}

func printTable(columns []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, strings.Join(columns, "\t"))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, strings.Repeat("-\t", len(columns)))
	fmt.Fprint(w, "\n")
	for _, row := range rows {
		fmt.Fprint(w, strings.Join(row, "\t"))
		fmt.Fprint(w, "\n")
	}
	w.Flush()
}

func printResponse(response *server.Response) {
	switch response.Type {
	case server.TypeError:
		errorColor.Printf("Error: %s\n\n", response.Error)
	case server.TypeTable:
		if len(response.Rows) == 0 {
			countColor.Println("(0 rows)")
			fmt.Println()
			return
		}
		rows := make([][]string, len(response.Rows))
		for i, row := range response.Rows {
			rows[i] = make([]string, len(row))
			for j, v := range row {
				rows[i][j] = v.String()
			}
		}
		printTable(response.Columns, rows)
		countColor.Printf("\n(%d row(s))\n\n", len(response.Rows))
	case server.TypeAggregate:
		values := make([]string, len(response.Values))
		for i, v := range response.Values {
			values[i] = v.String()
		}
		printTable(response.Columns, [][]string{values})
		fmt.Println()
	case server.TypeTables:
		rows := make([][]string, len(response.Tables))
		for i, t := range response.Tables {
			rows[i] = []string{t.Name, strings.Join(t.Columns, ", "), fmt.Sprint(t.Rows)}
		}
		printTable([]string{"table", "columns", "rows"}, rows)
		fmt.Println()
	case server.TypeExplain:
		fmt.Printf("%s\n\n", response.Plan)
	case server.TypeOK:
		okColor.Printf("✓ %s\n\n", response.Message)
	}
}

// processStatement sends one statement and prints the result.
// Returns true if the client should exit (QUIT/EXIT command).
func processStatement(statement string, client *Client) bool {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return false
	}

	upper := strings.ToUpper(statement)
	if upper == "QUIT" || upper == "EXIT" {
		fmt.Println("Goodbye!")
		return true
	}

	response, err := client.Execute(statement)
	if err != nil {
		errorColor.Printf("Error: %v\n\n", err)
		return false
	}

	printResponse(response)
	return false
}

func main() {
	host := config.GetEnvOrDefault("RELCORE_HOST", DefaultHost)
	port := config.GetEnvOrDefault("RELCORE_PORT", config.DefaultPort)

	client, err := NewClient(host, port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to server: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	headerColor.Println("relcore client")
	fmt.Printf("Connected to %s:%s\n", host, port)
	fmt.Println("End statements with ';'. Commands: TABLES; EXPLAIN <select>; SAVE <name> AS <select>; DROP <name>; EXPORT <path>; QUIT")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	var statementBuilder strings.Builder

	for {
		if statementBuilder.Len() == 0 {
			fmt.Print("relcore> ")
		} else {
			fmt.Print("      -> ")
		}

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ";") {
			statementBuilder.WriteString(" " + strings.TrimSuffix(line, ";"))
			statement := statementBuilder.String()
			statementBuilder.Reset()
			if processStatement(statement, client) {
				break
			}
		} else {
			if statementBuilder.Len() > 0 {
				statementBuilder.WriteString(" ")
			}
			statementBuilder.WriteString(line)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}
