package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/relation"
	"github.com/yashagw/relcore/internal/value"
)

// FromSQLite reads every user table of the SQLite database at path into a
// catalog. Tables keep their declared names and column order.
func FromSQLite(ctx context.Context, path string) (*metadata.Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	names, err := tableNames(ctx, db)
	if err != nil {
		return nil, err
	}
	rels := make([]*relation.Relation, 0, len(names))
	for _, name := range names {
		rel, err := readTable(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("read table %s: %w", name, err)
		}
		rels = append(rels, rel)
	}
	return metadata.NewCatalog(rels...), nil
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func readTable(ctx context.Context, db *sql.DB, name string) (*relation.Relation, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", quoteIdent(name)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rel, err := relation.New(name, columns)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		valPtrs := make([]any, len(columns))
		vals := make([]any, len(columns))
		for i := range columns {
			valPtrs[i] = &vals[i]
		}
		if err := rows.Scan(valPtrs...); err != nil {
			return nil, err
		}
		row := make([]value.Value, len(vals))
		for i, v := range vals {
			row[i] = value.FromAny(v)
		}
		if err := rel.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return rel, rows.Err()
}

// SaveSQLite writes the relations of catalog into the SQLite database at
// path, replacing tables with the same names. Numbers are stored as REAL,
// everything else as TEXT.
func SaveSQLite(ctx context.Context, path string, catalog *metadata.Catalog) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, name := range catalog.Names() {
		rel, err := catalog.Get(name)
		if err != nil {
			return err
		}
		if err := writeTable(ctx, tx, rel); err != nil {
			return fmt.Errorf("write table %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func writeTable(ctx context.Context, tx *sql.Tx, rel *relation.Relation) error {
	table := quoteIdent(rel.Name())
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return err
	}

	cols := rel.Columns()
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(quoted, ", "))); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < rel.Len(); i++ {
		row := rel.Row(i)
		args := make([]any, len(row))
		for j, v := range row {
			if v.IsNumber() {
				args[j] = v.Float()
			} else {
				args[j] = v.String()
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
