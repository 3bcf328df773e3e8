// Command gosqlitekit reads a SQLite file and runs a single .dbinfo,
// .tables, or SELECT command against it, printing the result to stdout.
//
// Usage: gosqlitekit <database-path> <command>
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gosqlitekit/sqlitekit"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: gosqlitekit <database-path> <command>")
		os.Exit(2)
	}
	databasePath := os.Args[1]
	command := os.Args[2]

	db, err := sqlitekit.OpenDatabase(databasePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := run(db, command); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(db *sqlitekit.Database, command string) error {
	result, err := db.Execute(command)
	if err != nil {
		return describeError(err)
	}

	switch v := result.(type) {
	case *sqlitekit.DbInfo:
		fmt.Printf("database page size: %v\n", v.PageSize)
		fmt.Printf("number of tables: %v\n", v.TableCount)
	case []string:
		fmt.Println(strings.Join(v, " "))
	case *sqlitekit.ResultTable:
		rendered := sqlitekit.TextRenderer{}.Render(v)
		if rendered != "" {
			fmt.Println(rendered)
		}
	default:
		return fmt.Errorf("gosqlitekit: unrecognized result type %T", v)
	}
	return nil
}

// describeError reduces a wrapped *EngineError down to a one-line message
// for recognized user-facing failure modes (bad SQL, missing table), so the
// CLI doesn't dump Go's full error-chain formatting at the terminal.
func describeError(err error) error {
	switch {
	case errors.Is(err, sqlitekit.ErrTableNotFound):
		return fmt.Errorf("no such table: %v", err)
	case errors.Is(err, sqlitekit.ErrSyntax):
		return fmt.Errorf("syntax error: %v", err)
	case errors.Is(err, sqlitekit.ErrColumnNotFound):
		return fmt.Errorf("no such column: %v", err)
	case errors.Is(err, sqlitekit.ErrDivisionByZero):
		return fmt.Errorf("division by zero: %v", err)
	default:
		return err
	}
}
