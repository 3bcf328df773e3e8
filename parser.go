package sqlitekit

import (
	"strings"

	"github.com/xwb1989/sqlparser"
)

// parseCreateTableColumns extracts the ordered column names from a CREATE
// TABLE statement's text. Grounded directly on the teacher's
// parseTableSchema/normalizeSQLiteToMySQL/handleColumnNamesWithSpaces
// (database.go): xwb1989/sqlparser targets MySQL's dialect, so SQLite DDL
// is massaged first — double-quoted identifiers stripped, the
// AUTOINCREMENT/PRIMARY KEY ordering SQLite allows rewritten to the order
// sqlparser expects.
func parseCreateTableColumns(schemaSQL string) ([]string, error) {
	normalized := normalizeSQLiteToMySQL(schemaSQL)

	stmt, err := sqlparser.Parse(normalized)
	if err != nil {
		return nil, newError("parse_create_table", ErrSyntax, map[string]any{
			"sql":        schemaSQL,
			"normalized": normalized,
			"cause":      err.Error(),
		})
	}

	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != "create" || ddl.TableSpec == nil {
		return nil, newError("parse_create_table", ErrSyntax, map[string]any{"sql": schemaSQL})
	}

	cols := make([]string, len(ddl.TableSpec.Columns))
	for i, col := range ddl.TableSpec.Columns {
		cols[i] = col.Name.String()
	}
	return cols, nil
}

// normalizeSQLiteToMySQL rewrites the handful of SQLite DDL idioms that
// trip up xwb1989/sqlparser's MySQL grammar. Ported near-verbatim from the
// teacher's function of the same name.
func normalizeSQLiteToMySQL(sql string) string {
	normalized := strings.ReplaceAll(sql, `"`, "")
	normalized = strings.ReplaceAll(normalized, "primary key autoincrement", "AUTO_INCREMENT PRIMARY KEY")
	normalized = strings.ReplaceAll(normalized, "PRIMARY KEY AUTOINCREMENT", "AUTO_INCREMENT PRIMARY KEY")
	normalized = strings.TrimSpace(normalized)
	return normalized
}
