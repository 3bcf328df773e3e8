package sqlitekit

import (
	"strings"
)

// SchemaObject is one row of sqlite_schema, per spec.md §3. Columns and
// IndexedColumns are derived lazily from SQL on first access rather than
// eagerly at load time, since most commands only touch one table's DDL.
type SchemaObject struct {
	Type     string // "table" or "index"
	Name     string
	TblName  string
	RootPage uint32
	SQL      string

	columns        []string
	columnsParsed  bool
	indexedColumns []string
	indexedParsed  bool
}

// Columns returns the ordered column names declared in a CREATE TABLE
// statement, parsed via xwb1989/sqlparser the way the teacher's
// parseTableSchema does (database.go), normalizing SQLite DDL quirks to the
// MySQL dialect sqlparser expects first.
func (s *SchemaObject) Columns() ([]string, error) {
	if s.columnsParsed {
		return s.columns, nil
	}
	cols, err := parseCreateTableColumns(s.SQL)
	if err != nil {
		return nil, err
	}
	s.columns = cols
	s.columnsParsed = true
	return cols, nil
}

// IntegerPrimaryKeyColumn reports the name of the column, if any, whose
// declaration carries the phrase "integer primary key" (case-insensitive),
// per spec.md §4.7's rowid aliasing rule.
func (s *SchemaObject) IntegerPrimaryKeyColumn() (string, bool) {
	lower := strings.ToLower(s.SQL)
	idx := strings.Index(lower, "integer primary key")
	if idx < 0 {
		return "", false
	}
	// Walk backward from idx to the start of the column name.
	end := idx
	for end > 0 && (lower[end-1] == ' ' || lower[end-1] == '\t' || lower[end-1] == '\n') {
		end--
	}
	start := end
	for start > 0 {
		c := lower[start-1]
		if c == ',' || c == '(' {
			break
		}
		start--
	}
	name := strings.TrimSpace(s.SQL[start:end])
	name = strings.Trim(name, `"'`+"`")
	if name == "" {
		return "", false
	}
	return name, true
}

// IndexedColumns returns the column list of a CREATE INDEX statement.
// xwb1989/sqlparser's DDL grammar targets MySQL's CREATE TABLE/ALTER
// surface and does not accept bare "CREATE INDEX ... ON t (cols)"
// statements, so this is a small hand-rolled parse of spec.md §4.5's
// narrow CREATE INDEX grammar rather than a library call — see DESIGN.md.
func (s *SchemaObject) IndexedColumns() ([]string, error) {
	if s.indexedParsed {
		return s.indexedColumns, nil
	}
	cols, err := parseCreateIndexColumns(s.SQL)
	if err != nil {
		return nil, err
	}
	s.indexedColumns = cols
	s.indexedParsed = true
	return cols, nil
}

func parseCreateIndexColumns(sql string) ([]string, error) {
	open := strings.IndexByte(sql, '(')
	close := strings.LastIndexByte(sql, ')')
	if open < 0 || close < 0 || close < open {
		return nil, newError("parse_create_index", ErrSyntax, map[string]any{"sql": sql})
	}
	inner := sql[open+1 : close]
	parts := strings.Split(inner, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.Trim(strings.TrimSpace(p), `"'`+"`")
		if name == "" {
			return nil, newError("parse_create_index", ErrSyntax, map[string]any{"sql": sql})
		}
		cols = append(cols, name)
	}
	return cols, nil
}

// Schema is the ordered sequence of SchemaObjects on page 1, cached for the
// lifetime of one command per spec.md §3's invariant.
type Schema struct {
	Objects []*SchemaObject
}

// Table looks up a table by name, case-sensitively (SQLite identifiers as
// stored in sqlite_schema are compared as given; this engine does not
// implement SQLite's full collation rules for identifiers).
func (s *Schema) Table(name string) (*SchemaObject, error) {
	for _, o := range s.Objects {
		if o.Type == "table" && o.Name == name {
			return o, nil
		}
	}
	return nil, newError("lookup_table", ErrTableNotFound, map[string]any{"table": name})
}

// IndexOn returns an index whose sole indexed column is col, on table
// tableName, if one exists in the schema. Used by the engine's optional
// index-selection optimization (spec.md §4.7).
func (s *Schema) IndexOn(tableName, col string) (*SchemaObject, bool) {
	for _, o := range s.Objects {
		if o.Type != "index" || o.TblName != tableName {
			continue
		}
		cols, err := o.IndexedColumns()
		if err != nil || len(cols) != 1 {
			continue
		}
		if cols[0] == col {
			return o, true
		}
	}
	return nil, false
}

// TableNames returns the names of schema objects of type "table", in
// schema (on-disk) order, per spec.md §4.7's .tables command.
func (s *Schema) TableNames() []string {
	var names []string
	for _, o := range s.Objects {
		if o.Type == "table" {
			names = append(names, o.Name)
		}
	}
	return names
}

// loadSchema decodes sqlite_schema (page 1, always a table-leaf-rooted
// B-tree at root page 1 with columns type,name,tbl_name,rootpage,sql), per
// spec.md §4.4.3.
func loadSchema(nav *navigator) (*Schema, error) {
	rows, err := nav.ScanTable(1, nil)
	if err != nil {
		return nil, newError("load_schema", err, nil)
	}
	objects := make([]*SchemaObject, 0, len(rows))
	for _, row := range rows {
		if len(row.Values) != 5 {
			return nil, newError("load_schema", ErrMalformedSchema, map[string]any{"reason": "sqlite_schema row has unexpected column count", "columns": len(row.Values)})
		}
		typ, ok1 := row.Values[0].(Text)
		name, ok2 := row.Values[1].(Text)
		tblName, ok3 := row.Values[2].(Text)
		sql, ok5 := row.Values[4].(Text)
		if !ok1 || !ok2 || !ok3 || !ok5 {
			return nil, newError("load_schema", ErrMalformedSchema, map[string]any{"reason": "unexpected column types"})
		}
		var rootPage uint32
		switch v := row.Values[3].(type) {
		case Integer:
			rootPage = uint32(v)
		case Null:
			rootPage = 0
		default:
			return nil, newError("load_schema", ErrMalformedSchema, map[string]any{"reason": "rootpage column not an integer"})
		}
		objects = append(objects, &SchemaObject{
			Type:     string(typ),
			Name:     string(name),
			TblName:  string(tblName),
			RootPage: rootPage,
			SQL:      string(sql),
		})
	}
	return &Schema{Objects: objects}, nil
}
