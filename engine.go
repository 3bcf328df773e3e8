package sqlitekit

import (
	"context"
	"log/slog"
)

// Database is the engine's top-level facade, grounded on the teacher's
// SqliteDatabase/service.go pairing: a single type that owns the open file
// (via a ResourceManager, so the Reader is always closed even on a failed
// open) and dispatches the three command shapes spec.md §4.7 defines —
// .dbinfo, .tables, and a single SELECT statement.
type Database struct {
	storage   *Storage
	resources *ResourceManager
	cfg       *DatabaseConfig
}

// OpenDatabase opens the SQLite file at path and loads its schema eagerly,
// matching spec.md §3's "schema cached per command" invariant (this engine
// runs one command per invocation, so "per command" and "for the lifetime
// of the Database" coincide).
func OpenDatabase(path string, opts ...DatabaseOption) (*Database, error) {
	cfg := DefaultDatabaseConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	reader, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	rm := NewResourceManager()
	rm.Add(reader)

	storage, err := openStorageWithConfig(reader, cfg)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}
	slog.Debug("opened database", "path", path, "page_size", storage.Header().PageSize, "tables", len(storage.Schema().TableNames()))
	return &Database{storage: storage, resources: rm, cfg: cfg}, nil
}

func (d *Database) Close() error {
	return d.resources.Close()
}

// DbInfo is the result of the .dbinfo command.
type DbInfo struct {
	PageSize   uint32
	TableCount int
}

// DbInfo implements spec.md §4.7's .dbinfo command. Canonical SQLite counts
// only rows of type "table" in sqlite_schema; the source this spec was
// distilled from counts every schema row (tables and indexes alike). The
// default here follows canonical SQLite; WithCountAllSchemaObjects(true)
// recovers the source's behavior for callers that need it — see DESIGN.md's
// resolution of spec.md §9's open question.
func (d *Database) DbInfo() *DbInfo {
	schema := d.storage.Schema()
	count := len(schema.TableNames())
	if d.cfg.CountAllSchemaObjects {
		count = len(schema.Objects)
	}
	return &DbInfo{PageSize: d.storage.Header().PageSize, TableCount: count}
}

// TableNames implements spec.md §4.7's .tables command: table names in
// schema (on-disk) order.
func (d *Database) TableNames() []string {
	return d.storage.Schema().TableNames()
}

// queryPlan records how Execute chose to resolve a SELECT's rows, grounded
// on the teacher's QueryOptimizer/QueryPlan shape in optimizer.go. Unlike
// the teacher's plan, which a caller could inspect but ExecutePlan never
// actually narrowed the scan with, this one drives a real ProbeIndex +
// rowid-pushdown ScanTable when useIndex is set.
type queryPlan struct {
	useIndex bool
	index    *SchemaObject
	literal  Value
}

// planQuery inspects a WHERE clause for the single pattern spec.md §4.7
// calls out for index selection: the entire WHERE is one equality
// comparison between a bare column and a bare literal, in either order, and
// an index exists on exactly that column of the target table.
func planQuery(schema *Schema, tableName string, where *OrExpr) queryPlan {
	if where == nil {
		return queryPlan{}
	}
	col, lit, ok := deconstructSimpleEq(where)
	if !ok {
		return queryPlan{}
	}
	idx, found := schema.IndexOn(tableName, col)
	if !found {
		return queryPlan{}
	}
	return queryPlan{useIndex: true, index: idx, literal: lit}
}

// deconstructSimpleEq recognizes "ident = literal" or "literal = ident" as
// the sole content of a WHERE clause — no surrounding AND/OR, no arithmetic
// on either side. Anything else fails the match and the engine falls back
// to a full scan with in-memory filtering.
func deconstructSimpleEq(where *OrExpr) (col string, lit Value, ok bool) {
	if len(where.Ops) != 0 {
		return "", nil, false
	}
	andExpr := where.Left
	if len(andExpr.Ops) != 0 {
		return "", nil, false
	}
	eqExpr := andExpr.Left
	if len(eqExpr.Ops) != 1 {
		return "", nil, false
	}
	op := eqExpr.Ops[0]
	if op.Op != "=" && op.Op != "==" {
		return "", nil, false
	}
	left, leftOK := atomOfCmp(eqExpr.Left)
	right, rightOK := atomOfCmp(op.Right)
	if !leftOK || !rightOK {
		return "", nil, false
	}
	if left.Ident != nil {
		if v, litOK := atomLiteral(right); litOK {
			return *left.Ident, v, true
		}
	}
	if right.Ident != nil {
		if v, litOK := atomLiteral(left); litOK {
			return *right.Ident, v, true
		}
	}
	return "", nil, false
}

func atomOfCmp(e *CmpExpr) (*Atom, bool) {
	if len(e.Ops) != 0 {
		return nil, false
	}
	return atomOfAdd(e.Left)
}

func atomOfAdd(e *AddExpr) (*Atom, bool) {
	if len(e.Ops) != 0 {
		return nil, false
	}
	return atomOfMul(e.Left)
}

func atomOfMul(e *MulExpr) (*Atom, bool) {
	if len(e.Ops) != 0 {
		return nil, false
	}
	return e.Left, true
}

func atomLiteral(a *Atom) (Value, bool) {
	switch {
	case a.Number != nil:
		return Integer(*a.Number), true
	case a.Text != nil:
		return Text(textLiteral(*a.Text)), true
	default:
		return nil, false
	}
}

// Execute runs a single command: ".dbinfo", ".tables", or a SELECT
// statement. Dot-commands return their own result types; SELECT returns a
// *ResultTable ready for a Renderer. When DatabaseConfig.ReadTimeout is
// positive, the command is bounded by it and fails with ErrTimeout if
// exceeded — the single entry point gets the config option's deadline
// instead of every internal call threading a context.Context through.
func (d *Database) Execute(command string) (any, error) {
	slog.Debug("executing command", "command", command)
	if d.cfg.ReadTimeout <= 0 {
		return d.execute(command)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.ReadTimeout)
	defer cancel()
	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := d.execute(command)
		done <- outcome{v, err}
	}()
	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		return nil, newError("execute", ErrTimeout, map[string]any{"command": command, "timeout": d.cfg.ReadTimeout.String()})
	}
}

func (d *Database) execute(command string) (any, error) {
	switch command {
	case ".dbinfo":
		return d.DbInfo(), nil
	case ".tables":
		return d.TableNames(), nil
	default:
		return d.executeSelect(command)
	}
}

func (d *Database) executeSelect(sql string) (*ResultTable, error) {
	stmt, err := ParseSelect(sql)
	if err != nil {
		return nil, err
	}

	schema := d.storage.Schema()
	table, err := schema.Table(stmt.From)
	if err != nil {
		return nil, err
	}
	columns, err := table.Columns()
	if err != nil {
		return nil, err
	}
	pkColumn, hasPK := table.IntegerPrimaryKeyColumn()
	pkIndex := -1
	if hasPK {
		for i, c := range columns {
			if c == pkColumn {
				pkIndex = i
				break
			}
		}
	}

	var rowids []int64
	plan := planQuery(schema, stmt.From, stmt.Where)
	if plan.useIndex {
		rowids, err = d.storage.ProbeIndex(plan.index.RootPage, plan.literal)
		if err != nil {
			return nil, err
		}
	}

	rows, err := d.storage.ScanTable(table.RootPage, rowids)
	if err != nil {
		return nil, err
	}

	filtered := make([]ScannedRow, 0, len(rows))
	for _, row := range rows {
		values := row.Values
		if pkIndex >= 0 {
			if _, isNull := values[pkIndex].(Null); isNull {
				substituted := make([]Value, len(values))
				copy(substituted, values)
				substituted[pkIndex] = Integer(row.Rowid)
				values = substituted
			}
		}
		if stmt.Where != nil {
			result, err := EvalWhere(stmt.Where, newRow(columns, values))
			if err != nil {
				return nil, err
			}
			truthy, err := Truthy(result)
			if err != nil {
				return nil, err
			}
			if !truthy {
				continue
			}
		}
		filtered = append(filtered, ScannedRow{Rowid: row.Rowid, Values: values})
	}

	if stmt.CountStar {
		return &ResultTable{Rows: [][]Value{{Integer(int64(len(filtered)))}}}, nil
	}

	return projectSelectList(stmt.Columns, columns, filtered)
}

// projectSelectList evaluates the SELECT list's lazy value sequences
// (eval.go) against the filtered rows, per spec.md §4.6's SELECT-list mode.
// A sequence's own length (e.g. a literal's infinite length) never bounds
// the output on its own; once every operand in every expression is
// resolved, a still-unbounded result falls back to the row count, which is
// always finite.
func projectSelectList(exprs []*OrExpr, columns []string, rows []ScannedRow) (*ResultTable, error) {
	resolve := func(name string) (valueSeq, error) {
		idx := -1
		for i, c := range columns {
			if c == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return valueSeq{}, newError("select_list", ErrColumnNotFound, map[string]any{"column": name})
		}
		return columnSeq(len(rows), func(i int) (Value, error) { return rows[i].Values[idx], nil }), nil
	}

	seqs := make([]valueSeq, len(exprs))
	length := -1
	for i, expr := range exprs {
		seq, err := evalExprSeq(expr, resolve)
		if err != nil {
			return nil, err
		}
		seqs[i] = seq
		if seq.length >= 0 && (length < 0 || seq.length < length) {
			length = seq.length
		}
	}
	if length < 0 {
		length = len(rows)
	}

	out := make([][]Value, length)
	for i := 0; i < length; i++ {
		row := make([]Value, len(seqs))
		for j, seq := range seqs {
			v, err := seq.at(i)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		out[i] = row
	}
	return &ResultTable{Rows: out}, nil
}
