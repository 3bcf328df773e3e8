package sqlitekit

import "testing"

func schemaRow(rowid int64, typ, name, tblName string, rootPage int64, sql string) ScannedRow {
	return ScannedRow{Rowid: rowid, Values: []Value{Text(typ), Text(name), Text(tblName), Integer(rootPage), Text(sql)}}
}

func TestLoadSchema(t *testing.T) {
	pageSize := 4096
	rows := []ScannedRow{
		schemaRow(1, "table", "apples", "apples", 2, `CREATE TABLE apples (id INTEGER PRIMARY KEY, name TEXT, color TEXT)`),
		schemaRow(2, "index", "idx_apples_color", "apples", 3, `CREATE INDEX idx_apples_color ON apples (color)`),
	}
	r := newMemReader(uint32(pageSize))
	r.pages[1] = buildTableLeafPage(pageSize, headerSize, rows)
	nav := newNavigator(r, uint32(pageSize))

	schema, err := loadSchema(nav)
	if err != nil {
		t.Fatalf("loadSchema: %v", err)
	}
	if len(schema.Objects) != 2 {
		t.Fatalf("got %d objects, want 2", len(schema.Objects))
	}
	if names := schema.TableNames(); len(names) != 1 || names[0] != "apples" {
		t.Errorf("TableNames = %v, want [apples]", names)
	}

	tbl, err := schema.Table("apples")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if tbl.RootPage != 2 {
		t.Errorf("RootPage = %d, want 2", tbl.RootPage)
	}
	cols, err := tbl.Columns()
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != 3 || cols[0] != "id" || cols[1] != "name" || cols[2] != "color" {
		t.Errorf("Columns = %v", cols)
	}

	pkCol, ok := tbl.IntegerPrimaryKeyColumn()
	if !ok || pkCol != "id" {
		t.Errorf("IntegerPrimaryKeyColumn = (%q, %v), want (id, true)", pkCol, ok)
	}

	idx, ok := schema.IndexOn("apples", "color")
	if !ok {
		t.Fatal("expected to find index on apples.color")
	}
	if idx.Name != "idx_apples_color" {
		t.Errorf("idx.Name = %q", idx.Name)
	}
}

func TestSchemaTableNotFound(t *testing.T) {
	schema := &Schema{}
	if _, err := schema.Table("missing"); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestIndexedColumnsParsing(t *testing.T) {
	obj := &SchemaObject{SQL: `CREATE INDEX idx_companies_country ON companies ("country")`}
	cols, err := obj.IndexedColumns()
	if err != nil {
		t.Fatalf("IndexedColumns: %v", err)
	}
	if len(cols) != 1 || cols[0] != "country" {
		t.Errorf("IndexedColumns = %v, want [country]", cols)
	}
}

func TestIndexOnRejectsMultiColumnIndex(t *testing.T) {
	schema := &Schema{Objects: []*SchemaObject{
		{Type: "index", TblName: "t", SQL: "CREATE INDEX i ON t (a, b)"},
	}}
	if _, ok := schema.IndexOn("t", "a"); ok {
		t.Error("multi-column index should not be selected for a single-column lookup")
	}
}
