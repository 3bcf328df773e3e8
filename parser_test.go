package sqlitekit

import "testing"

func TestParseCreateTableColumnsBasic(t *testing.T) {
	cols, err := parseCreateTableColumns(`CREATE TABLE "apples" (id integer primary key autoincrement, name text, color text)`)
	if err != nil {
		t.Fatalf("parseCreateTableColumns: %v", err)
	}
	want := []string{"id", "name", "color"}
	if len(cols) != len(want) {
		t.Fatalf("got %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("col %d = %q, want %q", i, cols[i], want[i])
		}
	}
}

func TestParseCreateTableColumnsNotDDLFails(t *testing.T) {
	if _, err := parseCreateTableColumns("SELECT 1"); err == nil {
		t.Fatal("expected error for non-CREATE-TABLE statement")
	}
}

func TestParseCreateTableColumnsSyntaxErrorFails(t *testing.T) {
	if _, err := parseCreateTableColumns("CREATE TABLE ((( not sql"); err == nil {
		t.Fatal("expected error for malformed DDL")
	}
}
