package sqlitekit

import "testing"

func TestParseTableLeafCell(t *testing.T) {
	payload := encodeRecord([]Value{Integer(7), Text("hi")})
	var data []byte
	data = AppendVarint(data, int64(len(payload))) // payload_size
	data = AppendVarint(data, 42)                  // rowid
	data = append(data, payload...)

	cell, err := parseTableLeafCell(data)
	if err != nil {
		t.Fatalf("parseTableLeafCell: %v", err)
	}
	if cell.rowid != 42 {
		t.Errorf("rowid = %d, want 42", cell.rowid)
	}
	values, err := decodeRecord(cell.payload)
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if values[0] != Integer(7) || values[1] != Text("hi") {
		t.Errorf("decoded values = %v", values)
	}
}

func TestParseTableLeafCellPayloadTooLong(t *testing.T) {
	var data []byte
	data = AppendVarint(data, 1000) // payload_size far exceeds remaining buf
	data = AppendVarint(data, 1)
	if _, err := parseTableLeafCell(data); err == nil {
		t.Fatal("expected error for overflowing payload")
	}
}

func TestParseTableInteriorCell(t *testing.T) {
	var data []byte
	data = append(data, 0, 0, 0, 9) // left_child = 9
	data = AppendVarint(data, 500)  // key

	cell, err := parseTableInteriorCell(data)
	if err != nil {
		t.Fatalf("parseTableInteriorCell: %v", err)
	}
	if cell.leftChild != 9 || cell.key != 500 {
		t.Errorf("got leftChild=%d key=%d, want 9 500", cell.leftChild, cell.key)
	}
}

func TestParseIndexLeafCell(t *testing.T) {
	payload := encodeRecord([]Value{Text("k"), Integer(3)})
	var data []byte
	data = AppendVarint(data, int64(len(payload)))
	data = append(data, payload...)

	cell, err := parseIndexLeafCell(data)
	if err != nil {
		t.Fatalf("parseIndexLeafCell: %v", err)
	}
	values, err := decodeRecord(cell.payload)
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if values[0] != Text("k") || values[1] != Integer(3) {
		t.Errorf("decoded values = %v", values)
	}
}

func TestParseIndexInteriorCell(t *testing.T) {
	payload := encodeRecord([]Value{Text("k"), Integer(3)})
	var data []byte
	data = append(data, 0, 0, 0, 4) // left_child = 4
	data = AppendVarint(data, int64(len(payload)))
	data = append(data, payload...)

	cell, err := parseIndexInteriorCell(data)
	if err != nil {
		t.Fatalf("parseIndexInteriorCell: %v", err)
	}
	if cell.leftChild != 4 {
		t.Errorf("leftChild = %d, want 4", cell.leftChild)
	}
}
