package sqlitekit

import "testing"

// memReader is an in-memory Reader used to hand-build B-tree fixtures
// without touching a real file, mirroring the teacher's emphasis on
// interface-based seams for testability.
type memReader struct {
	pages    map[uint32][]byte
	pageSize uint32
	reads    []uint32 // records every ReadPage call, for page-visit assertions
}

func newMemReader(pageSize uint32) *memReader {
	return &memReader{pages: map[uint32][]byte{}, pageSize: pageSize}
}

func (m *memReader) ReadHeader() ([]byte, error) {
	return m.pages[1][:headerSize], nil
}

func (m *memReader) ReadPage(pageNo uint32, pageSize uint32) ([]byte, error) {
	m.reads = append(m.reads, pageNo)
	buf, ok := m.pages[pageNo]
	if !ok {
		return nil, newError("read_page", ErrIO, map[string]any{"page": pageNo})
	}
	return buf, nil
}

func (m *memReader) Close() error { return nil }

func buildTableLeafPage(pageSize int, headerOffset int, rows []ScannedRow) []byte {
	raw := make([]byte, pageSize)
	var cellBytes [][]byte
	for _, r := range rows {
		payload := encodeRecord(r.Values)
		var cell []byte
		cell = AppendVarint(cell, int64(len(payload)))
		cell = AppendVarint(cell, r.Rowid)
		cell = append(cell, payload...)
		cellBytes = append(cellBytes, cell)
	}
	writeLeafPage(raw, headerOffset, byte(pageTypeTableLeaf), cellBytes)
	return raw
}

// writeLeafPage lays cells out back-to-front from the end of the page, as
// SQLite does, and fills in the page header and cell-pointer array.
func writeLeafPage(raw []byte, headerOffset int, typ byte, cells [][]byte) {
	raw[headerOffset] = typ
	n := len(cells)
	raw[headerOffset+3] = byte(n >> 8)
	raw[headerOffset+4] = byte(n)

	cursor := len(raw)
	offsets := make([]uint16, n)
	for i, c := range cells {
		cursor -= len(c)
		copy(raw[cursor:], c)
		offsets[i] = uint16(cursor)
	}
	raw[headerOffset+5] = byte(cursor >> 8)
	raw[headerOffset+6] = byte(cursor)

	base := headerOffset + 8
	for i, off := range offsets {
		raw[base+2*i] = byte(off >> 8)
		raw[base+2*i+1] = byte(off)
	}
}

func TestScanTableSingleLeafFullScan(t *testing.T) {
	pageSize := 512
	rows := []ScannedRow{
		{Rowid: 1, Values: []Value{Text("a")}},
		{Rowid: 2, Values: []Value{Text("b")}},
		{Rowid: 3, Values: []Value{Text("c")}},
	}
	r := newMemReader(uint32(pageSize))
	r.pages[1] = buildTableLeafPage(pageSize, headerSize, rows)

	nav := newNavigator(r, uint32(pageSize))
	got, err := nav.ScanTable(1, nil)
	if err != nil {
		t.Fatalf("ScanTable: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	for i, row := range got {
		if row.Rowid != rows[i].Rowid || row.Values[0] != rows[i].Values[0] {
			t.Errorf("row %d = %+v, want %+v", i, row, rows[i])
		}
	}
}

func TestScanTableRowidPushdownOnSingleLeaf(t *testing.T) {
	pageSize := 512
	rows := []ScannedRow{
		{Rowid: 1, Values: []Value{Text("a")}},
		{Rowid: 2, Values: []Value{Text("b")}},
		{Rowid: 3, Values: []Value{Text("c")}},
	}
	r := newMemReader(uint32(pageSize))
	r.pages[1] = buildTableLeafPage(pageSize, headerSize, rows)

	nav := newNavigator(r, uint32(pageSize))
	got, err := nav.ScanTable(1, []int64{1, 3})
	if err != nil {
		t.Fatalf("ScanTable: %v", err)
	}
	if len(got) != 2 || got[0].Rowid != 1 || got[1].Rowid != 3 {
		t.Errorf("got %+v, want rowids [1 3] in order", got)
	}
}

// buildTableTree builds a two-level table B-tree: one interior root page
// (page 2) pointing at two leaf pages (3 and 4), split by rowid.
func buildTableTree(pageSize int) *memReader {
	r := newMemReader(uint32(pageSize))
	r.pages[3] = buildTableLeafPage(pageSize, 0, []ScannedRow{
		{Rowid: 1, Values: []Value{Text("a")}},
		{Rowid: 2, Values: []Value{Text("b")}},
	})
	r.pages[4] = buildTableLeafPage(pageSize, 0, []ScannedRow{
		{Rowid: 5, Values: []Value{Text("c")}},
		{Rowid: 9, Values: []Value{Text("d")}},
	})

	raw := make([]byte, pageSize)
	raw[0] = byte(pageTypeTableInterior)
	raw[3], raw[4] = 0, 1 // one interior cell
	// right_most_pointer at offset 8..12 -> page 4
	raw[8], raw[9], raw[10], raw[11] = 0, 0, 0, 4
	cellArrayOffset := 12
	var cell []byte
	cell = append(cell, 0, 0, 0, 3) // left_child = page 3
	cell = AppendVarint(cell, 2)    // key = largest rowid under page 3
	cursor := len(raw) - len(cell)
	copy(raw[cursor:], cell)
	raw[cellArrayOffset], raw[cellArrayOffset+1] = byte(cursor>>8), byte(cursor)
	raw[5], raw[6] = byte(cursor>>8), byte(cursor)
	r.pages[2] = raw
	return r
}

func TestScanTableInteriorFullScan(t *testing.T) {
	pageSize := 512
	r := buildTableTree(pageSize)
	nav := newNavigator(r, uint32(pageSize))
	got, err := nav.ScanTable(2, nil)
	if err != nil {
		t.Fatalf("ScanTable: %v", err)
	}
	wantRowids := []int64{1, 2, 5, 9}
	if len(got) != len(wantRowids) {
		t.Fatalf("got %d rows, want %d", len(got), len(wantRowids))
	}
	for i, w := range wantRowids {
		if got[i].Rowid != w {
			t.Errorf("row %d rowid = %d, want %d", i, got[i].Rowid, w)
		}
	}
}

func TestScanTableInteriorRowidPushdownSkipsOtherChild(t *testing.T) {
	pageSize := 512
	r := buildTableTree(pageSize)
	nav := newNavigator(r, uint32(pageSize))

	got, err := nav.ScanTable(2, []int64{9})
	if err != nil {
		t.Fatalf("ScanTable: %v", err)
	}
	if len(got) != 1 || got[0].Rowid != 9 {
		t.Fatalf("got %+v, want single row with rowid 9", got)
	}
	for _, p := range r.reads {
		if p == 3 {
			t.Error("pushdown for rowid 9 should not have visited page 3")
		}
	}
}

func buildIndexLeafPage(pageSize, headerOffset int, entries []struct {
	key   Value
	rowid int64
}) []byte {
	raw := make([]byte, pageSize)
	var cells [][]byte
	for _, e := range entries {
		payload := encodeRecord([]Value{e.key, Integer(e.rowid)})
		var cell []byte
		cell = AppendVarint(cell, int64(len(payload)))
		cell = append(cell, payload...)
		cells = append(cells, cell)
	}
	writeLeafPage(raw, headerOffset, byte(pageTypeIndexLeaf), cells)
	return raw
}

func TestProbeIndexSingleLeaf(t *testing.T) {
	pageSize := 512
	entries := []struct {
		key   Value
		rowid int64
	}{
		{Text("apple"), 1},
		{Text("banana"), 2},
		{Text("banana"), 3},
		{Text("cherry"), 4},
	}
	r := newMemReader(uint32(pageSize))
	r.pages[1] = buildIndexLeafPage(pageSize, headerSize, entries)

	nav := newNavigator(r, uint32(pageSize))
	got, err := nav.ProbeIndex(1, Text("banana"))
	if err != nil {
		t.Fatalf("ProbeIndex: %v", err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("got %v, want [2 3]", got)
	}
}

func TestProbeIndexNoMatch(t *testing.T) {
	pageSize := 512
	entries := []struct {
		key   Value
		rowid int64
	}{
		{Text("apple"), 1},
		{Text("cherry"), 4},
	}
	r := newMemReader(uint32(pageSize))
	r.pages[1] = buildIndexLeafPage(pageSize, headerSize, entries)

	nav := newNavigator(r, uint32(pageSize))
	got, err := nav.ProbeIndex(1, Text("banana"))
	if err != nil {
		t.Fatalf("ProbeIndex: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no matches", got)
	}
}
