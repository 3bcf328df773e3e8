package sqlitekit

import (
	"sort"
	"sync"
)

// ScannedRow pairs a table row's rowid with its decoded column values.
type ScannedRow struct {
	Rowid  int64
	Values []Value
}

// navigator walks table and index B-trees over a paged byte file. It is the
// component spec.md §4.4 calls the B-tree navigator; Storage (storage.go)
// wraps it with schema caching and exposes the public API. cfg is never nil
// (newNavigator fills in DefaultDatabaseConfig); pageCache and its bound are
// the teacher's PageCacheSize wired to an actual cache instead of sitting
// unused in a config struct no code reads.
type navigator struct {
	reader     Reader
	pageSize   uint32
	cfg        *DatabaseConfig
	pageCache  map[uint32]*page
}

func newNavigator(reader Reader, pageSize uint32) *navigator {
	return newNavigatorWithConfig(reader, pageSize, DefaultDatabaseConfig())
}

func newNavigatorWithConfig(reader Reader, pageSize uint32, cfg *DatabaseConfig) *navigator {
	if cfg == nil {
		cfg = DefaultDatabaseConfig()
	}
	return &navigator{reader: reader, pageSize: pageSize, cfg: cfg, pageCache: make(map[uint32]*page)}
}

func (n *navigator) readPage(pageNo uint32) (*page, error) {
	if p, ok := n.pageCache[pageNo]; ok {
		return p, nil
	}

	raw, err := n.reader.ReadPage(pageNo, n.pageSize)
	if err != nil {
		return nil, newError("read_page", err, map[string]any{"page": pageNo})
	}
	headerOffset := 0
	if pageNo == 1 {
		headerOffset = headerSize
	}
	p, err := parsePage(raw, headerOffset)
	if err != nil {
		return nil, err
	}
	if n.cfg.ValidationMode == ValidationStrict {
		if err := validatePageInvariants(p); err != nil {
			return nil, err
		}
	}
	if n.cfg.PageCacheSize > 0 && len(n.pageCache) < n.cfg.PageCacheSize {
		n.pageCache[pageNo] = p
	}
	return p, nil
}

// validatePageInvariants checks spec.md §3's Page invariant under
// ValidationStrict: the cell-content area must lie at higher offsets than
// the cell-pointer array, i.e. the two regions of the page must not
// overlap.
func validatePageInvariants(p *page) error {
	arrayEnd := p.headerOffset + 8
	if p.typ.isInterior() {
		arrayEnd += 4
	}
	arrayEnd += 2 * int(p.cellCount)

	contentStart := int(p.contentAreaStart)
	if contentStart == 0 {
		contentStart = 65536 // SQLite's encoding of page-size-sized content areas
	}
	if contentStart < arrayEnd {
		return newError("validate_page", ErrMalformedPage, map[string]any{
			"reason": "cell content area overlaps cell pointer array",
		})
	}
	return nil
}

// decodeLeafCellsConcurrently decodes every cell's record in parallel,
// bounded to maxConcurrency in-flight goroutines. This is the teacher's
// goroutine-per-cell page decoding idiom, capped with a semaphore so a leaf
// page with thousands of cells doesn't spawn thousands of goroutines; it is
// used only for full table scans (rowids == nil) — a rowid-pushdown or
// index-probe search only ever touches a handful of cells per leaf, where
// the synchronization overhead would outweigh any benefit.
func decodeLeafCellsConcurrently(cells []*tableLeafCell, maxConcurrency int) ([]ScannedRow, error) {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	out := make([]ScannedRow, len(cells))
	errs := make([]error, len(cells))
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	for i, c := range cells {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c *tableLeafCell) {
			defer wg.Done()
			defer func() { <-sem }()
			values, err := decodeRecord(c.payload)
			if err != nil {
				errs[i] = err
				return
			}
			out[i] = ScannedRow{Rowid: c.rowid, Values: values}
		}(i, c)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ScanTable implements spec.md §4.4.1. rowids, when non-nil, must be sorted
// ascending; duplicates are permitted and preserved. When rowids is nil the
// full table is returned in B-tree (rowid) order.
func (n *navigator) ScanTable(root uint32, rowids []int64) ([]ScannedRow, error) {
	return n.scanTableNode(root, rowids)
}

func (n *navigator) scanTableNode(pageNo uint32, rowids []int64) ([]ScannedRow, error) {
	p, err := n.readPage(pageNo)
	if err != nil {
		return nil, err
	}

	switch p.typ {
	case pageTypeTableLeaf:
		leafCells := make([]*tableLeafCell, p.cellCount)
		for i := range leafCells {
			c, err := parseTableLeafCell(p.cellBytes(i))
			if err != nil {
				return nil, err
			}
			leafCells[i] = c
		}
		if rowids == nil {
			return decodeLeafCellsConcurrently(leafCells, n.cfg.MaxConcurrency)
		}
		out := make([]ScannedRow, 0, len(rowids))
		for _, want := range rowids {
			idx := sort.Search(len(leafCells), func(i int) bool { return leafCells[i].rowid >= want })
			if idx >= len(leafCells) || leafCells[idx].rowid != want {
				continue
			}
			values, err := decodeRecord(leafCells[idx].payload)
			if err != nil {
				return nil, err
			}
			out = append(out, ScannedRow{Rowid: want, Values: values})
		}
		return out, nil

	case pageTypeTableInterior:
		interiorCells := make([]*tableInteriorCell, p.cellCount)
		for i := range interiorCells {
			c, err := parseTableInteriorCell(p.cellBytes(i))
			if err != nil {
				return nil, err
			}
			interiorCells[i] = c
		}

		if rowids == nil {
			var out []ScannedRow
			for _, c := range interiorCells {
				rows, err := n.scanTableNode(c.leftChild, nil)
				if err != nil {
					return nil, err
				}
				out = append(out, rows...)
			}
			rows, err := n.scanTableNode(p.rightMostPointer, nil)
			if err != nil {
				return nil, err
			}
			return append(out, rows...), nil
		}

		buckets := partitionRowidsByKey(rowids, interiorCells)
		var out []ScannedRow
		for i, bucket := range buckets[:len(interiorCells)] {
			if len(bucket) == 0 {
				continue
			}
			rows, err := n.scanTableNode(interiorCells[i].leftChild, bucket)
			if err != nil {
				return nil, err
			}
			out = append(out, rows...)
		}
		if last := buckets[len(interiorCells)]; len(last) > 0 {
			rows, err := n.scanTableNode(p.rightMostPointer, last)
			if err != nil {
				return nil, err
			}
			out = append(out, rows...)
		}
		return out, nil

	default:
		if p.typ.isIndex() {
			return nil, newError("scan_table", ErrMalformedPage, map[string]any{"reason": "root page is an index page, not a table page", "type": p.typ})
		}
		return nil, newError("scan_table", ErrMalformedPage, map[string]any{"reason": "not a table page", "type": p.typ})
	}
}

// partitionRowidsByKey buckets a sorted rowid list into len(cells)+1
// buckets, one per child of a table-interior page. Bucket i (i < len(cells))
// holds rowids in (key_{i-1}, key_i]; the final bucket holds rowids greater
// than the last key, routed to the right-most child.
func partitionRowidsByKey(rowids []int64, cells []*tableInteriorCell) [][]int64 {
	buckets := make([][]int64, len(cells)+1)
	j := 0
	for i, c := range cells {
		for j < len(rowids) && rowids[j] <= c.key {
			buckets[i] = append(buckets[i], rowids[j])
			j++
		}
	}
	buckets[len(cells)] = append(buckets[len(cells)], rowids[j:]...)
	return buckets
}

// ProbeIndex implements spec.md §4.4.2: a key-range search over an index
// B-tree, returning the matching rowids in ascending order.
func (n *navigator) ProbeIndex(root uint32, key Value) ([]int64, error) {
	rowids, err := n.probeIndexNode(root, key)
	if err != nil {
		return nil, err
	}
	sortRowids(rowids)
	return rowids, nil
}

// indexEntry is a decoded index cell: its search key (first record column),
// the rowid it refers to (last record column), and — for interior cells —
// the left child page.
type indexEntry struct {
	key       Value
	rowid     int64
	leftChild uint32
}

func decodeIndexPayload(payload []byte) (key Value, rowid int64, err error) {
	values, err := decodeRecord(payload)
	if err != nil {
		return nil, 0, err
	}
	if len(values) < 2 {
		return nil, 0, newError("decode_index_payload", ErrMalformedRecord, map[string]any{"reason": "index record needs at least 2 columns"})
	}
	rid, ok := values[len(values)-1].(Integer)
	if !ok {
		return nil, 0, newError("decode_index_payload", ErrMalformedRecord, map[string]any{"reason": "index record's last column is not an integer rowid"})
	}
	return values[0], int64(rid), nil
}

func (n *navigator) probeIndexNode(pageNo uint32, needle Value) ([]int64, error) {
	p, err := n.readPage(pageNo)
	if err != nil {
		return nil, err
	}

	switch p.typ {
	case pageTypeIndexLeaf:
		entries := make([]indexEntry, p.cellCount)
		for i := range entries {
			c, err := parseIndexLeafCell(p.cellBytes(i))
			if err != nil {
				return nil, err
			}
			key, rowid, err := decodeIndexPayload(c.payload)
			if err != nil {
				return nil, err
			}
			entries[i] = indexEntry{key: key, rowid: rowid}
		}
		start, end, found := binarySearchRange(len(entries), func(i int) Value { return entries[i].key }, needle)
		if !found {
			return nil, nil
		}
		out := make([]int64, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, entries[i].rowid)
		}
		return out, nil

	case pageTypeIndexInterior:
		entries := make([]indexEntry, p.cellCount)
		for i := range entries {
			c, err := parseIndexInteriorCell(p.cellBytes(i))
			if err != nil {
				return nil, err
			}
			key, rowid, err := decodeIndexPayload(c.payload)
			if err != nil {
				return nil, err
			}
			entries[i] = indexEntry{key: key, rowid: rowid, leftChild: c.leftChild}
		}
		childAt := func(i int) uint32 {
			if i == len(entries) {
				return p.rightMostPointer
			}
			return entries[i].leftChild
		}

		start, end, found := binarySearchRange(len(entries), func(i int) Value { return entries[i].key }, needle)
		var out []int64
		if !found {
			rows, err := n.probeIndexNode(childAt(start), needle)
			if err != nil {
				return nil, err
			}
			return rows, nil
		}
		for i := start; i < end; i++ {
			out = append(out, entries[i].rowid)
		}
		for child := start; child <= end; child++ {
			rows, err := n.probeIndexNode(childAt(child), needle)
			if err != nil {
				return nil, err
			}
			out = append(out, rows...)
		}
		return out, nil

	default:
		if !p.typ.isIndex() {
			return nil, newError("probe_index", ErrMalformedPage, map[string]any{"reason": "root page is a table page, not an index page", "type": p.typ})
		}
		return nil, newError("probe_index", ErrMalformedPage, map[string]any{"reason": "not an index page", "type": p.typ})
	}
}
