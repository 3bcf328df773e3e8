package sqlitekit

// Storage is the public facade spec.md §4.4 describes: schema access, full
// table scans with optional rowid pushdown, and index key probes. It owns
// the Reader and caches the schema for the lifetime of the enclosing
// Database, matching §3's "loaded eagerly on first need and cached per
// command" invariant — here "per command" is realized as "per open
// Database", since this engine processes one command per invocation.
type Storage struct {
	reader Reader
	nav    *navigator
	header *DatabaseHeader
	schema *Schema
}

func openStorage(reader Reader) (*Storage, error) {
	return openStorageWithConfig(reader, DefaultDatabaseConfig())
}

func openStorageWithConfig(reader Reader, cfg *DatabaseConfig) (*Storage, error) {
	raw, err := reader.ReadHeader()
	if err != nil {
		return nil, newError("open_storage", err, nil)
	}
	header, err := parseHeader(raw)
	if err != nil {
		return nil, newError("open_storage", err, nil)
	}
	nav := newNavigatorWithConfig(reader, header.PageSize, cfg)
	schema, err := loadSchema(nav)
	if err != nil {
		return nil, newError("open_storage", err, nil)
	}
	return &Storage{reader: reader, nav: nav, header: header, schema: schema}, nil
}

func (s *Storage) Header() *DatabaseHeader { return s.header }

func (s *Storage) Schema() *Schema { return s.schema }

// ScanTable exposes navigator.ScanTable per spec.md §4.4's Storage API.
func (s *Storage) ScanTable(root uint32, rowids []int64) ([]ScannedRow, error) {
	return s.nav.ScanTable(root, rowids)
}

// ProbeIndex exposes navigator.ProbeIndex per spec.md §4.4's Storage API.
func (s *Storage) ProbeIndex(root uint32, key Value) ([]int64, error) {
	return s.nav.ProbeIndex(root, key)
}

func (s *Storage) Close() error {
	return s.reader.Close()
}
