package sqlitekit

import "encoding/binary"

const headerSize = 100

var magicPrefix = [16]byte{'S', 'Q', 'L', 'i', 't', 'e', ' ', 'f', 'o', 'r', 'm', 'a', 't', ' ', '3', 0}

// DatabaseHeader is the fixed 100-byte header at the start of every SQLite
// file. Only the fields this engine actually consults are named; the rest of
// the header (freelist pointers, schema cookie, version numbers, ...) is
// read-only state this engine never inspects.
type DatabaseHeader struct {
	PageSize     uint32 // normalized: a header value of 1 means 65536
	ReservedSize uint8
	PageCount    uint32
	TextEncoding uint32 // 1 = UTF-8, 2 = UTF-16le, 3 = UTF-16be
}

// parseHeader decodes the 100-byte database header and validates the
// invariants spec.md requires before any page is read: the magic string,
// and page_size a power of two in [512, 65536].
func parseHeader(buf []byte) (*DatabaseHeader, error) {
	if len(buf) < headerSize {
		return nil, newError("parse_header", ErrMalformedHeader, map[string]any{
			"have": len(buf), "need": headerSize,
		})
	}
	for i, b := range magicPrefix[:15] {
		if buf[i] != b {
			return nil, newError("parse_header", ErrMalformedHeader, map[string]any{
				"reason": "bad magic string",
			})
		}
	}

	rawPageSize := binary.BigEndian.Uint16(buf[16:18])
	pageSize := uint32(rawPageSize)
	if rawPageSize == 1 {
		pageSize = 65536
	}
	if pageSize < 512 || pageSize > 65536 || pageSize&(pageSize-1) != 0 {
		return nil, newError("parse_header", ErrMalformedHeader, map[string]any{
			"reason": "page size not a power of two in [512, 65536]", "page_size": pageSize,
		})
	}

	h := &DatabaseHeader{
		PageSize:     pageSize,
		ReservedSize: buf[20],
		PageCount:    binary.BigEndian.Uint32(buf[28:32]),
		TextEncoding: binary.BigEndian.Uint32(buf[56:60]),
	}
	return h, nil
}
