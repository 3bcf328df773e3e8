package sqlitekit

import "encoding/binary"

type pageType uint8

const (
	pageTypeIndexInterior pageType = 2
	pageTypeTableInterior pageType = 5
	pageTypeIndexLeaf     pageType = 10
	pageTypeTableLeaf     pageType = 13
)

func (t pageType) isInterior() bool {
	return t == pageTypeIndexInterior || t == pageTypeTableInterior
}

func (t pageType) isIndex() bool {
	return t == pageTypeIndexInterior || t == pageTypeIndexLeaf
}

func (t pageType) valid() bool {
	switch t {
	case pageTypeIndexInterior, pageTypeTableInterior, pageTypeIndexLeaf, pageTypeTableLeaf:
		return true
	default:
		return false
	}
}

// page is a parsed page header plus its cell-pointer array and the raw bytes
// of the whole physical page, needed because cell offsets in the pointer
// array are always measured from offset 0 of the page regardless of where
// the header itself starts (page 1 starts its header at offset 100, every
// other page at offset 0).
type page struct {
	typ              pageType
	headerOffset     int
	firstFreeblock   uint16
	cellCount        uint16
	contentAreaStart uint16
	fragmentedFree   uint8
	rightMostPointer uint32 // valid only when typ.isInterior()
	cellPointers     []uint16
	raw              []byte
}

// parsePage decodes the page header and cell-pointer array found at
// headerOffset within raw. headerOffset is 100 for page 1, 0 otherwise.
func parsePage(raw []byte, headerOffset int) (*page, error) {
	if len(raw) < headerOffset+8 {
		return nil, newError("parse_page", ErrMalformedPage, map[string]any{"reason": "page too short for header"})
	}
	typ := pageType(raw[headerOffset])
	if !typ.valid() {
		return nil, newError("parse_page", ErrMalformedPage, map[string]any{"reason": "unknown page type", "type": raw[headerOffset]})
	}

	p := &page{
		typ:              typ,
		headerOffset:     headerOffset,
		firstFreeblock:   binary.BigEndian.Uint16(raw[headerOffset+1 : headerOffset+3]),
		cellCount:        binary.BigEndian.Uint16(raw[headerOffset+3 : headerOffset+5]),
		contentAreaStart: binary.BigEndian.Uint16(raw[headerOffset+5 : headerOffset+7]),
		fragmentedFree:   raw[headerOffset+7],
		raw:              raw,
	}

	cellArrayOffset := headerOffset + 8
	if typ.isInterior() {
		if len(raw) < cellArrayOffset+4 {
			return nil, newError("parse_page", ErrMalformedPage, map[string]any{"reason": "interior page too short for rightmost pointer"})
		}
		p.rightMostPointer = binary.BigEndian.Uint32(raw[cellArrayOffset : cellArrayOffset+4])
		cellArrayOffset += 4
	}

	need := cellArrayOffset + 2*int(p.cellCount)
	if len(raw) < need {
		return nil, newError("parse_page", ErrMalformedPage, map[string]any{"reason": "page too short for cell pointer array", "need": need, "have": len(raw)})
	}
	p.cellPointers = make([]uint16, p.cellCount)
	for i := 0; i < int(p.cellCount); i++ {
		off := cellArrayOffset + 2*i
		ptr := binary.BigEndian.Uint16(raw[off : off+2])
		if int(ptr) >= len(raw) {
			return nil, newError("parse_page", ErrMalformedPage, map[string]any{"reason": "cell pointer out of range", "pointer": ptr})
		}
		p.cellPointers[i] = ptr
	}
	return p, nil
}

// cellBytes returns the raw bytes of the page starting at the i'th cell
// pointer, running to the end of the physical page. Individual cell parsers
// consume only the prefix they need.
func (p *page) cellBytes(i int) []byte {
	return p.raw[p.cellPointers[i]:]
}
