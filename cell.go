package sqlitekit

import "encoding/binary"

// tableLeafCell holds a row's rowid and the raw bytes of its record payload.
// Overflow-page chains are out of scope, so payload is assumed to fit
// entirely within the cell.
type tableLeafCell struct {
	rowid   int64
	payload []byte
}

type tableInteriorCell struct {
	leftChild uint32
	key       int64 // largest rowid reachable through leftChild
}

type indexLeafCell struct {
	payload []byte
}

type indexInteriorCell struct {
	leftChild uint32
	payload   []byte
}

func parseTableLeafCell(data []byte) (*tableLeafCell, error) {
	payloadSize, n1, err := ReadVarint(data, 0)
	if err != nil {
		return nil, newError("parse_table_leaf_cell", err, nil)
	}
	rowid, n2, err := ReadVarint(data, n1)
	if err != nil {
		return nil, newError("parse_table_leaf_cell", err, nil)
	}
	start := n1 + n2
	end := start + int(payloadSize)
	if end > len(data) {
		return nil, newError("parse_table_leaf_cell", ErrMalformedPage, map[string]any{"reason": "payload extends past page (overflow pages unsupported)"})
	}
	return &tableLeafCell{rowid: rowid, payload: data[start:end]}, nil
}

func parseTableInteriorCell(data []byte) (*tableInteriorCell, error) {
	if len(data) < 4 {
		return nil, newError("parse_table_interior_cell", ErrMalformedPage, nil)
	}
	leftChild := binary.BigEndian.Uint32(data[0:4])
	key, _, err := ReadVarint(data, 4)
	if err != nil {
		return nil, newError("parse_table_interior_cell", err, nil)
	}
	return &tableInteriorCell{leftChild: leftChild, key: key}, nil
}

func parseIndexLeafCell(data []byte) (*indexLeafCell, error) {
	payloadSize, n, err := ReadVarint(data, 0)
	if err != nil {
		return nil, newError("parse_index_leaf_cell", err, nil)
	}
	end := n + int(payloadSize)
	if end > len(data) {
		return nil, newError("parse_index_leaf_cell", ErrMalformedPage, map[string]any{"reason": "payload extends past page (overflow pages unsupported)"})
	}
	return &indexLeafCell{payload: data[n:end]}, nil
}

func parseIndexInteriorCell(data []byte) (*indexInteriorCell, error) {
	if len(data) < 4 {
		return nil, newError("parse_index_interior_cell", ErrMalformedPage, nil)
	}
	leftChild := binary.BigEndian.Uint32(data[0:4])
	payloadSize, n, err := ReadVarint(data, 4)
	if err != nil {
		return nil, newError("parse_index_interior_cell", err, nil)
	}
	start := 4 + n
	end := start + int(payloadSize)
	if end > len(data) {
		return nil, newError("parse_index_interior_cell", ErrMalformedPage, map[string]any{"reason": "payload extends past page (overflow pages unsupported)"})
	}
	return &indexInteriorCell{leftChild: leftChild, payload: data[start:end]}, nil
}
