package sqlitekit

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// serialTypeSize returns the number of body bytes the given serial type
// occupies, per spec.md §3's table.
func serialTypeSize(serialType int64) (int, error) {
	switch {
	case serialType == 0, serialType == 8, serialType == 9:
		return 0, nil
	case serialType >= 1 && serialType <= 4:
		return int(serialType), nil
	case serialType == 5:
		return 6, nil
	case serialType == 6, serialType == 7:
		return 8, nil
	case serialType == 10 || serialType == 11:
		return 0, newError("serial_type_size", ErrUnsupported, map[string]any{"serial_type": serialType, "reason": "reserved serial type"})
	case serialType >= 12 && serialType%2 == 0:
		return int((serialType - 12) / 2), nil
	case serialType >= 13 && serialType%2 == 1:
		return int((serialType - 13) / 2), nil
	default:
		return 0, newError("serial_type_size", ErrMalformedRecord, map[string]any{"serial_type": serialType, "reason": "negative serial type"})
	}
}

// decodeValue interprets body as a Value of the given serial type.
func decodeValue(serialType int64, body []byte) (Value, error) {
	switch {
	case serialType == 0:
		return Null{}, nil
	case serialType == 8:
		return Integer(0), nil
	case serialType == 9:
		return Integer(1), nil
	case serialType >= 1 && serialType <= 6:
		return Integer(decodeSignedBigEndian(body)), nil
	case serialType == 7:
		if len(body) != 8 {
			return nil, newError("decode_value", ErrMalformedRecord, map[string]any{"reason": "real value needs 8 bytes"})
		}
		return Real(math.Float64frombits(binary.BigEndian.Uint64(body))), nil
	case serialType >= 12 && serialType%2 == 0:
		return Blob(append([]byte(nil), body...)), nil
	case serialType >= 13 && serialType%2 == 1:
		if !utf8.Valid(body) {
			return nil, newError("decode_value", ErrMalformedRecord, map[string]any{"reason": "text is not valid UTF-8"})
		}
		return Text(string(body)), nil
	default:
		return nil, newError("decode_value", ErrUnsupported, map[string]any{"serial_type": serialType})
	}
}

// decodeSignedBigEndian sign-extends a 1..6 byte big-endian two's-complement
// integer (serial types 1-6) into an int64.
func decodeSignedBigEndian(body []byte) int64 {
	if len(body) == 0 {
		return 0
	}
	var u uint64
	for _, b := range body {
		u = (u << 8) | uint64(b)
	}
	shift := uint(64 - 8*len(body))
	return int64(u<<shift) >> shift
}

// record is a decoded SQLite record: header_size varint, a sequence of
// serial-type varints, then the concatenated column bodies.
func decodeRecord(payload []byte) ([]Value, error) {
	headerSize, n, err := ReadVarint(payload, 0)
	if err != nil {
		return nil, newError("decode_record", err, nil)
	}
	if int(headerSize) > len(payload) || headerSize < int64(n) {
		return nil, newError("decode_record", ErrMalformedRecord, map[string]any{"reason": "header_size out of range"})
	}

	var serialTypes []int64
	cursor := n
	for cursor < int(headerSize) {
		st, k, err := ReadVarint(payload, cursor)
		if err != nil {
			return nil, newError("decode_record", err, nil)
		}
		serialTypes = append(serialTypes, st)
		cursor += k
	}
	if cursor != int(headerSize) {
		return nil, newError("decode_record", ErrMalformedRecord, map[string]any{"reason": "serial type list overran header_size"})
	}

	values := make([]Value, len(serialTypes))
	bodyCursor := int(headerSize)
	for i, st := range serialTypes {
		size, err := serialTypeSize(st)
		if err != nil {
			return nil, err
		}
		if bodyCursor+size > len(payload) {
			return nil, newError("decode_record", ErrMalformedRecord, map[string]any{"reason": "column body extends past payload"})
		}
		v, err := decodeValue(st, payload[bodyCursor:bodyCursor+size])
		if err != nil {
			return nil, err
		}
		values[i] = v
		bodyCursor += size
	}
	return values, nil
}

// encodeRecord is the inverse of decodeRecord for the serial types this
// engine produces (integers as 8-byte ints, reals, text, blob, null) — used
// only by the tests' page and record fixtures, matching spec.md §8's
// "parse_record ∘ encode_record = identity" property.
func encodeRecord(values []Value) []byte {
	serialTypes := make([]int64, len(values))
	bodies := make([][]byte, len(values))
	for i, v := range values {
		switch vv := v.(type) {
		case Null:
			serialTypes[i] = 0
		case Integer:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(vv))
			serialTypes[i] = 6
			bodies[i] = buf[:]
		case Real:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(float64(vv)))
			serialTypes[i] = 7
			bodies[i] = buf[:]
		case Text:
			b := []byte(vv)
			serialTypes[i] = int64(len(b)*2 + 13)
			bodies[i] = b
		case Blob:
			serialTypes[i] = int64(len(vv)*2 + 12)
			bodies[i] = []byte(vv)
		}
	}

	var headerBody []byte
	for _, st := range serialTypes {
		headerBody = AppendVarint(headerBody, st)
	}

	// header_size counts itself; find the varint-encoded length by
	// trying increasing sizes until the encoded header_size varint's own
	// length stabilizes the total.
	headerSize := len(headerBody) + 1
	for {
		n := len(AppendVarint(nil, int64(headerSize)))
		if n+len(headerBody) == headerSize {
			break
		}
		headerSize = n + len(headerBody)
	}

	out := AppendVarint(nil, int64(headerSize))
	out = append(out, headerBody...)
	for _, b := range bodies {
		out = append(out, b...)
	}
	return out
}
