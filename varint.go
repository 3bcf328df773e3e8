package sqlitekit

// ReadVarint decodes a SQLite "huffman" varint starting at buf[offset]. Up to
// nine bytes are consumed, big-endian, seven payload bits per byte; the
// eighth bit of each of the first eight bytes signals continuation. The
// ninth byte, if reached, contributes all eight of its bits rather than
// seven — implementations that treat it as a seventh 7-bit byte decode large
// values wrong, which is the one subtlety in this format worth a comment.
//
// Returns the decoded value (reinterpreted as a signed two's-complement
// int64, per the format), the number of bytes consumed, and an error if the
// buffer runs out before a terminating byte is found.
func ReadVarint(buf []byte, offset int) (value int64, n int, err error) {
	var result uint64
	for i := 0; i < 9; i++ {
		if offset+i >= len(buf) {
			return 0, 0, newError("read_varint", ErrMalformedVarint, map[string]any{
				"offset": offset,
				"have":   len(buf) - offset,
			})
		}
		b := buf[offset+i]
		if i == 8 {
			result = (result << 8) | uint64(b)
			return int64(result), i + 1, nil
		}
		result = (result << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return int64(result), i + 1, nil
		}
	}
	// Unreachable: the loop above always returns by i==8.
	return 0, 0, newError("read_varint", ErrMalformedVarint, map[string]any{"offset": offset})
}

// AppendVarint encodes value using the same rule ReadVarint decodes, and is
// used by the round-trip tests in varint_test.go (parse ∘ encode = identity)
// and by record_test.go's record round-trip fixtures.
func AppendVarint(buf []byte, value int64) []byte {
	u := uint64(value)

	if u&0xff00000000000000 != 0 {
		// Top byte is non-zero: eight 7-bit groups can't hold it, so this
		// needs the full nine-byte form with an 8-bit ninth byte.
		var out [9]byte
		out[8] = byte(u)
		v := u >> 8
		for i := 7; i >= 0; i-- {
			out[i] = byte(v&0x7f) | 0x80
			v >>= 7
		}
		return append(buf, out[:]...)
	}

	var tmp [8]byte
	n := 0
	for {
		tmp[n] = byte(u&0x7f) | 0x80
		n++
		u >>= 7
		if u == 0 {
			break
		}
	}
	tmp[0] &^= 0x80 // clear continuation on what will become the last byte
	out := make([]byte, n)
	for i, j := 0, n-1; j >= 0; i, j = i+1, j-1 {
		out[i] = tmp[j]
	}
	return append(buf, out...)
}
