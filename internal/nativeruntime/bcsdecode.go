package nativeruntime

import "fmt"

// decodeULEB128 reads a BCS-style unsigned LEB128 integer from the front
// of b, returning the value and the number of bytes consumed.
func decodeULEB128(b []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, c := range b {
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
		if shift > 63 {
			return 0, 0, fmt.Errorf("nativeruntime: uleb128 overflow")
		}
	}
	return 0, 0, fmt.Errorf("nativeruntime: truncated uleb128")
}

// decodeByteVectors decodes a BCS-encoded vector<vector<u8>>: a ULEB128
// element count followed by that many length-prefixed byte strings.
func decodeByteVectors(b []byte) ([][]byte, error) {
	n, consumed, err := decodeULEB128(b)
	if err != nil {
		return nil, err
	}
	b = b[consumed:]
	out := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		l, c, err := decodeULEB128(b)
		if err != nil {
			return nil, err
		}
		b = b[c:]
		if uint64(len(b)) < l {
			return nil, fmt.Errorf("nativeruntime: truncated byte vector element")
		}
		out = append(out, b[:l])
		b = b[l:]
	}
	return out, nil
}
