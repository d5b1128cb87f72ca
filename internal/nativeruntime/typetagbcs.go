package nativeruntime

import "github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"

// encodeTypeTagBCS renders tag in Move's BCS enum encoding, matching
// move-core-types::language_storage::TypeTag's variant order exactly:
// Bool, U8, U64, U128, Address, Signer, Vector, Struct, U16, U32, U256.
// This is the "bcs(type_tag)" term in the dynamic-field child-id hash.
func encodeTypeTagBCS(tag sui.TypeTag) []byte {
	var buf []byte
	switch tag.Kind {
	case sui.KindBool:
		buf = appendULEB128(buf, 0)
	case sui.KindU8:
		buf = appendULEB128(buf, 1)
	case sui.KindU64:
		buf = appendULEB128(buf, 2)
	case sui.KindU128:
		buf = appendULEB128(buf, 3)
	case sui.KindAddress:
		buf = appendULEB128(buf, 4)
	case sui.KindSigner:
		buf = appendULEB128(buf, 5)
	case sui.KindVector:
		buf = appendULEB128(buf, 6)
		buf = append(buf, encodeTypeTagBCS(*tag.Vector)...)
	case sui.KindStruct:
		buf = appendULEB128(buf, 7)
		buf = append(buf, encodeStructTagBCS(*tag.Struct)...)
	case sui.KindU16:
		buf = appendULEB128(buf, 8)
	case sui.KindU32:
		buf = appendULEB128(buf, 9)
	case sui.KindU256:
		buf = appendULEB128(buf, 10)
	}
	return buf
}

func encodeStructTagBCS(s sui.StructTag) []byte {
	var buf []byte
	buf = append(buf, s.Address[:]...)
	buf = append(buf, encodeBCSString(s.Module)...)
	buf = append(buf, encodeBCSString(s.Name)...)
	buf = appendULEB128(buf, uint64(len(s.TypeParams)))
	for _, tp := range s.TypeParams {
		buf = append(buf, encodeTypeTagBCS(tp)...)
	}
	return buf
}

func encodeBCSString(s string) []byte {
	buf := appendULEB128(nil, uint64(len(s)))
	return append(buf, s...)
}

func appendULEB128(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
		} else {
			buf = append(buf, b)
			break
		}
	}
	return buf
}
