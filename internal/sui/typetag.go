package sui

import "strings"

// TypeTag is a tree: a primitive, Vector(inner), or Struct with type
// parameters. The zero value is the bool primitive (KindBool is 0);
// callers should use one of the constructors below.
type TypeTag struct {
	Kind     TagKind
	Vector   *TypeTag   // valid when Kind == KindVector
	Struct   *StructTag // valid when Kind == KindStruct
}

// TagKind discriminates the TypeTag sum type.
type TagKind int

const (
	KindBool TagKind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindU256
	KindAddress
	KindSigner
	KindVector
	KindStruct
)

var primitiveNames = map[TagKind]string{
	KindBool:    "bool",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindU128:    "u128",
	KindU256:    "u256",
	KindAddress: "address",
	KindSigner:  "signer",
}

// StructTag identifies a Move struct type and its type parameters.
type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

// Primitive builds a primitive TypeTag (anything but Vector/Struct).
func Primitive(k TagKind) TypeTag { return TypeTag{Kind: k} }

// VectorOf builds a Vector(inner) TypeTag.
func VectorOf(inner TypeTag) TypeTag {
	return TypeTag{Kind: KindVector, Vector: &inner}
}

// StructOf builds a Struct TypeTag.
func StructOf(s StructTag) TypeTag {
	return TypeTag{Kind: KindStruct, Struct: &s}
}

// String renders the canonical type-tag string used as a cache/map key,
// e.g. "0x0000...02::coin::Coin<0x0000...02::sui::SUI>".
func (t TypeTag) String() string {
	switch t.Kind {
	case KindVector:
		return "vector<" + t.Vector.String() + ">"
	case KindStruct:
		return t.Struct.String()
	default:
		return primitiveNames[t.Kind]
	}
}

// String renders a struct tag canonically.
func (s StructTag) String() string {
	var b strings.Builder
	b.WriteString(s.Address.String())
	b.WriteString("::")
	b.WriteString(s.Module)
	b.WriteString("::")
	b.WriteString(s.Name)
	if len(s.TypeParams) > 0 {
		b.WriteByte('<')
		for i, tp := range s.TypeParams {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(tp.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

// RewriteAddress returns a copy of t with every struct address equal to
// from replaced by to, recursing into type parameters. Used by the
// package-upgrade alias map.
func (t TypeTag) RewriteAddress(from, to Address) TypeTag {
	switch t.Kind {
	case KindVector:
		inner := t.Vector.RewriteAddress(from, to)
		return VectorOf(inner)
	case KindStruct:
		s := *t.Struct
		if s.Address == from {
			s.Address = to
		}
		rewritten := make([]TypeTag, len(s.TypeParams))
		for i, tp := range s.TypeParams {
			rewritten[i] = tp.RewriteAddress(from, to)
		}
		s.TypeParams = rewritten
		return StructOf(s)
	default:
		return t
	}
}

// PackageAddresses appends every non-framework package address contained
// anywhere in the tag (including nested type parameters) to out, in
// deterministic (depth-first, left-to-right) order.
func (t TypeTag) PackageAddresses(out []Address) []Address {
	switch t.Kind {
	case KindVector:
		return t.Vector.PackageAddresses(out)
	case KindStruct:
		if !IsFrameworkAddress(t.Struct.Address) {
			out = append(out, t.Struct.Address)
		}
		for _, tp := range t.Struct.TypeParams {
			out = tp.PackageAddresses(out)
		}
		return out
	default:
		return out
	}
}
