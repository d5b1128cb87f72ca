package sui

import "fmt"

// OwnerKind discriminates the Owner sum type.
type OwnerKind int

const (
	OwnerAddress OwnerKind = iota
	OwnerObject
	OwnerShared
	OwnerImmutable
)

// Owner is a closed sum type describing who (or what) controls an object.
// Exactly one field is meaningful, selected by Kind: AddressOwner for
// OwnerAddress, ObjectOwner for OwnerObject, InitialSharedVersion for
// OwnerShared. OwnerImmutable carries no payload.
type Owner struct {
	Kind                 OwnerKind
	AddressOwner         Address
	ObjectOwner          Address
	InitialSharedVersion uint64
}

// NewAddressOwner builds an Owner held by a plain address.
func NewAddressOwner(a Address) Owner {
	return Owner{Kind: OwnerAddress, AddressOwner: a}
}

// NewObjectOwner builds an Owner held by a parent object (dynamic fields,
// wrapped objects).
func NewObjectOwner(parent Address) Owner {
	return Owner{Kind: OwnerObject, ObjectOwner: parent}
}

// NewSharedOwner builds an Owner for a shared object, recording the
// version at which it became shared.
func NewSharedOwner(initialVersion uint64) Owner {
	return Owner{Kind: OwnerShared, InitialSharedVersion: initialVersion}
}

// ImmutableOwner is the singleton Owner for frozen objects.
var ImmutableOwner = Owner{Kind: OwnerImmutable}

// IsShared reports whether the owner is the shared variant.
func (o Owner) IsShared() bool { return o.Kind == OwnerShared }

// IsImmutable reports whether the owner is the immutable variant.
func (o Owner) IsImmutable() bool { return o.Kind == OwnerImmutable }

// String renders the owner the way replay diagnostics and comparison
// reports print it.
func (o Owner) String() string {
	switch o.Kind {
	case OwnerAddress:
		return fmt.Sprintf("AddressOwner(%s)", o.AddressOwner)
	case OwnerObject:
		return fmt.Sprintf("ObjectOwner(%s)", o.ObjectOwner)
	case OwnerShared:
		return fmt.Sprintf("Shared(initial_version=%d)", o.InitialSharedVersion)
	case OwnerImmutable:
		return "Immutable"
	default:
		return "Owner(invalid)"
	}
}
