package sui

import "testing"

func TestOwnerConstructorsAndPredicates(t *testing.T) {
	addr := MustParseAddress("0xfeed")
	ao := NewAddressOwner(addr)
	if ao.IsShared() || ao.IsImmutable() {
		t.Error("address owner should not be shared or immutable")
	}
	if ao.AddressOwner != addr {
		t.Error("address owner payload mismatch")
	}

	oo := NewObjectOwner(addr)
	if oo.Kind != OwnerObject || oo.ObjectOwner != addr {
		t.Error("object owner payload mismatch")
	}

	so := NewSharedOwner(42)
	if !so.IsShared() || so.InitialSharedVersion != 42 {
		t.Error("shared owner payload mismatch")
	}

	if !ImmutableOwner.IsImmutable() {
		t.Error("ImmutableOwner should report IsImmutable")
	}
}

func TestOwnerString(t *testing.T) {
	addr := MustParseAddress("0x1")
	cases := []struct {
		o    Owner
		want string
	}{
		{NewAddressOwner(addr), "AddressOwner(" + addr.String() + ")"},
		{NewObjectOwner(addr), "ObjectOwner(" + addr.String() + ")"},
		{NewSharedOwner(7), "Shared(initial_version=7)"},
		{ImmutableOwner, "Immutable"},
	}
	for _, c := range cases {
		if got := c.o.String(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}
