package sui

import "testing"

func TestTypeTagStringPrimitive(t *testing.T) {
	if got := Primitive(KindU64).String(); got != "u64" {
		t.Errorf("got %q", got)
	}
}

func TestTypeTagStringVector(t *testing.T) {
	v := VectorOf(Primitive(KindU8))
	if got := v.String(); got != "vector<u8>" {
		t.Errorf("got %q", got)
	}
}

func TestTypeTagStringStructWithParams(t *testing.T) {
	coin := StructOf(StructTag{
		Address: FrameworkAddress,
		Module:  "coin",
		Name:    "Coin",
		TypeParams: []TypeTag{
			StructOf(StructTag{Address: FrameworkAddress, Module: "sui", Name: "SUI"}),
		},
	})
	want := FrameworkAddress.String() + "::coin::Coin<" + FrameworkAddress.String() + "::sui::SUI>"
	if got := coin.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteAddressRecursesIntoTypeParams(t *testing.T) {
	oldPkg := MustParseAddress("0xaaa")
	newPkg := MustParseAddress("0xbbb")
	inner := StructOf(StructTag{Address: oldPkg, Module: "m", Name: "Inner"})
	outer := StructOf(StructTag{Address: oldPkg, Module: "m", Name: "Outer", TypeParams: []TypeTag{inner}})

	rewritten := outer.RewriteAddress(oldPkg, newPkg)

	if rewritten.Struct.Address != newPkg {
		t.Errorf("outer address not rewritten")
	}
	if rewritten.Struct.TypeParams[0].Struct.Address != newPkg {
		t.Errorf("nested type param address not rewritten")
	}
	// original untouched
	if outer.Struct.Address != oldPkg {
		t.Errorf("RewriteAddress mutated receiver")
	}
}

func TestPackageAddressesSkipsFramework(t *testing.T) {
	user := MustParseAddress("0xc0ffee")
	tag := StructOf(StructTag{
		Address: user,
		Module:  "m",
		Name:    "T",
		TypeParams: []TypeTag{
			StructOf(StructTag{Address: FrameworkAddress, Module: "sui", Name: "SUI"}),
			VectorOf(StructOf(StructTag{Address: user, Module: "m2", Name: "U"})),
		},
	})
	got := tag.PackageAddresses(nil)
	if len(got) != 2 {
		t.Fatalf("got %d addresses, want 2: %v", len(got), got)
	}
	if got[0] != user || got[1] != user {
		t.Errorf("got %v, want both to be user address %v", got, user)
	}
}
