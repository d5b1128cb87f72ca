package sui

import (
	"encoding/hex"
	"testing"

	"pgregory.net/rapid"
)

// TestParseAddressRoundTripsAnyFullLengthHexString is the property
// String's own doc comment claims: ParseAddress(a.String()) == a for
// every Address. Rather than a handful of hand-picked cases, rapid
// generates full-length hex strings across many runs and shrinks any
// failure to a minimal counterexample.
func TestParseAddressRoundTripsAnyFullLengthHexString(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ints := rapid.SliceOfN(rapid.IntRange(0, 255), AddressLength, AddressLength).Draw(rt, "raw")
		raw := make([]byte, len(ints))
		for i, v := range ints {
			raw[i] = byte(v)
		}
		want := hex.EncodeToString(raw)

		a, err := ParseAddress(want)
		if err != nil {
			rt.Fatalf("ParseAddress(%q): %v", want, err)
		}
		if a.String() != "0x"+want {
			rt.Fatalf("ParseAddress(%q).String() = %q, want %q", want, a.String(), "0x"+want)
		}

		again, err := ParseAddress(a.String())
		if err != nil {
			rt.Fatalf("ParseAddress(%q) (round 2): %v", a.String(), err)
		}
		if again != a {
			rt.Fatalf("ParseAddress is not idempotent through String(): %v != %v", again, a)
		}
	})
}
