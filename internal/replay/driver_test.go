package replay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/objectruntime"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/provider"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

func sampleReplayState() provider.ReplayState {
	obj := sui.MustParseAddress("0xaaa1")
	return provider.ReplayState{
		Transaction: provider.TransactionPayload{
			Digest: sui.Digest{},
			Commands: []provider.Command{
				{Kind: provider.CommandOther, Module: "m", Function: "f"},
			},
			Effects: &provider.AuthoritativeEffects{Success: true},
		},
		Objects: map[sui.Address]cache.VersionedObject{
			obj: {
				ID:      obj,
				Version: 1,
				Type:    sui.StructOf(sui.StructTag{Address: sui.FrameworkAddress, Module: "coin", Name: "Coin"}),
				Bytes:   []byte("bytes"),
				Owner:   sui.NewAddressOwner(sui.MustParseAddress("0xdead")),
			},
		},
		Packages: map[sui.Address]cache.Package{},
	}
}

func TestReplaySuccessfulNoOpCommandProducesPerfectMatch(t *testing.T) {
	vm := vmhost.NewFake()
	shared := objectruntime.NewShared()

	out, err := Replay(context.Background(), vm, shared, sampleReplayState())
	require.NoError(t, err)
	require.Equal(t, ErrorNone, out.ErrorClass)
	require.True(t, out.Report.StatusMatch)
	require.Equal(t, 1.0, out.Report.MatchScore)
}

func TestReplayClassifiesAbortedNativeError(t *testing.T) {
	vm := vmhost.NewFake()
	vm.NativeTable().Register(sui.Address{}, "m", "f", func(_ context.Context, _ []sui.TypeTag, _ []vmhost.Value) ([]vmhost.Value, error) {
		return nil, errors.New("VMError { major_status: ABORTED, sub_status: Some(42) }")
	})
	shared := objectruntime.NewShared()

	state := sampleReplayState()
	state.Transaction.Effects = &provider.AuthoritativeEffects{Success: false}

	out, err := Replay(context.Background(), vm, shared, state)
	require.NoError(t, err)
	require.Equal(t, ErrorAborted, out.ErrorClass)
	require.False(t, out.Effects.Success)
	require.True(t, out.Report.StatusMatch)
}

func TestReplayClassifiesLinkerError(t *testing.T) {
	vm := vmhost.NewFake()
	vm.NativeTable().Register(sui.Address{}, "m", "f", func(_ context.Context, _ []sui.TypeTag, _ []vmhost.Value) ([]vmhost.Value, error) {
		return nil, errors.New("VMError { major_status: LINKER_ERROR, message: Some(\"Cannot find ModuleId\") }")
	})
	shared := objectruntime.NewShared()

	out, err := Replay(context.Background(), vm, shared, sampleReplayState())
	require.NoError(t, err)
	require.Equal(t, ErrorLinker, out.ErrorClass)
}

func TestReplayInstallsAliasMapFromPackageLinkage(t *testing.T) {
	vm := vmhost.NewFake()
	shared := objectruntime.NewShared()

	runtimeAddr := sui.MustParseAddress("0xccc1")
	storageAddr := sui.MustParseAddress("0xccc0")
	state := sampleReplayState()
	pkgID := sui.MustParseAddress("0xddd1")
	state.Packages = map[sui.Address]cache.Package{
		pkgID: {ID: pkgID, Version: 2, Linkage: map[sui.Address]sui.Address{runtimeAddr: storageAddr}},
	}

	out, err := Replay(context.Background(), vm, shared, state)
	require.NoError(t, err)

	aliases := shared.AliasMap()
	require.NotNil(t, aliases)
	got, ok := aliases.StorageAlias(runtimeAddr)
	require.True(t, ok)
	require.Equal(t, storageAddr, got)

	found := false
	for _, d := range out.Diagnostics {
		if d.Kind == provider.DiagnosticLinkageAlias {
			found = true
		}
	}
	require.True(t, found)
}

func TestReplayCarriesForwardProviderDiagnostics(t *testing.T) {
	vm := vmhost.NewFake()
	shared := objectruntime.NewShared()

	state := sampleReplayState()
	state.Diagnostics = []provider.Diagnostic{{Kind: provider.DiagnosticDataGap, Message: "object missing"}}

	out, err := Replay(context.Background(), vm, shared, state)
	require.NoError(t, err)
	require.Contains(t, out.Diagnostics, provider.Diagnostic{Kind: provider.DiagnosticDataGap, Message: "object missing"})
}

func TestCompareScoresPartialMatch(t *testing.T) {
	got := vmhost.Effects{Success: true, Created: []sui.Address{sui.MustParseAddress("0x1")}}
	want := provider.AuthoritativeEffects{Success: true, CreatedCount: 2}

	report := Compare(got, want)
	require.True(t, report.StatusMatch)
	require.False(t, report.CreatedCountMatch)
	require.Equal(t, 0.75, report.MatchScore)
}
