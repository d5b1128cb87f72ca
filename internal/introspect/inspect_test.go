package introspect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

const sampleDisasm = `
struct Coin has key, store {
    id: UID,
    value: u64,
}

public fun split(self: &mut Coin, amount: u64, ctx: &mut TxContext): Coin {
    abort 0
}

entry fun burn(self: Coin) {
    abort 0
}
`

func samplePackage() (cache.Package, []byte) {
	id := sui.MustParseAddress("0xf00d")
	moduleBytes := []byte("coin-module-bytes")
	return cache.Package{
		ID:      id,
		Version: 1,
		Modules: map[string][]byte{"coin": moduleBytes},
	}, moduleBytes
}

func TestDescribeStructRecoversFieldsAndAbilities(t *testing.T) {
	vm := vmhost.NewFake()
	pkg, moduleBytes := samplePackage()
	vm.DisassemblyScript()[string(moduleBytes)] = sampleDisasm

	info, err := DescribeStruct(vm, pkg, "coin", "Coin")
	require.NoError(t, err)
	require.Equal(t, "Coin", info.Name)
	require.Equal(t, "coin", info.Module)
	require.Equal(t, pkg.ID, info.Package)
	require.Equal(t, []string{"key", "store"}, info.Abilities)
	require.Equal(t, []FieldInfo{{Name: "id", Type: "UID"}, {Name: "value", Type: "u64"}}, info.Fields)
}

func TestDescribeStructUnknownNameIsNotFound(t *testing.T) {
	vm := vmhost.NewFake()
	pkg, moduleBytes := samplePackage()
	vm.DisassemblyScript()[string(moduleBytes)] = sampleDisasm

	_, err := DescribeStruct(vm, pkg, "coin", "Nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDescribeFunctionRecoversSignature(t *testing.T) {
	vm := vmhost.NewFake()
	pkg, moduleBytes := samplePackage()
	vm.DisassemblyScript()[string(moduleBytes)] = sampleDisasm

	info, err := DescribeFunction(vm, pkg, "coin", "split")
	require.NoError(t, err)
	require.Equal(t, "public", info.Visibility)
	require.Equal(t, []string{"self: &mut Coin", "amount: u64", "ctx: &mut TxContext"}, info.Params)
	require.Equal(t, []string{"Coin"}, info.Returns)
}

func TestDescribeFunctionEntryVisibility(t *testing.T) {
	vm := vmhost.NewFake()
	pkg, moduleBytes := samplePackage()
	vm.DisassemblyScript()[string(moduleBytes)] = sampleDisasm

	info, err := DescribeFunction(vm, pkg, "coin", "burn")
	require.NoError(t, err)
	require.Equal(t, "entry", info.Visibility)
	require.Nil(t, info.Returns)
}

func TestDescribeStructMissingModuleIsNotFound(t *testing.T) {
	vm := vmhost.NewFake()
	pkg, _ := samplePackage()
	_, err := DescribeStruct(vm, pkg, "missing", "Coin")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScaffoldPackageProducesValidMoveToml(t *testing.T) {
	addr := sui.MustParseAddress("0xabc1")
	s := ScaffoldPackage("my_pkg", addr)
	require.Contains(t, s.MoveToml, `name = "my_pkg"`)
	require.Contains(t, s.MoveToml, addr.String())
	require.Equal(t, "sources/my_pkg.move", s.SourcePath)
	require.Contains(t, s.Source, "module my_pkg::my_pkg")
	require.Contains(t, s.Source, "struct My_pkg has key, store")
}
