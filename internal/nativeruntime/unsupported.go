package nativeruntime

// ENotSupported is the abort code every unsupported-category native
// returns.
const ENotSupported uint64 = 1000

// UnsupportedModules lists the module names that abort with
// ENotSupported for every function: zklogin, poseidon, on-chain config,
// nitro_attestation, funds_accumulator.
var UnsupportedModules = map[string]bool{
	"zklogin":           true,
	"poseidon":          true,
	"config":            true,
	"nitro_attestation": true,
	"funds_accumulator": true,
}

// IsUnsupportedModule reports whether module belongs to the unsupported
// category, in which case every one of its native functions must abort
// with ENotSupported rather than attempting any simulation.
func IsUnsupportedModule(module string) bool {
	return UnsupportedModules[module]
}
