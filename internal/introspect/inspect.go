// Package introspect implements the glue/introspection surface: struct
// and function inspection, bytecode disassembly, and package
// scaffolding, used to inspect a fetched package's shape before driving
// a replay.
package introspect

import (
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/cache"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

// FieldInfo is one struct field's name and declared type, as text —
// the VM host contract only hands back a disassembly string, so this
// package carries field types as the disassembler rendered them rather
// than as a second, parallel type representation.
type FieldInfo struct {
	Name string
	Type string
}

// StructInfo is one Move struct's shape, as recovered from the owning
// package's disassembly.
type StructInfo struct {
	Package    sui.Address
	Module     string
	Name       string
	Abilities  []string
	Fields     []FieldInfo
}

// FunctionInfo is one Move function's signature, as recovered from the
// owning package's disassembly.
type FunctionInfo struct {
	Package    sui.Address
	Module     string
	Name       string
	Visibility string
	TypeParams []string
	Params     []string
	Returns    []string
}

// ErrNotFound is returned when the named struct or function doesn't
// appear in the module's disassembly.
var ErrNotFound = fmt.Errorf("introspect: not found")

// DescribeStruct inspects pkg's module for the named struct's field
// layout by disassembling it through vm and scanning the result.
func DescribeStruct(vm vmhost.VM, pkg cache.Package, module, name string) (StructInfo, error) {
	text, err := disassembleModule(vm, pkg, module)
	if err != nil {
		return StructInfo{}, err
	}
	s, ok := parseStruct(text, name)
	if !ok {
		return StructInfo{}, fmt.Errorf("introspect: struct %s::%s::%s: %w", pkg.ID, module, name, ErrNotFound)
	}
	s.Package = pkg.ID
	s.Module = module
	return s, nil
}

// DescribeFunction inspects pkg's module for the named function's
// signature by disassembling it through vm and scanning the result.
func DescribeFunction(vm vmhost.VM, pkg cache.Package, module, name string) (FunctionInfo, error) {
	text, err := disassembleModule(vm, pkg, module)
	if err != nil {
		return FunctionInfo{}, err
	}
	f, ok := parseFunction(text, name)
	if !ok {
		return FunctionInfo{}, fmt.Errorf("introspect: function %s::%s::%s: %w", pkg.ID, module, name, ErrNotFound)
	}
	f.Package = pkg.ID
	f.Module = module
	return f, nil
}

func disassembleModule(vm vmhost.VM, pkg cache.Package, module string) (string, error) {
	bytes, ok := pkg.Modules[module]
	if !ok {
		return "", fmt.Errorf("introspect: module %s::%s not present in package: %w", pkg.ID, module, ErrNotFound)
	}
	return vm.Disassemble(bytes)
}
