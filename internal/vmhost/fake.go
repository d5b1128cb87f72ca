package vmhost

import (
	"context"
	"fmt"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/objectruntime"
	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// fakeType and fakeLayout are the trivial Type/Layout implementations the
// Fake VM hands back: every type is "just bytes plus a tag", with no
// generic instantiation or field-layout modeling, since a fake VM only
// needs to drive natives and object-runtime plumbing in tests.
type fakeType struct{ tag sui.TypeTag }

func (t fakeType) String() string { return t.tag.String() }

type fakeLayout struct{ tag sui.TypeTag }

func (l fakeLayout) TypeTag() sui.TypeTag { return l.tag }

// fakeValue wraps raw BCS bytes.
type fakeValue struct{ bytes []byte }

func (v fakeValue) Bytes() ([]byte, error) { return v.bytes, nil }

// NewValue builds a vmhost.Value from raw bytes, for tests that construct
// command arguments directly.
func NewValue(b []byte) Value { return fakeValue{bytes: b} }

// Fake is an in-memory VM used by every test in this repo that needs a
// VM without a real Move interpreter: it runs each command by invoking
// the matching native (if registered) and otherwise recording a no-op
// success, exercising the object-runtime and native-table wiring without
// a bytecode interpreter.
type Fake struct {
	natives NativeTable
	rt      *objectruntime.Runtime

	// Scripted lets a test register a canned result (return values or
	// an error) per command index, overriding the default passthrough-native
	// behavior for Commands the fake cannot model generically
	// (e.g. SplitCoins/TransferObjects/MergeCoins built-ins).
	Scripted map[int]func(ctx context.Context, rt *objectruntime.Runtime, cmd Command) ([]Value, error)

	disassembly map[string]string
}

// NewFake constructs an empty Fake VM.
func NewFake() *Fake {
	return &Fake{natives: make(NativeTable)}
}

func (f *Fake) NativeTable() NativeTable { return f.natives }

func (f *Fake) SetObjectRuntimeExtension(rt *objectruntime.Runtime) { f.rt = rt }

func (f *Fake) TypeToTypeLayout(t Type) (Layout, error) {
	ft, ok := t.(fakeType)
	if !ok {
		return nil, fmt.Errorf("vmhost: fake VM received foreign Type %v", t)
	}
	return fakeLayout{tag: ft.tag}, nil
}

func (f *Fake) TypeToTypeTag(t Type) (sui.TypeTag, error) {
	ft, ok := t.(fakeType)
	if !ok {
		return sui.TypeTag{}, fmt.Errorf("vmhost: fake VM received foreign Type %v", t)
	}
	return ft.tag, nil
}

func (f *Fake) Serialize(l Layout, v Value) ([]byte, error) {
	return v.Bytes()
}

func (f *Fake) Deserialize(l Layout, data []byte) (Value, error) {
	return fakeValue{bytes: data}, nil
}

// DisassemblyScript lets a test script canned disassembly text for a
// given module's raw bytes, keyed by string(module) — used by
// internal/introspect's tests, which need realistic struct/function
// text without a real Move disassembler.
func (f *Fake) DisassemblyScript() map[string]string {
	if f.disassembly == nil {
		f.disassembly = make(map[string]string)
	}
	return f.disassembly
}

func (f *Fake) Disassemble(module []byte) (string, error) {
	if f.disassembly != nil {
		if text, ok := f.disassembly[string(module)]; ok {
			return text, nil
		}
	}
	return fmt.Sprintf("; fake disassembly, %d bytes", len(module)), nil
}

// Execute runs each command in order. A command matching a registered
// native is dispatched to it; a command with a Scripted override uses
// that instead; anything else is treated as a successful no-op, which is
// enough to exercise replay-driver plumbing in tests without a real
// interpreter.
func (f *Fake) Execute(ctx context.Context, in ExecutionInput) (Effects, error) {
	eff := Effects{Success: true}
	for i, cmd := range in.Commands {
		if script, ok := f.Scripted[i]; ok {
			rets, err := script(ctx, f.rt, cmd)
			if err != nil {
				return f.abort(err), err
			}
			for _, v := range rets {
				b, _ := v.Bytes()
				eff.ReturnValues = append(eff.ReturnValues, b)
			}
			continue
		}
		fn, ok := f.natives.Get(cmd.Package, cmd.Module, cmd.Function)
		if !ok {
			continue
		}
		args := make([]Value, 0, len(cmd.Args))
		for _, a := range cmd.Args {
			args = append(args, fakeValue{bytes: a.PureBytes})
		}
		rets, err := fn(ctx, cmd.TypeArgs, args)
		if err != nil {
			return f.abort(err), err
		}
		for _, v := range rets {
			b, _ := v.Bytes()
			eff.ReturnValues = append(eff.ReturnValues, b)
		}
	}
	if f.rt != nil {
		eff.Created = append(eff.Created, f.rt.CreatedIDs()...)
		eff.Deleted = append(eff.Deleted, f.rt.DeletedIDs()...)
		for _, e := range f.rt.MutatedEntries() {
			eff.Mutated = append(eff.Mutated, e.Key.Child)
		}
	}
	return eff, nil
}

func (f *Fake) abort(err error) Effects {
	return Effects{Success: false, ErrorMessage: err.Error()}
}
