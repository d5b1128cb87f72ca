package introspect

import (
	"regexp"
	"strings"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/vmhost"
)

// Disassemble is a thin pass-through: bytecode disassembly is
// exclusively the VM host's capability, so this package never parses
// raw module bytes itself.
func Disassemble(vm vmhost.VM, module []byte) (string, error) {
	return vm.Disassemble(module)
}

// structPattern matches a disassembled struct declaration of the form
// "struct Name has ability, ability { field: Type, field: Type }",
// which is the conventional textual shape every Move disassembler
// (and this repo's own vmhost.Fake, via its DisassemblyScript test
// hook) renders a struct as. No Move-bytecode-decoding library exists
// anywhere in this repo's dependency pack, so this is a best-effort
// text scan rather than a structural parse — documented as a
// deliberate, scoped limitation.
var structPattern = regexp.MustCompile(`(?s)struct\s+(\w+)(?:\s+has\s+([\w,\s]+?))?\s*\{([^}]*)\}`)

// functionPattern matches "visibility fun name(params): returns {" or
// "visibility fun name(params) {" when there's no return clause.
var functionPattern = regexp.MustCompile(`(?m)^\s*(public(?:\(\w+\))?|native|entry)?\s*fun\s+(\w+)(?:<([^>]*)>)?\(([^)]*)\)(?:\s*:\s*([^\{]+))?\s*\{`)

func parseStruct(text, name string) (StructInfo, bool) {
	for _, m := range structPattern.FindAllStringSubmatch(text, -1) {
		if m[1] != name {
			continue
		}
		s := StructInfo{Name: name}
		if m[2] != "" {
			for _, a := range strings.Split(m[2], ",") {
				a = strings.TrimSpace(a)
				if a != "" {
					s.Abilities = append(s.Abilities, a)
				}
			}
		}
		for _, field := range strings.Split(m[3], ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			parts := strings.SplitN(field, ":", 2)
			if len(parts) != 2 {
				continue
			}
			s.Fields = append(s.Fields, FieldInfo{
				Name: strings.TrimSpace(parts[0]),
				Type: strings.TrimSpace(parts[1]),
			})
		}
		return s, true
	}
	return StructInfo{}, false
}

func parseFunction(text, name string) (FunctionInfo, bool) {
	for _, m := range functionPattern.FindAllStringSubmatch(text, -1) {
		if m[2] != name {
			continue
		}
		f := FunctionInfo{
			Name:       name,
			Visibility: visibilityOf(m[1]),
		}
		f.TypeParams = splitNonEmpty(m[3])
		f.Params = splitNonEmpty(m[4])
		f.Returns = splitReturns(m[5])
		return f, true
	}
	return FunctionInfo{}, false
}

func visibilityOf(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "private"
	}
	return v
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitReturns(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return splitNonEmpty(s)
}
