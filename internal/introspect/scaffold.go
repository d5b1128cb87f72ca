package introspect

import (
	"fmt"
	"strings"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

// PackageScaffold is the skeleton source text an agent harness can
// write to disk before issuing a Publish command. The Move.toml and
// module templates are inlined here rather than generated by shelling
// out to an external CLI, since the VM host contract has no
// run-an-external-process seam.
type PackageScaffold struct {
	Name       string
	MoveToml   string
	SourcePath string
	Source     string
}

// ScaffoldPackage renders the Move.toml and sources/<name>.move text
// for a new package named name, published at addr once built.
func ScaffoldPackage(name string, addr sui.Address) PackageScaffold {
	module := strings.ToLower(name)
	moveToml := fmt.Sprintf(`[package]
name = "%s"
edition = "2024.beta"

[addresses]
%s = "%s"

[dependencies]
Sui = { git = "https://github.com/MystenLabs/sui.git", subdir = "crates/sui-framework/packages/sui-framework", rev = "framework/mainnet" }
`, name, module, addr.String())

	source := fmt.Sprintf(`module %s::%s {
    public struct %s has key, store {
        id: UID,
    }

    public fun new(ctx: &mut TxContext): %s {
        %s { id: object::new(ctx) }
    }
}
`, module, module, exportedName(name), exportedName(name), exportedName(name))

	return PackageScaffold{
		Name:       name,
		MoveToml:   moveToml,
		SourcePath: fmt.Sprintf("sources/%s.move", module),
		Source:     source,
	}
}

// exportedName upper-cases the first letter of name so the generated
// struct follows Move's PascalCase type-naming convention regardless
// of how the package name itself was cased.
func exportedName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
