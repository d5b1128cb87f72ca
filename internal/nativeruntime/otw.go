package nativeruntime

import "strings"

// IsOneTimeWitness implements types::is_one_time_witness's real check:
// the struct's layout must be exactly one bool field, and
// the struct name must equal the module name in uppercase. fieldIsBool
// describes the struct's field layout in declaration order; only its
// length and whether the sole field is a bool matter here.
func IsOneTimeWitness(fieldIsBool []bool, structName, moduleName string) bool {
	if len(fieldIsBool) != 1 || !fieldIsBool[0] {
		return false
	}
	return structName == strings.ToUpper(moduleName)
}
