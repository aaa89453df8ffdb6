// Package depm defines Sable modules and handles loading them from disk.  A
// Sable module is a directory of MIR bundle files with a `sable-mod.toml`
// module file at its root.
package depm

import "hash/fnv"

// SableModule represents a loaded Sable module.
type SableModule struct {
	// ID is the unique ID of this module.
	ID uint64

	// Name is the module name.
	Name string

	// AbsPath is the absolute path to the root of the module.
	AbsPath string

	// SourceFiles is the list of MIR source files belonging to the module in
	// sorted path order.
	SourceFiles []*SourceFile

	// EvalStepLimit is the configured evaluation step limit for constant
	// checking.  Zero means the default limit.
	EvalStepLimit int
}

// SourceFile represents a single MIR source file within a module.
type SourceFile struct {
	// AbsPath is the absolute path to the source file.
	AbsPath string

	// ReprPath is the module-relative path to the source file as it should be
	// displayed to the user.
	ReprPath string
}

// GenerateIDFromPath generates a module ID from an absolute path.
func GenerateIDFromPath(abspath string) uint64 {
	a := fnv.New64a()
	a.Write([]byte(abspath))
	return a.Sum64()
}

// IsValidIdentifier returns whether or not a given string would be a valid
// identifier (module name, bundle name, etc.).
func IsValidIdentifier(idstr string) bool {
	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}
