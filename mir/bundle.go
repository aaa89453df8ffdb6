package mir

// Bundle is a single unit of Sable MIR.  A bundle generally corresponds to one
// Sable package lowered into MIR form.  Bundles are considered distinct
// translation units: all symbols not immediately defined in the bundle are
// considered external.  The globals and functions of a bundle are kept in
// declaration order so that all passes traverse the bundle deterministically.
type Bundle struct {
	// Name is the name of the bundle.
	Name string

	// Globals is the list of global variables defined in this bundle, in
	// declaration order.
	Globals []*Global

	// Functions is the list of functions defined in this bundle, in
	// declaration order.
	Functions []*Function
}

// FuncByName returns the function in the bundle with the given name, if one
// exists.
func (b *Bundle) FuncByName(name string) (*Function, bool) {
	for _, fn := range b.Functions {
		if fn.Name == name {
			return fn, true
		}
	}

	return nil, false
}

// GlobalByName returns the global in the bundle with the given name, if one
// exists.
func (b *Bundle) GlobalByName(name string) (*Global, bool) {
	for _, g := range b.Globals {
		if g.Name == name {
			return g, true
		}
	}

	return nil, false
}
