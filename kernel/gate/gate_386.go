package gate

// EntryPoints returns the addresses of the 256 entry stubs, indexed by
// vector.
func EntryPoints() *[256]uint32
