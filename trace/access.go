// Package trace defines the memory-access type, the textual trace format,
// and pattern generators that produce access streams calibrated against a
// cache geometry.
package trace

// An Access is one step of the input stream: a 32-bit physical address and
// the read/write direction.
type Access struct {
	Address uint32
	IsWrite bool
}

// Read returns a read access.
func Read(addr uint32) Access {
	return Access{Address: addr}
}

// Write returns a write access.
func Write(addr uint32) Access {
	return Access{Address: addr, IsWrite: true}
}
