// Package idt installs the interrupt descriptor table.
package idt

import (
	"unsafe"

	"ringos/kernel/desc"
	"ringos/kernel/hal"
	"ringos/kernel/pic"
)

const (
	// Entries is the number of vectors supported by the CPU.
	Entries = 256

	// GateFlags describes a present, ring-0, 32-bit interrupt gate.
	GateFlags = desc.GatePresent | desc.GateInterrupt32
)

// Table is the interrupt descriptor table. A Table must live in static
// storage: Init passes its address to the CPU.
type Table [Entries]desc.GateDescriptor

// Init remaps the PICs, points every gate at its entry stub in entries, loads
// the table and finally enables interrupts. code is the kernel code selector
// the CPU loads when entering a handler.
func (t *Table) Init(p hal.Platform, entries *[Entries]uint32, code desc.Selector) {
	pic.Remap(p)

	for vector, handler := range entries {
		t[vector] = desc.EncodeGate(handler, code, GateFlags)
	}

	ptr := desc.NewPointer(
		desc.AddressOf(unsafe.Pointer(t)),
		uint16(unsafe.Sizeof(*t))-1,
	)
	p.LoadIDT(&ptr)

	p.EnableInterrupts()
}

// Gate returns the descriptor installed for vector.
func (t *Table) Gate(vector uint8) desc.GateDescriptor {
	return t[vector]
}
