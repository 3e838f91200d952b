// Package hal defines the boundary between the descriptor-table and
// interrupt-dispatch code and the privileged instructions it relies on. The
// rest of the kernel only talks to the CPU through a Platform so that it can
// be exercised against a software model (see package sim) in tests.
package hal

import "ringos/kernel/desc"

// PortIO is implemented by objects that can access the x86 I/O port space.
type PortIO interface {
	// PortWriteByte writes a uint8 value to the requested port.
	PortWriteByte(port uint16, val uint8)

	// PortReadByte reads a uint8 value from the requested port.
	PortReadByte(port uint16) uint8
}

// InterruptFlag is implemented by objects that control delivery of maskable
// interrupts.
type InterruptFlag interface {
	EnableInterrupts()
	DisableInterrupts()
	InterruptsEnabled() bool
}

// Platform groups the primitive operations required to install the GDT, TSS
// and IDT and to service interrupts.
type Platform interface {
	PortIO
	InterruptFlag

	// LoadGDT points the CPU's GDT register at the table described by ptr.
	LoadGDT(ptr *desc.Pointer)

	// LoadIDT points the CPU's IDT register at the table described by ptr.
	LoadIDT(ptr *desc.Pointer)

	// ReloadSegments reloads CS with code and every data segment register
	// (DS, ES, FS, GS, SS) with data.
	ReloadSegments(code, data desc.Selector)

	// LoadTaskRegister selects the TSS referenced by sel.
	LoadTaskRegister(sel desc.Selector)

	// Halt idles the CPU until the next interrupt.
	Halt()
}
