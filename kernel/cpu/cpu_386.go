// Package cpu exposes the privileged i386 instructions used while installing
// the descriptor tables and servicing interrupts. Each function is a thin
// assembly wrapper around a single instruction (or a short fixed sequence).
package cpu

// EnableInterrupts enables interrupt handling (STI).
func EnableInterrupts()

// DisableInterrupts disables interrupt handling (CLI).
func DisableInterrupts()

// InterruptsEnabled returns true if the IF flag in EFLAGS is set.
func InterruptsEnabled() bool

// Halt stops instruction execution until the next interrupt arrives.
func Halt()

// LoadGDT points the GDTR register to the 6-byte table descriptor at ptrAddr.
func LoadGDT(ptrAddr uintptr)

// LoadIDT points the IDTR register to the 6-byte table descriptor at ptrAddr.
func LoadIDT(ptrAddr uintptr)

// ReloadSegments loads data into DS, ES, FS, GS and SS and then performs a
// far return to reload CS with code.
func ReloadSegments(code, data uint16)

// LoadTaskRegister loads the task register with the TSS selector sel.
func LoadTaskRegister(sel uint16)

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8
