package irq

import (
	"io"

	"ringos/kernel/kfmt"
)

// Registers contains a snapshot of all register values when an exception or
// interrupt occurs. The field order matches the order in which the entry
// stubs and the CPU push them onto the stack, so a *Registers can point
// straight into the interrupted stack frame.
type Registers struct {
	// Data segment saved by the entry stub.
	DS uint32

	// General purpose registers in PUSHAL order (ESP is the value before
	// PUSHAL executed).
	EDI uint32
	ESI uint32
	EBP uint32
	ESP uint32
	EBX uint32
	EDX uint32
	ECX uint32
	EAX uint32

	// IntNo is the vector that was raised. ErrCode holds the error code
	// pushed by the CPU for exceptions that supply one and 0 otherwise.
	IntNo   uint32
	ErrCode uint32

	// The return frame used by IRETL. UserESP and UserSS are only pushed
	// by the CPU on a privilege level change.
	EIP     uint32
	CS      uint32
	EFlags  uint32
	UserESP uint32
	SS      uint32
}

// DumpTo outputs the register contents to w.
func (r *Registers) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "EAX = %8x EBX = %8x\n", r.EAX, r.EBX)
	kfmt.Fprintf(w, "ECX = %8x EDX = %8x\n", r.ECX, r.EDX)
	kfmt.Fprintf(w, "ESI = %8x EDI = %8x\n", r.ESI, r.EDI)
	kfmt.Fprintf(w, "EBP = %8x ESP = %8x\n", r.EBP, r.ESP)
	kfmt.Fprintf(w, "DS  = %8x\n", r.DS)
	kfmt.Fprintf(w, "\n")
	kfmt.Fprintf(w, "EIP = %8x CS  = %8x\n", r.EIP, r.CS)
	kfmt.Fprintf(w, "USP = %8x SS  = %8x\n", r.UserESP, r.SS)
	kfmt.Fprintf(w, "EFL = %8x\n", r.EFlags)
}
