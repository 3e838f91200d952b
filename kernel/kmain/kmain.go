// Package kmain wires the descriptor tables and the interrupt dispatcher
// together during boot.
package kmain

import (
	"unsafe"

	"ringos/kernel/desc"
	"ringos/kernel/gdt"
	"ringos/kernel/hal"
	"ringos/kernel/idt"
	"ringos/kernel/irq"
	"ringos/kernel/kfmt"
)

// kernelStackSize is the size of the ring-0 stack the CPU switches to when an
// interrupt arrives while running in ring 3.
const kernelStackSize = 16 * 1024

// bootState owns every table the CPU keeps referencing after boot. It is
// held in static storage so the addresses baked into the loaded descriptors
// stay valid.
type bootState struct {
	gdt        gdt.Table
	idt        idt.Table
	dispatcher irq.Dispatcher
	stack      [kernelStackSize]byte
}

var (
	state bootState

	gdtPrefix = []byte("[gdt] ")
	idtPrefix = []byte("[idt] ")
	irqPrefix = []byte("[irq] ")
)

// Kmain installs the GDT and TSS, attaches the interrupt dispatcher to the
// entry stubs, installs the IDT and finally idles, servicing interrupts
// forever. entries holds the address of the entry stub for each vector and
// attach binds the dispatcher that those stubs call into.
//
// Interrupts stay masked until the IDT has been loaded; the very last step
// of the IDT setup enables them.
//
// Kmain is not expected to return.
//
//go:noinline
func Kmain(p hal.Platform, entries *[idt.Entries]uint32, attach func(*irq.Dispatcher)) {
	p.DisableInterrupts()

	var w = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink(), Prefix: gdtPrefix}

	state.gdt.Init(p)
	top := kernelStackTop()
	state.gdt.SetKernelStack(top)
	kfmt.Fprintf(&w, "installed %d descriptors\n", gdt.Entries)
	kfmt.Fprintf(&w, "ring-0 stack top: 0x%8x\n", top)

	w.Prefix = irqPrefix
	state.dispatcher.Init(p)
	if attach != nil {
		attach(&state.dispatcher)
	}
	state.dispatcher.Seal()
	kfmt.Fprintf(&w, "dispatcher sealed\n")

	w.Prefix = idtPrefix
	kfmt.Fprintf(&w, "installing %d gates\n", idt.Entries)
	state.idt.Init(p, entries, gdt.KernelCode)
	kfmt.Fprintf(&w, "interrupts enabled\n")

	for {
		p.Halt()
	}
}

// Dispatcher returns the dispatcher used for routing interrupts. Drivers use
// it to register their handlers.
func Dispatcher() *irq.Dispatcher {
	return &state.dispatcher
}

// SetKernelStack updates the ring-0 stack used on privilege level changes.
func SetKernelStack(top uint32) {
	state.gdt.SetKernelStack(top)
}

// kernelStackTop returns the 16-byte aligned address just past the end of the
// static kernel stack.
func kernelStackTop() uint32 {
	return (desc.AddressOf(unsafe.Pointer(&state.stack)) + kernelStackSize) &^ 0xf
}
