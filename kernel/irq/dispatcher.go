// Package irq routes interrupts and CPU exceptions delivered through the IDT
// to registered handlers.
package irq

import (
	"ringos/kernel"
	"ringos/kernel/hal"
	"ringos/kernel/kfmt"
	"ringos/kernel/pic"
)

// Vectors is the number of interrupt vectors that can be dispatched.
const Vectors = 256

// Handler is a function that handles an interrupt or exception. Handlers
// receive a pointer into the interrupted stack frame and must not retain it
// after returning.
type Handler func(*Registers)

var (
	// unhandledExceptionFn and ignoreInterruptFn are the defaults for
	// vectors without a registered handler. They are mocked by tests.
	unhandledExceptionFn = unhandledException
	ignoreInterruptFn    = ignoreInterrupt

	errInvalidIRQ         = &kernel.Error{Module: "irq", Message: "IRQ line out of range"}
	errUnhandledException = &kernel.Error{Module: "irq", Message: "unhandled CPU exception"}
)

// emitBuf is the shared single byte buffer used by emit.
var emitBuf [1]byte

// Dispatcher owns the handler table. Handlers are registered during
// initialization; once Seal is called every later registration is performed
// with interrupts masked so that dispatch never observes a partial update.
type Dispatcher struct {
	platform hal.Platform
	handlers [Vectors]Handler
	counts   [Vectors]uint32
	sealed   bool
}

// Init binds the dispatcher to a platform and restores the default handler
// for every vector.
func (d *Dispatcher) Init(p hal.Platform) {
	*d = Dispatcher{platform: p}
}

// HandleISR binds h to the requested vector, replacing any previous handler.
// Passing a nil handler restores the default.
func (d *Dispatcher) HandleISR(num InterruptNumber, h Handler) {
	if d.sealed && d.platform != nil && d.platform.InterruptsEnabled() {
		d.platform.DisableInterrupts()
		d.handlers[num] = h
		d.platform.EnableInterrupts()
		return
	}

	d.handlers[num] = h
}

// HandleIRQ binds h to the vector that hardware line is delivered as. The
// line must be in the 0-15 range.
func (d *Dispatcher) HandleIRQ(line uint8, h Handler) {
	if line >= pic.Lines {
		panic(errInvalidIRQ)
	}

	d.HandleISR(InterruptNumber(pic.Vector(line)), h)
}

// Seal marks the end of the initialization phase.
func (d *Dispatcher) Seal() {
	d.sealed = true
}

// Sealed returns true after Seal has been called.
func (d *Dispatcher) Sealed() bool {
	return d.sealed
}

// Dispatch is the single entry point for every delivered vector. Hardware
// interrupts are acknowledged before the handler runs so that a handler that
// never returns cannot block its line. Dispatch returns to the entry stub,
// which resumes the interrupted context.
func (d *Dispatcher) Dispatch(regs *Registers) {
	num := InterruptNumber(regs.IntNo)

	if d.platform != nil {
		pic.SendEOI(d.platform, uint8(num))
	}

	d.counts[num]++

	switch h := d.handlers[num]; {
	case h != nil:
		h(regs)
	case num < FirstIRQ:
		unhandledExceptionFn(regs)
	default:
		ignoreInterruptFn(regs)
	}
}

// Count returns the number of times num has been dispatched.
func (d *Dispatcher) Count(num InterruptNumber) uint32 {
	return d.counts[num]
}

// unhandledException reports a CPU exception nobody registered a handler for
// and panics. Resuming after a fault leaves the machine in an inconsistent
// state.
func unhandledException(regs *Registers) {
	w := kfmt.GetOutputSink()

	kfmt.Printf("\nUnhandled exception: %s\nvector: ", ExceptionName(InterruptNumber(regs.IntNo)))
	kfmt.FormatUint(uint64(regs.IntNo), 10, emit)
	kfmt.Printf(", error code: ")
	kfmt.FormatUint(uint64(regs.ErrCode), 16, emit)
	kfmt.Printf("\nRegisters:\n")
	regs.DumpTo(w)

	panic(errUnhandledException)
}

func ignoreInterrupt(_ *Registers) {}

// emit is the per-character sink used for rendering numbers with FormatUint.
func emit(b byte) {
	emitBuf[0] = b
	kfmt.GetOutputSink().Write(emitBuf[:])
}
