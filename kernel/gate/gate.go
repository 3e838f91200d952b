// Package gate contains the low-level interrupt entry points installed in
// the IDT and forwards every delivered vector to an irq.Dispatcher.
package gate

//go:generate go run ringos/tools/isrgen -out entry_386.s

import "ringos/kernel/irq"

// dispatcher receives every interrupt once attached.
var dispatcher *irq.Dispatcher

// Attach routes all interrupts to d.
func Attach(d *irq.Dispatcher) {
	dispatcher = d
}

// dispatchInterrupt is called by the common entry stub with a pointer to the
// registers it saved on the interrupted stack. Interrupts that arrive before
// a dispatcher is attached are dropped.
//go:nosplit
func dispatchInterrupt(regs *irq.Registers) {
	if dispatcher == nil {
		return
	}

	dispatcher.Dispatch(regs)
}
