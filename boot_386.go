package main

import (
	"ringos/kernel/gate"
	"ringos/kernel/hal"
	"ringos/kernel/kfmt"
	"ringos/kernel/kmain"
)

// main is the only Go symbol that is visible (exported) from the rt0
// initialization code. It works as a trampoline for calling the actual kernel
// entrypoint (kmain.Kmain) and prevents the Go compiler from optimizing away
// the kernel code as it is not aware of the presence of the rt0 code.
//
// main is not expected to return. If it does, the rt0 code will halt the CPU.
func main() {
	hal.InitTerminal(hal.EgaFramebuffer)
	kfmt.SetHaltFunc(hal.HaltForever)
	kmain.Kmain(hal.Native, gate.EntryPoints(), gate.Attach)
}
