package hal

import (
	"ringos/kernel/driver/tty"
	"ringos/kernel/driver/video/console"
	"ringos/kernel/kfmt"
)

const (
	// EgaFramebuffer is the physical address of the EGA text-mode buffer.
	EgaFramebuffer = uintptr(0xb8000)

	egaWidth  = 80
	egaHeight = 25
)

var (
	egaConsole console.Ega

	// ActiveTerminal points to the currently active terminal.
	ActiveTerminal tty.Vt
)

// InitTerminal attaches ActiveTerminal to an 80x25 text console backed by
// the framebuffer at fbPhysAddr and redirects kfmt output (including anything
// buffered so far) to it.
func InitTerminal(fbPhysAddr uintptr) {
	egaConsole.Init(egaWidth, egaHeight, fbPhysAddr)
	ActiveTerminal.AttachTo(&egaConsole)
	ActiveTerminal.Clear()
	kfmt.SetOutputSink(&ActiveTerminal)
}
