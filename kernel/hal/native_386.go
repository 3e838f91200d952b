package hal

import (
	"ringos/kernel/cpu"
	"ringos/kernel/desc"
	"unsafe"
)

// Native is the Platform backed by the CPU the kernel runs on.
var Native Platform = nativePlatform{}

type nativePlatform struct{}

func (nativePlatform) PortWriteByte(port uint16, val uint8) { cpu.PortWriteByte(port, val) }
func (nativePlatform) PortReadByte(port uint16) uint8       { return cpu.PortReadByte(port) }
func (nativePlatform) EnableInterrupts()                    { cpu.EnableInterrupts() }
func (nativePlatform) DisableInterrupts()                   { cpu.DisableInterrupts() }
func (nativePlatform) InterruptsEnabled() bool              { return cpu.InterruptsEnabled() }
func (nativePlatform) Halt()                                { cpu.Halt() }

func (nativePlatform) LoadGDT(ptr *desc.Pointer) {
	cpu.LoadGDT(uintptr(unsafe.Pointer(ptr)))
}

func (nativePlatform) LoadIDT(ptr *desc.Pointer) {
	cpu.LoadIDT(uintptr(unsafe.Pointer(ptr)))
}

func (nativePlatform) ReloadSegments(code, data desc.Selector) {
	cpu.ReloadSegments(uint16(code), uint16(data))
}

func (nativePlatform) LoadTaskRegister(sel desc.Selector) {
	cpu.LoadTaskRegister(uint16(sel))
}

// HaltForever masks interrupts and stops the CPU. It is installed as the
// kfmt panic halt function when running on real hardware.
func HaltForever() {
	cpu.DisableInterrupts()
	for {
		cpu.Halt()
	}
}
