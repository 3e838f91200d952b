// Package pic drives the pair of cascaded 8259 programmable interrupt
// controllers found on PC-compatible machines.
package pic

import "ringos/kernel/hal"

// I/O ports of the two controllers.
const (
	MasterCommand uint16 = 0x20
	MasterData    uint16 = 0x21
	SlaveCommand  uint16 = 0xa0
	SlaveData     uint16 = 0xa1
)

// Initialization and operation command words.
const (
	// ICW1Init starts the initialization sequence and announces an ICW4.
	ICW1Init = 0x11

	// ICW3Master tells the master that a slave is attached to line 2.
	ICW3Master = 0x04

	// ICW3Slave tells the slave its cascade identity.
	ICW3Slave = 0x02

	// ICW48086 selects 8086/88 mode.
	ICW48086 = 0x01

	// EOI is the non-specific end-of-interrupt command (OCW2).
	EOI = 0x20
)

const (
	// MasterOffset is the vector delivered for hardware line 0.
	MasterOffset = 32

	// SlaveOffset is the vector delivered for hardware line 8.
	SlaveOffset = MasterOffset + 8

	// Lines is the number of hardware interrupt lines served by both
	// controllers.
	Lines = 16

	// CascadeLine is the master line the slave is wired to.
	CascadeLine = 2
)

// Remap reprograms both controllers so hardware lines 0-15 are delivered as
// vectors 32-47, clear of the CPU exception range, and unmasks every line.
// The command words are interleaved between the controllers in the order the
// 8259 expects them.
func Remap(io hal.PortIO) {
	io.PortWriteByte(MasterCommand, ICW1Init)
	io.PortWriteByte(SlaveCommand, ICW1Init)
	io.PortWriteByte(MasterData, MasterOffset)
	io.PortWriteByte(SlaveData, SlaveOffset)
	io.PortWriteByte(MasterData, ICW3Master)
	io.PortWriteByte(SlaveData, ICW3Slave)
	io.PortWriteByte(MasterData, ICW48086)
	io.PortWriteByte(SlaveData, ICW48086)
	io.PortWriteByte(MasterData, 0)
	io.PortWriteByte(SlaveData, 0)
}

// IsIRQ returns true if vector is delivered by one of the remapped
// controllers.
func IsIRQ(vector uint8) bool {
	return vector >= MasterOffset && vector < MasterOffset+Lines
}

// Line returns the hardware line for a remapped vector. The result is only
// meaningful if IsIRQ(vector) is true.
func Line(vector uint8) uint8 {
	return vector - MasterOffset
}

// Vector returns the vector a remapped hardware line is delivered as.
func Vector(line uint8) uint8 {
	return line + MasterOffset
}

// SendEOI acknowledges the interrupt delivered as vector. Vectors served by
// the slave controller are acknowledged on both controllers, slave first.
// Vectors outside the hardware range are ignored.
func SendEOI(io hal.PortIO, vector uint8) {
	if !IsIRQ(vector) {
		return
	}

	if vector >= SlaveOffset {
		io.PortWriteByte(SlaveCommand, EOI)
	}
	io.PortWriteByte(MasterCommand, EOI)
}

// Mask prevents the controllers from delivering the specified line. Lines
// outside 0-15 are ignored.
func Mask(io hal.PortIO, line uint8) {
	if port, bit, ok := lineBit(line); ok {
		io.PortWriteByte(port, io.PortReadByte(port)|bit)
	}
}

// Unmask allows the controllers to deliver the specified line. Lines outside
// 0-15 are ignored.
func Unmask(io hal.PortIO, line uint8) {
	if port, bit, ok := lineBit(line); ok {
		io.PortWriteByte(port, io.PortReadByte(port)&^bit)
	}
}

// lineBit returns the data port and IMR bit that control line.
func lineBit(line uint8) (uint16, uint8, bool) {
	switch {
	case line < 8:
		return MasterData, 1 << line, true
	case line < Lines:
		return SlaveData, 1 << (line - 8), true
	default:
		return 0, 0, false
	}
}
