// Package desc encodes the segment and interrupt-gate descriptors that an
// i386 CPU reads from the GDT and the IDT, as well as the 6-byte table
// descriptor consumed by the LGDT and LIDT instructions.
//
// All encoders are pure functions; they never fail and never allocate.
package desc

import (
	"encoding/binary"
	"unsafe"
)

// Size is the size in bytes of a single GDT or IDT entry.
const Size = 8

// Access byte bits for segment descriptors.
const (
	AccessAccessed   uint8 = 1 << 0
	AccessRW         uint8 = 1 << 1
	AccessExecute    uint8 = 1 << 3
	AccessDescriptor uint8 = 1 << 4 // code/data (as opposed to system) descriptor
	AccessPresent    uint8 = 1 << 7

	dplShift = 5
	dplMask  = 3 << dplShift
)

// Granularity byte flags. Only the upper nibble is used; the lower nibble
// carries bits 16-19 of the segment limit.
const (
	GranularityPage  uint8 = 1 << 7 // limit is expressed in 4K pages
	GranularityOp32  uint8 = 1 << 6 // 32-bit protected mode segment
	granularityFlags uint8 = 0xf0
)

// Gate type/attribute bits.
const (
	GatePresent     uint8 = 1 << 7
	GateInterrupt32 uint8 = 0x0e
)

// PrivilegeBits returns the DPL bits for ring, positioned for inclusion in a
// segment access byte or a gate flags byte.
func PrivilegeBits(ring uint8) uint8 {
	return (ring << dplShift) & dplMask
}

// SegmentDescriptor is a GDT entry. Its field layout matches the one expected
// by the CPU.
type SegmentDescriptor struct {
	limitLow    uint16
	baseLow     uint16
	baseMiddle  uint8
	access      uint8
	granularity uint8
	baseHigh    uint8
}

// EncodeSegment packs the supplied base, limit, access byte and granularity
// flags into a SegmentDescriptor. Only the low 20 bits of limit fit into the
// descriptor; callers describing 4G segments pass 0xffffffff together with
// GranularityPage.
func EncodeSegment(base, limit uint32, access, granularity uint8) SegmentDescriptor {
	return SegmentDescriptor{
		limitLow:    uint16(limit & 0xffff),
		baseLow:     uint16(base & 0xffff),
		baseMiddle:  uint8((base >> 16) & 0xff),
		access:      access,
		granularity: uint8((limit>>16)&0x0f) | (granularity & granularityFlags),
		baseHigh:    uint8((base >> 24) & 0xff),
	}
}

// Base returns the linear base address of the segment.
func (d SegmentDescriptor) Base() uint32 {
	return uint32(d.baseHigh)<<24 | uint32(d.baseMiddle)<<16 | uint32(d.baseLow)
}

// RawLimit returns the 20-bit limit field as stored in the descriptor.
func (d SegmentDescriptor) RawLimit() uint32 {
	return uint32(d.granularity&0x0f)<<16 | uint32(d.limitLow)
}

// Limit returns the offset of the last addressable byte in the segment taking
// the granularity flag into account.
func (d SegmentDescriptor) Limit() uint32 {
	limit := d.RawLimit()
	if d.granularity&GranularityPage != 0 {
		limit = limit<<12 | 0xfff
	}
	return limit
}

// Access returns the access byte.
func (d SegmentDescriptor) Access() uint8 { return d.access }

// Granularity returns the granularity flags (upper nibble only).
func (d SegmentDescriptor) Granularity() uint8 { return d.granularity & granularityFlags }

// Present returns true if the present bit is set.
func (d SegmentDescriptor) Present() bool { return d.access&AccessPresent != 0 }

// DPL returns the privilege ring of the descriptor.
func (d SegmentDescriptor) DPL() uint8 { return (d.access & dplMask) >> dplShift }

// IsNull returns true if every bit of the descriptor is zero.
func (d SegmentDescriptor) IsNull() bool { return d == SegmentDescriptor{} }

// Bytes returns the descriptor in the byte order the CPU reads it.
func (d SegmentDescriptor) Bytes() [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint16(b[0:], d.limitLow)
	binary.LittleEndian.PutUint16(b[2:], d.baseLow)
	b[4] = d.baseMiddle
	b[5] = d.access
	b[6] = d.granularity
	b[7] = d.baseHigh
	return b
}

// DecodeSegment is the inverse of SegmentDescriptor.Bytes.
func DecodeSegment(b [Size]byte) SegmentDescriptor {
	return SegmentDescriptor{
		limitLow:    binary.LittleEndian.Uint16(b[0:]),
		baseLow:     binary.LittleEndian.Uint16(b[2:]),
		baseMiddle:  b[4],
		access:      b[5],
		granularity: b[6],
		baseHigh:    b[7],
	}
}

// GateDescriptor is an IDT entry. Its field layout matches the one expected
// by the CPU.
type GateDescriptor struct {
	handlerLow  uint16
	selector    uint16
	reserved    uint8
	flags       uint8
	handlerHigh uint16
}

// EncodeGate builds a gate that transfers control to handler using the code
// segment identified by sel.
func EncodeGate(handler uint32, sel Selector, flags uint8) GateDescriptor {
	return GateDescriptor{
		handlerLow:  uint16(handler & 0xffff),
		selector:    uint16(sel),
		flags:       flags,
		handlerHigh: uint16((handler >> 16) & 0xffff),
	}
}

// Handler returns the address of the entry point invoked by the gate.
func (g GateDescriptor) Handler() uint32 {
	return uint32(g.handlerHigh)<<16 | uint32(g.handlerLow)
}

// Selector returns the code segment selector used by the gate.
func (g GateDescriptor) Selector() Selector { return Selector(g.selector) }

// Flags returns the gate type/attribute byte.
func (g GateDescriptor) Flags() uint8 { return g.flags }

// Present returns true if the present bit is set.
func (g GateDescriptor) Present() bool { return g.flags&GatePresent != 0 }

// DPL returns the minimum privilege ring allowed to invoke the gate via INT.
func (g GateDescriptor) DPL() uint8 { return (g.flags & dplMask) >> dplShift }

// Bytes returns the gate in the byte order the CPU reads it.
func (g GateDescriptor) Bytes() [Size]byte {
	var b [Size]byte
	binary.LittleEndian.PutUint16(b[0:], g.handlerLow)
	binary.LittleEndian.PutUint16(b[2:], g.selector)
	b[4] = g.reserved
	b[5] = g.flags
	binary.LittleEndian.PutUint16(b[6:], g.handlerHigh)
	return b
}

// DecodeGate is the inverse of GateDescriptor.Bytes.
func DecodeGate(b [Size]byte) GateDescriptor {
	return GateDescriptor{
		handlerLow:  binary.LittleEndian.Uint16(b[0:]),
		selector:    binary.LittleEndian.Uint16(b[2:]),
		reserved:    b[4],
		flags:       b[5],
		handlerHigh: binary.LittleEndian.Uint16(b[6:]),
	}
}

// Selector is a segment selector: a GDT index plus a requested privilege
// level.
type Selector uint16

// NewSelector returns the selector for the GDT slot at index with the
// requested privilege level rpl.
func NewSelector(index uint16, rpl uint8) Selector {
	return Selector(index<<3 | uint16(rpl&3))
}

// Index returns the GDT slot referenced by the selector.
func (s Selector) Index() uint16 { return uint16(s) >> 3 }

// RPL returns the requested privilege level.
func (s Selector) RPL() uint8 { return uint8(s & 3) }

// Pointer is the packed {limit, base} record loaded by LGDT and LIDT. A Go
// struct with these two fields would be padded, so the record is kept as raw
// bytes.
type Pointer [6]byte

// NewPointer returns a table descriptor for a table at base whose last valid
// byte is at base+limit.
func NewPointer(base uint32, limit uint16) Pointer {
	var p Pointer
	binary.LittleEndian.PutUint16(p[0:], limit)
	binary.LittleEndian.PutUint32(p[2:], base)
	return p
}

// Limit returns the table limit.
func (p *Pointer) Limit() uint16 { return binary.LittleEndian.Uint16(p[0:]) }

// Base returns the table base address.
func (p *Pointer) Base() uint32 { return binary.LittleEndian.Uint32(p[2:]) }

// AddressOf returns the 32-bit linear address of the object at ptr. The
// object must live in static storage: descriptors bake this address in and
// the CPU keeps using it for as long as the table is loaded.
func AddressOf(ptr unsafe.Pointer) uint32 {
	return uint32(uintptr(ptr))
}
