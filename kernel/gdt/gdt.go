// Package gdt installs the flat-model global descriptor table and the task
// state segment used to find the ring-0 stack when an interrupt arrives while
// the CPU runs in ring 3.
package gdt

import (
	"unsafe"

	"ringos/kernel/desc"
	"ringos/kernel/hal"
)

// UserRing is the privilege level assigned to user segments.
const UserRing = 3

// GDT slot layout.
const (
	NullSlot = iota
	KernelCodeSlot
	KernelDataSlot
	UserCodeSlot
	UserDataSlot
	TaskSlot

	// Entries is the number of GDT slots.
	Entries
)

// Selectors for each slot. The task selector carries the user RPL; the CPU
// only checks it against the descriptor DPL when loading TR.
const (
	KernelCode   desc.Selector = KernelCodeSlot << 3
	KernelData   desc.Selector = KernelDataSlot << 3
	UserCode     desc.Selector = UserCodeSlot<<3 | UserRing
	UserData     desc.Selector = UserDataSlot<<3 | UserRing
	TaskSelector desc.Selector = TaskSlot<<3 | UserRing
)

// Access bytes and granularity for the segments installed by Init.
const (
	CodeAccess = desc.AccessPresent | desc.AccessDescriptor | desc.AccessExecute | desc.AccessRW
	DataAccess = desc.AccessPresent | desc.AccessDescriptor | desc.AccessRW

	// TaskAccess describes an available 32-bit TSS.
	TaskAccess = desc.AccessPresent | desc.AccessExecute | desc.AccessAccessed

	// FlatGranularity selects 4K limit granularity and 32-bit operands.
	FlatGranularity = desc.GranularityPage | desc.GranularityOp32

	flatLimit = 0xffffffff
)

// TaskState is the i386 task state segment. Only SS0, ESP0 and IOMapBase are
// used: the kernel does not rely on hardware task switching.
type TaskState struct {
	PrevTSS uint32
	ESP0    uint32
	SS0     uint32

	// ESP1, SS1, ESP2, SS2, CR3, EIP, EFLAGS and the general purpose
	// registers saved by hardware task switches.
	Unused [15]uint32

	ES, CS, SS, DS, FS, GS uint32
	LDT                    uint32
	Trap                   uint16
	IOMapBase              uint16
}

// Table holds the GDT entries and the TSS they reference. A Table must live
// in static storage: Init bakes its address into the loaded descriptors.
type Table struct {
	entries [Entries]desc.SegmentDescriptor
	tss     TaskState
}

// Init fills all GDT slots, loads the table and the task register and
// reloads every segment register with the kernel selectors. Calling Init
// again rebuilds identical entries.
func (t *Table) Init(p hal.Platform) {
	t.entries[NullSlot] = desc.SegmentDescriptor{}
	t.entries[KernelCodeSlot] = desc.EncodeSegment(0, flatLimit, CodeAccess, FlatGranularity)
	t.entries[KernelDataSlot] = desc.EncodeSegment(0, flatLimit, DataAccess, FlatGranularity)
	t.entries[UserCodeSlot] = desc.EncodeSegment(0, flatLimit, CodeAccess|desc.PrivilegeBits(UserRing), FlatGranularity)
	t.entries[UserDataSlot] = desc.EncodeSegment(0, flatLimit, DataAccess|desc.PrivilegeBits(UserRing), FlatGranularity)

	// An I/O map base past the segment limit means there is no I/O bitmap.
	t.tss.SS0 = uint32(KernelData)
	t.tss.IOMapBase = uint16(unsafe.Sizeof(t.tss))
	t.entries[TaskSlot] = desc.EncodeSegment(
		desc.AddressOf(unsafe.Pointer(&t.tss)),
		uint32(unsafe.Sizeof(t.tss))-1,
		TaskAccess,
		0,
	)

	ptr := desc.NewPointer(
		desc.AddressOf(unsafe.Pointer(&t.entries)),
		uint16(unsafe.Sizeof(t.entries))-1,
	)
	p.LoadGDT(&ptr)
	p.ReloadSegments(KernelCode, KernelData)
	p.LoadTaskRegister(TaskSelector)
}

// SetKernelStack sets the stack pointer the CPU switches to when an interrupt
// raises the privilege level to ring 0.
func (t *Table) SetKernelStack(top uint32) {
	t.tss.ESP0 = top
}

// Entry returns the descriptor stored in the requested slot.
func (t *Table) Entry(slot int) desc.SegmentDescriptor {
	return t.entries[slot]
}

// TaskState returns the TSS referenced by the task slot.
func (t *Table) TaskState() *TaskState {
	return &t.tss
}
