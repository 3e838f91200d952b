package gdt

import (
	"testing"
	"unsafe"

	"ringos/kernel/desc"
	"ringos/kernel/hal/sim"
)

var table Table

func TestTaskStateLayout(t *testing.T) {
	if exp, got := uintptr(104), unsafe.Sizeof(TaskState{}); got != exp {
		t.Fatalf("expected TaskState to be %d bytes; got %d", exp, got)
	}

	specs := []struct {
		field  string
		offset uintptr
		exp    uintptr
	}{
		{"ESP0", unsafe.Offsetof(TaskState{}.ESP0), 4},
		{"SS0", unsafe.Offsetof(TaskState{}.SS0), 8},
		{"ES", unsafe.Offsetof(TaskState{}.ES), 72},
		{"LDT", unsafe.Offsetof(TaskState{}.LDT), 96},
		{"IOMapBase", unsafe.Offsetof(TaskState{}.IOMapBase), 102},
	}

	for specIndex, spec := range specs {
		if spec.offset != spec.exp {
			t.Errorf("[spec %d] expected %s at offset %d; got %d", specIndex, spec.field, spec.exp, spec.offset)
		}
	}
}

func TestSelectors(t *testing.T) {
	specs := []struct {
		sel desc.Selector
		exp uint16
	}{
		{KernelCode, 0x08},
		{KernelData, 0x10},
		{UserCode, 0x1b},
		{UserData, 0x23},
		{TaskSelector, 0x2b},
	}

	for specIndex, spec := range specs {
		if uint16(spec.sel) != spec.exp {
			t.Errorf("[spec %d] expected selector 0x%x; got 0x%x", specIndex, spec.exp, uint16(spec.sel))
		}
	}

	if TaskSelector.Index() != TaskSlot || TaskSelector.RPL() != UserRing {
		t.Errorf("expected task selector to reference slot %d with RPL %d", TaskSlot, UserRing)
	}
}

func TestInit(t *testing.T) {
	m := sim.New()
	table.Init(m)

	if !table.Entry(NullSlot).IsNull() {
		t.Error("expected slot 0 to hold the null descriptor")
	}

	specs := []struct {
		slot   int
		access uint8
		dpl    uint8
	}{
		{KernelCodeSlot, 0x9a, 0},
		{KernelDataSlot, 0x92, 0},
		{UserCodeSlot, 0xfa, 3},
		{UserDataSlot, 0xf2, 3},
	}

	for specIndex, spec := range specs {
		d := table.Entry(spec.slot)
		if d.Base() != 0 || d.Limit() != 0xffffffff {
			t.Errorf("[spec %d] expected a flat segment; got base 0x%x limit 0x%x", specIndex, d.Base(), d.Limit())
		}
		if d.Access() != spec.access {
			t.Errorf("[spec %d] expected access byte 0x%x; got 0x%x", specIndex, spec.access, d.Access())
		}
		if d.DPL() != spec.dpl {
			t.Errorf("[spec %d] expected DPL %d; got %d", specIndex, spec.dpl, d.DPL())
		}
		if d.Granularity() != 0xc0 {
			t.Errorf("[spec %d] expected granularity 0xc0; got 0x%x", specIndex, d.Granularity())
		}
	}

	tssDesc := table.Entry(TaskSlot)
	if exp := uint32(uintptr(unsafe.Pointer(table.TaskState()))); tssDesc.Base() != exp {
		t.Errorf("expected TSS descriptor base to be 0x%x; got 0x%x", exp, tssDesc.Base())
	}
	if exp := uint32(103); tssDesc.Limit() != exp {
		t.Errorf("expected TSS descriptor limit to be %d; got %d", exp, tssDesc.Limit())
	}
	if exp := uint8(0x89); tssDesc.Access() != exp {
		t.Errorf("expected TSS access byte 0x%x; got 0x%x", exp, tssDesc.Access())
	}

	tss := table.TaskState()
	if tss.SS0 != uint32(KernelData) {
		t.Errorf("expected SS0 to be 0x%x; got 0x%x", uint16(KernelData), tss.SS0)
	}
	if tss.IOMapBase != 104 {
		t.Errorf("expected I/O map base to be 104; got %d", tss.IOMapBase)
	}

	// Load order
	expOps := []sim.Op{sim.OpLoadGDT, sim.OpReloadSegments, sim.OpLoadTaskRegister}
	ops := m.Ops()
	if len(ops) != len(expOps) {
		t.Fatalf("expected ops %v; got %v", expOps, ops)
	}
	for i := range expOps {
		if ops[i] != expOps[i] {
			t.Fatalf("expected ops %v; got %v", expOps, ops)
		}
	}

	if exp := uint32(uintptr(unsafe.Pointer(&table.entries))); m.GDTR.Base() != exp {
		t.Errorf("expected GDTR base 0x%x; got 0x%x", exp, m.GDTR.Base())
	}
	if exp := uint16(Entries*desc.Size - 1); m.GDTR.Limit() != exp {
		t.Errorf("expected GDTR limit %d; got %d", exp, m.GDTR.Limit())
	}
	if m.CS != KernelCode || m.DS != KernelData || m.SS != KernelData || m.GS != KernelData {
		t.Errorf("expected segment registers to hold the kernel selectors")
	}
	if m.TR != TaskSelector {
		t.Errorf("expected TR to be 0x%x; got 0x%x", uint16(TaskSelector), uint16(m.TR))
	}
}

func TestInitIdempotent(t *testing.T) {
	m := sim.New()

	table.Init(m)
	var first [Entries][desc.Size]byte
	for i := range first {
		first[i] = table.Entry(i).Bytes()
	}
	firstTSS := *table.TaskState()

	table.Init(m)
	for i := range first {
		if got := table.Entry(i).Bytes(); got != first[i] {
			t.Errorf("expected slot %d to be unchanged after a second Init; got % x, want % x", i, got, first[i])
		}
	}
	if *table.TaskState() != firstTSS {
		t.Error("expected the TSS to be unchanged after a second Init")
	}
}

func TestSetKernelStack(t *testing.T) {
	table.Init(sim.New())

	before := *table.TaskState()
	table.SetKernelStack(0xc0ffee00)
	after := *table.TaskState()

	if after.ESP0 != 0xc0ffee00 {
		t.Fatalf("expected ESP0 to be 0xc0ffee00; got 0x%x", after.ESP0)
	}

	after.ESP0 = before.ESP0
	if after != before {
		t.Fatal("expected SetKernelStack to modify only ESP0")
	}

	table.SetKernelStack(0x1000)
	if table.TaskState().ESP0 != 0x1000 {
		t.Fatal("expected the latest SetKernelStack call to win")
	}
}
