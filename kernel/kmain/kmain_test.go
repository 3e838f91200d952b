package kmain

import (
	"bytes"
	"strings"
	"testing"

	"ringos/kernel/gdt"
	"ringos/kernel/hal/sim"
	"ringos/kernel/idt"
	"ringos/kernel/irq"
	"ringos/kernel/kfmt"
)

var entries [idt.Entries]uint32

func init() {
	for i := range entries {
		entries[i] = 0xc0100000 + uint32(i)*12
	}
}

type halted struct{}

// runKmain boots on m and returns once the idle loop halts for the first
// time.
func runKmain(t *testing.T, m *sim.Machine, attach func(*irq.Dispatcher)) {
	m.OnHalt = func() { panic(halted{}) }

	defer func() {
		if err := recover(); err != (halted{}) {
			t.Fatalf("expected Kmain to reach the idle loop; got %v", err)
		}
	}()

	Kmain(m, &entries, attach)
}

func TestKmain(t *testing.T) {
	defer func() {
		kfmt.SetOutputSink(nil)
	}()

	var buf bytes.Buffer
	kfmt.SetOutputSink(&buf)

	m := sim.New()
	m.IF = true

	var attached *irq.Dispatcher
	runKmain(t, m, func(d *irq.Dispatcher) {
		if d.Sealed() {
			t.Error("expected attach to run before the dispatcher is sealed")
		}
		attached = d
	})

	if attached != Dispatcher() || !attached.Sealed() {
		t.Fatal("expected attach to receive the sealed boot dispatcher")
	}

	expOps := []sim.Op{sim.OpDisableInterrupts, sim.OpLoadGDT, sim.OpReloadSegments, sim.OpLoadTaskRegister}
	for i := 0; i < 10; i++ {
		expOps = append(expOps, sim.OpPortWrite)
	}
	expOps = append(expOps, sim.OpLoadIDT, sim.OpEnableInterrupts, sim.OpHalt)

	ops := m.Ops()
	if len(ops) != len(expOps) {
		t.Fatalf("expected boot sequence %v; got %v", expOps, ops)
	}
	for i := range expOps {
		if ops[i] != expOps[i] {
			t.Fatalf("expected boot sequence %v; got %v", expOps, ops)
		}
	}

	if m.CS != gdt.KernelCode || m.DS != gdt.KernelData || m.TR != gdt.TaskSelector {
		t.Error("expected segment and task registers to hold the kernel selectors")
	}
	if !m.IF {
		t.Error("expected interrupts to be enabled")
	}

	if got, exp := state.gdt.TaskState().ESP0, kernelStackTop(); got != exp || got&0xf != 0 {
		t.Errorf("expected ESP0 to be the aligned kernel stack top 0x%x; got 0x%x", exp, got)
	}

	for v := 0; v < idt.Entries; v++ {
		if g := state.idt.Gate(uint8(v)); g.Handler() != entries[v] || g.Selector() != gdt.KernelCode {
			t.Fatalf("[vector %d] expected gate to reference entry 0x%x via selector 0x08", v, entries[v])
		}
	}

	out := buf.String()
	for _, exp := range []string{
		"[gdt] installed 6 descriptors\n",
		"[irq] dispatcher sealed\n",
		"[idt] installing 256 gates\n",
		"[idt] interrupts enabled\n",
	} {
		if !strings.Contains(out, exp) {
			t.Errorf("expected boot log to contain %q; got:\n%s", exp, out)
		}
	}
}

func TestKmainServicesInterrupts(t *testing.T) {
	m := sim.New()

	var ticks int
	runKmain(t, m, func(d *irq.Dispatcher) {
		d.HandleIRQ(0, func(regs *irq.Registers) {
			if regs.IntNo == uint32(irq.Timer) {
				ticks++
			}
		})
	})

	d := Dispatcher()
	for i := 0; i < 5; i++ {
		v, ok := m.RaiseIRQ(0)
		if !ok {
			t.Fatalf("[tick %d] expected the timer line to be delivered", i)
		}
		d.Dispatch(&irq.Registers{IntNo: uint32(v)})
	}

	if ticks != 5 || d.Count(irq.Timer) != 5 {
		t.Fatalf("expected 5 timer ticks; got %d (count %d)", ticks, d.Count(irq.Timer))
	}

	// Registering after boot masks interrupts around the update.
	m.ResetEvents()
	d.HandleIRQ(1, func(*irq.Registers) {})
	if ops := m.Ops(); len(ops) != 2 || ops[0] != sim.OpDisableInterrupts || ops[1] != sim.OpEnableInterrupts {
		t.Fatalf("expected post-boot registration to be wrapped in cli/sti; got %v", ops)
	}

	SetKernelStack(0x9000)
	if state.gdt.TaskState().ESP0 != 0x9000 {
		t.Fatal("expected SetKernelStack to update ESP0")
	}
}
