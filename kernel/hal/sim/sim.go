// Package sim provides a software model of the platform primitives declared
// by package hal. It keeps track of the descriptor-table, segment and task
// registers, the interrupt flag and a pair of cascaded 8259 controllers and
// records every primitive invocation so tests can assert on ordering.
package sim

import "ringos/kernel/desc"

const (
	masterCmdPort  = 0x20
	masterDataPort = 0x21
	slaveCmdPort   = 0xa0
	slaveDataPort  = 0xa1

	// BIOS default vector offsets.
	biosMasterOffset = 0x08
	biosSlaveOffset  = 0x70

	// The slave is wired to master line 2.
	cascadeLine = 2
)

// Op identifies a primitive invoked on the Machine.
type Op uint8

// The list of recorded primitives.
const (
	OpPortWrite Op = iota
	OpPortRead
	OpLoadGDT
	OpLoadIDT
	OpReloadSegments
	OpLoadTaskRegister
	OpEnableInterrupts
	OpDisableInterrupts
	OpHalt
)

var opNames = [...]string{
	OpPortWrite:         "outb",
	OpPortRead:          "inb",
	OpLoadGDT:           "lgdt",
	OpLoadIDT:           "lidt",
	OpReloadSegments:    "reload-segments",
	OpLoadTaskRegister:  "ltr",
	OpEnableInterrupts:  "sti",
	OpDisableInterrupts: "cli",
	OpHalt:              "hlt",
}

// String implements fmt.Stringer.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// Event describes a recorded primitive invocation. Port and Value are only
// meaningful for port I/O events; Value holds the selector for segment and
// task register loads.
type Event struct {
	Op    Op
	Port  uint16
	Value uint32
}

// Machine is a software implementation of hal.Platform.
type Machine struct {
	Master, Slave PIC

	// GDTR and IDTR hold the last table descriptors loaded.
	GDTR, IDTR desc.Pointer

	// Segment and task registers.
	CS, DS, ES, FS, GS, SS desc.Selector
	TR                     desc.Selector

	// IF mirrors the interrupt flag in EFLAGS.
	IF bool

	// Events lists every primitive invocation in order.
	Events []Event

	// OnHalt, if set, is invoked each time Halt is called.
	OnHalt func()

	ports map[uint16]uint8
}

// New returns a Machine in the state a BIOS hands over to a boot loader:
// interrupts disabled and both PICs using their legacy vector offsets.
func New() *Machine {
	m := &Machine{ports: make(map[uint16]uint8)}
	m.Master.reset(biosMasterOffset)
	m.Slave.reset(biosSlaveOffset)
	return m
}

func (m *Machine) record(op Op, port uint16, value uint32) {
	m.Events = append(m.Events, Event{Op: op, Port: port, Value: value})
}

// ResetEvents discards all recorded events.
func (m *Machine) ResetEvents() {
	m.Events = m.Events[:0]
}

// Ops returns the recorded primitives in invocation order.
func (m *Machine) Ops() []Op {
	ops := make([]Op, len(m.Events))
	for i, ev := range m.Events {
		ops[i] = ev.Op
	}
	return ops
}

// PortWrites returns the values written to port in invocation order.
func (m *Machine) PortWrites(port uint16) []uint8 {
	var vals []uint8
	for _, ev := range m.Events {
		if ev.Op == OpPortWrite && ev.Port == port {
			vals = append(vals, uint8(ev.Value))
		}
	}
	return vals
}

// PortWriteByte implements hal.PortIO.
func (m *Machine) PortWriteByte(port uint16, val uint8) {
	m.record(OpPortWrite, port, uint32(val))

	switch port {
	case masterCmdPort:
		m.Master.writeCommand(val)
	case masterDataPort:
		m.Master.writeData(val)
	case slaveCmdPort:
		m.Slave.writeCommand(val)
	case slaveDataPort:
		m.Slave.writeData(val)
	default:
		m.ports[port] = val
	}
}

// PortReadByte implements hal.PortIO.
func (m *Machine) PortReadByte(port uint16) uint8 {
	var val uint8

	switch port {
	case masterCmdPort:
		val = m.Master.readCommand()
	case masterDataPort:
		val = m.Master.IMR
	case slaveCmdPort:
		val = m.Slave.readCommand()
	case slaveDataPort:
		val = m.Slave.IMR
	default:
		val = m.ports[port]
	}

	m.record(OpPortRead, port, uint32(val))
	return val
}

// EnableInterrupts implements hal.InterruptFlag.
func (m *Machine) EnableInterrupts() {
	m.record(OpEnableInterrupts, 0, 0)
	m.IF = true
}

// DisableInterrupts implements hal.InterruptFlag.
func (m *Machine) DisableInterrupts() {
	m.record(OpDisableInterrupts, 0, 0)
	m.IF = false
}

// InterruptsEnabled implements hal.InterruptFlag.
func (m *Machine) InterruptsEnabled() bool {
	return m.IF
}

// LoadGDT implements hal.Platform.
func (m *Machine) LoadGDT(ptr *desc.Pointer) {
	m.record(OpLoadGDT, 0, ptr.Base())
	m.GDTR = *ptr
}

// LoadIDT implements hal.Platform.
func (m *Machine) LoadIDT(ptr *desc.Pointer) {
	m.record(OpLoadIDT, 0, ptr.Base())
	m.IDTR = *ptr
}

// ReloadSegments implements hal.Platform.
func (m *Machine) ReloadSegments(code, data desc.Selector) {
	m.record(OpReloadSegments, 0, uint32(code)<<16|uint32(data))
	m.CS = code
	m.DS, m.ES, m.FS, m.GS, m.SS = data, data, data, data, data
}

// LoadTaskRegister implements hal.Platform.
func (m *Machine) LoadTaskRegister(sel desc.Selector) {
	m.record(OpLoadTaskRegister, 0, uint32(sel))
	m.TR = sel
}

// Halt implements hal.Platform.
func (m *Machine) Halt() {
	m.record(OpHalt, 0, 0)
	if m.OnHalt != nil {
		m.OnHalt()
	}
}

// RaiseIRQ asserts hardware interrupt line (0-15) and returns the vector
// the controllers would deliver to the CPU. If the line is masked or a request
// of the same or higher priority is still in service (i.e. it was never
// acknowledged), the request stays pending and RaiseIRQ returns false.
func (m *Machine) RaiseIRQ(line uint8) (uint8, bool) {
	if line >= 16 {
		return 0, false
	}

	if line < 8 {
		if !m.Master.accepts(line) {
			m.Master.IRR |= 1 << line
			return 0, false
		}
		m.Master.IRR &^= 1 << line
		m.Master.ISR |= 1 << line
		return m.Master.Offset + line, true
	}

	slaveLine := line - 8
	if !m.Slave.accepts(slaveLine) || !m.Master.accepts(cascadeLine) {
		m.Slave.IRR |= 1 << slaveLine
		return 0, false
	}
	m.Slave.IRR &^= 1 << slaveLine
	m.Slave.ISR |= 1 << slaveLine
	m.Master.ISR |= 1 << cascadeLine
	return m.Slave.Offset + slaveLine, true
}
