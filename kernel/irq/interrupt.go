package irq

// InterruptNumber describes an x86 interrupt/exception/trap slot.
type InterruptNumber uint8

const (
	// DivideByZero occurs when dividing any number by 0 using the DIV or
	// IDIV instruction.
	DivideByZero = InterruptNumber(0)

	// Debug is raised by debug register conditions and single stepping.
	Debug = InterruptNumber(1)

	// NMI (non-maskable-interrupt) is a hardware interrupt that indicates
	// issues with RAM or unrecoverable hardware problems.
	NMI = InterruptNumber(2)

	// Breakpoint is raised by the INT3 instruction.
	Breakpoint = InterruptNumber(3)

	// Overflow is raised by INTO when the overflow flag is set.
	Overflow = InterruptNumber(4)

	// BoundRangeExceeded occurs when the BOUND instruction is invoked with
	// an index out of range.
	BoundRangeExceeded = InterruptNumber(5)

	// InvalidOpcode occurs when the CPU attempts to execute an invalid or
	// undefined instruction opcode.
	InvalidOpcode = InterruptNumber(6)

	// DeviceNotAvailable occurs when the CPU attempts to execute an FPU
	// instruction while no FPU is available.
	DeviceNotAvailable = InterruptNumber(7)

	// DoubleFault occurs when an exception occurs while the CPU is trying
	// to invoke the handler for a prior exception.
	DoubleFault = InterruptNumber(8)

	// CoprocessorSegmentOverrun is only raised by pre-486 CPUs.
	CoprocessorSegmentOverrun = InterruptNumber(9)

	// InvalidTSS occurs when a task switch references an invalid TSS.
	InvalidTSS = InterruptNumber(10)

	// SegmentNotPresent occurs when loading a segment or gate whose present
	// bit is clear.
	SegmentNotPresent = InterruptNumber(11)

	// StackSegmentFault occurs when the stack limit checks fail or SS is
	// loaded with a non-present segment.
	StackSegmentFault = InterruptNumber(12)

	// GPFException occurs when a general protection fault occurs.
	GPFException = InterruptNumber(13)

	// PageFaultException occurs when a page directory table (PDT) or one
	// of its entries is not present or when a privilege and/or RW
	// protection check fails.
	PageFaultException = InterruptNumber(14)

	// FloatingPointException occurs when an unmasked x87 exception is
	// pending.
	FloatingPointException = InterruptNumber(16)

	// AlignmentCheck occurs when alignment checks are enabled and an
	// unaligned memory access is performed in ring 3.
	AlignmentCheck = InterruptNumber(17)

	// MachineCheck occurs when the CPU detects internal errors such as
	// memory-, bus- or cache-related errors.
	MachineCheck = InterruptNumber(18)

	// SIMDFloatingPointException occurs when an unmasked SSE exception
	// occurs.
	SIMDFloatingPointException = InterruptNumber(19)

	// VirtualizationException is raised by EPT violations.
	VirtualizationException = InterruptNumber(20)

	// ControlProtection is raised by control-flow enforcement violations.
	ControlProtection = InterruptNumber(21)

	// HypervisorInjection is raised by a hypervisor to notify the guest.
	HypervisorInjection = InterruptNumber(28)

	// VMMCommunication is raised by a secure VM monitor.
	VMMCommunication = InterruptNumber(29)

	// SecurityException is raised by security-sensitive events in SVM.
	SecurityException = InterruptNumber(30)

	// FirstIRQ is the vector hardware line 0 is remapped to.
	FirstIRQ = InterruptNumber(32)

	// Timer is the vector of the programmable interval timer (line 0).
	Timer = FirstIRQ

	// Keyboard is the vector of the PS/2 keyboard controller (line 1).
	Keyboard = FirstIRQ + 1
)

var exceptionNames = [FirstIRQ]string{
	DivideByZero:               "divide error",
	Debug:                      "debug",
	NMI:                        "non-maskable interrupt",
	Breakpoint:                 "breakpoint",
	Overflow:                   "overflow",
	BoundRangeExceeded:         "bound range exceeded",
	InvalidOpcode:              "invalid opcode",
	DeviceNotAvailable:         "device not available",
	DoubleFault:                "double fault",
	CoprocessorSegmentOverrun:  "coprocessor segment overrun",
	InvalidTSS:                 "invalid TSS",
	SegmentNotPresent:          "segment not present",
	StackSegmentFault:          "stack-segment fault",
	GPFException:               "general protection fault",
	PageFaultException:         "page fault",
	FloatingPointException:     "x87 floating-point exception",
	AlignmentCheck:             "alignment check",
	MachineCheck:               "machine check",
	SIMDFloatingPointException: "SIMD floating-point exception",
	VirtualizationException:    "virtualization exception",
	ControlProtection:          "control protection exception",
	HypervisorInjection:        "hypervisor injection exception",
	VMMCommunication:           "VMM communication exception",
	SecurityException:          "security exception",
}

// ExceptionName returns a human readable description of the interrupt
// number.
func ExceptionName(num InterruptNumber) string {
	switch {
	case num >= FirstIRQ+16:
		return "software interrupt"
	case num >= FirstIRQ:
		return "hardware interrupt"
	case exceptionNames[num] == "":
		return "reserved"
	default:
		return exceptionNames[num]
	}
}

// HasErrorCode returns true if the CPU pushes an error code onto the stack
// before invoking the handler for num.
func HasErrorCode(num InterruptNumber) bool {
	switch num {
	case DoubleFault, InvalidTSS, SegmentNotPresent, StackSegmentFault,
		GPFException, PageFaultException, AlignmentCheck, ControlProtection,
		VMMCommunication, SecurityException:
		return true
	default:
		return false
	}
}
