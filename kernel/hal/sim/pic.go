package sim

// 8259 command/data bits understood by the model.
const (
	icw1Init   = 0x10
	icw1ICW4   = 0x01
	icw1Single = 0x02
	ocw2EOI    = 0x20
	ocw2SL     = 0x40
	ocw3Mask   = 0x18
	ocw3ID     = 0x08
	ocw3RR     = 0x02
	ocw3RIS    = 0x01
)

// Initialization sequence states.
const (
	stepOperational = iota
	stepICW2
	stepICW3
	stepICW4
)

// PIC models a single 8259A interrupt controller in fully nested mode.
type PIC struct {
	// Offset is the vector assigned to line 0 (ICW2).
	Offset uint8

	// Cascade is the value programmed by ICW3.
	Cascade uint8

	// Mode is the value programmed by ICW4.
	Mode uint8

	// IMR, IRR and ISR are the mask, request and in-service registers.
	IMR, IRR, ISR uint8

	// EOIs counts the end-of-interrupt commands received.
	EOIs int

	step     int
	needICW4 bool
	single   bool
	readISR  bool
}

// reset puts the controller in the state the BIOS leaves it in.
func (p *PIC) reset(offset uint8) {
	*p = PIC{Offset: offset, IMR: 0xff}
}

// Initializing returns true while the controller is in the middle of an
// ICW1-ICW4 sequence.
func (p *PIC) Initializing() bool {
	return p.step != stepOperational
}

func (p *PIC) writeCommand(val uint8) {
	switch {
	case val&icw1Init != 0:
		p.step = stepICW2
		p.needICW4 = val&icw1ICW4 != 0
		p.single = val&icw1Single != 0
		p.IMR, p.IRR, p.ISR = 0, 0, 0
		p.readISR = false
	case val&ocw3Mask == ocw3ID:
		if val&ocw3RR != 0 {
			p.readISR = val&ocw3RIS != 0
		}
	case val&ocw2EOI != 0:
		p.EOIs++
		if val&ocw2SL != 0 {
			p.ISR &^= 1 << (val & 7)
			return
		}

		// Non-specific EOI clears the highest priority in-service bit
		for line := uint8(0); line < 8; line++ {
			if p.ISR&(1<<line) != 0 {
				p.ISR &^= 1 << line
				return
			}
		}
	}
}

func (p *PIC) writeData(val uint8) {
	switch p.step {
	case stepICW2:
		p.Offset = val &^ 7
		switch {
		case !p.single:
			p.step = stepICW3
		case p.needICW4:
			p.step = stepICW4
		default:
			p.step = stepOperational
		}
	case stepICW3:
		p.Cascade = val
		if p.needICW4 {
			p.step = stepICW4
		} else {
			p.step = stepOperational
		}
	case stepICW4:
		p.Mode = val
		p.step = stepOperational
	default:
		p.IMR = val
	}
}

func (p *PIC) readCommand() uint8 {
	if p.readISR {
		return p.ISR
	}
	return p.IRR
}

// accepts returns true if a request on line can be forwarded to the CPU: the
// line must be unmasked and no request with the same or higher priority may
// be in service.
func (p *PIC) accepts(line uint8) bool {
	bit := uint8(1) << line
	return p.IMR&bit == 0 && p.ISR&(bit|(bit-1)) == 0
}
