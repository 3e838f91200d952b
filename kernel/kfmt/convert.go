package kfmt

const digitChars = "0123456789abcdef"

// FormatUint renders value in the requested radix (2, 8, 10 or 16) and passes
// the resulting characters, most significant first, to sink. Base 2 and base
// 16 output is prefixed with "0b" and "0x" respectively. Any other radix is
// treated as 10.
func FormatUint(value uint64, radix int, sink func(byte)) {
	switch radix {
	case 2:
		sink('0')
		sink('b')
	case 16:
		sink('0')
		sink('x')
	case 8:
	default:
		radix = 10
	}

	var digits [maxBufSize]byte
	for i := putDigits(digits[:], value, uint64(radix)) - 1; i >= 0; i-- {
		sink(digits[i])
	}
}

// putDigits stores the digits of value in reverse order into buf and returns
// their count. Zero is rendered as a single digit.
func putDigits(buf []byte, value, radix uint64) int {
	var n int
	for n < len(buf) {
		buf[n] = digitChars[value%radix]
		n++

		value /= radix
		if value == 0 {
			break
		}
	}
	return n
}
