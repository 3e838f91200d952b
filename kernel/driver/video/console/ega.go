package console

import (
	"reflect"
	"unsafe"
)

const (
	clearColor = Black
	clearChar  = byte(' ')
)

// Ega implements an EGA-compatible text console that writes directly into a
// framebuffer of 16-bit cells (attribute in the high byte, character in the
// low byte).
type Ega struct {
	width  uint16
	height uint16

	fb []uint16
}

// Init sets up the console to use the width*height cells starting at
// fbPhysAddr.
func (cons *Ega) Init(width, height uint16, fbPhysAddr uintptr) {
	cons.width = width
	cons.height = height

	cons.fb = *(*[]uint16)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  int(width) * int(height),
		Cap:  int(width) * int(height),
		Data: fbPhysAddr,
	}))
}

// Dimensions returns the console width and height in characters.
func (cons *Ega) Dimensions() (uint16, uint16) {
	return cons.width, cons.height
}

// Clear blanks the specified rectangular region. The region is clipped to the
// console bounds.
func (cons *Ega) Clear(x, y, width, height uint16) {
	if x >= cons.width || y >= cons.height {
		return
	}
	if width > cons.width-x {
		width = cons.width - x
	}
	if height > cons.height-y {
		height = cons.height - y
	}

	blank := uint16(MakeAttr(clearColor, clearColor))<<8 | uint16(clearChar)
	for row := y; row < y+height; row++ {
		line := cons.fb[int(row)*int(cons.width)+int(x):]
		for col := uint16(0); col < width; col++ {
			line[col] = blank
		}
	}
}

// Scroll moves the console contents by the specified number of lines. Rows
// exposed by the scroll keep their previous contents.
func (cons *Ega) Scroll(dir ScrollDir, lines uint16) {
	if lines == 0 || lines >= cons.height {
		return
	}

	offset := int(lines) * int(cons.width)
	switch dir {
	case Up:
		copy(cons.fb, cons.fb[offset:])
	case Down:
		copy(cons.fb[offset:], cons.fb)
	}
}

// Write a char to the specified location. Writes outside the console bounds
// are ignored.
func (cons *Ega) Write(ch byte, attr Attr, x, y uint16) {
	if x >= cons.width || y >= cons.height {
		return
	}

	cons.fb[int(y)*int(cons.width)+int(x)] = uint16(attr)<<8 | uint16(ch)
}
