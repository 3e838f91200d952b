// Command isrgen generates the i386 interrupt entry stubs used by package
// gate together with the table of their addresses.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"ringos/kernel/irq"
)

// commonStub saves the interrupted context, switches to the kernel data
// segments and calls dispatchInterrupt with a pointer to the saved registers.
const commonStub = `
TEXT isrCommon<>(SB),NOSPLIT,$0
	PUSHAL
	// push %ds
	BYTE $0x1e

	MOVL $0x10, AX
	MOVW AX, DS
	MOVW AX, ES
	MOVW AX, FS
	MOVW AX, GS

	MOVL SP, AX
	PUSHL AX
	CALL ·dispatchInterrupt(SB)
	ADDL $4, SP

	POPL AX
	MOVW AX, DS
	MOVW AX, ES
	MOVW AX, FS
	MOVW AX, GS
	POPAL

	// Drop the vector and error code.
	ADDL $8, SP
	IRETL
`

const entryPointsFunc = `
TEXT ·EntryPoints(SB),NOSPLIT,$0-4
	MOVL $entryTable<>(SB), AX
	MOVL AX, ret+0(FP)
	RET
`

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[isrgen] error: %s\n", err.Error())
	os.Exit(1)
}

// genEntryStubs writes one stub per vector. Stubs for vectors without a CPU
// supplied error code push a zero placeholder so that every stub leaves the
// same frame layout behind.
func genEntryStubs(w io.Writer, vectors int) {
	fmt.Fprint(w, "// Code generated by isrgen; DO NOT EDIT.\n\n#include \"textflag.h\"\n")

	for v := 0; v < vectors; v++ {
		fmt.Fprintf(w, "\nTEXT isr%d<>(SB),NOSPLIT,$0\n", v)
		if !irq.HasErrorCode(irq.InterruptNumber(v)) {
			fmt.Fprint(w, "\tPUSHL $0\n")
		}
		fmt.Fprintf(w, "\tPUSHL $%d\n", v)
		fmt.Fprint(w, "\tJMP isrCommon<>(SB)\n")
	}

	io.WriteString(w, commonStub)

	fmt.Fprint(w, "\n")
	for v := 0; v < vectors; v++ {
		fmt.Fprintf(w, "DATA entryTable<>+%d(SB)/4, $isr%d<>(SB)\n", v*4, v)
	}
	fmt.Fprintf(w, "GLOBL entryTable<>(SB), RODATA|NOPTR, $%d\n", vectors*4)

	fmt.Fprint(w, entryPointsFunc)
}

func main() {
	out := flag.String("out", "", "the output file (defaults to stdout)")
	flag.Parse()

	var buf bytes.Buffer
	genEntryStubs(&buf, irq.Vectors)

	if *out == "" {
		os.Stdout.Write(buf.Bytes())
		return
	}

	if err := ioutil.WriteFile(*out, buf.Bytes(), 0644); err != nil {
		exit(err)
	}
}
