package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestGenEntryStubs(t *testing.T) {
	var buf bytes.Buffer
	genEntryStubs(&buf, 256)
	out := buf.String()

	if !strings.HasPrefix(out, "// Code generated by isrgen; DO NOT EDIT.") {
		t.Fatal("expected output to start with the generated code header")
	}

	specs := []struct {
		vector  int
		errCode bool
	}{
		{0, false},
		{8, true},
		{9, false},
		{13, true},
		{14, true},
		{17, true},
		{31, false},
		{32, false},
		{255, false},
	}

	for specIndex, spec := range specs {
		stub := fmt.Sprintf("TEXT isr%d<>(SB),NOSPLIT,$0\n\tPUSHL $%d\n", spec.vector, spec.vector)
		withPlaceholder := fmt.Sprintf("TEXT isr%d<>(SB),NOSPLIT,$0\n\tPUSHL $0\n\tPUSHL $%d\n", spec.vector, spec.vector)

		switch {
		case spec.errCode && !strings.Contains(out, stub):
			t.Errorf("[spec %d] expected stub for vector %d to rely on the CPU error code", specIndex, spec.vector)
		case !spec.errCode && !strings.Contains(out, withPlaceholder):
			t.Errorf("[spec %d] expected stub for vector %d to push a placeholder error code", specIndex, spec.vector)
		}
	}

	if got := strings.Count(out, "\tJMP isrCommon<>(SB)\n"); got != 256 {
		t.Errorf("expected 256 stubs; got %d", got)
	}
	if got := strings.Count(out, "DATA entryTable<>+"); got != 256 {
		t.Errorf("expected 256 entry table slots; got %d", got)
	}
	if !strings.Contains(out, "DATA entryTable<>+1020(SB)/4, $isr255<>(SB)\n") {
		t.Error("expected the last table slot to reference isr255")
	}
	if !strings.Contains(out, "GLOBL entryTable<>(SB), RODATA|NOPTR, $1024\n") {
		t.Error("expected a 1024 byte entry table")
	}
}
