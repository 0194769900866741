// Package ioport connects the uart driver to an x86-style I/O port space.
package ioport

import (
	"fmt"
	"strings"

	"isaserial/uart"
)

// PortIO is byte-wide access to an I/O port space.
type PortIO interface {
	In8(addr uint16) uint8
	Out8(addr uint16, v uint8)
}

// Window exposes the register block at Base as a uart.RegisterPort.
type Window struct {
	IO   PortIO
	Base uint16
}

func (w Window) ReadReg(offset uint16) uint8 { return w.IO.In8(w.Base + offset) }

func (w Window) WriteReg(offset uint16, v uint8) { w.IO.Out8(w.Base+offset, v) }

// Access is one register access seen by a Recorder.
type Access struct {
	Write  bool
	Offset uint16
	Value  uint8
	// DLAB is the divisor latch access bit in effect when the access was made.
	DLAB bool
}

func (a Access) String() string {
	op := "IN "
	if a.Write {
		op = "OUT"
	}
	return fmt.Sprintf("[%s %s] %#02x", op, a.Name(), a.Value)
}

// Name returns the register the access addressed, given the DLAB state.
func (a Access) Name() string {
	switch a.Offset {
	case uart.RegData:
		if a.DLAB {
			return "DLL"
		}
		if a.Write {
			return "THR"
		}
		return "RBR"
	case uart.RegIER:
		if a.DLAB {
			return "DLM"
		}
		return "IER"
	case 2:
		return "IIR"
	case uart.RegLCR:
		return "LCR"
	case 4:
		return "MCR"
	case uart.RegLSR:
		return "LSR"
	case 6:
		return "MSR"
	case 7:
		return "SCR"
	}
	return fmt.Sprintf("+%d", a.Offset)
}

// Trace is an ordered list of register accesses.
type Trace []Access

// Writes returns only the writes to offset.
func (t Trace) Writes(offset uint16) Trace {
	var out Trace
	for _, a := range t {
		if a.Write && a.Offset == offset {
			out = append(out, a)
		}
	}
	return out
}

func (t Trace) String() string {
	var b strings.Builder
	for _, a := range t {
		b.WriteString(a.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Recorder is a uart.RegisterPort that records every access before passing
// it on. It follows LCR writes to know which registers offsets 0 and 1 hit.
type Recorder struct {
	Port  uart.RegisterPort
	Trace Trace

	dlab bool
}

func (r *Recorder) ReadReg(offset uint16) uint8 {
	v := r.Port.ReadReg(offset)
	r.Trace = append(r.Trace, Access{Offset: offset, Value: v, DLAB: r.dlab})
	return v
}

func (r *Recorder) WriteReg(offset uint16, v uint8) {
	r.Trace = append(r.Trace, Access{Write: true, Offset: offset, Value: v, DLAB: r.dlab})
	if offset == uart.RegLCR {
		r.dlab = v&uart.LCRDivisorLatchAccess != 0
	}
	r.Port.WriteReg(offset, v)
}

// Reset clears the recorded trace.
func (r *Recorder) Reset() { r.Trace = nil }
