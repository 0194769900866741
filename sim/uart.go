package sim

import (
	"io"

	"k8s.io/klog"

	"isaserial/uart"
)

// UART models the register file of a 16450: no FIFO, one holding register.
// A byte written to THR is held there and reaches Output only once it leaves
// intact, i.e. when THRE sets again or Flush is called. A byte overwritten
// while THRE is clear never reaches Output. The receive side always reads
// empty.
type UART struct {
	Output io.Writer

	// TxLatency is how many LSR reads report THRE clear after each byte is
	// written to THR, standing in for the time the shifter takes.
	TxLatency int
	// Script, when non-empty, supplies the next LSR reads verbatim. The THRE
	// bit of the last scripted read decides whether the next THR write
	// overruns.
	Script []uint8
	// Stuck keeps THRE clear forever, like a wedged or unclocked part.
	Stuck bool

	ier, lcr, mcr, scr uint8
	dll, dlm           uint8

	thr      uint8
	held     bool
	busy     int
	scripted bool
	thre     bool

	overruns int
	tx       []byte
}

func NewUART(out io.Writer) *UART {
	if out == nil {
		out = io.Discard
	}
	return &UART{Output: out}
}

func (u *UART) dlab() bool { return u.lcr&uart.LCRDivisorLatchAccess != 0 }

func (u *UART) lsr() uint8 {
	if len(u.Script) > 0 {
		v := u.Script[0]
		u.Script = u.Script[1:]
		u.scripted = true
		u.thre = v&uart.LSRTransmitHoldEmpty != 0
		if u.thre {
			u.busy = 0
			u.shift()
		}
		return v
	}
	u.scripted = false
	if u.Stuck {
		return 0
	}
	if u.busy > 0 {
		u.busy--
		return 0
	}
	u.shift()
	return uart.LSRTransmitHoldEmpty | uart.LSRTransmitterEmpty
}

// empty reports THRE as the driver last had the chance to see it.
func (u *UART) empty() bool {
	if u.scripted {
		return u.thre
	}
	return !u.Stuck && u.busy == 0
}

// shift moves the held byte out of THR onto the line.
func (u *UART) shift() {
	if !u.held {
		return
	}
	u.held = false
	u.tx = append(u.tx, u.thr)
	if _, err := u.Output.Write([]byte{u.thr}); err != nil {
		klog.Warningf("uart output: %v", err)
	}
}

func (u *UART) In(offset uint16) uint8 {
	switch offset {
	case uart.RegData:
		if u.dlab() {
			return u.dll
		}
		return 0 // RBR, nothing received
	case uart.RegIER:
		if u.dlab() {
			return u.dlm
		}
		return u.ier
	case 2:
		return 0x01 // IIR: no interrupt pending
	case uart.RegLCR:
		return u.lcr
	case 4:
		return u.mcr
	case uart.RegLSR:
		return u.lsr()
	case 6:
		return 0
	case 7:
		return u.scr
	}
	return floating
}

func (u *UART) Out(offset uint16, v uint8) {
	switch offset {
	case uart.RegData:
		if u.dlab() {
			klog.V(3).Infof("[OUT DLL] %#02x", v)
			u.dll = v
			return
		}
		u.transmit(v)
	case uart.RegIER:
		if u.dlab() {
			klog.V(3).Infof("[OUT DLM] %#02x", v)
			u.dlm = v
			return
		}
		u.ier = v
	case uart.RegLCR:
		klog.V(3).Infof("[OUT LCR] %#02x", v)
		u.lcr = v
	case 4:
		u.mcr = v
	case 7:
		u.scr = v
	}
}

func (u *UART) transmit(v uint8) {
	if u.empty() {
		u.shift()
	} else {
		// Replaces the byte still waiting in THR, if any.
		u.overruns++
	}
	u.thr, u.held = v, true
	u.scripted = false
	u.busy = u.TxLatency
	if u.busy == 0 && !u.Stuck {
		u.shift()
	}
}

// Flush lets the byte held in THR finish, as if the line had gone idle.
// A stuck UART keeps it.
func (u *UART) Flush() {
	if u.Stuck {
		return
	}
	u.busy = 0
	u.shift()
}

// Divisor returns the programmed baud divisor.
func (u *UART) Divisor() uint16 { return uint16(u.dlm)<<8 | uint16(u.dll) }

// Baud returns the rate the divisor selects, 0 if unprogrammed.
func (u *UART) Baud() int {
	if d := u.Divisor(); d != 0 {
		return uart.BaseClock / 16 / int(d)
	}
	return 0
}

func (u *UART) LCR() uint8 { return u.lcr }

// Transmitted returns the bytes that left THR intact, in order. It matches
// what was written to Output.
func (u *UART) Transmitted() []byte { return u.tx }

// Overruns counts THR writes made while THRE was clear.
func (u *UART) Overruns() int { return u.overruns }
