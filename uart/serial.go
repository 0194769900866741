// Package uart drives the transmit side of an ISA 16450/8250 serial port as
// an early console.
//
// The driver never touches hardware directly: register accesses go through a
// RegisterPort, which may be real port I/O (see package ioport) or a simulated
// register file (see package sim). A SerialPort assumes a single writer;
// callers sharing one must serialize access themselves.
package uart

import (
	"k8s.io/klog"
)

// RegisterPort reads and writes single registers of one UART, addressed by
// offset from its I/O base.
type RegisterPort interface {
	ReadReg(offset uint16) uint8
	WriteReg(offset uint16, v uint8)
}

// Console is a text sink that separates writing text from advancing a line.
type Console interface {
	WriteString(text string) (int, error)
	Newline() error
}

// SerialPort is one UART used as an output-only console.
type SerialPort struct {
	port   RegisterPort
	ioport uint16
	lcr    uint8
	cfg    Config
	wait   Waiter
}

// Option configures a SerialPort at construction.
type Option func(*SerialPort)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *SerialPort) { s.cfg = cfg }
}

// WithWaiter replaces the unbounded Spin waiter.
func WithWaiter(w Waiter) Option {
	return func(s *SerialPort) { s.wait = w }
}

// WithBase records the I/O base the port is mapped at. It defaults to COM1.
func WithBase(base uint16) Option {
	return func(s *SerialPort) { s.ioport = base }
}

// New returns a SerialPort over port, already reset.
func New(port RegisterPort, opts ...Option) (*SerialPort, error) {
	s := &SerialPort{
		port:   port,
		ioport: COM1,
		cfg:    DefaultConfig,
		wait:   Spin{},
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	s.Reset()

	return s, nil
}

// Reset programs the baud divisor and line format. The divisor latch access
// bit is set for the two divisor writes and cleared by the final LCR write.
// Calling it again reprograms the same values.
func (s *SerialPort) Reset() {
	s.port.WriteReg(RegLCR, LCRDivisorLatchAccess)
	s.port.WriteReg(RegDivisorLow, uint8(s.cfg.Divisor))
	s.port.WriteReg(RegDivisorHigh, uint8(s.cfg.Divisor>>8))

	s.lcr = s.cfg.LCR()
	s.port.WriteReg(RegLCR, s.lcr)

	klog.V(2).Infof("uart %#x: divisor %d (%d baud), lcr %#02x", s.ioport, s.cfg.Divisor, s.cfg.Baud(), s.lcr)
}

// WriteByte waits for the transmit holding register to empty and then hands
// it c. With the default waiter it blocks until the hardware is ready and
// never fails.
func (s *SerialPort) WriteByte(c byte) error {
	if err := s.wait.Wait(s.port); err != nil {
		return err
	}
	s.port.WriteReg(RegData, c)
	return nil
}

// Write transmits p in order. n counts the bytes accepted before any error.
func (s *SerialPort) Write(p []byte) (n int, err error) {
	for _, c := range p {
		if err = s.WriteByte(c); err != nil {
			return
		}
		n++
	}
	return
}

// WriteString is Write for strings.
func (s *SerialPort) WriteString(text string) (n int, err error) {
	for i := 0; i < len(text); i++ {
		if err = s.WriteByte(text[i]); err != nil {
			return
		}
		n++
	}
	return
}

// Newline emits the configured line ending, CR LF by default.
func (s *SerialPort) Newline() error {
	_, err := s.WriteString(s.cfg.LineEnding)
	return err
}

// LCR returns the cached line format last written by Reset.
func (s *SerialPort) LCR() uint8 { return s.lcr }

// Base returns the I/O base the port was constructed with.
func (s *SerialPort) Base() uint16 { return s.ioport }

// Config returns the line configuration Reset programs.
func (s *SerialPort) Config() Config { return s.cfg }
