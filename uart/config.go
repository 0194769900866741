package uart

import (
	"errors"
	"fmt"
)

// Parity selects the parity bit mode encoded in the LCR.
type Parity string

const (
	ParityNone  Parity = "none"
	ParityOdd   Parity = "odd"
	ParityEven  Parity = "even"
	ParityMark  Parity = "mark"
	ParitySpace Parity = "space"
)

// Config is the line configuration programmed by Reset. It is fixed when the
// SerialPort is constructed; nothing changes it afterwards.
type Config struct {
	// Divisor is the baud-rate divisor against BaseClock/16.
	Divisor    uint16 `yaml:"divisor"`
	WordLength uint8  `yaml:"word_length"`
	StopBits   uint8  `yaml:"stop_bits"`
	Parity     Parity `yaml:"parity"`
	// LineEnding is emitted by Newline.
	LineEnding string `yaml:"line_ending"`
}

// DefaultConfig is 8-N-1 at 115200 baud with CR+LF line endings.
var DefaultConfig = Config{
	Divisor:    1,
	WordLength: 8,
	StopBits:   1,
	Parity:     ParityNone,
	LineEnding: "\r\n",
}

var errConfig = errors.New("invalid line configuration")

// Validate reports whether c can be encoded into the UART registers.
func (c Config) Validate() error {
	if c.Divisor == 0 {
		return fmt.Errorf("%w: divisor must be non-zero", errConfig)
	}
	if c.WordLength < 5 || c.WordLength > 8 {
		return fmt.Errorf("%w: word length %d not in 5..8", errConfig, c.WordLength)
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("%w: stop bits %d", errConfig, c.StopBits)
	}
	if _, ok := parityBits[c.Parity]; !ok {
		return fmt.Errorf("%w: parity %q", errConfig, c.Parity)
	}
	if len(c.LineEnding) == 0 {
		return fmt.Errorf("%w: empty line ending", errConfig)
	}
	return nil
}

var parityBits = map[Parity]uint8{
	ParityNone:  0,
	ParityOdd:   LCRParityEnable,
	ParityEven:  LCRParityEnable | LCREvenParity,
	ParityMark:  LCRParityEnable | LCRStickParity,
	ParitySpace: LCRParityEnable | LCREvenParity | LCRStickParity,
}

// LCR encodes the line format with the divisor latch access bit clear.
// 8-N-1 encodes as 0x03.
func (c Config) LCR() uint8 {
	v := (c.WordLength - 5) & LCRWordLengthMask
	if c.StopBits == 2 {
		v |= LCRStopBits
	}
	return v | parityBits[c.Parity]
}

// Baud returns the bit rate the divisor selects.
func (c Config) Baud() int {
	if c.Divisor == 0 {
		return 0
	}
	return BaseClock / 16 / int(c.Divisor)
}
