package uart

// Register block of an ISA 16450/8250 UART, offsets relative to the I/O base.
// RegDivisorLow and RegDivisorHigh alias RegData and RegIER and are only
// addressable while LCRDivisorLatchAccess is set.
const (
	COM1 = 0x3f8

	RegData        = 0x0
	RegDivisorLow  = 0x0
	RegDivisorHigh = 0x1
	RegIER         = 0x1
	RegLCR         = 0x3
	RegLSR         = 0x5
)

// LCR bits
const (
	LCRWordLengthMask     = 0x03
	LCRStopBits           = 0x04
	LCRParityEnable       = 0x08
	LCREvenParity         = 0x10
	LCRStickParity        = 0x20
	LCRBreak              = 0x40
	LCRDivisorLatchAccess = 0x80
)

// LSR bits
const (
	LSRDataReady         = 0x01
	LSRTransmitHoldEmpty = 0x20
	LSRTransmitterEmpty  = 0x40
)

// BaseClock is the reference clock of a PC serial port, divided by 16
// internally, so divisor 1 yields 115200 baud.
const BaseClock = 1843200

// Line ending bytes.
const (
	CR = '\r'
	LF = '\n'
)
