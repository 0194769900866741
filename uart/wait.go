package uart

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned by bounded waiters when the transmitter never
// reported ready.
var ErrTimeout = errors.New("transmit holding register never emptied")

// Waiter blocks until the transmit holding register can accept a byte.
type Waiter interface {
	Wait(port RegisterPort) error
}

// WaiterFunc adapts a function to Waiter.
type WaiterFunc func(port RegisterPort) error

func (f WaiterFunc) Wait(port RegisterPort) error { return f(port) }

// Spin polls the LSR until THRE is set. It has no timeout: an absent or
// wedged device hangs the caller forever.
type Spin struct{}

func (Spin) Wait(port RegisterPort) error {
	for port.ReadReg(RegLSR)&LSRTransmitHoldEmpty == 0 {
	}
	return nil
}

// BoundedSpin polls the LSR at most Limit times.
type BoundedSpin struct {
	Limit int
}

func (b BoundedSpin) Wait(port RegisterPort) error {
	for i := 0; i < b.Limit; i++ {
		if port.ReadReg(RegLSR)&LSRTransmitHoldEmpty != 0 {
			return nil
		}
	}
	return fmt.Errorf("after %d polls: %w", b.Limit, ErrTimeout)
}
