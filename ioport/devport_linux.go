package ioport

import (
	"sync"

	"github.com/u-root/u-root/pkg/memio"
	"k8s.io/klog"
)

// DevPort accesses the host I/O port space through /dev/port. It needs
// CAP_SYS_RAWIO.
//
// Like the in/out instructions it stands in for, it cannot fail from the
// caller's point of view: a failed read returns 0xff and a failed write is
// dropped. The first failure is kept for Err.
type DevPort struct {
	mu  sync.Mutex
	err error
}

func (d *DevPort) In8(addr uint16) uint8 {
	var v memio.Uint8
	if err := memio.In(addr, &v); err != nil {
		d.fail(addr, err)
		return 0xff
	}
	return uint8(v)
}

func (d *DevPort) Out8(addr uint16, v uint8) {
	val := memio.Uint8(v)
	if err := memio.Out(addr, &val); err != nil {
		d.fail(addr, err)
	}
}

func (d *DevPort) fail(addr uint16, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err == nil {
		klog.Warningf("port %#x: %v", addr, err)
		d.err = err
	}
}

// Err returns the first access failure, if any.
func (d *DevPort) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
