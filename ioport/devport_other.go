//go:build !linux

package ioport

import "errors"

var errUnsupported = errors.New("/dev/port is only available on linux")

// DevPort is unavailable off Linux; reads float high and writes are dropped.
type DevPort struct{}

func (*DevPort) In8(addr uint16) uint8 { return 0xff }

func (*DevPort) Out8(addr uint16, v uint8) {}

func (*DevPort) Err() error { return errUnsupported }
