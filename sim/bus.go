package sim

// Simple ISA port map. Devices claim [Base, Base+Size); everything else is
// an empty slot: reads float high (0xff) and writes are dropped.
//
// COM1: 0x3f8 .. 0x3ff

const (
	COM1Base = 0x3f8
	COM1Size = 8

	floating = 0xff
)

// Device is a block of byte-wide registers addressed by offset.
type Device interface {
	In(offset uint16) uint8
	Out(offset uint16, v uint8)
}

type mapping struct {
	base, size uint16
	dev        Device
}

type Bus struct {
	maps []mapping
}

func NewBus() *Bus { return &Bus{} }

// Map attaches dev at [base, base+size). Later mappings shadow earlier ones
// that overlap.
func (b *Bus) Map(base, size uint16, dev Device) {
	b.maps = append([]mapping{{base: base, size: size, dev: dev}}, b.maps...)
}

func (b *Bus) lookup(addr uint16) (Device, uint16, bool) {
	for _, m := range b.maps {
		if addr >= m.base && uint32(addr) < uint32(m.base)+uint32(m.size) {
			return m.dev, addr - m.base, true
		}
	}
	return nil, 0, false
}

func (b *Bus) Read8(addr uint16) (uint8, bool) {
	dev, off, ok := b.lookup(addr)
	if !ok {
		return floating, false
	}
	return dev.In(off), true
}

func (b *Bus) Write8(addr uint16, v uint8) bool {
	dev, off, ok := b.lookup(addr)
	if !ok {
		return false
	}
	dev.Out(off, v)
	return true
}

// In8 and Out8 make the bus an ioport.PortIO. Accesses to empty slots
// behave as on real hardware and report nothing.
func (b *Bus) In8(addr uint16) uint8 {
	v, _ := b.Read8(addr)
	return v
}

func (b *Bus) Out8(addr uint16, v uint8) {
	b.Write8(addr, v)
}
