package gb

import "github.com/golang/glog"

const (
	oamSize          = 0xA0
	oamDMAStartDelay = 8
	oamDMAByteCycles = 4
)

// oamDMA copies 160 bytes from source into OAM, one byte every 4 cycles,
// after a start up delay. While it runs the source area is disconnected
// from the CPU.
type oamDMA struct {
	source     uint16
	pos        int
	lastUpdate uint64
	active     bool
	started    bool
}

func (d *oamDMA) reset() {
	*d = oamDMA{}
}

// running reports whether the transfer owns the bus.
func (d *oamDMA) running() bool {
	return d.active && d.started
}

func dmaSourceArea(source uint16, hasRAM bool) OamDmaSrc {
	switch {
	case source < 0x8000:
		return OamDmaSrcROM
	case source < 0xA000:
		return OamDmaSrcVRAM
	case source < 0xC000:
		if !hasRAM {
			return OamDmaSrcInvalid
		}
		return OamDmaSrcSRAM
	case source < 0xFE00:
		return OamDmaSrcWRAM
	}
	return OamDmaSrcInvalid
}

func (b *Bus) dmaWrite(data byte, cycle uint64) {
	if b.dma.active {
		b.updateOamDma(cycle)
		b.endOamDma()
	}
	b.ioamhram.data[ioOffset+regDMA] = data
	b.dma = oamDMA{
		source:     uint16(data) << 8,
		lastUpdate: cycle + oamDMAStartDelay,
		active:     true,
	}
	b.sched.set(eventOAM, cycle+oamDMAStartDelay)
	glog.V(2).Infof("OAM DMA armed: source=0x%04x cycle=%d", b.dma.source, cycle)
}

func (b *Bus) oamEvent(t uint64) {
	if !b.dma.started {
		b.dma.started = true
		b.dma.lastUpdate = t
		b.banks.SetOamDmaSrc(dmaSourceArea(b.dma.source, b.banks.RAMBanks() > 0))
		b.sched.set(eventOAM, t+oamSize*oamDMAByteCycles)
		return
	}
	b.updateOamDma(t)
	b.endOamDma()
}

func (b *Bus) endOamDma() {
	b.dma.active = false
	b.dma.started = false
	b.banks.SetOamDmaSrc(OamDmaSrcOff)
	b.sched.set(eventOAM, disabledTime)
}

// updateOamDma copies every byte due by cycle.
func (b *Bus) updateOamDma(cycle uint64) {
	if !b.dma.running() || cycle < b.dma.lastUpdate {
		return
	}
	n := (cycle - b.dma.lastUpdate) / oamDMAByteCycles
	for ; n > 0 && b.dma.pos < oamSize; n-- {
		b.ioamhram.data[b.dma.pos] = b.dmaSourceByte(b.dma.source + uint16(b.dma.pos))
		b.dma.pos++
		b.dma.lastUpdate += oamDMAByteCycles
	}
}

func (b *Bus) dmaSourceByte(address uint16) byte {
	switch {
	case address >= 0x8000 && address < 0xA000:
		return b.vram.read(b.vramOffset(address))
	case address >= 0xF000 && address < 0xFE00:
		return *b.banks.wramAt(address)
	case address >= 0xFE00:
		return 0xFF
	}
	return b.banks.peek(address)
}

// dmaOpenBus is what the CPU sees reading a disconnected area: the byte the
// DMA is moving.
func (b *Bus) dmaOpenBus() byte {
	if b.dma.pos < oamSize {
		return b.dmaSourceByte(b.dma.source + uint16(b.dma.pos))
	}
	return 0xFF
}
