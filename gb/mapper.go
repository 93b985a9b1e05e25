package gb

import "github.com/golang/glog"

// Banker is the part of the bank table a mapper drives.
type Banker interface {
	SetRombank0(bank int)
	SetRombank(bank int)
	SetRambank(flags RAMFlags, bank int)
}

// Mapper is the cartridge bank controller. It receives every CPU write to
// 0x0000-0x7FFF and re-derives the bank windows before returning.
type Mapper interface {
	Write(address uint16, data byte, banks Banker)
	Reset(banks Banker)
	Registers() MapperRegisters
	// SetRegisters restores saved registers, the caller remaps the windows.
	SetRegisters(r MapperRegisters)
}

// RTCMapper is implemented by mappers with a real time clock, which is read
// and written through the RAM window while RAMRTCEnable is set.
type RTCMapper interface {
	ReadRTC() byte
	WriteRTC(data byte)
}

// MapperRegisters is the saved state of a mapper.
type MapperRegisters struct {
	ROMBank    uint16
	RAMBank    uint8
	RAMEnabled bool
	RTCLatch   uint8
	RTC        [rtcRegisters]byte
}

// NewMapper creates the mapper for a cartridge type. Types without a
// dedicated mapper get the generic one.
func NewMapper(c *Cartridge) Mapper {
	switch c.Type {
	case 0x00, 0x08, 0x09:
		return &romOnly{hasRAM: c.RAMBanks > 0}
	case 0x01, 0x02, 0x03, 0x05, 0x06, 0x11, 0x12, 0x13:
		return newBanked(true, false)
	case 0x0F, 0x10:
		return newBanked(true, true)
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return newBanked(false, false)
	}
	glog.Warningf("Unsupported cartridge type 0x%02x, using the generic mapper", c.Type)
	return newBanked(false, false)
}
