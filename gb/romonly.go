package gb

// romOnly is a cartridge without a bank controller: 32 KiB of ROM and
// optionally one always enabled RAM bank.
type romOnly struct {
	hasRAM bool
}

func (m *romOnly) flags() RAMFlags {
	if m.hasRAM {
		return RAMReadEnable | RAMWriteEnable
	}
	return 0
}

func (m *romOnly) Write(address uint16, data byte, banks Banker) {}

func (m *romOnly) Reset(banks Banker) {
	banks.SetRombank0(0)
	banks.SetRombank(1)
	banks.SetRambank(m.flags(), 0)
}

func (m *romOnly) Registers() MapperRegisters {
	return MapperRegisters{ROMBank: 1, RAMEnabled: m.hasRAM}
}

func (m *romOnly) SetRegisters(r MapperRegisters) {}
