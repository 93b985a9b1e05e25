package gb

// RAM is a plain byte store for VRAM and the OAM/IO/HRAM page.
type RAM struct {
	data []byte
}

// NewRAM creates a RAM of size bytes.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// read reads data
func (r *RAM) read(i int) byte {
	return r.data[i]
}

// write writes data
func (r *RAM) write(i int, x byte) {
	r.data[i] = x
}

func (r *RAM) clear() {
	for i := range r.data {
		r.data[i] = 0
	}
}
