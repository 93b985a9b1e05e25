package ui

import (
	"image"
	"sync"
)

// The tile viewer lays the 384 tiles of VRAM bank 0 out as 16 columns and
// 24 rows of 8x8 pixels.
const (
	tileColumns = 16
	tileRows    = 24
	tileBytes   = 16
	viewWidth   = tileColumns * 8
	viewHeight  = tileRows * 8
)

// tileViewer is a gb.VideoSink decoding the tile data in VRAM with the
// background palette. It does not render the LCD.
type tileViewer struct {
	mu      sync.Mutex
	palette *Palette
	img     *image.RGBA
	frame   uint64
}

func newTileViewer(p *Palette) *tileViewer {
	if p == nil {
		p = DefaultPalette()
	}
	return &tileViewer{palette: p, img: image.NewRGBA(image.Rect(0, 0, viewWidth, viewHeight))}
}

// Blit implements gb.VideoSink.
func (v *tileViewer) Blit(vram []byte, frame uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame = frame
	for tile := 0; tile < tileColumns*tileRows; tile++ {
		x0, y0 := tile%tileColumns*8, tile/tileColumns*8
		data := vram[tile*tileBytes : (tile+1)*tileBytes]
		for y := 0; y < 8; y++ {
			lo, hi := data[2*y], data[2*y+1]
			for x := 0; x < 8; x++ {
				bit := uint(7 - x)
				shade := (hi>>bit&1)<<1 | lo>>bit&1
				v.img.SetRGBA(x0+x, y0+y, v.palette.Background[shade])
			}
		}
	}
}

// image returns the last decoded frame and its number.
func (v *tileViewer) image() (*image.RGBA, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.img, v.frame
}
