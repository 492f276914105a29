package main

import (
	"image"
	"sync"
)

// imagePool reuses RGBA images handed from the decoder to the encoders.
// Images returned by get are owned by the caller until put.
type imagePool struct {
	mu        sync.Mutex
	rect      image.Rectangle
	idle      []*image.RGBA
	allocated int
}

func newImagePool(width, height int) *imagePool {
	return &imagePool{rect: image.Rect(0, 0, width, height)}
}

func (p *imagePool) get() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.idle); n > 0 {
		img := p.idle[n-1]
		p.idle = p.idle[:n-1]
		return img
	}
	p.allocated++
	return image.NewRGBA(p.rect)
}

// put returns img to the pool. Images of another size are dropped.
func (p *imagePool) put(img *image.RGBA) {
	if img == nil || img.Rect != p.rect {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = append(p.idle, img)
}

// allocations returns how many images were created.
func (p *imagePool) allocations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocated
}
