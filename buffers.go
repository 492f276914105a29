package vidreader

import "github.com/obinnaokechukwu/vidreader/engine"

// pcmBuffer holds converted audio. It is replaced only when a frame needs
// more room than it has, so its contents stay valid until the next
// ReadAudio but its address may change.
type pcmBuffer struct {
	buf    []byte
	size   int
	allocs int
}

// reserve returns a buffer of at least need bytes and clears the recorded
// size.
func (p *pcmBuffer) reserve(a engine.Allocator, need int) ([]byte, error) {
	p.size = 0
	if need <= len(p.buf) {
		return p.buf, nil
	}
	p.free(a)
	buf, err := a.Alloc(need)
	if err != nil {
		return nil, err
	}
	p.buf = buf
	p.allocs++
	return buf, nil
}

func (p *pcmBuffer) bytes() []byte {
	if p.size == 0 {
		return nil
	}
	return p.buf[:p.size]
}

func (p *pcmBuffer) free(a engine.Allocator) {
	if p.buf != nil {
		a.Free(p.buf)
		p.buf = nil
	}
	p.size = 0
}
