// stream.go implements a streaming io.Reader wrapper over Player.Synthesize.

package speechbox

import (
	"encoding/binary"
	"io"
)

// Streaming API
//
// Reader adapts a Player's pull-based Synthesize method to io.Reader,
// handling sample/byte boundary bookkeeping internally so callers can use
// ordinary io.Copy against an audio sink.
//
// Example:
//
//	p, _ := speechbox.NewPlayer(22050)
//	// ... queue frames on p ...
//	r := speechbox.NewReader(p)
//	io.Copy(audioOutput, r)

// Reader streams PCM bytes (16-bit signed, little-endian, mono) pulled
// from a Player, implementing io.Reader.
type Reader struct {
	player *Player

	sampleBuf []int16
	byteBuf   []byte
	offset    int

	drained bool
}

// readChunkSamples is the number of samples NewReader pulls from the
// Player per underlying Synthesize call.
const readChunkSamples = 1024

// NewReader wraps p in an io.Reader. The Reader does not take ownership
// of p: callers still queue frames on p and Close it themselves.
func NewReader(p *Player) *Reader {
	return &Reader{
		player:    p,
		sampleBuf: make([]int16, readChunkSamples),
	}
}

// Read implements io.Reader. It returns io.EOF once the Player's frame
// queue has drained and every buffered byte has been delivered.
func (r *Reader) Read(p []byte) (int, error) {
	if r.offset >= len(r.byteBuf) {
		if r.drained {
			return 0, io.EOF
		}

		n, err := r.player.Synthesize(r.sampleBuf)
		if err != nil {
			return 0, err
		}
		r.byteBuf = samplesToBytes(r.sampleBuf[:n])
		r.offset = 0
		if n < len(r.sampleBuf) {
			r.drained = true
		}
		if n == 0 {
			return 0, io.EOF
		}
	}

	n := copy(p, r.byteBuf[r.offset:])
	r.offset += n
	return n, nil
}

func samplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// Reset clears buffered bytes and the drained flag, so the same Reader can
// be reused after queuing more frames on its Player (e.g. after a purge).
func (r *Reader) Reset() {
	r.byteBuf = nil
	r.offset = 0
	r.drained = false
}
