package player

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// StreamProcessor receives audio as it is handed to the output device:
// interleaved samples scaled to [-1, 1) and the number of frames they hold.
// It runs on the output goroutine and must return quickly. The slice is
// reused after the call returns.
type StreamProcessor func(samples []float32, frames int)

// pcmSource is the reader the output device pulls from. It serves decoded
// PCM from a look-ahead queue, decoding inline when the queue runs dry, and
// passes every chunk it hands out to the attached processor.
type pcmSource struct {
	channels int
	proc     atomic.Pointer[StreamProcessor]

	mu      sync.Mutex
	dec     decoder
	pending []int16
	head    int
	eof     bool
	err     error

	scratch []float32 // only touched by Read
}

func newPCMSource(dec decoder) *pcmSource {
	channels := dec.channels()
	if channels < 1 {
		channels = 1
	}
	return &pcmSource{dec: dec, channels: channels}
}

func (s *pcmSource) attach(fn StreamProcessor) {
	if fn == nil {
		s.proc.Store(nil)
		return
	}
	s.proc.Store(&fn)
}

// fill decodes until at least want samples are queued or the stream ends.
// s.mu must be held.
func (s *pcmSource) fill(want int) error {
	if s.head > 0 {
		n := copy(s.pending, s.pending[s.head:])
		s.pending = s.pending[:n]
		s.head = 0
	}
	for !s.eof && len(s.pending) < want {
		var err error
		s.pending, err = s.dec.decode(s.pending)
		if err != nil {
			s.eof = true
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
		}
	}
	return s.err
}

// prefetch tops the queue up to want samples.
func (s *pcmSource) prefetch(want int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending)-s.head >= want {
		return s.err
	}
	return s.fill(want)
}

// drained reports whether the decoder is exhausted and nothing is queued.
func (s *pcmSource) drained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eof && len(s.pending)-s.head < s.channels
}

func (s *pcmSource) decodeErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Read encodes whole frames of little-endian 16-bit PCM into p.
func (s *pcmSource) Read(p []byte) (int, error) {
	want := len(p) / 2
	want -= want % s.channels
	if want == 0 {
		return 0, nil
	}
	if cap(s.scratch) < want {
		s.scratch = make([]float32, want)
	}

	s.mu.Lock()
	if len(s.pending)-s.head < want {
		_ = s.fill(want)
	}
	n := min(want, len(s.pending)-s.head)
	n -= n % s.channels
	if n == 0 {
		eof := s.eof
		s.mu.Unlock()
		if eof {
			return 0, io.EOF
		}
		return 0, nil
	}
	out := s.scratch[:n]
	for i, v := range s.pending[s.head : s.head+n] {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(v))
		out[i] = float32(v) / 32768
	}
	s.head += n
	s.mu.Unlock()

	if fn := s.proc.Load(); fn != nil {
		(*fn)(out, n/s.channels)
	}
	return 2 * n, nil
}
