package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

const decodeBlock = 4096 // samples per decode call, all channels

// ErrUnsupportedFormat is returned for files no decoder understands.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// decoder yields interleaved signed 16-bit PCM.
type decoder interface {
	// decode appends the next block of samples to dst. It returns io.EOF
	// once the stream is exhausted; samples may accompany the final io.EOF.
	decode(dst []int16) ([]int16, error)
	sampleRate() int
	channels() int
	close() error
}

// newDecoder picks a decoder by file extension.
func newDecoder(f *os.File) (decoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// to16 rescales a signed sample of the given bit depth to 16 bits.
func to16(sample, bits int) int16 {
	switch {
	case bits > 16:
		sample >>= bits - 16
	case bits < 16:
		sample <<= 16 - bits
	}
	if sample > 32767 {
		sample = 32767
	} else if sample < -32768 {
		sample = -32768
	}
	return int16(sample)
}

// --- MP3 ---

type mp3Decoder struct {
	dec   *mp3.Decoder
	raw   []byte
	pos   int64 // bytes consumed from dec
	limit int64 // byte offset where trailing padding starts, or -1
}

const mp3FrameBytes = 4 // 16-bit stereo

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	trim, err := readGaplessTrim(f)
	if err != nil {
		return nil, fmt.Errorf("reading MP3 header: %w", err)
	}
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	d := &mp3Decoder{dec: dec, raw: make([]byte, decodeBlock*2), limit: -1}
	if trim == (gaplessTrim{}) {
		return d, nil
	}

	start := trim.start * mp3FrameBytes
	if total := dec.Length(); total > 0 {
		d.limit = max(total-trim.end*mp3FrameBytes, start)
	}
	if d.pos, err = dec.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("skipping MP3 encoder delay: %w", err)
	}
	return d, nil
}

func (d *mp3Decoder) decode(dst []int16) ([]int16, error) {
	buf := d.raw
	if d.limit >= 0 {
		left := d.limit - d.pos
		if left <= 0 {
			return dst, io.EOF
		}
		if left < int64(len(buf)) {
			buf = buf[:left]
		}
	}
	n, err := d.dec.Read(buf)
	d.pos += int64(n)
	for i := 0; i+1 < n; i += 2 {
		dst = append(dst, int16(binary.LittleEndian.Uint16(d.raw[i:])))
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return dst, err
}

// go-mp3 always produces 16-bit stereo.
func (d *mp3Decoder) sampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) channels() int   { return 2 }
func (d *mp3Decoder) close() error    { return nil }

// --- WAV ---

type wavDecoder struct {
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	bitDepth int
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if dec.NumChans == 0 || dec.BitDepth == 0 {
		return nil, fmt.Errorf("invalid WAV header: %d channels, %d bits", dec.NumChans, dec.BitDepth)
	}

	return &wavDecoder{
		dec: dec,
		buf: &audio.IntBuffer{
			Format:         dec.Format(),
			Data:           make([]int, decodeBlock),
			SourceBitDepth: int(dec.BitDepth),
		},
		bitDepth: int(dec.BitDepth),
	}, nil
}

func (d *wavDecoder) decode(dst []int16) ([]int16, error) {
	n, err := d.dec.PCMBuffer(d.buf)
	for _, s := range d.buf.Data[:n] {
		if d.bitDepth == 8 {
			// 8-bit WAV is unsigned
			s -= 128
		}
		dst = append(dst, to16(s, d.bitDepth))
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return dst, err
}

func (d *wavDecoder) sampleRate() int { return int(d.dec.SampleRate) }
func (d *wavDecoder) channels() int   { return int(d.dec.NumChans) }
func (d *wavDecoder) close() error    { return nil }

// --- FLAC ---

type flacDecoder struct {
	stream *flac.Stream
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	return &flacDecoder{stream: stream}, nil
}

func (d *flacDecoder) decode(dst []int16) ([]int16, error) {
	frame, err := d.stream.ParseNext()
	if err != nil {
		return dst, err
	}

	bps := int(d.stream.Info.BitsPerSample)
	channels := len(frame.Subframes)
	for i := range frame.Subframes[0].NSamples {
		for ch := range channels {
			dst = append(dst, to16(int(frame.Subframes[ch].Samples[i]), bps))
		}
	}
	return dst, nil
}

func (d *flacDecoder) sampleRate() int { return int(d.stream.Info.SampleRate) }
func (d *flacDecoder) channels() int   { return int(d.stream.Info.NChannels) }
func (d *flacDecoder) close() error    { return d.stream.Close() }

// --- Ogg Vorbis ---

type oggDecoder struct {
	reader *oggvorbis.Reader
	raw    []float32
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{reader: reader, raw: make([]float32, decodeBlock)}, nil
}

func (d *oggDecoder) decode(dst []int16) ([]int16, error) {
	n, err := d.reader.Read(d.raw)
	for _, s := range d.raw[:n] {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		dst = append(dst, int16(s*32767))
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return dst, err
}

func (d *oggDecoder) sampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) channels() int   { return d.reader.Channels() }
func (d *oggDecoder) close() error    { return nil }
