package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// go-mp3 emits this many samples of its own latency ahead of the audio.
const mp3DecoderDelay = 529

// gaplessTrim is the number of per-channel samples to drop at each end of
// an MP3 stream, taken from a LAME/Xing info frame.
type gaplessTrim struct {
	start, end int64
}

var errNoFrame = errors.New("no usable mp3 frame")

// readGaplessTrim inspects the first frame of an MP3 stream for a LAME
// encoder delay/padding tag. The read position of r is restored. A missing
// or unreadable tag yields a zero trim and no error.
func readGaplessTrim(r io.ReadSeeker) (gaplessTrim, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return gaplessTrim{}, err
	}
	defer r.Seek(pos, io.SeekStart)

	off, err := firstFrameOffset(r)
	if err != nil {
		return gaplessTrim{}, nil
	}
	if _, err := r.Seek(off, io.SeekStart); err != nil {
		return gaplessTrim{}, err
	}

	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return gaplessTrim{}, nil
	}
	skip, err := infoOffset(hdr[:])
	if err != nil {
		return gaplessTrim{}, nil
	}
	if _, err := r.Seek(off+int64(skip), io.SeekStart); err != nil {
		return gaplessTrim{}, err
	}

	buf := make([]byte, 256)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return gaplessTrim{}, nil
	}
	trim, _ := parseLAMETrim(buf[:n])
	return trim, nil
}

// firstFrameOffset skips a leading ID3v2 tag.
func firstFrameOffset(r io.ReadSeeker) (int64, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, errNoFrame
	}
	if !bytes.Equal(hdr[:3], []byte("ID3")) {
		return 0, nil
	}
	size := int64(hdr[6]&0x7f)<<21 | int64(hdr[7]&0x7f)<<14 | int64(hdr[8]&0x7f)<<7 | int64(hdr[9]&0x7f)
	if hdr[5]&0x10 != 0 {
		size += 10 // footer
	}
	return 10 + size, nil
}

// infoOffset returns where the Xing/Info block starts relative to the frame
// header: past the header, the optional CRC and the side information.
func infoOffset(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, errNoFrame
	}
	h := binary.BigEndian.Uint32(b)
	version := (h >> 19) & 0x3
	layer := (h >> 17) & 0x3
	if h>>21 != 0x7ff || layer != 0x1 || version == 0x1 {
		return 0, errNoFrame
	}

	mpeg1 := version == 0x3
	mono := (h>>6)&0x3 == 0x3
	side := 17
	switch {
	case mpeg1 && !mono:
		side = 32
	case !mpeg1 && mono:
		side = 9
	}
	crc := 0
	if (h>>16)&0x1 == 0 {
		crc = 2
	}
	return 4 + crc + side, nil
}

func parseLAMETrim(b []byte) (gaplessTrim, bool) {
	if len(b) < 8 {
		return gaplessTrim{}, false
	}
	if tag := string(b[:4]); tag != "Xing" && tag != "Info" {
		return gaplessTrim{}, false
	}

	flags := binary.BigEndian.Uint32(b[4:8])
	off := 8
	for _, f := range []struct {
		bit  uint32
		size int
	}{{0x1, 4}, {0x2, 4}, {0x4, 100}, {0x8, 4}} {
		if flags&f.bit != 0 {
			off += f.size
		}
	}
	if len(b) < off+24 {
		return gaplessTrim{}, false
	}

	dp := b[off+21 : off+24]
	delay := int64(dp[0])<<4 | int64(dp[1]>>4)
	padding := int64(dp[1]&0x0f)<<8 | int64(dp[2])
	if delay == 0 && padding == 0 {
		return gaplessTrim{}, false
	}
	return gaplessTrim{
		start: delay + mp3DecoderDelay,
		end:   max(padding-mp3DecoderDelay, 0),
	}, true
}
