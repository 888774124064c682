package player

import (
	"bytes"
	"io"
	"testing"
)

// lameStream builds an ID3 tag followed by an MPEG-1 Layer III stereo frame
// carrying an Info block with the given encoder delay and padding.
func lameStream(delay, padding int, id3 bool) []byte {
	var b bytes.Buffer
	if id3 {
		b.Write([]byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0, 5})
		b.Write(make([]byte, 5))
	}
	b.Write([]byte{0xff, 0xfb, 0x90, 0x00})
	b.Write(make([]byte, 32)) // side info
	b.WriteString("Info")
	b.Write([]byte{0, 0, 0, 0}) // no optional fields
	b.Write(make([]byte, 21))
	b.Write([]byte{byte(delay >> 4), byte(delay&0x0f)<<4 | byte(padding>>8), byte(padding)})
	b.Write(make([]byte, 64))
	return b.Bytes()
}

func TestReadGaplessTrim(t *testing.T) {
	for _, id3 := range []bool{false, true} {
		r := bytes.NewReader(lameStream(576, 1600, id3))
		if _, err := r.Seek(3, io.SeekStart); err != nil {
			t.Fatal(err)
		}

		trim, err := readGaplessTrim(r)
		if err != nil {
			t.Fatalf("readGaplessTrim(id3=%v) error = %v", id3, err)
		}
		if trim.start != 1105 || trim.end != 1071 {
			t.Fatalf("trim(id3=%v) = %+v, want {1105 1071}", id3, trim)
		}
		if pos, _ := r.Seek(0, io.SeekCurrent); pos != 3 {
			t.Fatalf("read position = %d, want restored to 3", pos)
		}
	}
}

func TestReadGaplessTrimAbsent(t *testing.T) {
	tests := map[string][]byte{
		"empty":    nil,
		"no sync":  bytes.Repeat([]byte{0x55}, 64),
		"no tag":   append([]byte{0xff, 0xfb, 0x90, 0x00}, make([]byte, 128)...),
		"zero lag": lameStream(0, 0, false),
	}
	for name, data := range tests {
		trim, err := readGaplessTrim(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%s: error = %v", name, err)
		}
		if trim != (gaplessTrim{}) {
			t.Fatalf("%s: trim = %+v, want zero", name, trim)
		}
	}
}

func TestParseLAMETrimClampsShortPadding(t *testing.T) {
	data := lameStream(100, 200, false)
	trim, ok := parseLAMETrim(data[4+32:])
	if !ok {
		t.Fatal("expected tag to parse")
	}
	if trim.start != 629 || trim.end != 0 {
		t.Fatalf("trim = %+v, want {629 0}", trim)
	}
}

func TestInfoOffset(t *testing.T) {
	tests := []struct {
		name string
		hdr  []byte
		want int
	}{
		{"mpeg1 stereo", []byte{0xff, 0xfb, 0x90, 0x00}, 36},
		{"mpeg1 mono", []byte{0xff, 0xfb, 0x90, 0xc0}, 21},
		{"mpeg1 stereo crc", []byte{0xff, 0xfa, 0x90, 0x00}, 38},
		{"mpeg2 stereo", []byte{0xff, 0xf3, 0x90, 0x00}, 21},
		{"mpeg2 mono", []byte{0xff, 0xf3, 0x90, 0xc0}, 13},
	}
	for _, tt := range tests {
		got, err := infoOffset(tt.hdr)
		if err != nil {
			t.Fatalf("%s: error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: offset = %d, want %d", tt.name, got, tt.want)
		}
	}

	if _, err := infoOffset([]byte{0xff, 0xfd, 0x90, 0x00}); err == nil {
		t.Fatal("expected layer II header to be rejected")
	}
}
