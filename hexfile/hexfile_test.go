package hexfile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-test/deep"
)

// rec assembles a record with a valid checksum from the byte count,
// address, type and data.
func rec(addr uint16, typ uint8, data ...uint8) string {
	raw := []uint8{uint8(len(data)), uint8(addr >> 8), uint8(addr & 0xFF), typ}
	raw = append(raw, data...)
	var sum uint8
	for _, v := range raw {
		sum += v
	}
	var b strings.Builder
	b.WriteString(":")
	for _, v := range raw {
		fmt.Fprintf(&b, "%02X", v)
	}
	fmt.Fprintf(&b, "%02X", -sum)
	return b.String()
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []uint8
		loaded  int
		maxAddr uint16
	}{
		{
			name:    "single data record",
			input:   rec(0x0000, 0x00, 0x0E, 0x01, 0x44) + "\n" + rec(0, 0x01),
			want:    []uint8{0x0E, 0x01, 0x44},
			loaded:  3,
			maxAddr: 0x0002,
		},
		{
			name: "gap filled with zeros",
			input: rec(0x0000, 0x00, 0xAA) + "\n" +
				rec(0x0004, 0x00, 0xBB) + "\n" +
				rec(0, 0x01),
			want:    []uint8{0xAA, 0x00, 0x00, 0x00, 0xBB},
			loaded:  2,
			maxAddr: 0x0004,
		},
		{
			name: "junk lines ignored",
			input: "assembler listing header\n\n" +
				rec(0x0000, 0x00, 0x11, 0x22) + "\n" +
				"; comment\n" +
				rec(0, 0x01),
			want:    []uint8{0x11, 0x22},
			loaded:  2,
			maxAddr: 0x0001,
		},
		{
			name: "records after EOF marker ignored",
			input: rec(0x0000, 0x00, 0x55) + "\n" +
				rec(0, 0x01) + "\n" +
				rec(0x0010, 0x00, 0x66),
			want:    []uint8{0x55},
			loaded:  1,
			maxAddr: 0x0000,
		},
		{
			name: "overwrite doesn't double count",
			input: rec(0x0000, 0x00, 0x01) + "\n" +
				rec(0x0000, 0x00, 0x02) + "\n" +
				rec(0, 0x01),
			want:    []uint8{0x02},
			loaded:  1,
			maxAddr: 0x0000,
		},
		{
			name:  "missing EOF record still parses",
			input: rec(0x0002, 0x00, 0x07),
			want:  []uint8{0x00, 0x00, 0x07},

			loaded:  1,
			maxAddr: 0x0002,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			img, err := Parse(strings.NewReader(test.input))
			if err != nil {
				t.Fatalf("Unexpected parse error: %v", err)
			}
			if diff := deep.Equal(img.Bytes(), test.want); diff != nil {
				t.Errorf("Bytes differ: %v", diff)
			}
			if got, want := img.Loaded(), test.loaded; got != want {
				t.Errorf("Wrong loaded count: got %d want %d", got, want)
			}
			if got, want := img.MaxAddr(), test.maxAddr; got != want {
				t.Errorf("Wrong max address: got %.4X want %.4X", got, want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		checksum bool
	}{
		{
			name:     "corrupted checksum",
			input:    ":0100000041BF\n", // checksum should be BE
			checksum: true,
		},
		{
			name:  "odd digit count",
			input: ":01000000414\n",
		},
		{
			name:  "record too short",
			input: ":0000\n",
		},
		{
			name:  "byte count mismatch",
			input: rec(0x0000, 0x00, 0x41)[:11] + "\n",
		},
		{
			name:  "extended linear address unsupported",
			input: rec(0x0000, 0x04, 0x00, 0x01) + "\n",
		},
		{
			name:  "bad hex digits",
			input: ":01000000QQBE\n",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(test.input))
			if err == nil {
				t.Fatal("Didn't get expected parse error")
			}
			var ce ChecksumError
			if got, want := errors.As(err, &ce), test.checksum; got != want {
				t.Errorf("ChecksumError mismatch: got %t want %t for %v", got, want, err)
			}
		})
	}
}

func TestWriteMem(t *testing.T) {
	input := rec(0x0000, 0x00, 0x0E, 0x00, 0xFF) + "\n" + rec(0, 0x01)
	img, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	var buf bytes.Buffer
	if err := img.WriteMem(&buf); err != nil {
		t.Fatalf("Unexpected write error: %v", err)
	}
	if got, want := buf.String(), "0E\n00\nFF\n"; got != want {
		t.Errorf("Wrong mem output: got %q want %q", got, want)
	}
}

func TestEmptyImage(t *testing.T) {
	img, err := Parse(strings.NewReader(rec(0, 0x01) + "\n"))
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	if img.Bytes() != nil {
		t.Errorf("Empty image produced bytes: %v", img.Bytes())
	}
	var buf bytes.Buffer
	if err := img.WriteMem(&buf); err != nil {
		t.Fatalf("Unexpected write error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Empty image produced mem output: %q", buf.String())
	}
}
