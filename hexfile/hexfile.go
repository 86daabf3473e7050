// Package hexfile parses Intel HEX program images and converts them
// to the plain memory format the VHDL memory model initializes from
// (one hex byte per line, no 0x prefix, gaps filled with 00).
// Only 16 bit addressing records are accepted since the 8008 can't
// address beyond 16K anyway; extended segment/linear records are
// rejected rather than silently misplaced.
package hexfile

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Intel HEX record types.
const (
	kRECORD_DATA = uint8(0x00)
	kRECORD_EOF  = uint8(0x01)
)

// ChecksumError represents a record whose checksum byte doesn't match
// its contents.
type ChecksumError struct {
	Line int
	Got  uint8
	Want uint8
}

// Error implements the interface for error types.
func (e ChecksumError) Error() string {
	return fmt.Sprintf("line %d: bad checksum %.2X, computed %.2X", e.Line, e.Got, e.Want)
}

// RecordError represents a structurally invalid or unsupported record.
type RecordError struct {
	Line   int
	Reason string
}

// Error implements the interface for error types.
func (e RecordError) Error() string {
	return fmt.Sprintf("line %d: invalid record: %s", e.Line, e.Reason)
}

// Image is the decoded contents of a HEX file. Unwritten addresses
// read as 0x00 which matches both the python converter this replaces
// and power on RAM in the VHDL model.
type Image struct {
	data    map[uint16]uint8
	maxAddr uint16
	loaded  int
}

// Parse reads Intel HEX records until an EOF record or the end of the
// stream. Lines not starting with ':' are ignored (some assemblers
// emit headers or blank lines). Every record's checksum is verified.
func Parse(r io.Reader) (*Image, error) {
	img := &Image{data: make(map[uint16]uint8)}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(text, ":") {
			continue
		}
		done, err := img.record(line, text[1:])
		if err != nil {
			return nil, err
		}
		if done {
			return img, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

// ParseFile is Parse over the named file.
func ParseFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// record decodes one record body (everything after the ':'). Returns
// true when the record was the EOF marker.
func (i *Image) record(line int, body string) (bool, error) {
	raw, err := hex.DecodeString(body)
	if err != nil {
		return false, RecordError{Line: line, Reason: fmt.Sprintf("bad hex digits: %v", err)}
	}
	// Minimum record: count, 2 address bytes, type, checksum.
	if len(raw) < 5 {
		return false, RecordError{Line: line, Reason: "record too short"}
	}
	count := int(raw[0])
	if len(raw) != count+5 {
		return false, RecordError{Line: line, Reason: fmt.Sprintf("byte count %d doesn't match record length", count)}
	}

	var sum uint8
	for _, v := range raw[:len(raw)-1] {
		sum += v
	}
	want := uint8(-sum)
	if got := raw[len(raw)-1]; got != want {
		return false, ChecksumError{Line: line, Got: got, Want: want}
	}

	addr := (uint16(raw[1]) << 8) | uint16(raw[2])
	switch typ := raw[3]; typ {
	case kRECORD_DATA:
		for j := 0; j < count; j++ {
			a := addr + uint16(j)
			if _, ok := i.data[a]; !ok {
				i.loaded++
			}
			i.data[a] = raw[4+j]
			if a > i.maxAddr {
				i.maxAddr = a
			}
		}
		return false, nil
	case kRECORD_EOF:
		return true, nil
	default:
		return false, RecordError{Line: line, Reason: fmt.Sprintf("unsupported record type %.2X", typ)}
	}
}

// Read returns the byte at addr, 0x00 for gaps.
func (i *Image) Read(addr uint16) uint8 {
	return i.data[addr]
}

// MaxAddr returns the highest address any data record wrote.
func (i *Image) MaxAddr() uint16 {
	return i.maxAddr
}

// Loaded returns how many distinct addresses were written.
func (i *Image) Loaded() int {
	return i.loaded
}

// Bytes returns the image flattened from address 0 through MaxAddr
// with gaps filled by 0x00. An empty image returns nil.
func (i *Image) Bytes() []uint8 {
	if i.loaded == 0 {
		return nil
	}
	out := make([]uint8, int(i.maxAddr)+1)
	for a, v := range i.data {
		out[a] = v
	}
	return out
}

// WriteMem writes the flattened image in the VHDL memory init format:
// one uppercase hex byte per line.
func (i *Image) WriteMem(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, v := range i.Bytes() {
		if _, err := fmt.Fprintf(bw, "%02X\n", v); err != nil {
			return err
		}
	}
	return bw.Flush()
}
