// Package trace decodes logic analyzer captures of a running 8008
// board and provides the analyses used to debug it: instruction
// tracing after an interrupt acknowledge, bus contention detection
// and interrupt edge timing. Captures are the CSV exports the
// analyzer produces: a few comment lines, a header line starting
// with Time, then one row per sample with single bit columns for the
// data bus (D0-D7), SYNC, INT, the state lines (S0-S2) and the data
// bus enable (CP_D_EN). Bits the analyzer couldn't resolve export as
// '?' and are carried through as UNKNOWN rather than guessed.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Level is the sampled value of a single signal line.
type Level int

const (
	LOW Level = iota
	HIGH
	UNKNOWN
)

// ParseError represents a capture file the parser can't decode.
type ParseError struct {
	Line   int
	Reason string
}

// Error implements the interface for error types.
func (e ParseError) Error() string {
	return fmt.Sprintf("capture line %d: %s", e.Line, e.Reason)
}

// Sample is one analyzer sample row.
type Sample struct {
	Line      int     // 1 based line number in the capture file.
	Time      float64 // Capture timestamp in seconds.
	Data      uint8   // Data bus value assembled from D7..D0.
	DataKnown bool    // False if any data bit sampled as '?'.
	Sync      Level   // SYNC line.
	Int       Level   // INT line.
	DataEn    Level   // CP_D_EN line (UNKNOWN if the capture lacks the column).
	State     State   // Decoded from S2 S1 S0.
}

// TimeUs returns the sample timestamp in microseconds, the unit the
// analyses and the board's timing budget are expressed in.
func (s Sample) TimeUs() float64 {
	return s.Time * 1e6
}

// Capture is a fully parsed analyzer export.
type Capture struct {
	Samples []Sample
}

// columns maps trimmed header names to their field index.
type columns map[string]int

func (c columns) level(fields []string, name string) Level {
	idx, ok := c[name]
	if !ok || idx >= len(fields) {
		return UNKNOWN
	}
	switch strings.TrimSpace(fields[idx]) {
	case "0":
		return LOW
	case "1":
		return HIGH
	default:
		return UNKNOWN
	}
}

// ParseCapture reads an analyzer CSV export. Lines before the header
// (the first line starting with "Time") are ignored. A capture must
// at minimum carry Time(s), the data bus and the state lines; INT and
// CP_D_EN are optional since not every capture probes them.
func ParseCapture(r io.Reader) (*Capture, error) {
	scanner := bufio.NewScanner(r)
	// Analyzer exports can have long header comments.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	var cols columns
	for scanner.Scan() {
		line++
		if strings.HasPrefix(scanner.Text(), "Time") {
			cols = make(columns)
			for i, name := range strings.Split(scanner.Text(), ",") {
				cols[strings.TrimSpace(name)] = i
			}
			break
		}
	}
	if cols == nil {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ParseError{Line: line, Reason: "no Time header line found"}
	}
	timeIdx, ok := cols["Time(s)"]
	if !ok {
		return nil, ParseError{Line: line, Reason: "header has no Time(s) column"}
	}

	out := &Capture{}
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if timeIdx >= len(fields) {
			continue
		}
		ts, err := strconv.ParseFloat(strings.TrimSpace(fields[timeIdx]), 64)
		if err != nil {
			return nil, ParseError{Line: line, Reason: fmt.Sprintf("bad timestamp %q", fields[timeIdx])}
		}

		s := Sample{
			Line: line,
			Time: ts,
			Sync: cols.level(fields, "SYNC"),
			Int:  cols.level(fields, "INT"),
		}
		s.DataEn = cols.level(fields, "CP_D_EN")

		s.DataKnown = true
		for bit := 7; bit >= 0; bit-- {
			switch cols.level(fields, fmt.Sprintf("D%d", bit)) {
			case HIGH:
				s.Data |= 1 << uint(bit)
			case LOW:
			default:
				s.DataKnown = false
			}
		}
		s.State = DecodeState(
			cols.level(fields, "S2"),
			cols.level(fields, "S1"),
			cols.level(fields, "S0"),
		)
		out.Samples = append(out.Samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseCaptureFile is ParseCapture over the named file.
func ParseCaptureFile(path string) (*Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCapture(f)
}
