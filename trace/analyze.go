package trace

// Instruction is one traced instruction: the T1 fetch start paired
// with the opcode byte seen during the following T3.
type Instruction struct {
	Num         int     // 1 based instruction number in the trace.
	FetchLine   int     // Capture line of the T1 SYNC edge.
	FetchTime   float64 // Timestamp of the T1 SYNC edge in seconds.
	Opcode      uint8   // Byte on the data bus during T3.
	OpcodeKnown bool    // False if the T3 data bus had unresolved bits.
}

// Execution is the result of tracing instruction flow through a capture.
type Execution struct {
	Acked        bool    // Whether a T1I (interrupt acknowledge) was seen.
	AckLine      int     // Capture line of the T1I SYNC edge.
	AckTime      float64 // Timestamp of the T1I SYNC edge in seconds.
	Instructions []Instruction
}

// ExecOptions adjusts instruction tracing.
type ExecOptions struct {
	// MaxInstructions caps the trace length. Defaults to 30.
	MaxInstructions int

	// AfterInterrupt starts the trace only once a T1I state is seen,
	// which is how interrupt service entry is verified. When false the
	// trace starts at the first fetch in the capture.
	AfterInterrupt bool
}

// TraceExecution walks SYNC rising edges pairing each T1 fetch start
// with the opcode byte during the following T3. Fetches that never
// reach T3 inside the capture (truncated at either end) are dropped.
func TraceExecution(c *Capture, opt *ExecOptions) *Execution {
	if opt == nil {
		opt = &ExecOptions{}
	}
	max := opt.MaxInstructions
	if max == 0 {
		max = 30
	}

	exec := &Execution{}
	tracing := !opt.AfterInterrupt

	var prevSync Level = UNKNOWN
	haveFetch := false
	var fetchLine int
	var fetchTime float64
	haveOpcode := false
	var opcode uint8
	var opcodeKnown bool

	flush := func() {
		if haveFetch && haveOpcode {
			exec.Instructions = append(exec.Instructions, Instruction{
				Num:         len(exec.Instructions) + 1,
				FetchLine:   fetchLine,
				FetchTime:   fetchTime,
				Opcode:      opcode,
				OpcodeKnown: opcodeKnown,
			})
		}
		haveFetch = false
		haveOpcode = false
	}

	for _, s := range c.Samples {
		if s.Sync == HIGH && prevSync == LOW {
			switch s.State {
			case T1I:
				if !exec.Acked {
					exec.Acked = true
					exec.AckLine = s.Line
					exec.AckTime = s.Time
				}
				tracing = true
			case T1:
				if tracing {
					flush()
					haveFetch = true
					fetchLine = s.Line
					fetchTime = s.Time
				}
			case T3:
				if tracing && haveFetch {
					haveOpcode = true
					opcode = s.Data
					opcodeKnown = s.DataKnown
				}
			}
			if len(exec.Instructions) >= max {
				return exec
			}
		}
		prevSync = s.Sync
	}
	flush()
	if len(exec.Instructions) > max {
		exec.Instructions = exec.Instructions[:max]
	}
	return exec
}

// GlitchKind distinguishes the failure modes the glitch scan detects.
type GlitchKind int

const (
	GLITCH_BUS_CONTENTION GlitchKind = iota // Multiple data values within one state.
	GLITCH_DATA_ENABLE                      // CP_D_EN moved without a state transition.
)

// DataValue is one distinct data bus value observed during a
// contended state and how many samples carried it.
type DataValue struct {
	Value uint8
	Count int
}

// Glitch is one detected anomaly.
type Glitch struct {
	Kind      GlitchKind
	Time      float64     // Timestamp in seconds where the glitch was flagged.
	State     State       // State active when it was flagged.
	StartLine int         // First capture line of the affected window.
	EndLine   int         // Last capture line of the affected window.
	Values    []DataValue // Distinct bus values, first seen order (bus contention only).
}

// FindGlitches scans a capture for bus contention (the data bus
// taking more than one value within a single machine state) and for
// CP_D_EN transitions that happen mid state. The window bounds are in
// microseconds; a non positive endUs disables the upper bound.
func FindGlitches(c *Capture, startUs, endUs float64) []Glitch {
	var out []Glitch

	var prevSync Level = UNKNOWN
	var prevState State
	var prevDataEn Level = UNKNOWN
	stateStart := 0
	var values []DataValue

	record := func(v uint8) {
		for i := range values {
			if values[i].Value == v {
				values[i].Count++
				return
			}
		}
		values = append(values, DataValue{Value: v, Count: 1})
	}

	for _, s := range c.Samples {
		us := s.TimeUs()
		// Samples outside the window are dropped entirely. An edge
		// straddling the window start is not an edge.
		if us < startUs {
			continue
		}
		if endUs > 0 && us > endUs {
			break
		}

		if s.Sync == HIGH && prevSync == LOW {
			if len(values) > 1 {
				out = append(out, Glitch{
					Kind:      GLITCH_BUS_CONTENTION,
					Time:      s.Time,
					State:     prevState,
					StartLine: stateStart,
					EndLine:   s.Line,
					Values:    values,
				})
			}
			stateStart = s.Line
			values = nil
			prevState = s.State
		}
		if s.DataKnown {
			record(s.Data)
		}
		if s.DataEn != prevDataEn && prevDataEn != UNKNOWN && s.DataEn != UNKNOWN && s.Sync == prevSync && s.Sync != UNKNOWN {
			out = append(out, Glitch{
				Kind:      GLITCH_DATA_ENABLE,
				Time:      s.Time,
				State:     s.State,
				StartLine: s.Line,
				EndLine:   s.Line,
			})
		}

		prevSync = s.Sync
		prevDataEn = s.DataEn
	}
	return out
}

// Edge is an INT rising edge with the machine state at that moment,
// used to verify acknowledges happen right before a fetch cycle and
// not during one.
type Edge struct {
	Line  int
	Time  float64
	State State
}

// IntEdges returns every 0 to 1 transition of the INT line.
func IntEdges(c *Capture) []Edge {
	var out []Edge
	var prev Level = UNKNOWN
	for _, s := range c.Samples {
		if s.Int == HIGH && prev == LOW {
			out = append(out, Edge{Line: s.Line, Time: s.Time, State: s.State})
		}
		prev = s.Int
	}
	return out
}

// StateStep is one machine state entry (a SYNC rising edge) with the
// data bus at that instant.
type StateStep struct {
	Line      int
	Time      float64
	State     State
	Data      uint8
	DataKnown bool
	Cycle     Cycle // Valid only when State is T2.
}

// TraceStates lists every state transition inside the given window
// (microseconds, non positive endUs means unbounded), decoding the
// cycle type from the bus during T2.
func TraceStates(c *Capture, startUs, endUs float64) []StateStep {
	var out []StateStep
	var prevSync Level = UNKNOWN
	for _, s := range c.Samples {
		us := s.TimeUs()
		if us < startUs {
			prevSync = s.Sync
			continue
		}
		if endUs > 0 && us > endUs {
			break
		}
		if s.Sync == HIGH && prevSync == LOW {
			step := StateStep{
				Line:      s.Line,
				Time:      s.Time,
				State:     s.State,
				Data:      s.Data,
				DataKnown: s.DataKnown,
			}
			if s.State == T2 && s.DataKnown {
				step.Cycle = CycleFromData(s.Data)
			}
			out = append(out, step)
		}
		prevSync = s.Sync
	}
	return out
}
