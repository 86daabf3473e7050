package trace

// State is the 8008 machine state broadcast on S2 S1 S0 each clock.
type State int

const (
	STATE_UNKNOWN State = iota // One or more state lines sampled as '?'.
	T1                         // Address low byte out.
	T2                         // Address high bits and cycle control out.
	T3                         // Instruction or data transfer.
	T4                         // Instruction execution.
	T5                         // Instruction execution.
	T1I                        // T1 variant entered on interrupt acknowledge.
	TWAIT                      // Waiting on READY.
	STOPPED                    // Halted.
)

// stateNames is indexed by State.
var stateNames = [...]string{
	"UNKNOWN",
	"T1",
	"T2",
	"T3",
	"T4",
	"T5",
	"T1I",
	"TWAIT",
	"STOPPED",
}

// String implements the interface for stringers.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// DecodeState maps the S2 S1 S0 lines to the machine state. Any
// unresolved line makes the whole state unknown since the encodings
// are dense enough that guessing a bit guesses the state.
//
// Encoding (S2 S1 S0): T1 010, T2 100, T3 001, T1I 110,
// STOPPED 011, T4 111, T5 101, TWAIT 000.
func DecodeState(s2, s1, s0 Level) State {
	if s2 == UNKNOWN || s1 == UNKNOWN || s0 == UNKNOWN {
		return STATE_UNKNOWN
	}
	bits := 0
	if s2 == HIGH {
		bits |= 4
	}
	if s1 == HIGH {
		bits |= 2
	}
	if s0 == HIGH {
		bits |= 1
	}
	switch bits {
	case 0b010:
		return T1
	case 0b100:
		return T2
	case 0b001:
		return T3
	case 0b110:
		return T1I
	case 0b011:
		return STOPPED
	case 0b111:
		return T4
	case 0b101:
		return T5
	default: // 0b000
		return TWAIT
	}
}

// Cycle is the machine cycle type the CPU announces on D7 D6 during T2.
type Cycle int

const (
	PCI Cycle = iota // Instruction fetch.
	PCR              // Data read.
	PCW              // Data write.
	PCC              // I/O command.
)

// cycleNames is indexed by Cycle.
var cycleNames = [...]string{"PCI", "PCR", "PCW", "PCC"}

// String implements the interface for stringers.
func (c Cycle) String() string {
	if c < 0 || int(c) >= len(cycleNames) {
		return "UNKNOWN"
	}
	return cycleNames[c]
}

// CycleFromData extracts the cycle type from a data bus value sampled
// during T2.
func CycleFromData(data uint8) Cycle {
	return Cycle(data >> 6)
}
