// traceexec prints the instruction flow from a logic analyzer
// capture of the 8008 board: every T1 fetch paired with the opcode
// byte seen on the bus during T3. By default the trace starts at the
// first interrupt acknowledge (T1I) since its main use is verifying
// what actually executes after an interrupt.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jmchacon/8008/trace"
	log "github.com/sirupsen/logrus"
)

var (
	maxInstructions = flag.Int("max_instructions", 30, "Maximum number of instructions to trace")
	fromStart       = flag.Bool("from_start", false, "Trace from the start of the capture instead of waiting for an interrupt acknowledge")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("Invalid command: %s [--max_instructions=N] [--from_start] <capture.csv>", os.Args[0])
	}
	fn := flag.Args()[0]

	c, err := trace.ParseCaptureFile(fn)
	if err != nil {
		log.Fatalf("Can't parse %s - %v", fn, err)
	}

	exec := trace.TraceExecution(c, &trace.ExecOptions{
		MaxInstructions: *maxInstructions,
		AfterInterrupt:  !*fromStart,
	})

	fmt.Printf("Tracing execution in %s\n", fn)
	if exec.Acked {
		fmt.Printf("Line %d: T1I at %.1fus - INTERRUPT ACKNOWLEDGED\n", exec.AckLine, exec.AckTime*1e6)
	} else if !*fromStart {
		fmt.Println("No interrupt acknowledge in capture")
	}
	for _, in := range exec.Instructions {
		op := "0x??"
		if in.OpcodeKnown {
			op = fmt.Sprintf("0x%.2X", in.Opcode)
		}
		fmt.Printf("#%2d @%5d: Opcode=%s\n", in.Num, in.FetchLine, op)
	}
	fmt.Printf("Traced %d instructions\n", len(exec.Instructions))
}
