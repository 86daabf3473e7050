// intedges lists every INT rising edge in a logic analyzer capture
// together with the machine state at that moment. Interrupts should
// land right before a fetch cycle, so an edge reported during T3-T5
// points at a timing bug in the interrupt latch.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jmchacon/8008/trace"
	log "github.com/sirupsen/logrus"
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("Invalid command: %s <capture.csv>", os.Args[0])
	}
	fn := flag.Args()[0]

	c, err := trace.ParseCaptureFile(fn)
	if err != nil {
		log.Fatalf("Can't parse %s - %v", fn, err)
	}

	edges := trace.IntEdges(c)
	fmt.Printf("Found %d INT rising edges:\n", len(edges))
	for i, e := range edges {
		fmt.Printf("  Edge %d: Line %5d @ %8.2fus, State=%s\n", i+1, e.Line, e.Time*1e6, e.State)
	}
}
