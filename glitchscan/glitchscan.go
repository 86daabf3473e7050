// glitchscan looks through a logic analyzer capture for bus
// contention (the data bus taking multiple values inside one machine
// state) and for the data bus enable moving without a state
// transition, both symptoms of two drivers fighting over the bus.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jmchacon/8008/trace"
	log "github.com/sirupsen/logrus"
)

var (
	startUs = flag.Float64("start_us", 0, "Only analyze samples at or after this time (microseconds)")
	endUs   = flag.Float64("end_us", 0, "Only analyze samples up to this time (microseconds, 0 means unbounded)")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatalf("Invalid command: %s [--start_us=N] [--end_us=N] <capture.csv>", os.Args[0])
	}
	fn := flag.Args()[0]

	c, err := trace.ParseCaptureFile(fn)
	if err != nil {
		log.Fatalf("Can't parse %s - %v", fn, err)
	}

	fmt.Printf("Analyzing %s\n", fn)
	if *startUs > 0 || *endUs > 0 {
		fmt.Printf("Time range: %.1fus - %.1fus\n", *startUs, *endUs)
	}

	glitches := trace.FindGlitches(c, *startUs, *endUs)
	for i, g := range glitches {
		switch g.Kind {
		case trace.GLITCH_BUS_CONTENTION:
			fmt.Printf("\n*** GLITCH #%d at ~%.1fus ***\n", i+1, g.Time*1e6)
			fmt.Printf("  State: %s\n", g.State)
			fmt.Println("  Multiple data values within same state:")
			for _, v := range g.Values {
				fmt.Printf("    0x%.2X (%.8b) - %d samples\n", v.Value, v.Value, v.Count)
			}
			fmt.Printf("  Line range: %d - %d\n", g.StartLine, g.EndLine)
		case trace.GLITCH_DATA_ENABLE:
			fmt.Printf("\n*** CP_D_EN GLITCH at %.1fus (line %d) ***\n", g.Time*1e6, g.StartLine)
			fmt.Printf("  State: %s\n", g.State)
		}
	}
	fmt.Printf("\nTotal glitches found: %d\n", len(glitches))
}
