// conscheck exercises the console bridge against the real terminal
// the way the simulation uses it: raw mode in, poll for input, read
// a byte, echo it back out. Useful for verifying a terminal behaves
// before blaming the VHDL when a monitor program sees no input.
//
// In the default polling mode it spins on the status check like the
// monitor ROM does. With --block it parks in the blocking read
// instead. Either way ESC or Ctrl-D exits and restores the terminal.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/jmchacon/8008/console"
	log "github.com/sirupsen/logrus"
)

var (
	block   = flag.Bool("block", false, "Use the blocking read instead of poll and read")
	verbose = flag.Bool("verbose", false, "Log every byte with its hex value")
)

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	c, err := console.Init(&console.ConsoleDef{})
	if err != nil {
		log.Fatalf("Can't init console: %v", err)
	}
	defer c.Close()

	if !c.IsTerminal() {
		log.Warn("stdin is not a terminal, raw mode not applied")
	}

	fmt.Print("console check - type characters, ESC or Ctrl-D to exit\r\n")
	for {
		var b uint8
		if *block {
			var err error
			b, err = c.ReadByte()
			if err != nil {
				c.Restore()
				log.Fatalf("Read failed: %v", err)
			}
		} else {
			var ok bool
			b, ok, err = c.TryReadByte()
			if err != nil {
				c.Restore()
				log.Fatalf("Read failed: %v", err)
			}
			if !ok {
				// Idle like the simulation loop does between status polls.
				time.Sleep(time.Millisecond)
				continue
			}
		}
		if b == 0x1B || b == 0x04 {
			break
		}
		log.Debugf("byte 0x%.2X", b)
		if err := c.WriteByte(b); err != nil {
			c.Restore()
			log.Fatalf("Write failed: %v", err)
		}
		if b == '\r' {
			c.WriteByte('\n')
		}
	}
	fmt.Print("\r\n")
}
