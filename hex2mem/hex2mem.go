// hex2mem converts an Intel HEX program image into the memory init
// format the VHDL ROM model reads: one hex byte per line, gaps
// filled with 00. Records are checksum verified and extended address
// records rejected (the 8008 address space is 16K).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jmchacon/8008/hexfile"
	log "github.com/sirupsen/logrus"
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 2 {
		log.Fatalf("Invalid command: %s <input.hex> <output.mem>", os.Args[0])
	}
	in := flag.Args()[0]
	out := flag.Args()[1]

	img, err := hexfile.ParseFile(in)
	if err != nil {
		log.Fatalf("Can't parse %s - %v", in, err)
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("Can't create %s - %v", out, err)
	}
	if err := img.WriteMem(f); err != nil {
		log.Fatalf("Can't write %s - %v", out, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Can't close %s - %v", out, err)
	}

	fmt.Printf("Converted %s -> %s\n", in, out)
	fmt.Printf("  Loaded %d bytes\n", img.Loaded())
	fmt.Printf("  Address range: 0x%.4X - 0x%.4X\n", 0, img.MaxAddr())
}
