package console

import (
	"github.com/jmchacon/8008/io"
)

var (
	_ = io.PortIn8(&DataPort{})
	_ = io.PortIn8(&StatusPort{})
	_ = io.PortOut8(&OutPort{})
)

// Port assignments used by the monitor ROM. The 8008 board wires the
// console UART so that OUT 0 transmits, INP 2 reads the receive buffer
// and INP 3 reads receiver status.
const (
	PORT_OUT    = uint8(0) // OUT 0 - transmit one character.
	PORT_DATA   = uint8(2) // INP 2 - read one character (blocks until available).
	PORT_STATUS = uint8(3) // INP 3 - 1 if a character is waiting, else 0.
)

// DataPort adapts the blocking console read to an input port. A read
// error has no way onto the data bus so it reads as 0x00, the same
// ambiguity the hardware has. Callers that need to distinguish should
// use Console.ReadByte directly.
type DataPort struct {
	c *Console
}

// Input implements the interface for io.PortIn8. It blocks the
// simulation until a character arrives.
func (p *DataPort) Input() uint8 {
	b, err := p.c.ReadByte()
	if err != nil {
		return 0
	}
	return b
}

// StatusPort adapts the readiness poll to an input port: 1 when at
// least one character is readable, else 0. Always answers immediately.
type StatusPort struct {
	c *Console
}

// Input implements the interface for io.PortIn8.
func (p *StatusPort) Input() uint8 {
	ready, err := p.c.InputReady()
	if err != nil || !ready {
		return 0
	}
	return 1
}

// OutPort adapts the console write to an output port. Write failures
// are dropped since the bus has nowhere to report them, matching a
// real UART with no handshake lines connected.
type OutPort struct {
	c *Console
}

// Output implements the interface for io.PortOut8.
func (p *OutPort) Output(val uint8) {
	_ = p.c.WriteByte(val)
}

// Ports returns the three port devices bound to this console, ready
// to install in a simulation's port map.
func (c *Console) Ports() (*OutPort, *DataPort, *StatusPort) {
	return &OutPort{c: c}, &DataPort{c: c}, &StatusPort{c: c}
}
