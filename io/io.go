// Package io defines the basic interfaces for working
// with an 8008 family I/O port. The 8008 addresses 8 input
// ports (INP 0-7) and 24 output ports (OUT 8-31). Devices
// implement these interfaces and the host simulation calls
// them when the corresponding port instruction executes.
// Input is sampled at call time so implementors are free to
// block (a console read does) or answer immediately (a status
// register does).
package io

// PortIn8 defines an 8 bit input port.
type PortIn8 interface {
	// Input returns the value currently presented on the port.
	Input() uint8
}

// PortOut8 defines an 8 bit output port.
type PortOut8 interface {
	// Output latches the given value onto the port.
	Output(val uint8)
}

// PortIn1 defines a single line input (switches, sense lines).
type PortIn1 interface {
	// Input returns the current line state.
	Input() bool
}
