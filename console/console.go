// Package console implements the terminal side of an 8008
// emulation: a character device bridging the simulated CPU's
// I/O port instructions to the process's controlling terminal.
// It owns the terminal raw mode lifecycle and provides blocking
// and non-blocking single byte reads, a zero timeout readiness
// poll and an unbuffered byte write.
//
// The blocking read will suspend the caller until a byte arrives
// which pauses whatever simulation loop invoked it. That is
// intentional and matches the hardware it stands in for (a
// serial console the program busy waits on).
package console

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const (
	// kEOF_DELAY is how long to wait before retrying a read that hit
	// end of stream. Stdin hitting EOF usually means it was redirected
	// from something that drained, so spinning would burn a core.
	kEOF_DELAY = 100 * time.Millisecond
)

// ReadError represents an unrecoverable failure of the underlying read.
type ReadError struct {
	Err error
}

// Error implements the interface for error types.
func (e ReadError) Error() string {
	return fmt.Sprintf("console read failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ReadError) Unwrap() error {
	return e.Err
}

// EOFExhausted represents a blocking read that hit end of stream more
// times than the configured retry cap allows.
type EOFExhausted struct {
	Retries int
}

// Error implements the interface for error types.
func (e EOFExhausted) Error() string {
	return fmt.Sprintf("console read still at EOF after %d retries", e.Retries)
}

// Console is the terminal bridge. It is not safe for concurrent use,
// matching the single threaded simulation loop that drives it.
type Console struct {
	in       *os.File            // Input stream (normally os.Stdin).
	out      *os.File            // Output stream (normally os.Stdout).
	saved    *term.State         // Terminal state captured before entering raw mode.
	raw      bool                // Whether raw mode is currently applied.
	isTerm   bool                // Whether in is attached to a terminal at all.
	eofDelay time.Duration       // Delay between EOF retries on the blocking read.
	maxEOF   int                 // EOF retry cap for the blocking read. 0 means retry forever.
	sleep    func(time.Duration) // Sleep implementation, replaceable in tests.

	// Read and readiness poll implementations, replaceable in tests.
	readFn func([]byte) (int, error)
	pollFn func() (bool, error)
}

type ConsoleDef struct {
	// In is the input stream. Defaults to os.Stdin.
	In *os.File

	// Out is the output stream. Defaults to os.Stdout.
	Out *os.File

	// EOFDelay overrides the delay between end of stream retries in the
	// blocking read. Defaults to 100ms.
	EOFDelay time.Duration

	// MaxEOFRetries bounds how many end of stream retries the blocking
	// read performs before giving up with EOFExhausted. The default 0
	// retries forever, which is what a console attached to a live
	// terminal wants.
	MaxEOFRetries int

	// Sleep overrides the sleep used between EOF retries so tests can
	// run without real delays. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Init returns a Console for the given streams with the terminal
// placed into raw (cbreak) mode. The original terminal configuration
// is captured exactly once, before any mutation, and held until
// Restore or Close applies it back. If the input stream isn't a
// terminal (a pipe in tests, redirected stdin) no mode change happens
// and reads simply consume the stream.
func Init(def *ConsoleDef) (*Console, error) {
	if def == nil {
		def = &ConsoleDef{}
	}
	c := &Console{
		in:       def.In,
		out:      def.Out,
		eofDelay: def.EOFDelay,
		maxEOF:   def.MaxEOFRetries,
		sleep:    def.Sleep,
	}
	if c.in == nil {
		c.in = os.Stdin
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.eofDelay == 0 {
		c.eofDelay = kEOF_DELAY
	}
	if c.sleep == nil {
		c.sleep = time.Sleep
	}
	c.readFn = func(b []byte) (int, error) {
		return c.in.Read(b)
	}
	c.pollFn = func() (bool, error) {
		return pollIn(int(c.in.Fd()))
	}
	c.isTerm = term.IsTerminal(int(c.in.Fd()))
	if c.isTerm {
		if err := c.makeRaw(); err != nil {
			return nil, fmt.Errorf("can't enter raw mode: %v", err)
		}
	}
	return c, nil
}

// makeRaw captures the current terminal state and then applies cbreak
// mode: no echo, no line buffering, reads complete on every byte.
// Unlike a full raw mode the terminal keeps output processing and
// signal generation so ^C still works while debugging monitor programs.
func (c *Console) makeRaw() error {
	if c.raw {
		return nil
	}
	fd := int(c.in.Fd())
	saved, err := term.GetState(fd)
	if err != nil {
		return err
	}
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return err
	}
	termios.Lflag &^= unix.ECHO | unix.ICANON
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, termios); err != nil {
		return err
	}
	c.saved = saved
	c.raw = true
	return nil
}

// IsTerminal reports whether the input stream is attached to a
// terminal. When it isn't (redirected stdin) no raw mode handling
// happens and reads just consume the stream.
func (c *Console) IsTerminal() bool {
	return c.isTerm
}

// Restore puts the terminal back into the configuration captured at
// Init. Calling it when raw mode was never applied (or was already
// restored) is a no-op, so it is safe to defer unconditionally and
// also call on explicit shutdown paths.
func (c *Console) Restore() error {
	if !c.raw {
		return nil
	}
	c.raw = false
	if err := term.Restore(int(c.in.Fd()), c.saved); err != nil {
		return fmt.Errorf("can't restore terminal state: %v", err)
	}
	return nil
}

// Close restores the terminal. The streams themselves are not closed
// since the Console never opened them.
func (c *Console) Close() error {
	return c.Restore()
}

// WriteByte emits a single byte on the output stream. os.File writes
// are unbuffered so the byte is delivered immediately without any
// flush from the caller.
func (c *Console) WriteByte(b byte) error {
	n, err := c.out.Write([]byte{b})
	if err != nil {
		return fmt.Errorf("console write failed: %v", err)
	}
	if n != 1 {
		return fmt.Errorf("console write wrote %d bytes, want 1", n)
	}
	return nil
}

// InputReady reports whether at least one byte is currently readable
// on the input stream without consuming it. It never blocks: the
// underlying poll uses a zero timeout and EINTR is retried.
func (c *Console) InputReady() (bool, error) {
	return c.pollFn()
}

// ReadByte consumes exactly one byte from the input stream, blocking
// until one arrives. End of stream is treated as transient (stdin may
// be a drained redirect that a terminal replaces later) and retried
// after the configured delay, up to the configured cap. Interrupted
// reads are retried immediately. Any other failure surfaces as a
// ReadError rather than a value, so a legitimate NUL byte is never
// conflated with an error.
func (c *Console) ReadByte() (byte, error) {
	var buf [1]byte
	eofs := 0
	for {
		n, err := c.readFn(buf[:])
		switch {
		case n == 1:
			return buf[0], nil
		case err == nil || isEOF(err):
			eofs++
			if c.maxEOF > 0 && eofs >= c.maxEOF {
				return 0, EOFExhausted{Retries: eofs}
			}
			c.sleep(c.eofDelay)
		case isEINTR(err):
			// Signal delivery woke the read. Resume waiting.
		default:
			return 0, ReadError{Err: err}
		}
	}
}

// TryReadByte consumes and returns the next byte if the readiness
// poll reports one available. The boolean result is false when no
// data was pending, distinguishing "nothing typed" from a real byte.
func (c *Console) TryReadByte() (uint8, bool, error) {
	ready, err := c.InputReady()
	if err != nil {
		return 0, false, err
	}
	if !ready {
		return 0, false, nil
	}
	var buf [1]byte
	n, err := c.readFn(buf[:])
	if err != nil && !isEOF(err) {
		return 0, false, ReadError{Err: err}
	}
	if n != 1 {
		// Raced with an EOF or another consumer. Report no data.
		return 0, false, nil
	}
	return buf[0], true, nil
}
