// Package render drives the real terminal for a running CPU: it paints
// the 80x25 display buffer between steps and implements a single-step
// "paused..." prompt. The terminal is put into raw mode for the duration
// of a run so single-keystroke stepping and the MMIO display don't fight
// the line-buffered TTY driver.
package render

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/mrosen/rv32edu/pkg/vm"
)

// Terminal wraps the controlling TTY in raw mode and paints the display.
type Terminal struct {
	out      io.Writer
	in       *bufio.Reader
	fd       int
	oldState *term.State
	raw      bool
}

// Open puts stdin into raw mode (if it is a real terminal) and returns a
// Terminal ready to paint. Callers must call Close to restore the
// terminal, typically via defer.
func Open() (*Terminal, error) {
	t := &Terminal{out: os.Stdout, in: bufio.NewReader(os.Stdin), fd: int(os.Stdin.Fd())}
	if !term.IsTerminal(t.fd) {
		return t, nil
	}
	old, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, fmt.Errorf("render: enter raw mode: %w", err)
	}
	t.oldState = old
	t.raw = true
	return t, nil
}

// Close restores the terminal's original mode.
func (t *Terminal) Close() error {
	if !t.raw {
		return nil
	}
	return term.Restore(t.fd, t.oldState)
}

// Paint clears the screen and redraws the display's 80x25 character grid
// at the cursor position the display's control registers report.
func (t *Terminal) Paint(d *vm.Display) {
	fmt.Fprint(t.out, ansi.EraseEntireScreen)
	fmt.Fprint(t.out, ansi.CursorPosition(1, 1))
	for y := 0; y < vm.DisplayRows; y++ {
		for x := 0; x < vm.DisplayCols; x++ {
			c := d.Cell(x, y)
			if c == 0 {
				c = ' '
			}
			fmt.Fprintf(t.out, "%c", c)
		}
		fmt.Fprint(t.out, "\r\n")
	}
	cx, cy := d.Cursor()
	fmt.Fprint(t.out, ansi.CursorPosition(cy+1, cx+1))
}

// Pause prints "paused..." and blocks for one keystroke, implementing the
// step-mode debugger prompt.
func (t *Terminal) Pause() error {
	fmt.Fprint(t.out, "paused...")
	_, err := t.in.ReadByte()
	fmt.Fprint(t.out, "\r\n")
	return err
}
