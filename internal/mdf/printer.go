package mdf

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Printer is a thread-safe line printer, mirroring mdf::Printer. It exists
// alongside structured slog logging (see engine.go) for the handful of
// plain diagnostic lines the original carries verbatim — "Starting
// threads...", "Joining threads...", "Finished." — which read oddly as
// structured log records but are fine as direct console chatter.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter wraps w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Println writes args followed by a newline, atomically with respect to
// other Print/Println calls on the same Printer.
func (p *Printer) Println(args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, args...)
}

// Print writes args with no trailing newline.
func (p *Printer) Print(args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, args...)
}

// Stdout and Stderr are package-level printers mirroring the original's
// global mdf::out / mdf::err.
var (
	Stdout = NewPrinter(os.Stdout)
	Stderr = NewPrinter(os.Stderr)
)
