package simulator

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/sibexico/HexPager/paging"
)

// Reporter prints one human-readable progress line per reference.
// It is a paging.EventSink.
type Reporter struct {
	out      io.Writer
	position int // 1-based position of the reference in the input

	hit     *color.Color
	fault   *color.Color
	evict   *color.Color
	invalid *color.Color
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer, useColor bool) *Reporter {
	r := &Reporter{
		out:     out,
		hit:     color.New(color.FgGreen),
		fault:   color.New(color.FgYellow),
		evict:   color.New(color.FgRed),
		invalid: color.New(color.FgMagenta, color.Bold),
	}
	if !useColor {
		for _, c := range []*color.Color{r.hit, r.fault, r.evict, r.invalid} {
			c.DisableColor()
		}
	}
	return r
}

// BeginReference sets the input position printed on the next line
func (r *Reporter) BeginReference(position int) {
	r.position = position
}

// HandleEvent prints the parts of a progress line as the engine emits them
func (r *Reporter) HandleEvent(ev paging.Event) {
	switch ev.Kind {
	case paging.EventHit:
		fmt.Fprintf(r.out, "Reference %2d: page %d --> %s\n",
			r.position, ev.Page, r.hit.Sprintf("HIT (in frame %d)", ev.Frame))
	case paging.EventFault:
		fmt.Fprintf(r.out, "Reference %2d: page %d --> %s",
			r.position, ev.Page, r.fault.Sprint("PAGE FAULT -> "))
	case paging.EventLoaded:
		fmt.Fprintf(r.out, "loaded into frame %d (free frames now %d)\n", ev.Frame, ev.FreeFrames)
	case paging.EventEvictedAndLoaded:
		fmt.Fprintf(r.out, "%s -> loaded page %d into the same frame\n",
			r.evict.Sprintf("evicted page %d (frame %d)", ev.VictimPage, ev.Frame), ev.Page)
	}
}

// InvalidReference reports a reference rejected by the engine
func (r *Reporter) InvalidReference(page, numPages int, skipped bool) {
	action := "aborting"
	if skipped {
		action = "skipped"
	}
	fmt.Fprintf(r.out, "Reference %2d: page %d --> %s\n",
		r.position, page, r.invalid.Sprintf("INVALID (must be in [0,%d]), %s", numPages-1, action))
}

// PrintStart prints the run banner
func (r *Reporter) PrintStart() {
	fmt.Fprintf(r.out, "\n--- Starting simulation ---\n")
}

// PrintSummary prints the final statistics and frame table
func (r *Reporter) PrintSummary(stats paging.Stats, swapLogPath string) {
	fmt.Fprintf(r.out, "\n--- Statistics ---\n")
	fmt.Fprintf(r.out, "References: %d\n", stats.TotalRefs)
	fmt.Fprintf(r.out, "Page faults: %d\n", stats.Faults)
	if swapLogPath != "" {
		fmt.Fprintf(r.out, "Swaps (simulated) to disk: %d (log in '%s')\n", stats.Swaps, swapLogPath)
	} else {
		fmt.Fprintf(r.out, "Swaps (simulated) to disk: %d\n", stats.Swaps)
	}
	fmt.Fprintf(r.out, "Final frame state (frame: page):\n")
	for f, page := range stats.FrameOccupancy {
		if page == paging.NoPage {
			fmt.Fprintf(r.out, "  frame %2d: -\n", f)
			continue
		}
		fmt.Fprintf(r.out, "  frame %2d: %d\n", f, page)
	}
	fmt.Fprintf(r.out, "\nSimulation finished.\n")
}
