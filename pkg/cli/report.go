package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/emlget/pkg/domain/model"
)

var (
	headColor = color.New(color.FgCyan, color.Bold)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

// printRunReport writes a human readable summary of the stages that ran
func printRunReport(w io.Writer, report *model.RunReport) {
	if w == nil {
		w = os.Stdout
	}

	if d := report.Download; d != nil {
		headColor.Fprintf(w, "Download  ")
		if len(d.Segments) == 0 {
			warnColor.Fprintf(w, "no segments found for %s\n", d.Dataset.BaseURL)
		} else {
			okColor.Fprintf(w, "%d segment(s), %d bytes -> %s\n", len(d.Segments), d.TotalSize(), d.DestinationDir)
		}
	}

	if e := report.Extract; e != nil {
		headColor.Fprintf(w, "Extract   ")
		okColor.Fprintf(w, "%d archive(s), %d file(s), %d archive(s) deleted\n", len(e.Archives), e.Files, len(report.Deleted))
	}

	if m := report.Merge; m != nil {
		headColor.Fprintf(w, "Merge     ")
		okColor.Fprintf(w, "%d segment dir(s), %d sub-collection(s), %d file(s) moved", len(m.SegmentDirs), len(m.SubCollections), m.Moved)
		if m.Overwritten > 0 || m.Skipped > 0 {
			fmt.Fprintf(w, " (%d overwritten, %d skipped)", m.Overwritten, m.Skipped)
		}
		fmt.Fprintln(w)

		for _, dir := range m.Warnings {
			warnColor.Fprintf(w, "  could not delete %s because it is not empty\n", dir)
		}
	}
}
