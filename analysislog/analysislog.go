// Package analysislog builds the multi-section analysis log printed
// for each D88 disk and also written alongside its extracted files.
// It mirrors the reference tool's start_log()/append()/contents()
// closures: every line is both emitted immediately and kept so the
// full report can be replayed to a second writer afterward.
package analysislog

import (
	"fmt"
	"log"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Report accumulates the lines of one disk's analysis log. The zero
// value is not usable; construct one with New.
type Report struct {
	lines  []string
	logger *log.Logger
}

// New returns a Report that writes each appended line to w as it
// arrives, with no timestamp or prefix — the analysis log is a plain
// text report, not a service log.
func New(w interface {
	Write([]byte) (int, error)
}) *Report {
	return &Report{logger: log.New(w, "", 0)}
}

// Append adds one line to the report and writes it through immediately.
func (r *Report) Append(line string) {
	r.lines = append(r.lines, line)
	r.logger.Print(line)
}

// Appendf formats and appends one line.
func (r *Report) Appendf(format string, args ...interface{}) {
	r.Append(fmt.Sprintf(format, args...))
}

// Section starts a new report section with a blank line and a
// "== title ==" banner, matching log_disk_information's "\n== Disk
// Information ==" style.
func (r *Report) Section(title string) {
	r.Append("")
	r.Appendf("== %s ==", title)
}

// Contents returns every line appended so far, in order.
func (r *Report) Contents() []string {
	return append([]string(nil), r.lines...)
}

// String joins the full report with newlines, suitable for writing to
// the sibling "_fat8_d88_output.txt" file.
func (r *Report) String() string {
	return strings.Join(r.lines, "\n")
}

// AppendErrors reports a directory entry (or disk-level) fault set
// under label, one line per error, or "none" when errs is empty. Most
// fault kinds are per-entry and recoverable: the log always records
// them, but extraction still proceeds for every other entry.
func (r *Report) AppendErrors(label string, errs *multierror.Error) {
	if errs == nil || len(errs.Errors) == 0 {
		r.Appendf("%s: none", label)
		return
	}
	r.Appendf("%s:", label)
	for _, err := range errs.Errors {
		r.Appendf("  - %s", err.Error())
	}
}
