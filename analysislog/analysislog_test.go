package analysislog_test

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/retrocompute/fat8d88/analysislog"
	"github.com/stretchr/testify/require"
)

func TestReport_SectionAndAppend(t *testing.T) {
	var buf bytes.Buffer
	report := analysislog.New(&buf)

	report.Section("Disk Information")
	report.Appendf("Disk name/comment: %s", "HELLO")

	require.Equal(t, []string{"", "== Disk Information ==", "Disk name/comment: HELLO"}, report.Contents())
	require.Equal(t, "\n== Disk Information ==\nDisk name/comment: HELLO", report.String())
	require.Equal(t, "\n== Disk Information ==\nDisk name/comment: HELLO\n", buf.String())
}

func TestReport_AppendErrors_Empty(t *testing.T) {
	var buf bytes.Buffer
	report := analysislog.New(&buf)

	report.AppendErrors("Entry 1", nil)
	require.Equal(t, []string{"Entry 1: none"}, report.Contents())
}

func TestReport_AppendErrors_WithFaults(t *testing.T) {
	var buf bytes.Buffer
	report := analysislog.New(&buf)

	var errs *multierror.Error
	errs = multierror.Append(errs, errDuplicate, errMissingSector)

	report.AppendErrors("Entry 3", errs)
	require.Equal(t, []string{
		"Entry 3:",
		"  - duplicate filename",
		"  - missing sector",
	}, report.Contents())
}

type stringError string

func (e stringError) Error() string { return string(e) }

const (
	errDuplicate     = stringError("duplicate filename")
	errMissingSector = stringError("missing sector")
)
