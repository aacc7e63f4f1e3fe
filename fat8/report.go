package fat8

import (
	"fmt"
	"strings"

	dskerrors "github.com/retrocompute/fat8d88/errors"
	"github.com/hashicorp/go-multierror"
)

// reconstructionFaultKeys are the entry.Errors keys raised only while
// walking cluster data in ReconstructFileData; every other key is
// raised earlier, during directory parsing or chain analysis.
var reconstructionFaultKeys = map[string]bool{
	"Missing sector": true,
}

// directoryFaultKeys are raised by ParseMetadataTrack itself: they
// describe the directory entry, not its FAT chain.
var directoryFaultKeys = map[string]bool{
	"Duplicate filename": true,
}

// AggregateErrors collects every directory entry's recorded faults
// into one *multierror.Error, classifying each as a DirectoryFault,
// FATFault, or ReconstructionFault so the analysis log's per-disk
// summary can report faults without aborting the rest of the disk —
// entries with faults are simply skipped by ReconstructFileData,
// never fatal to their neighbors.
func AggregateErrors(meta *MetadataTrackInfo) *multierror.Error {
	var result *multierror.Error
	for _, entry := range meta.DirectoryEntries {
		for message := range entry.Errors {
			result = multierror.Append(result, entryFault(entry, message))
		}
	}
	return result
}

func entryFault(entry *Entry, message string) error {
	label := fmt.Sprintf("entry %d (%s)", entry.Idx, strings.TrimSpace(entry.Name+"."+entry.Ext))
	switch {
	case reconstructionFaultKeys[message]:
		return dskerrors.ErrReconstructionFault.WithMessage(label + ": " + message)
	case directoryFaultKeys[message]:
		return dskerrors.ErrDirectoryFault.WithMessage(label + ": " + message)
	default:
		return dskerrors.ErrFATFault.WithMessage(label + ": " + message)
	}
}
