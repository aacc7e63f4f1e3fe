package fat8

import (
	"bytes"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
)

// FormatRecord is one row of the known-FAT8-format table: a disk
// geometry plus the filesystem parameters that geometry alone cannot
// reveal (charset, obfuscation scheme, metadata track placement).
type FormatRecord struct {
	Name             string `csv:"name"`
	Tracks           uint   `csv:"tracks"`
	FATTracks        uint   `csv:"fat_tracks"`
	Sides            uint   `csv:"sides"`
	SectorsPerTrack  uint   `csv:"sectors_per_track"`
	Charset          string `csv:"charset"`
	Obfuscation      string `csv:"obfuscation"`
	MetadataTrack    uint   `csv:"metadata_track"`
	MetadataSide     uint   `csv:"metadata_side"`
	ClustersPerTrack uint   `csv:"clusters_per_track"`
	SideIsClusterLSB bool   `csv:"side_is_cluster_lsb"`
}

// knownFormatsCSV embeds the reference table of FAT8 geometries this
// tool recognizes by exact (tracks, sides, sectors_per_track) match.
// One column can't hold a predicate function, so the boot-sector hint
// checks that disambiguate same-geometry formats live in
// bootSectorHints below, keyed by Name.
const knownFormatsCSV = `name,tracks,fat_tracks,sides,sectors_per_track,charset,obfuscation,metadata_track,metadata_side,clusters_per_track,side_is_cluster_lsb
"PC-9800 3.5"" 2DD/5.25"" 2DD",80,80,2,16,pc98-8bit,pc98,40,0,1,false
"PC-9800 8"" 2D/3.5"" 2HD/5.25"" 2HD",77,77,2,26,pc98-8bit,pc98,35,0,1,false
"PC-9800 8"" 2D/3.5"" 2HD/5.25"" 2HD (wild type, 78 tracks)",78,77,2,26,pc98-8bit,pc98,35,0,1,false
"PC-8000/PC-8800 5.25"" 1D",35,35,1,16,pc98-8bit,pc88,18,0,2,false
"PC-8000/PC-8800 5.25"" 2D",40,40,2,16,pc98-8bit,pc88,18,1,2,false
"PC-8801 mkII 8"" 2D/5.25"" 2HD",77,77,2,26,pc98-8bit,pc88,35,0,1,false
"PC-6001 mkII 5.25"" 1D",35,35,1,16,pc6001-8bit,none,18,0,2,false
"PC-6001 mkII 5.25"" 1D (wild type, 36 tracks)",36,35,1,16,pc6001-8bit,none,18,0,2,false
"PC-6601 3.5"" 1D (wild type)",40,40,1,16,pc6001-8bit,none,18,0,2,false
"PC-6601 SR 3.5"" 1DD (wild type)",80,80,1,16,pc6001-8bit,none,37,0,2,false
"PC-6601 SR 3.5"" 1DD (wild type, 81 tracks)",81,80,1,16,pc6001-8bit,none,37,0,2,false
"Pasopia 5.25"" 2D (wild type)",40,40,2,16,pc98-8bit,none,18,0,2,true
`

var (
	knownFormatsOnce sync.Once
	knownFormats     []*FormatRecord
)

// KnownFormats returns the parsed reference format table.
func KnownFormats() []*FormatRecord {
	knownFormatsOnce.Do(func() {
		var records []*FormatRecord
		if err := gocsv.UnmarshalBytes(bytes.TrimSpace([]byte(knownFormatsCSV)), &records); err != nil {
			panic("fat8: embedded format table failed to parse: " + err.Error())
		}
		knownFormats = records
	})
	return knownFormats
}

// bootSectorHints are the per-format predicates on the track-0 side-0
// sector-1 boot sector used to disambiguate formats that share the
// same geometry. A format with no entry here matches on geometry
// alone.
var bootSectorHints = map[string][]func(sector1 []byte) bool{
	"PC-9800 8\" 2D/3.5\" 2HD/5.25\" 2HD": {
		func(sector1 []byte) bool { return len(sector1) == 128 },
	},
	"PC-9800 8\" 2D/3.5\" 2HD/5.25\" 2HD (wild type, 78 tracks)": {
		func(sector1 []byte) bool { return len(sector1) == 128 },
	},
	"PC-8801 mkII 8\" 2D/5.25\" 2HD": {
		func(sector1 []byte) bool { return len(sector1) != 128 },
	},
	"PC-6001 mkII 5.25\" 1D": {
		func(sector1 []byte) bool { return bytes.HasPrefix(sector1, []byte("SYS")) },
	},
	"PC-6001 mkII 5.25\" 1D (wild type, 36 tracks)": {
		func(sector1 []byte) bool { return bytes.HasPrefix(sector1, []byte("SYS")) },
	},
	"PC-6601 3.5\" 1D (wild type)": {
		func(sector1 []byte) bool { return bytes.HasPrefix(sector1, []byte("SYS")) },
	},
	"PC-6601 SR 3.5\" 1DD (wild type)": {
		func(sector1 []byte) bool {
			return bytes.HasPrefix(sector1, []byte("IPL")) || bytes.HasPrefix(sector1, []byte("RXR"))
		},
	},
	"PC-6601 SR 3.5\" 1DD (wild type, 81 tracks)": {
		func(sector1 []byte) bool {
			return bytes.HasPrefix(sector1, []byte("IPL")) || bytes.HasPrefix(sector1, []byte("RXR"))
		},
	},
	"Pasopia 5.25\" 2D (wild type)": {
		func(sector1 []byte) bool { return bytes.HasPrefix(sector1, []byte{0, 0, 0, 0}) },
	},
}

func scoreHints(name string, sector1 []byte) int {
	hints := bootSectorHints[name]
	score := 0
	for _, hint := range hints {
		if hint(sector1) {
			score++
		}
	}
	return score
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}
