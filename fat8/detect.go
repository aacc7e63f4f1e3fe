package fat8

import (
	"bytes"
	"fmt"

	"github.com/retrocompute/fat8d88/charset"
	"github.com/retrocompute/fat8d88/d88"
	dskerrors "github.com/retrocompute/fat8d88/errors"
	"github.com/retrocompute/fat8d88/obfuscate"
)

// Info describes a fully resolved FAT8 disk geometry: virtual sector
// layout, cluster arithmetic, metadata track location, and the
// charset/obfuscation scheme to use when reading directory entries and
// file contents.
type Info struct {
	BootSector   []byte
	IsPC66SRRxr  bool
	IsPC66Sys    bool
	IsPC98Sys    bool
	SideIsClusterLSB bool

	SectorsPerTrack int // virtual sectors per track
	Sides           int
	SectorSize      int // virtual sector size in bytes
	SectorShift     int // log2(virtual sectors per physical sector)

	FirstMetadataCluster int
	CharsetName           string
	Charset               charset.Charset
	ObfuscationName       string // "" when the disk is not obfuscated
	Obfuscation           obfuscate.Scheme

	DiskSize         int
	BytesPerTrack    int
	ClustersPerTrack int
	TotalClusters    int
	SectorsPerCluster int
	BytesPerCluster   int
	Tracks            int

	MetadataTrack int
	MetadataSide  int
	FormatName    string
}

// nominalSectorsInTrack mirrors the reference tool's per-track sector
// count table: the SectorsInTrack field every sector in a track
// declares, which Detect uses to determine the track's virtual
// geometry without trusting any single sector's data length alone.
func nominalSectorsInTrack(disk *d88.Disk, ts d88.TrackSide) (int, bool) {
	sectors, ok := disk.Tracks[ts]
	if !ok || len(sectors) == 0 {
		return 0, false
	}
	return int(sectors[0].SectorsInTrack), true
}

// Detect resolves a disk's FAT8 geometry: first by heuristics derived
// from the boot sector and track 0/1 side 0 layout, then by matching
// those heuristics against the known-format table and letting an exact
// match override every heuristic field.
func Detect(disk *d88.Disk) (*Info, error) {
	info, err := guessHeuristics(disk)
	if err != nil {
		return nil, err
	}
	return applyKnownFormat(disk, info), nil
}

func guessHeuristics(disk *d88.Disk) (*Info, error) {
	var bootSector []byte
	if sectors, ok := disk.Tracks[d88.TrackSide{Track: 0, Side: 0}]; ok {
		for _, s := range sectors {
			if s.Number == 1 {
				bootSector = s.Data
				break
			}
		}
	}

	isPC66SRRxr := bootSector != nil && (bytes.HasPrefix(bootSector, []byte("RXR")) || bytes.HasPrefix(bootSector, []byte("IPL")))
	isPC66Sys := bootSector != nil && bytes.HasPrefix(bootSector, []byte("SYS"))
	isPC98Sys := bootSector != nil && len(bootSector) == 128
	sideIsClusterLSB := bootSector != nil && bytes.HasPrefix(bootSector, []byte{0, 0, 0, 0})

	sectorsPerTrack := -1
	for _, track := range []int{0, 1} {
		n, ok := nominalSectorsInTrack(disk, d88.TrackSide{Track: track, Side: 0})
		if ok && n > sectorsPerTrack {
			sectorsPerTrack = n
		}
	}
	if sectorsPerTrack < 0 {
		return nil, dskerrors.ErrFormatUnknown.WithMessage("could not determine sectors per track from tracks 0/1 side 0")
	}

	sides := 1
	for ts := range disk.Tracks {
		if ts.Track == 0 || ts.Track == 1 {
			if ts.Side+1 > sides {
				sides = ts.Side + 1
			}
		}
	}

	sectorSize := -1
	for _, track := range []int{0, 1} {
		sectors, ok := disk.Tracks[d88.TrackSide{Track: track, Side: 0}]
		if !ok {
			continue
		}
		for _, s := range sectors {
			if len(s.Data) > sectorSize {
				sectorSize = len(s.Data)
			}
		}
	}
	if sectorSize < 0 {
		return nil, dskerrors.ErrFormatUnknown.WithMessage("could not determine sector size from tracks 0/1 side 0")
	}

	sectorShift := 0
	for sectorSize > 0x100 && sectorsPerTrack < 16 {
		sectorShift++
		sectorSize >>= 1
		sectorsPerTrack <<= 1
	}

	firstMetadataCluster := firstMetadataClusterFor(isPC66SRRxr, isPC66Sys, isPC98Sys, sides)

	var charsetName string
	var cs charset.Charset
	if isPC66Sys || isPC66SRRxr || sides == 1 {
		charsetName, cs = "pc6001-8bit", charset.PC6001
	} else {
		charsetName, cs = "pc98-8bit", charset.PC98
	}

	var obfName string
	var obf obfuscate.Scheme
	switch {
	case sideIsClusterLSB || isPC66Sys || isPC66SRRxr || sides == 1:
		obfName, obf = "", obfuscate.None
	case isPC98Sys:
		obfName, obf = "pc98", obfuscate.PC98
	default:
		obfName, obf = "pc88", obfuscate.PC88
	}

	diskSize := disk.FoundTracks * sides * sectorsPerTrack * sectorSize
	estBytesPerCluster := (diskSize + MaxClusters - 1) / MaxClusters
	bytesPerTrack := sectorsPerTrack * sectorSize
	clustersPerTrack := bytesPerTrack / estBytesPerCluster
	if clustersPerTrack > 2 {
		clustersPerTrack = 2
	}
	if clustersPerTrack < 1 {
		clustersPerTrack = 1
	}
	totalClusters := disk.FoundTracks * sides * clustersPerTrack
	sectorsPerCluster := sectorsPerTrack / clustersPerTrack
	bytesPerCluster := sectorsPerCluster * sectorSize

	tracks := disk.FoundTracks
	if normalized, ok := wildTrackCounts[tracks]; ok {
		tracks = normalized
	}

	metadataTrack := firstMetadataCluster / clustersPerTrack / sides
	metadataSide := (firstMetadataCluster / clustersPerTrack) % sides

	kind := "N60/PC-6001/mkII/6601"
	switch {
	case sideIsClusterLSB:
		kind = "Pasopia"
	case isPC66SRRxr:
		kind = "PC-6001 mkII SR/6601 SR"
	case isPC66Sys || sides == 1:
		kind = "N60/PC-6001/mkII/6601"
	case isPC98Sys:
		kind = "PC98"
	default:
		kind = "N80/PC88"
	}
	formatName := fmt.Sprintf(
		"Unknown format [%s-like %d-sided %d-track %d-sectored with %d-byte boot sector beginning with %q, metadata in track %d side %d, %d clusters per track]",
		kind, sides, disk.FoundTracks, sectorsPerTrack, len(bootSector), firstBytes(bootSector, 4), metadataTrack, metadataSide, clustersPerTrack)

	return &Info{
		BootSector:            bootSector,
		IsPC66SRRxr:           isPC66SRRxr,
		IsPC66Sys:             isPC66Sys,
		IsPC98Sys:             isPC98Sys,
		SideIsClusterLSB:      sideIsClusterLSB,
		SectorsPerTrack:       sectorsPerTrack,
		Sides:                 sides,
		SectorSize:            sectorSize,
		SectorShift:           sectorShift,
		FirstMetadataCluster:  firstMetadataCluster,
		CharsetName:           charsetName,
		Charset:               cs,
		ObfuscationName:       obfName,
		Obfuscation:           obf,
		DiskSize:              diskSize,
		BytesPerTrack:         bytesPerTrack,
		ClustersPerTrack:      clustersPerTrack,
		TotalClusters:         totalClusters,
		SectorsPerCluster:     sectorsPerCluster,
		BytesPerCluster:       bytesPerCluster,
		Tracks:                tracks,
		MetadataTrack:         metadataTrack,
		MetadataSide:          metadataSide,
		FormatName:            formatName,
	}, nil
}

func firstBytes(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}

func firstMetadataClusterFor(isPC66SRRxr, isPC66Sys, isPC98Sys bool, sides int) int {
	switch {
	case isPC66SRRxr:
		return FirstMetadataClusterPC66SR
	case isPC66Sys || sides == 1:
		return FirstMetadataClusterPC66
	case isPC98Sys:
		return FirstMetadataClusterPC98
	default:
		return FirstMetadataClusterPC88
	}
}

// applyKnownFormat matches the heuristically-derived geometry against
// the known-format table by exact (tracks, sides, sectors-per-track),
// breaking ties between same-geometry formats by counting how many of
// a format's boot-sector hints the actual boot sector satisfies. A
// match overrides every field the table declares; a miss returns the
// heuristic guess unchanged.
func applyKnownFormat(disk *d88.Disk, info *Info) *Info {
	var best *FormatRecord
	bestScore := -1
	for _, rec := range KnownFormats() {
		if int(rec.Tracks) != disk.FoundTracks {
			continue
		}
		if int(rec.Sides) != info.Sides {
			continue
		}
		if int(rec.SectorsPerTrack) != info.SectorsPerTrack {
			continue
		}
		score := 0
		if info.BootSector != nil {
			score = scoreHints(rec.Name, info.BootSector)
		}
		if best == nil || score > bestScore {
			best, bestScore = rec, score
		}
	}
	if best == nil {
		return info
	}

	var cs charset.Charset
	switch best.Charset {
	case "pc6001-8bit":
		cs = charset.PC6001
	default:
		cs = charset.PC98
	}
	var obf obfuscate.Scheme
	switch best.Obfuscation {
	case "pc98":
		obf = obfuscate.PC98
	case "pc88":
		obf = obfuscate.PC88
	default:
		obf = obfuscate.None
	}

	sectorsPerCluster := info.SectorsPerTrack / int(best.ClustersPerTrack)

	matched := *info
	matched.TotalClusters = int(best.FATTracks) * info.Sides * int(best.ClustersPerTrack)
	matched.SectorsPerCluster = sectorsPerCluster
	matched.BytesPerCluster = sectorsPerCluster * info.SectorSize
	matched.FormatName = best.Name
	matched.CharsetName = best.Charset
	matched.Charset = cs
	matched.ObfuscationName = best.Obfuscation
	if best.Obfuscation == "" {
		matched.ObfuscationName = ""
	}
	matched.Obfuscation = obf
	matched.MetadataTrack = int(best.MetadataTrack)
	matched.MetadataSide = int(best.MetadataSide)
	matched.ClustersPerTrack = int(best.ClustersPerTrack)
	matched.FirstMetadataCluster = (int(best.MetadataTrack)*info.Sides + int(best.MetadataSide)) * int(best.ClustersPerTrack)
	matched.SideIsClusterLSB = best.SideIsClusterLSB
	matched.Tracks = int(best.FATTracks)
	return &matched
}
