// Package d88 parses the D88 floppy-disk container format: a 32-byte
// disk header, a track-offset table, and a sequence of sector records
// per track. It makes no assumptions about the filesystem stored
// inside; that's fat8's job.
package d88

import (
	"encoding/binary"
	"fmt"

	dskerrors "github.com/retrocompute/fat8d88/errors"
)

const (
	trackTableOffset = 0x20
	trackEntrySize   = 4
	sectorHeaderSize = 16
	maxTrackEntries  = 164
)

// DiskAttrWriteProtected marks a disk whose header write-protect bit
// (offset 0x1A, bit 4) is set.
const DiskAttrWriteProtected = "DiskWriteProtected"

// Sector is one physical sector record, with its payload already
// sliced out of the container's raw bytes.
type Sector struct {
	Number          byte
	DataOffset      int
	Data            []byte
	SectorsInTrack  uint16
}

// TrackSide identifies a physical track+side pair.
type TrackSide struct {
	Track int
	Side  int
}

// Disk is a fully parsed D88 container: disk-level metadata plus every
// sector, keyed by the track/side it was read from.
type Disk struct {
	NameOrComment string
	WriteProtected bool
	Size          int
	// Suffix disambiguates disks within a multi-disk D88 file the way
	// the CLI layer names output directories (" #DiskNN"); Parse
	// leaves it blank and the caller fills it in when iterating a
	// multi-disk container.
	Suffix string

	Tracks map[TrackSide][]Sector

	FoundTracks         int
	FoundSides          int
	FoundTotalSectors   int
	FoundHighestSector  int
	FoundDiskSize       int
	LargestSectorSize   int
}

// Parse decodes a single D88 disk image starting at the beginning of
// data. D88 containers concatenating multiple disks back to back are
// not handled here; the caller slices data per disk using the Size
// field returned by a first pass, matching the reference tool's
// disk-index loop.
func Parse(data []byte) (*Disk, error) {
	if len(data) < trackTableOffset+trackEntrySize {
		return nil, dskerrors.ErrContainerMalformed.WithMessage("data too short for a D88 header")
	}

	nameBytes := data[:0x10]
	end := len(nameBytes)
	for end > 0 && nameBytes[end-1] == 0 {
		end--
	}
	name := string(nameBytes[:end])

	writeProtected := data[0x1A]&0x10 != 0
	size := int(binary.LittleEndian.Uint32(data[0x1C:0x20]))
	if size > len(data) {
		return nil, dskerrors.ErrContainerMalformed.WithMessage("disk size field exceeds available data")
	}
	if size <= trackTableOffset+trackEntrySize {
		return nil, dskerrors.ErrContainerMalformed.WithMessage("disk size field is too small to hold a track table")
	}

	offsets, err := readTrackOffsets(data, size)
	if err != nil {
		return nil, err
	}

	disk := &Disk{
		NameOrComment:  name,
		WriteProtected: writeProtected,
		Size:           size,
		Tracks:         map[TrackSide][]Sector{},
		FoundSides:     1,
	}

	var allRanges [][2]int
	for _, trackOffset := range offsets {
		sectors, track, side, ranges, err := readTrackSectors(data, trackOffset, size)
		if err != nil {
			return nil, err
		}
		disk.Tracks[TrackSide{Track: track, Side: side}] = sectors
		allRanges = append(allRanges, ranges...)
	}
	if err := checkNoOverlap(allRanges); err != nil {
		return nil, err
	}

	for ts, sectors := range disk.Tracks {
		if ts.Track+1 > disk.FoundTracks {
			disk.FoundTracks = ts.Track + 1
		}
		if ts.Side+1 > disk.FoundSides {
			disk.FoundSides = ts.Side + 1
		}
		for _, sec := range sectors {
			disk.FoundTotalSectors++
			disk.FoundDiskSize += len(sec.Data)
			if len(sec.Data) > disk.LargestSectorSize {
				disk.LargestSectorSize = len(sec.Data)
			}
			if int(sec.Number) > disk.FoundHighestSector {
				disk.FoundHighestSector = int(sec.Number)
			}
		}
	}
	return disk, nil
}

func readTrackOffsets(data []byte, diskSize int) ([]int, error) {
	var offsets []int
	for i := 0; i < maxTrackEntries; i++ {
		entryStart := trackTableOffset + i*trackEntrySize
		if i > 0 && entryStart >= minInt(offsets) {
			break
		}
		if entryStart+trackEntrySize > len(data) {
			return nil, dskerrors.ErrContainerMalformed.WithMessage("track table runs past end of data")
		}
		offset := int(binary.LittleEndian.Uint32(data[entryStart : entryStart+trackEntrySize]))
		if i == 0 && (offset-trackTableOffset)%trackEntrySize != 0 {
			return nil, dskerrors.ErrContainerMalformed.WithMessage(
				fmt.Sprintf("offset of first track (%d) is not a multiple of %d past the track table", offset, trackEntrySize))
		}
		if offset != 0 && offset != diskSize {
			if len(offsets) > 0 && offset < minInt(offsets) {
				return nil, dskerrors.ErrContainerMalformed.WithMessage("track offsets are out of order")
			}
			if offset+sectorHeaderSize >= diskSize {
				return nil, dskerrors.ErrContainerMalformed.WithMessage("track data spills past end of disk")
			}
			offsets = append(offsets, offset)
		}
	}
	return offsets, nil
}

func minInt(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func readTrackSectors(data []byte, trackOffset, diskSize int) ([]Sector, int, int, [][2]int, error) {
	var sectors []Sector
	var ranges [][2]int
	cursor := trackOffset
	track, side := -1, -1
	var nominalSectorsInTrack uint16

	for cursor+sectorHeaderSize <= diskSize {
		header := data[cursor : cursor+sectorHeaderSize]
		trk := int(header[0])
		if track == -1 {
			track = trk
		}
		if track != trk {
			break
		}
		sd := int(header[1])
		if side == -1 {
			side = sd
		}
		if side != sd {
			break
		}
		secNum := header[2]
		sizeCode := header[3]
		nominalSize := 128 << sizeCode
		sectorsInTrack := binary.LittleEndian.Uint16(header[0x04:0x06])
		if len(sectors) == 0 {
			nominalSectorsInTrack = sectorsInTrack
		} else if sectorsInTrack != nominalSectorsInTrack {
			return nil, 0, 0, nil, dskerrors.ErrContainerMalformed.WithMessage(
				fmt.Sprintf("track %d side %d: sectors-in-track drifts from %d to %d within the track",
					trk, sd, nominalSectorsInTrack, sectorsInTrack))
		}
		dataOffset := cursor + sectorHeaderSize
		if dataOffset+nominalSize > diskSize {
			return nil, 0, 0, nil, dskerrors.ErrContainerMalformed.WithMessage("sector data spills past end of disk")
		}
		for _, other := range sectors {
			if other.Number == secNum {
				return nil, 0, 0, nil, dskerrors.ErrContainerMalformed.WithMessage(
					fmt.Sprintf("track %d side %d sector %d appears more than once", trk, sd, secNum))
			}
		}
		sectorData := data[dataOffset : dataOffset+nominalSize]
		sectors = append(sectors, Sector{
			Number:         secNum,
			DataOffset:     dataOffset,
			Data:           sectorData,
			SectorsInTrack: sectorsInTrack,
		})
		ranges = append(ranges, [2]int{dataOffset, dataOffset + nominalSize})
		cursor += sectorHeaderSize + nominalSize
	}
	return sectors, track, side, ranges, nil
}

func checkNoOverlap(ranges [][2]int) error {
	sorted := append([][2]int{}, ranges...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j][0] < sorted[i][0] {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	checkpoint := 0
	for _, r := range sorted {
		if r[0] < checkpoint {
			return dskerrors.ErrContainerMalformed.WithMessage("found overlapping sector data")
		}
		checkpoint = r[1]
	}
	return nil
}
