package fat8

import (
	"bytes"
	"strings"

	"github.com/retrocompute/fat8d88/charset"
	"github.com/retrocompute/fat8d88/d88"
	"github.com/retrocompute/fat8d88/hostname"
)

// Entry is one parsed FAT8 directory entry: its on-disk name/attributes
// plus everything later passes attach to it (its host filename(s), its
// FAT chain, and eventually its reconstructed file data).
type Entry struct {
	Idx             int
	HostFSName      string
	HostFSDeobfName string
	Attrs           hostname.Attrs
	Cluster         byte
	Name            string
	Ext             string
	Chain           []int
	Errors          map[string]bool
	AllocatedSize   int
	RawEntry        []byte
	FileData        []byte
}

func newEntryErrors() map[string]bool { return map[string]bool{} }

// MetadataTrackInfo is everything analyze_metadata_track extracts from
// the metadata track in one pass: the directory, the FAT copies, the
// autorun block, and the raw virtual-sector contents (kept for
// hexdump-style reporting).
type MetadataTrackInfo struct {
	DirectoryEntries   []*Entry
	FATSectors         map[int][]byte
	AutorunData        []byte
	RawMetadataSectors map[int][]byte
	UsedLowerFSNames   map[string]bool
}

// ParseMetadataTrack walks the metadata track's virtual sectors,
// splitting them into directory entries, FAT copies, and the autorun
// block according to indices. Host filenames are assigned here so
// later passes (FAT chain analysis, reconstruction) never need to
// revisit naming.
func ParseMetadataTrack(disk *d88.Disk, info *Info, indices *MetadataIndices) *MetadataTrackInfo {
	sectors := disk.Tracks[d88.TrackSide{Track: info.MetadataTrack, Side: info.MetadataSide}]
	vmap := virtualSectors(info, sectors)

	result := &MetadataTrackInfo{
		FATSectors:         map[int][]byte{},
		RawMetadataSectors: map[int][]byte{},
		UsedLowerFSNames:   map[string]bool{},
	}
	usedFilenames := map[string]*Entry{}
	endOfDirectory := false

	for _, vsec := range sortedVirtualSectorNums(vmap) {
		vdata := vmap[vsec]
		result.RawMetadataSectors[vsec] = vdata

		switch {
		case indices.DirSectorIndices[vsec] && !endOfDirectory:
			endOfDirectory = parseDirectorySector(vsec, vdata, info, result, usedFilenames)
		case indices.FATSectorIndices[vsec]:
			result.FATSectors[vsec] = vdata
		case vsec == indices.AutorunSectorIndex:
			result.AutorunData = vdata
		}
	}
	return result
}

// parseDirectorySector decodes the up-to-16 directory entries packed
// into one 256-byte virtual sector, returning true once it sees the
// first Unused(FF) entry — FAT8 directories terminate there, so any
// entries after it (even in later sectors) are never listed.
func parseDirectorySector(vsec int, vdata []byte, info *Info, result *MetadataTrackInfo, usedFilenames map[string]*Entry) bool {
	for i := 0; i+16 <= len(vdata) && i < 256; i += 16 {
		raw := vdata[i : i+16]
		name, err := info.Charset.Decode(raw[0:6], charset.NoControls)
		if err != nil {
			name = string(raw[0:6])
		}
		ext, err := info.Charset.Decode(raw[6:9], charset.NoControls)
		if err != nil {
			ext = string(raw[6:9])
		}

		mask := int(raw[9])
		if raw[0] == 0x00 {
			mask |= 0x100
		}
		if raw[0] == 0xFF {
			mask |= 0x200
		}
		attrs := attrsFromMask(mask)
		cluster := raw[10]

		encode := charsetEncoder(info)
		hostFSName := hostname.ToHostFSName(name, ext, attrs, encode)
		disambig := hostname.NextDisambiguator(strings.ToLower(hostFSName), result.UsedLowerFSNames)
		hostFSName = hostname.ExtendName(hostFSName, disambig)

		hostFSDeobfName := hostname.ToHostFSName(name, ext, attrs.Without(hostname.AttrObfuscated), encode)
		disambigDeobf := hostname.NextDisambiguator(strings.ToLower(hostFSDeobfName), result.UsedLowerFSNames)
		hostFSDeobfName = hostname.ExtendName(hostFSDeobfName, disambigDeobf)

		if attrs.Has(hostname.PseudoAttrUnused) {
			return true
		}

		result.UsedLowerFSNames[strings.ToLower(hostFSName)] = true
		if attrs.Has(hostname.AttrObfuscated) && info.ObfuscationName != "" {
			result.UsedLowerFSNames[strings.ToLower(hostFSDeobfName)] = true
		}

		entry := &Entry{
			Idx:             (vsec-1)*16 + i/16 + 1,
			HostFSName:      hostFSName,
			HostFSDeobfName: hostFSDeobfName,
			Attrs:           attrs,
			Cluster:         cluster,
			Name:            name,
			Ext:             ext,
			Chain:           nil,
			Errors:          newEntryErrors(),
			RawEntry:        append([]byte{}, raw...),
		}
		if !attrs.Has(hostname.PseudoAttrDeleted) {
			key := name + "." + ext
			if other, ok := usedFilenames[key]; ok {
				entry.Errors["Duplicate filename"] = true
				if !bytes.Equal(entry.RawEntry, other.RawEntry) {
					other.Errors["Duplicate filename"] = true
				}
			} else {
				usedFilenames[key] = entry
			}
		}
		result.DirectoryEntries = append(result.DirectoryEntries, entry)
	}
	return false
}

func charsetEncoder(info *Info) hostname.Encoder {
	return func(ch rune) []byte {
		b, err := info.Charset.Encode(string(ch), false)
		if err != nil {
			return []byte(string(ch))
		}
		return b
	}
}
