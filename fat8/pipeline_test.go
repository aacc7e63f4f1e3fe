package fat8_test

import (
	"strings"
	"testing"

	"github.com/retrocompute/fat8d88/charset"
	"github.com/retrocompute/fat8d88/d88"
	"github.com/retrocompute/fat8d88/fat8"
	"github.com/retrocompute/fat8d88/obfuscate"
	"github.com/stretchr/testify/require"
)

// buildInfo constructs a small, self-consistent Info by hand instead
// of running Detect, so the directory/FAT/reconstruction pipeline can
// be tested independently of geometry detection. Geometry: 1 side, 8
// virtual sectors per track, 2 clusters per track (4 sectors each),
// metadata on track 1 (so clusters 2-3 are reserved for it).
func buildInfo() *fat8.Info {
	return &fat8.Info{
		SectorsPerTrack:      8,
		Sides:                1,
		SectorSize:           256,
		SectorShift:          0,
		ClustersPerTrack:     2,
		SectorsPerCluster:    4,
		BytesPerCluster:      4 * 256,
		TotalClusters:        8,
		MetadataTrack:        1,
		MetadataSide:         0,
		FirstMetadataCluster: 2,
		CharsetName:          "pc6001-8bit",
		Charset:              charset.PC6001,
		ObfuscationName:      "",
		Obfuscation:          obfuscate.None,
	}
}

func sector(num byte, data []byte) d88.Sector {
	padded := make([]byte, 256)
	copy(padded, data)
	return d88.Sector{Number: num, Data: padded, SectorsInTrack: 8}
}

func buildDirSector() []byte {
	data := make([]byte, 256)
	entry := data[0:16]
	copy(entry[0:6], []byte("TEST  "))
	copy(entry[6:9], []byte("BAS"))
	entry[9] = 0x00  // no attributes set
	entry[10] = 0x04 // start cluster 4
	// next entry (bytes 16-31) is left zeroed except its first byte,
	// which must be 0xFF (Unused) to terminate the directory listing.
	data[16] = 0xFF
	return data
}

func buildFAT() []byte {
	fat := make([]byte, 256)
	fat[0] = fat8.ChainTerminalLink // boot sector cluster reserved
	fat[2] = fat8.ChainTerminalLink // metadata cluster 2 reserved
	fat[3] = fat8.ChainTerminalLink // metadata cluster 3 reserved
	fat[4] = 0xC1                   // file chain head: terminal, 1 sector used
	fat[5] = fat8.UnallocatedCluster
	fat[6] = fat8.UnallocatedCluster
	fat[7] = fat8.UnallocatedCluster
	return fat
}

func buildFileSector() []byte {
	data := make([]byte, 256)
	copy(data, []byte("HELLOWORLD"))
	data[10] = 0x1A // SUB marker, expected to be stripped on reconstruction
	return data
}

func buildDisk() *d88.Disk {
	fat := buildFAT()
	return &d88.Disk{
		Tracks: map[d88.TrackSide][]d88.Sector{
			{Track: 1, Side: 0}: {
				sector(1, buildDirSector()),
				sector(2, nil), sector(3, nil), sector(4, nil),
				sector(5, nil), // autorun
				sector(6, fat), sector(7, fat), sector(8, fat),
			},
			{Track: 2, Side: 0}: {
				sector(1, buildFileSector()),
			},
		},
	}
}

func TestPipelineReconstructsFileData(t *testing.T) {
	info := buildInfo()
	indices := fat8.ComputeMetadataIndices(info)
	require.Equal(t, 5, indices.AutorunSectorIndex)
	require.True(t, indices.FATSectorIndices[6])
	require.True(t, indices.FATSectorIndices[8])
	require.True(t, indices.DirSectorIndices[1])
	require.False(t, indices.DirSectorIndices[5])

	disk := buildDisk()
	meta := fat8.ParseMetadataTrack(disk, info, indices)
	require.Len(t, meta.DirectoryEntries, 1)

	entry := meta.DirectoryEntries[0]
	require.Equal(t, "TEST", entry.Name[:4])
	require.Equal(t, byte(4), entry.Cluster)

	fat1 := fat8.CheckFAT(info, indices, meta)
	require.NotNil(t, fat1)
	require.True(t, fat8.FATCopiesMatch(info, fat1, meta.FATSectors))

	fat8.AnalyzeChains(fat1, info, meta)
	require.Empty(t, entry.Errors)
	require.Equal(t, []int{4, 0xC1}, entry.Chain)

	fat8.ReconstructFileData(disk, info, meta)
	require.Equal(t, "HELLOWORLD", string(entry.FileData))
}

func TestAnalyzeChainsDetectsCycle(t *testing.T) {
	info := buildInfo()
	fat := buildFAT()
	fat[4] = 5
	fat[5] = 4 // cycle: 4 -> 5 -> 4
	meta := &fat8.MetadataTrackInfo{
		DirectoryEntries: []*fat8.Entry{
			{Cluster: 4, Errors: map[string]bool{}, RawEntry: make([]byte, 16)},
		},
	}
	fat8.AnalyzeChains(fat, info, meta)
	require.True(t, meta.DirectoryEntries[0].Errors["Cycle in FAT chain"])
}

func TestAggregateErrorsClassifiesByKind(t *testing.T) {
	meta := &fat8.MetadataTrackInfo{
		DirectoryEntries: []*fat8.Entry{
			{Idx: 1, Name: "A", Ext: "BAS", Errors: map[string]bool{"Cycle in FAT chain": true}},
			{Idx: 2, Name: "B", Ext: "BAS", Errors: map[string]bool{"Duplicate filename": true}},
			{Idx: 3, Name: "C", Ext: "BAS", Errors: map[string]bool{"Missing sector": true}},
			{Idx: 4, Name: "D", Ext: "BAS", Errors: map[string]bool{}},
		},
	}

	agg := fat8.AggregateErrors(meta)
	require.NotNil(t, agg)
	require.Len(t, agg.Errors, 3)

	var kinds []string
	for _, err := range agg.Errors {
		kinds = append(kinds, err.Error())
	}
	require.Condition(t, func() bool {
		foundFAT, foundDir, foundRecon := false, false, false
		for _, k := range kinds {
			foundFAT = foundFAT || strings.Contains(k, "file allocation table")
			foundDir = foundDir || strings.Contains(k, "directory entry is malformed")
			foundRecon = foundRecon || strings.Contains(k, "could not be reconstructed")
		}
		return foundFAT && foundDir && foundRecon
	})
}
