package fat8

// MetadataIndices locates the fixed-purpose virtual sectors and
// clusters within the metadata track: the last three sectors hold the
// FAT (two or three redundant copies), the sector just before those
// holds the autorun/ID block, and everything before that is directory
// entries.
type MetadataIndices struct {
	FATSectorIndices      map[int]bool
	AutorunSectorIndex     int
	DirSectorIndices       map[int]bool
	MetadataClusterIndices map[int]bool
}

// ComputeMetadataIndices derives MetadataIndices from a resolved
// geometry. It does not read info.FirstMetadataCluster; the lowest
// member of MetadataClusterIndices (see SortedMetadataClusters) can be
// compared against that field as a cross-check.
func ComputeMetadataIndices(info *Info) *MetadataIndices {
	n := info.SectorsPerTrack
	fatSectorIndices := map[int]bool{n - 2: true, n - 1: true, n: true}
	autorunSectorIndex := n - 3
	dirSectorIndices := map[int]bool{}
	for i := 1; i < autorunSectorIndex; i++ {
		dirSectorIndices[i] = true
	}

	metadataClusterIndices := map[int]bool{}
	if info.SideIsClusterLSB {
		start := info.MetadataTrack*info.ClustersPerTrack*info.Sides + info.MetadataSide
		end := (1+info.MetadataTrack)*info.ClustersPerTrack*info.Sides + info.MetadataSide
		for c := start; c < end; c += info.Sides {
			metadataClusterIndices[c] = true
		}
	} else {
		start := (info.MetadataTrack*info.Sides + info.MetadataSide) * info.ClustersPerTrack
		end := (1 + info.MetadataTrack*info.Sides + info.MetadataSide) * info.ClustersPerTrack
		for c := start; c < end; c++ {
			metadataClusterIndices[c] = true
		}
	}

	return &MetadataIndices{
		FATSectorIndices:       fatSectorIndices,
		AutorunSectorIndex:     autorunSectorIndex,
		DirSectorIndices:       dirSectorIndices,
		MetadataClusterIndices: metadataClusterIndices,
	}
}

// SortedMetadataClusters returns the metadata cluster indices in
// ascending order; its first element should equal info.FirstMetadataCluster.
func (m *MetadataIndices) SortedMetadataClusters() []int {
	out := make([]int, 0, len(m.MetadataClusterIndices))
	for c := range m.MetadataClusterIndices {
		out = append(out, c)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
