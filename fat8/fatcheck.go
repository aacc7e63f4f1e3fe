package fat8

import "sort"

// CheckFAT validates the lowest-numbered of a metadata track's
// redundant FAT sectors and returns it. It returns nil when that copy
// is unusable (boot sector or metadata track not reserved, or a cluster
// value outside the ranges FAT8 allows); the other copies are not tried
// in its place. This mirrors the reference
// tool's refusal to trust an inconsistent FAT rather than guessing.
func CheckFAT(info *Info, indices *MetadataIndices, meta *MetadataTrackInfo) []byte {
	if len(meta.FATSectors) == 0 {
		return nil
	}
	firstIdx := sortedFATIndices(meta.FATSectors)[0]
	fat1 := meta.FATSectors[firstIdx]

	if !isAllowedValue(fat1, BootSectorCluster, info, true) {
		return nil
	}
	for _, idx := range indices.SortedMetadataClusters() {
		if idx >= len(fat1) {
			return nil
		}
		if !isReservedForMetadata(fat1[idx], indices, info) {
			return nil
		}
	}
	for i := ReservedClusters; i < info.TotalClusters; i++ {
		if i >= len(fat1) {
			return nil
		}
		if !isAllowedValue(fat1, i, info, false) {
			return nil
		}
	}
	return fat1
}

func sortedFATIndices(fatSectors map[int][]byte) []int {
	idxs := make([]int, 0, len(fatSectors))
	for i := range fatSectors {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	return idxs
}

func isAllowedValue(fat []byte, i int, info *Info, isBootSectorSlot bool) bool {
	if i >= len(fat) {
		return false
	}
	v := int(fat[i])
	if isBootSectorSlot {
		return v == ChainTerminalLink || v == BootSectorCluster || inClusterRange(v, info) || inFinalClusterRange(v, info)
	}
	return inClusterRange(v, info) || inFinalClusterRange(v, info) || v == ChainTerminalLink || v == UnallocatedCluster
}

func isReservedForMetadata(v byte, indices *MetadataIndices, info *Info) bool {
	val := int(v)
	if val == ChainTerminalLink {
		return true
	}
	if indices.MetadataClusterIndices[val] {
		return true
	}
	return inFinalClusterRange(val, info)
}

func inClusterRange(v int, info *Info) bool {
	return v >= 0 && v < info.TotalClusters
}

func inFinalClusterRange(v int, info *Info) bool {
	return v >= FinalClusterOffset && v <= FinalClusterOffset+info.SectorsPerCluster
}

// FATCopiesMatch reports whether every redundant FAT sector agrees with
// fat1 on cluster allocation (entries 1..TotalClusters-1; entry 0 is
// the boot sector reservation and isn't compared).
func FATCopiesMatch(info *Info, fat1 []byte, fatSectors map[int][]byte) bool {
	for _, other := range fatSectors {
		for i := 1; i < info.TotalClusters && i < len(fat1) && i < len(other); i++ {
			if fat1[i] != other[i] {
				return false
			}
		}
	}
	return true
}
