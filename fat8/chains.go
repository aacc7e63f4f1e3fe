package fat8

import (
	"github.com/boljen/go-bitmap"
	"github.com/retrocompute/fat8d88/hostname"
)

// AnalyzeChains walks every directory entry's FAT chain, recording
// either the complete cluster chain and its allocated size or the
// first error that made the chain untrustworthy. It also detects
// cross-entry overlap: two entries claiming the same cluster, which
// happens on corrupted disks and on disks with duplicate directory
// entries pointing at genuinely shared data.
//
// Overlap tracking uses a bitmap the way the teacher's block allocator
// does, except read-only: a set bit means some earlier entry already
// claimed that cluster, and chainOwners remembers which one so a
// repeat claim can be told apart from a genuine duplicate-entry overlap.
func AnalyzeChains(fat1 []byte, info *Info, meta *MetadataTrackInfo) {
	seen := bitmap.New(info.TotalClusters)
	chainOwners := map[int]*Entry{}

	for _, entry := range meta.DirectoryEntries {
		analyzeOneChain(entry, fat1, info, seen, chainOwners)
	}
}

func analyzeOneChain(entry *Entry, fat1 []byte, info *Info, seen bitmap.Bitmap, chainOwners map[int]*Entry) {
	errs := entry.Errors
	var chain []int

	switch {
	case fat1 == nil:
		errs["No FAT"] = true
	case entry.Attrs.Has(hostname.PseudoAttrDeleted):
		errs["Deleted"] = true
	case entry.Attrs.Has(hostname.PseudoAttrUnused):
		errs["Unused"] = true
	default:
		chain = []int{int(entry.Cluster)}
		head := chain[0]
		switch {
		case head < ReservedClusters:
			errs["Reserved cluster at head of chain"] = true
		case head >= FinalClusterOffset && head != ChainTerminalLink && head != UnallocatedCluster:
			errs["Head of chain cannot be a block count"] = true
		case head < FinalClusterOffset && head >= info.TotalClusters:
			errs["Head of chain falls outside of disk"] = true
		}

		for len(errs) == 0 && chain[len(chain)-1] < FinalClusterOffset {
			cur := chain[len(chain)-1]
			if cur >= len(fat1) {
				errs["Chain entry falls outside of disk"] = true
				break
			}
			next := int(fat1[cur])
			if next < FinalClusterOffset {
				if next < ReservedClusters {
					errs["Reserved cluster in chain"] = true
				} else if next >= info.TotalClusters {
					errs["Chain entry falls outside of disk"] = true
				} else if containsInt(chain, next) {
					errs["Cycle in FAT chain"] = true
				}
			}
			chain = append(chain, next)
		}

		if len(errs) == 0 && containsInt(chain, UnallocatedCluster) {
			errs["Unallocated cluster in FAT chain"] = true
		}
		last := chain[len(chain)-1]
		if len(errs) == 0 && (last < FinalClusterOffset || last == UnallocatedCluster) {
			errs["Unterminated FAT chain"] = true
		} else if len(errs) == 0 && last > FinalClusterOffset+info.SectorsPerCluster && last != ChainTerminalLink {
			errs["Sector count for final cluster exceeds sectors-per-cluster limit"] = true
		}
	}

	if len(errs) == 0 {
		for _, link := range chain[:len(chain)-1] {
			claimed := link >= 0 && link < info.TotalClusters && seen.Get(link)
			if claimed {
				owner := chainOwners[link]
				if owner != nil && !bytesEqualN(entry.RawEntry, owner.RawEntry, 9, 11) {
					errs[overlapError(link)] = true
					owner.Errors[overlapError(link)] = true
				}
			} else {
				if link >= 0 && link < info.TotalClusters {
					seen.Set(link, true)
				}
				chainOwners[link] = entry
			}
		}
	}

	allocatedSize := entry.AllocatedSize
	if len(errs) == 0 {
		allocatedSize = info.BytesPerCluster * (len(chain) - 1)
		last := chain[len(chain)-1]
		if last >= FinalClusterOffset && last != ChainTerminalLink && last != UnallocatedCluster {
			allocatedSize -= info.BytesPerCluster
			allocatedSize += info.SectorSize * (last - FinalClusterOffset)
		}
	}

	entry.Chain = chain
	entry.AllocatedSize = allocatedSize
}

func containsInt(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func bytesEqualN(a, b []byte, start, end int) bool {
	if len(a) < end || len(b) < end {
		return false
	}
	for i := start; i < end; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func overlapError(cluster int) string {
	const hexDigits = "0123456789ABCDEF"
	return "Overlapping allocation " + string([]byte{hexDigits[(cluster>>4)&0xF], hexDigits[cluster&0xF]})
}
