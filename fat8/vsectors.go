package fat8

import (
	"sort"

	"github.com/retrocompute/fat8d88/d88"
)

// virtualSectors splits a track's physical D88 sectors into FAT8's
// virtual sector numbering: a physical sector whose size is a multiple
// of the detected virtual sector size yields 1<<SectorShift
// consecutively-numbered virtual sectors of SectorSize bytes each.
func virtualSectors(info *Info, sectors []d88.Sector) map[int][]byte {
	sorted := make([]d88.Sector, len(sectors))
	copy(sorted, sectors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	perPhysical := 1 << info.SectorShift
	result := map[int][]byte{}
	for _, s := range sorted {
		secNum := int(s.Number)
		first := ((secNum - 1) << info.SectorShift) + 1
		for v := first; v < first+perPhysical; v++ {
			sub := (v - 1) % perPhysical
			off := info.SectorSize * sub
			end := off + info.SectorSize
			if end <= len(s.Data) {
				result[v] = s.Data[off:end]
			}
		}
	}
	return result
}

func sortedVirtualSectorNums(vmap map[int][]byte) []int {
	nums := make([]int, 0, len(vmap))
	for v := range vmap {
		nums = append(nums, v)
	}
	sort.Ints(nums)
	return nums
}
