package fat8

import (
	"bytes"

	"github.com/retrocompute/fat8d88/d88"
)

// ReconstructFileData reads every non-errored directory entry's file
// contents off the disk by walking its FAT chain cluster by cluster.
// Entries with chain errors are left with nil FileData; entries whose
// underlying sectors are missing get a "Missing sector" error added
// and nil FileData, matching the reference tool's refusal to return
// partial data once a gap is found.
func ReconstructFileData(disk *d88.Disk, info *Info, meta *MetadataTrackInfo) {
	for _, entry := range meta.DirectoryEntries {
		if len(entry.Errors) != 0 || len(entry.Chain) == 0 {
			continue
		}
		entry.FileData = reconstructEntry(disk, info, entry)
	}
}

func reconstructEntry(disk *d88.Disk, info *Info, entry *Entry) []byte {
	chain := entry.Chain
	var fileData bytes.Buffer

	for i, cluster := range chain[:len(chain)-1] {
		inFinalCluster := i == len(chain)-2
		maxSectorsInCluster := info.SectorsPerCluster
		if inFinalCluster {
			last := chain[len(chain)-1]
			if last >= FinalClusterOffset && last < ChainTerminalLink {
				maxSectorsInCluster = last - FinalClusterOffset
			}
		}

		track, side, firstSec := clusterLocation(info, cluster)
		sectors := disk.Tracks[d88.TrackSide{Track: track, Side: side}]
		vmap := virtualSectors(info, sectors)

		for secOffset := 0; secOffset < maxSectorsInCluster; secOffset++ {
			clusterSecNum := firstSec + secOffset
			inFinalSector := secOffset == maxSectorsInCluster-1
			data, ok := vmap[clusterSecNum]
			if !ok {
				entry.Errors["Missing sector"] = true
				return nil
			}
			if inFinalCluster && inFinalSector {
				data = stripTrailingSUB(data)
			}
			fileData.Write(data)
		}
	}
	return fileData.Bytes()
}

// clusterLocation maps a cluster index to the physical track, side,
// and first virtual sector number of its data, in one of two layouts:
// side_is_cluster_lsb interleaves the side as the cluster's low bit
// (Pasopia-style); the standard layout packs clusters_per_track
// clusters per side before moving to the next side/track.
func clusterLocation(info *Info, cluster int) (track, side, firstSec int) {
	sectorsPerSubCluster := info.SectorsPerTrack / info.ClustersPerTrack
	if info.SideIsClusterLSB {
		track = cluster / info.Sides / info.ClustersPerTrack
		side = cluster % info.Sides
		firstSec = 1 + (cluster/info.Sides%info.ClustersPerTrack)*sectorsPerSubCluster
		return
	}
	track = cluster / info.ClustersPerTrack / info.Sides
	side = cluster / info.ClustersPerTrack % info.Sides
	firstSec = 1 + (cluster%info.ClustersPerTrack)*sectorsPerSubCluster
	return
}

// stripTrailingSUB removes one trailing SUB (0x1A, the CP/M-era text
// EOF marker) from the end of a sector's trailing NUL padding, if
// present — only ever applied to the very last sector of the very
// last cluster of a chain.
func stripTrailingSUB(data []byte) []byte {
	trimmed := bytes.TrimRight(data, "\x00")
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == 0x1A {
		return trimmed[:len(trimmed)-1]
	}
	return data
}
