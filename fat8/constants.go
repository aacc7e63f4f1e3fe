package fat8

// Cluster value ranges within a FAT8 file allocation table. Values
// below FinalClusterOffset are ordinary cluster links; values at or
// above it describe how many sectors of the final cluster in a chain
// are actually used, except for the two sentinels ChainTerminalLink
// (whole final cluster used) and UnallocatedCluster (free space).
const (
	FinalClusterOffset = 0xC0
	ReservedClusters   = 0x01
	MaxClusters         = 0xA0
	ChainTerminalLink   = 0xFE
	UnallocatedCluster  = 0xFF
	BootSectorCluster   = 0x00

	FirstMetadataClusterPC88   = 0x4A
	FirstMetadataClusterPC98   = 0x46
	FirstMetadataClusterPC66   = 0x24
	FirstMetadataClusterPC66SR = 0x4A
)

// wildTrackCounts normalizes track counts seen on disks that report
// one more track than their declared format actually uses.
var wildTrackCounts = map[int]int{36: 35, 41: 40, 78: 77, 81: 80}
