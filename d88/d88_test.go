package d88_test

import (
	"encoding/binary"
	"testing"

	"github.com/retrocompute/fat8d88/d88"
	"github.com/stretchr/testify/require"
)

// buildMinimalImage constructs a single-track, single-sector D88 image:
// track 0, side 0, sector 1, 128-byte sector holding payload.
func buildMinimalImage(payload []byte) []byte {
	const firstTrackOffset = 0x2A0 // end of a 160-entry track table (0x20 + 160*4)
	sectorSize := 128
	diskSize := firstTrackOffset + 16 + sectorSize

	data := make([]byte, diskSize)
	copy(data[:0x10], []byte("TESTDISK"))
	binary.LittleEndian.PutUint32(data[0x1C:0x20], uint32(diskSize))
	binary.LittleEndian.PutUint32(data[0x20:0x24], uint32(firstTrackOffset))

	header := data[firstTrackOffset : firstTrackOffset+16]
	header[0] = 0 // track
	header[1] = 0 // side
	header[2] = 1 // sector number
	header[3] = 0 // size code -> 128 bytes
	binary.LittleEndian.PutUint16(header[4:6], 1)

	sectorData := data[firstTrackOffset+16 : firstTrackOffset+16+sectorSize]
	copy(sectorData, payload)
	return data
}

func TestParseMinimalDisk(t *testing.T) {
	data := buildMinimalImage([]byte("hello, FAT8"))

	disk, err := d88.Parse(data)
	require.NoError(t, err)
	require.Equal(t, "TESTDISK", disk.NameOrComment)
	require.False(t, disk.WriteProtected)
	require.Equal(t, 1, disk.FoundTracks)
	require.Equal(t, 1, disk.FoundSides)
	require.Equal(t, 1, disk.FoundTotalSectors)

	sectors := disk.Tracks[d88.TrackSide{Track: 0, Side: 0}]
	require.Len(t, sectors, 1)
	require.Equal(t, byte(1), sectors[0].Number)
	require.Equal(t, "hello, FAT8", string(sectors[0].Data[:11]))
}

func TestParseRejectsTruncatedHeader(t *testing.T) {
	_, err := d88.Parse(make([]byte, 10))
	require.Error(t, err)
}

func TestParseRejectsOversizedSizeField(t *testing.T) {
	data := buildMinimalImage(nil)
	binary.LittleEndian.PutUint32(data[0x1C:0x20], uint32(len(data)+1))
	_, err := d88.Parse(data)
	require.Error(t, err)
}

func TestParseDetectsWriteProtectBit(t *testing.T) {
	data := buildMinimalImage(nil)
	data[0x1A] |= 0x10
	disk, err := d88.Parse(data)
	require.NoError(t, err)
	require.True(t, disk.WriteProtected)
}

func TestParseRejectsSectorsInTrackDrift(t *testing.T) {
	const firstTrackOffset = 0x2A0
	sectorSize := 128
	diskSize := firstTrackOffset + 2*(16+sectorSize)

	data := make([]byte, diskSize)
	copy(data[:0x10], []byte("TESTDISK"))
	binary.LittleEndian.PutUint32(data[0x1C:0x20], uint32(diskSize))
	binary.LittleEndian.PutUint32(data[0x20:0x24], uint32(firstTrackOffset))

	header1 := data[firstTrackOffset : firstTrackOffset+16]
	header1[2] = 1 // sector number
	binary.LittleEndian.PutUint16(header1[4:6], 2)

	secondHeaderOffset := firstTrackOffset + 16 + sectorSize
	header2 := data[secondHeaderOffset : secondHeaderOffset+16]
	header2[2] = 2 // sector number
	binary.LittleEndian.PutUint16(header2[4:6], 3) // disagrees with header1's count of 2

	_, err := d88.Parse(data)
	require.Error(t, err)
}
