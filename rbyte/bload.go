package rbyte

import (
	"encoding/binary"

	dskerrors "github.com/retrocompute/fat8d88/errors"
)

const (
	bloadHeaderSize = 4
	fat8SectorSize  = 512
	// minLoadAddress is the lowest address the RBYTE decoder routine
	// can be loaded at without overwriting itself.
	minLoadAddress = 0x1E0
)

// UnwrapBLOAD strips the 4-byte N88-BASIC BLOAD header (load address,
// stop address) from data saved with the `,P` BLOAD option, returning
// the RBYTE payload it wraps. Any bytes after the payload must be at
// most one sector of padding beginning with Ctrl-Z (SUB, 0x1A).
func UnwrapBLOAD(data []byte) ([]byte, error) {
	if len(data) < bloadHeaderSize {
		return nil, dskerrors.ErrUnexpectedEOF.WithMessage("not enough data for BLOAD header")
	}
	loadAddress := binary.LittleEndian.Uint16(data[0:2])
	stopAddress := binary.LittleEndian.Uint16(data[2:4])
	if stopAddress < loadAddress {
		return nil, dskerrors.ErrImageMalformed.WithMessage("BLOAD header is not correct")
	}
	if loadAddress < minLoadAddress {
		return nil, dskerrors.ErrImageMalformed.WithMessage("RBYTE data cannot overwrite RBYTE decoder")
	}

	payloadLen := int(stopAddress - loadAddress)
	end := bloadHeaderSize + payloadLen
	if end > len(data) {
		return nil, dskerrors.ErrUnexpectedEOF.WithMessage("BLOAD payload runs past end of data")
	}
	payload := data[bloadHeaderSize:end]
	trailing := data[end:]
	if len(trailing) > fat8SectorSize {
		return nil, dskerrors.ErrImageMalformed.WithMessage("extra FAT8 sectors found at end of BLOAD data")
	}
	if len(trailing) > 0 && trailing[0] != 0x1A {
		return nil, dskerrors.ErrImageMalformed.WithMessage("extra bytes at end of BLOAD data must begin with Ctrl-Z (EOF)")
	}
	return payload, nil
}

// WrapBLOAD prefixes data with a BLOAD header for the given load
// address, the inverse of UnwrapBLOAD.
func WrapBLOAD(startAddress uint16, data []byte) []byte {
	out := make([]byte, bloadHeaderSize+len(data))
	binary.LittleEndian.PutUint16(out[0:2], startAddress)
	binary.LittleEndian.PutUint16(out[2:4], startAddress+uint16(len(data)))
	copy(out[bloadHeaderSize:], data)
	return out
}
