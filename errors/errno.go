// Sentinel error kinds for the D88/FAT8 decoding pipeline. Every kind
// named in the error handling design is a distinct DiskoError constant
// so a caller can compare against it with errors.Is or a type switch,
// the way the teacher's POSIX errno set did for its own domain.

package errors

import (
	"fmt"
)

type DiskoError string

const ErrContainerMalformed = DiskoError("D88 container is malformed")
const ErrDirectoryFault = DiskoError("FAT8 directory entry is malformed")
const ErrFATFault = DiskoError("FAT8 file allocation table is unusable")
const ErrReconstructionFault = DiskoError("file data could not be reconstructed")
const ErrFormatUnknown = DiskoError("FAT8 disk format could not be determined")
const ErrImageMalformed = DiskoError("RBYTE image data is malformed")
const ErrCharsetRoundTripFailure = DiskoError("decoded text does not round-trip to the original bytes")
const ErrNotFound = DiskoError("no such file or directory entry")
const ErrInvalidArgument = DiskoError("invalid argument")
const ErrUnexpectedEOF = DiskoError("unexpected end of data")

func (e DiskoError) Error() string {
	return string(e)
}

func (e DiskoError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e,
	}
}

func (e DiskoError) WrapError(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}
