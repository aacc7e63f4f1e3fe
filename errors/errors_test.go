package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/retrocompute/fat8d88/errors"
	"github.com/stretchr/testify/assert"
)

func TestDiskoErrorWithMessage(t *testing.T) {
	newErr := errors.ErrFATFault.WithMessage("cluster 0x12 is reserved")
	assert.Equal(
		t, "FAT8 file allocation table is unusable: cluster 0x12 is reserved", newErr.Error())
	assert.ErrorIs(t, newErr, errors.ErrFATFault)
}

func TestDiskoErrorWrap(t *testing.T) {
	originalErr := stderrors.New("short read")
	newErr := errors.ErrContainerMalformed.WrapError(originalErr)
	expectedMessage := "D88 container is malformed: short read"

	assert.EqualValues(t, expectedMessage, newErr.Error())
	assert.ErrorIs(t, newErr, originalErr)
}
