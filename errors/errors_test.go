package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vegasq/fitscat/errors"
)

func TestErrors(t *testing.T) {
	t.Run("Is", func(t *testing.T) {
		uncoded := fmt.Errorf("plain error")
		mhf := errors.Newf(errors.MissingHeaderField, "fits file is missing header field: %s", "Beamline Energy")
		nfm := errors.Newf(errors.NoFilesMatched, "no files match pattern: %s", "*.fits")

		tests := []struct {
			err    error
			target errors.Code
			exp    bool
		}{
			{err: uncoded, target: errors.Uncoded, exp: true},
			{err: uncoded, target: errors.MissingHeaderField, exp: false},
			{err: mhf, target: errors.MissingHeaderField, exp: true},
			{err: mhf, target: errors.NoFilesMatched, exp: false},
			{err: nfm, target: errors.NoFilesMatched, exp: true},
			{err: errors.Wrap(mhf, "ingesting file"), target: errors.MissingHeaderField, exp: true},
		}
		for i, test := range tests {
			assert.Equal(t, test.exp, errors.Is(test.err, test.target), "test: %d", i)
		}
	})

	t.Run("CodeOf", func(t *testing.T) {
		err := errors.New(errors.DirectoryNotFound, "directory not found: /no/such/dir")
		assert.Equal(t, errors.DirectoryNotFound, errors.CodeOf(err))
		assert.Equal(t, errors.DirectoryNotFound, errors.CodeOf(errors.Wrap(err, "scanning")))
		assert.Equal(t, errors.Uncoded, errors.CodeOf(fmt.Errorf("plain")))
	})

	t.Run("WrapCode", func(t *testing.T) {
		cause := fmt.Errorf("short read")
		err := errors.WrapCode(cause, errors.ContainerDecodeFailure, "decoding sample.fits")
		assert.True(t, errors.Is(err, errors.ContainerDecodeFailure))
		assert.Equal(t, "decoding sample.fits: short read", errors.Cause(err).Error())
		assert.Nil(t, errors.WrapCode(nil, errors.ContainerDecodeFailure, "noop"))
	})

	t.Run("MessageNamesOffender", func(t *testing.T) {
		err := errors.Newf(errors.MissingImageHDU, "no image HDU found in %s", "/data/run-00042.fits")
		assert.Contains(t, err.Error(), "/data/run-00042.fits")
	})
}
