package runparams

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeHeader assembles a minimal NIfTI-1 header with the given geometry.
func makeHeader(order binary.ByteOrder, ndim, nvols int16, tr float32) []byte {
	buf := make([]byte, headerSize)
	order.PutUint32(buf[0:4], headerSize)

	dim := [8]int16{ndim, 64, 64, 32, nvols, 1, 1, 1}
	for i, d := range dim {
		order.PutUint16(buf[dimOffset+2*i:], uint16(d))
	}

	pixdim := [8]float32{1, 1.2, 1.2, 1.2, tr, 0, 0, 0}
	for i, p := range pixdim {
		order.PutUint32(buf[pixdimOffset+4*i:], math.Float32bits(p))
	}

	copy(buf[magicOffset:], "n+1\x00")
	return buf
}

func TestReadHeaderLittleEndian(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(makeHeader(binary.LittleEndian, 4, 420, 2.5)))
	require.NoError(t, err)

	assert.Equal(t, 420, h.VolumeCount())
	tr, ok := h.RepetitionTime()
	require.True(t, ok)
	assert.InDelta(t, 2.5, tr, 1e-9)
}

func TestReadHeaderBigEndian(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(makeHeader(binary.BigEndian, 4, 300, 3.0)))
	require.NoError(t, err)

	assert.Equal(t, 300, h.VolumeCount())
	tr, ok := h.RepetitionTime()
	require.True(t, ok)
	assert.InDelta(t, 3.0, tr, 1e-9)
}

func TestRepetitionTimeRounding(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(makeHeader(binary.LittleEndian, 4, 10, 2.4999999)))
	require.NoError(t, err)

	tr, ok := h.RepetitionTime()
	require.True(t, ok)
	assert.Equal(t, 2.5, tr)
}

func TestThreeDimensionalImage(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(makeHeader(binary.LittleEndian, 3, 0, 0)))
	require.NoError(t, err)

	assert.Equal(t, 1, h.VolumeCount())
	_, ok := h.RepetitionTime()
	assert.False(t, ok)
}

func TestReadHeaderRejectsGarbage(t *testing.T) {
	_, err := ReadHeader(bytes.NewReader(make([]byte, headerSize)))
	assert.Error(t, err)

	bad := makeHeader(binary.LittleEndian, 4, 10, 2.5)
	copy(bad[magicOffset:], "nope")
	_, err = ReadHeader(bytes.NewReader(bad))
	assert.Error(t, err)

	_, err = ReadHeader(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestReadHeaderFileGzipped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "func.nii.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(makeHeader(binary.LittleEndian, 4, 420, 2.5))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	h, err := ReadHeaderFile(path)
	require.NoError(t, err)
	assert.Equal(t, 420, h.VolumeCount())
}

func TestFromHeaderFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("header TR", func(t *testing.T) {
		path := filepath.Join(dir, "a.nii")
		require.NoError(t, os.WriteFile(path, makeHeader(binary.LittleEndian, 4, 420, 2.5), 0o644))

		params, err := FromHeaderFile(path, nil)
		require.NoError(t, err)
		assert.Equal(t, ScanParams{TRS: 2.5, NVols: 420}, params)
	})

	t.Run("default TR for 3-D image", func(t *testing.T) {
		path := filepath.Join(dir, "b.nii")
		require.NoError(t, os.WriteFile(path, makeHeader(binary.LittleEndian, 3, 0, 0), 0o644))

		params, err := FromHeaderFile(path, nil)
		require.NoError(t, err)
		assert.Equal(t, ScanParams{TRS: DefaultTRS, NVols: 1}, params)
	})

	t.Run("default TR for zero pixdim", func(t *testing.T) {
		path := filepath.Join(dir, "d.nii")
		require.NoError(t, os.WriteFile(path, makeHeader(binary.LittleEndian, 4, 300, 0), 0o644))

		params, err := FromHeaderFile(path, nil)
		require.NoError(t, err)
		assert.Equal(t, ScanParams{TRS: DefaultTRS, NVols: 300}, params)
	})

	t.Run("implausible TR", func(t *testing.T) {
		path := filepath.Join(dir, "c.nii")
		require.NoError(t, os.WriteFile(path, makeHeader(binary.LittleEndian, 4, 420, 0.5), 0o644))

		_, err := FromHeaderFile(path, nil)
		assert.Error(t, err)
	})
}
