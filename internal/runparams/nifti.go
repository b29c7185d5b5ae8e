// Package runparams derives per-run scan parameters (sampling period and
// acquired-volume count) from NIfTI-1 image headers. Only the fixed 348-byte
// header is read; voxel data is never touched.
package runparams

// #region imports
import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
)

// #endregion imports

// #region constants

const (
	headerSize = 348

	dimOffset    = 40  // int16[8]
	pixdimOffset = 76  // float32[8]
	magicOffset  = 344 // "n+1\x00" or "ni1\x00"
)

// DefaultTRS is the fallback repetition time used when the header does not
// carry one. Matches the acquisition protocol's nominal TR.
const DefaultTRS = 2.5

// #endregion constants

// #region header

// Header holds the fields of a NIfTI-1 header needed for run parameters.
type Header struct {
	// Dim is the image dimension array; Dim[0] is the number of dimensions
	// and Dim[4] the number of volumes of a 4-D series.
	Dim [8]int16
	// PixDim carries grid spacings; PixDim[4] is the repetition time in
	// seconds for a 4-D series.
	PixDim [8]float32
}

// VolumeCount returns the number of acquired volumes: Dim[4] for a 4-D
// series, 1 for a plain 3-D image.
func (h *Header) VolumeCount() int {
	if h.Dim[0] < 4 {
		return 1
	}
	return int(h.Dim[4])
}

// RepetitionTime returns the sampling period in seconds, rounded to five
// decimals, and whether the header defines one at all.
func (h *Header) RepetitionTime() (float64, bool) {
	if h.Dim[0] < 4 {
		return 0, false
	}
	tr := math.Round(float64(h.PixDim[4])*1e5) / 1e5
	if tr == 0 {
		return 0, false
	}
	return tr, true
}

// #endregion header

// #region read-header

// ReadHeader decodes a NIfTI-1 header from r. Both byte orders are
// accepted; the order is detected from the sizeof_hdr field.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(buf[0:4]) != headerSize {
		order = binary.BigEndian
		if order.Uint32(buf[0:4]) != headerSize {
			return nil, fmt.Errorf("not a NIfTI-1 header: sizeof_hdr %d", binary.LittleEndian.Uint32(buf[0:4]))
		}
	}

	magic := strings.TrimRight(string(buf[magicOffset:magicOffset+4]), "\x00")
	if magic != "n+1" && magic != "ni1" {
		return nil, fmt.Errorf("not a NIfTI-1 header: magic %q", magic)
	}

	var h Header
	for i := 0; i < 8; i++ {
		h.Dim[i] = int16(order.Uint16(buf[dimOffset+2*i : dimOffset+2*i+2]))
		h.PixDim[i] = math.Float32frombits(order.Uint32(buf[pixdimOffset+4*i : pixdimOffset+4*i+4]))
	}
	return &h, nil
}

// ReadHeaderFile decodes the header of the NIfTI file at path. Gzipped
// images (.nii.gz) are handled transparently.
func ReadHeaderFile(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", path, err)
	}

	var r io.Reader = br
	if head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: gunzip: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	h, err := ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// #endregion read-header

// #region scan-params

// ScanParams bundles the two scalars the segmenter needs per run.
type ScanParams struct {
	TRS   float64 // sampling period, seconds per volume
	NVols int     // acquired volumes
}

// FromHeaderFile derives scan parameters from the functional image at path.
// A missing repetition time falls back to DefaultTRS with a logged warning;
// a repetition time at or below one second is rejected as implausible for
// this acquisition.
func FromHeaderFile(path string, logger *slog.Logger) (ScanParams, error) {
	if logger == nil {
		logger = slog.Default()
	}

	h, err := ReadHeaderFile(path)
	if err != nil {
		return ScanParams{}, err
	}

	tr, ok := h.RepetitionTime()
	if !ok {
		logger.Warn("image header has no repetition time, using default",
			"path", path, "default_tr_s", DefaultTRS)
		tr = DefaultTRS
	}
	if tr <= 1 {
		return ScanParams{}, fmt.Errorf("%s: implausible repetition time %gs", path, tr)
	}

	return ScanParams{TRS: tr, NVols: h.VolumeCount()}, nil
}

// #endregion scan-params
