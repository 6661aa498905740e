package geopatch

import (
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRasterSource(t *testing.T) {
	path := writeTestRaster(t, tempPath(t, "src.tif"), testRaster{
		width: 64, height: 32, dt: godal.UInt16,
		gt:    [6]float64{1000, 0.5, 0, 2000, 0, -0.5},
		bands: [][]float64{constBand(64, 32, 1), constBand(64, 32, 2)},
	})
	shape := PatchShape{Width: 32, Height: 32, ResX: 0.2, ResY: 0.2}

	src, err := OpenRasterSource("NIR", path, []int{2}, shape)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, src.Bands)
	assert.Equal(t, 0.5, src.ResX)
	assert.Equal(t, 0.5, src.ResY)
	assert.Equal(t, Uint16, src.DataType)
	assert.Equal(t, 2, src.BandCount)
	assert.NotEmpty(t, src.CRS)
	assert.InDelta(t, 2.5, src.Scale.ScaleX, 1e-9)
	assert.InDelta(t, 12.8, src.Scale.ScaledWidth, 1e-9)

	src, err = OpenRasterSource("ALL", path, nil, shape)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, src.Bands)

	_, err = OpenRasterSource("BAD", path, []int{3}, shape)
	assert.ErrorIs(t, err, ErrBandIndexOutOfRange)
	_, err = OpenRasterSource("NONE", tempPath(t, "none.tif"), nil, shape)
	assert.ErrorIs(t, err, ErrIOFailure)
}

func TestTiffCreationOptions(t *testing.T) {
	assert.Equal(t, []string{CO_COMPRESS, CO_TILED, "BLOCKXSIZE=256", "BLOCKYSIZE=256"}, tiffCreationOptions(256, false, false))
	assert.Equal(t, []string{CO_COMPRESS}, tiffCreationOptions(100, false, false))
	opts := tiffCreationOptions(32, true, true)
	assert.Contains(t, opts, CO_SPARSE)
	assert.Contains(t, opts, CO_NBITS_ONE)
}

func TestCreatePatchRejectsUnknownType(t *testing.T) {
	meta := PatchMetadata{DataType: "int8", Count: 1, Width: 4, Height: 4}
	_, err := createPatch(tempPath(t, "x.tif"), meta, nil)
	assert.ErrorIs(t, err, ErrUnsupportedPixelType)
}
