package geopatch

import (
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountBands(t *testing.T) {
	dir := t.TempDir()
	gt := [6]float64{600000, 10, 0, 6900000, 0, -10}
	band := constBand(4, 4, 1)
	a := writeTestRaster(t, dir+"/a.tif", testRaster{width: 4, height: 4, dt: godal.Byte, gt: gt, bands: [][]float64{band, band, band}})
	b := writeTestRaster(t, dir+"/b.tif", testRaster{width: 4, height: 4, dt: godal.Byte, gt: gt, bands: [][]float64{band, band}})
	dsm := writeTestRaster(t, dir+"/dsm.tif", testRaster{width: 4, height: 4, dt: godal.Float32, gt: gt, bands: [][]float64{band}})
	dtm := writeTestRaster(t, dir+"/dtm.tif", testRaster{width: 4, height: 4, dt: godal.Float32, gt: gt, bands: [][]float64{band}})
	shape := PatchShape{Width: 4, Height: 4, ResX: 10, ResY: 10}
	g := NewGeoPatcher()

	open := func(name, path string) RasterSource {
		src, err := OpenRasterSource(name, path, nil, shape)
		require.NoError(t, err)
		return src
	}

	set, err := NewRasterSet([]RasterSource{open("A", a), open("B", b)}, false)
	require.NoError(t, err)
	n, err := g.CountBands(set)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	set, err = NewRasterSet([]RasterSource{open("A", a), open(SURFACE_MODEL_NAME, dsm), open(TERRAIN_MODEL_NAME, dtm)}, true)
	require.NoError(t, err)
	n, err = g.CountBands(set)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, n, set.DeclaredBands())
}

func TestCountBandsMissingRaster(t *testing.T) {
	set := RasterSet{Layers: []RasterSource{{Name: "A", Path: tempPath(t, "missing.tif")}}}
	_, err := NewGeoPatcher().CountBands(set)
	assert.ErrorIs(t, err, ErrIOFailure)
}
