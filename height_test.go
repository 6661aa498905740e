package geopatch

import (
	"math/rand"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeHeightRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, dt := range []PixelType{Uint8, Uint16, Float32} {
		surface := make([]float64, 4096)
		terrain := make([]float64, 4096)
		for i := range surface {
			surface[i] = rng.Float64() * 400
			terrain[i] = rng.Float64() * 400
		}
		band := SynthesizeHeight(surface, terrain, dt)
		require.Len(t, band, len(surface))
		for _, v := range band {
			assert.GreaterOrEqual(t, v, float64(float32(HeightLowerBound)))
			assert.LessOrEqual(t, v, HeightUpperBound)
		}
	}
}

func TestSynthesizeHeightValues(t *testing.T) {
	// 归一化后 surface=[255,255,255,51]，terrain=[0,250,255,0]
	surface := []float64{100, 100, 100, 20}
	terrain := []float64{0, 98.039, 100, 0}
	band := SynthesizeHeight(surface, terrain, Uint8)
	assert.Equal(t, []float64{255, 25, 1, 255}, band)

	band = SynthesizeHeight([]float64{10, 10}, []float64{10, 10}, Float32)
	assert.Equal(t, []float64{float64(float32(0.2)), float64(float32(0.2))}, band)
}

func TestSynthesizeHeightAllZero(t *testing.T) {
	band := SynthesizeHeight(make([]float64, 4), make([]float64, 4), Uint8)
	assert.Equal(t, []float64{1, 1, 1, 1}, band)
}

func TestHeightBandFromFiles(t *testing.T) {
	gt := [6]float64{600000, 1, 0, 6900000, 0, -1}
	dir := t.TempDir()
	dsm := writeTestRaster(t, dir+"/dsm.tif", testRaster{width: 8, height: 8, dt: godal.Float32, gt: gt, bands: [][]float64{constBand(8, 8, 30)}})
	dtm := writeTestRaster(t, dir+"/dtm.tif", testRaster{width: 8, height: 8, dt: godal.Float32, gt: gt, bands: [][]float64{constBand(8, 8, 0)}})
	band, w, h, err := NewGeoPatcher().HeightBandFromFiles(dsm, dtm, Uint8)
	require.NoError(t, err)
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
	assert.Equal(t, constBand(8, 8, 255), band)

	small := writeTestRaster(t, dir+"/small.tif", testRaster{width: 4, height: 4, dt: godal.Float32, gt: gt, bands: [][]float64{constBand(4, 4, 0)}})
	_, _, _, err = NewGeoPatcher().HeightBandFromFiles(dsm, small, Uint8)
	assert.ErrorIs(t, err, ErrUndefinedHeightInputs)
}
