package geopatch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constProba(classes, w, h int, v float32) Probabilities {
	p := Probabilities{Classes: classes, Width: w, Height: h, Data: make([]float32, classes*w*h)}
	for i := range p.Data {
		p.Data[i] = v
	}
	return p
}

func TestConvertProbabilities(t *testing.T) {
	proba := []float32{0, 0.4, 0.5, 0.6, 1}
	assert.Equal(t, []float64{0, 0, 0, 1, 1}, ConvertProbabilities(proba, OUTPUT_TYPE_BIT, 0.5))
	assert.Equal(t, []float64{0, 1, 1, 1, 1}, ConvertProbabilities(proba, OUTPUT_TYPE_BIT, 0.3))
	assert.Equal(t, []float64{0, 102, 128, 153, 255}, ConvertProbabilities(proba, OUTPUT_TYPE_UINT8, 0.5))
	out := ConvertProbabilities(proba, OUTPUT_TYPE_FLOAT32, 0.5)
	for i, p := range proba {
		assert.Equal(t, float64(p), out[i])
	}
}

func newTestTileWriter(t *testing.T, outputType string) *TileWriter {
	w, err := NewTileWriter(TileWriterConfig{
		OutputDir:  filepath.Join(t.TempDir(), "pred"),
		OutputType: outputType,
		Classes:    2,
		Width:      32,
		Height:     32,
		Resolution: [2]float64{10, 10},
	})
	require.NoError(t, err)
	return w
}

func TestNewTileWriterDefaults(t *testing.T) {
	w := newTestTileWriter(t, OUTPUT_TYPE_BIT)
	assert.Equal(t, DefaultThreshold, w.cfg.Threshold)
	assert.Equal(t, 32, w.cfg.BlockSize)
	assert.Equal(t, Uint8, w.meta.DataType)
	assert.Contains(t, w.opts, CO_NBITS_ONE)
	assert.Contains(t, w.opts, CO_TILED)
	assert.True(t, fileExists(w.cfg.OutputDir))

	w = newTestTileWriter(t, OUTPUT_TYPE_FLOAT32)
	assert.Equal(t, Float32, w.meta.DataType)
	assert.NotContains(t, w.opts, CO_NBITS_ONE)
}

func TestWriteTileBit(t *testing.T) {
	w := newTestTileWriter(t, OUTPUT_TYPE_BIT)
	gt := [6]float64{600000, 10, 0, 6900000, 0, -10}
	require.NoError(t, w.WriteTile(constProba(2, 32, 32, 0.6), gt, "tile_0.tif"))

	p := readTestPatch(t, filepath.Join(w.cfg.OutputDir, "tile_0.tif"))
	assert.Equal(t, gt, p.gt)
	require.Len(t, p.bands, 2)
	assert.Equal(t, 32, p.width)
	for _, b := range p.bands {
		assert.Equal(t, constBand(32, 32, 1), b)
	}
}

func TestWriteTileAlignsGeoTransform(t *testing.T) {
	w := newTestTileWriter(t, OUTPUT_TYPE_UINT8)
	gt := [6]float64{600003, 10, 0, 6900004, 0, -10}
	require.NoError(t, w.WriteTile(constProba(2, 32, 32, 1), gt, "tile_1.tif"))

	p := readTestPatch(t, filepath.Join(w.cfg.OutputDir, "tile_1.tif"))
	assert.Equal(t, [6]float64{600000, 10, 0, 6900010, 0, -10}, p.gt)
	assert.Equal(t, constBand(32, 32, 255), p.bands[0])
}

func TestWriteTileShapeMismatch(t *testing.T) {
	w := newTestTileWriter(t, OUTPUT_TYPE_UINT8)
	gt := [6]float64{600000, 10, 0, 6900000, 0, -10}
	err := w.WriteTile(constProba(3, 32, 32, 0.5), gt, "bad.tif")
	assert.ErrorIs(t, err, ErrWrongProbaShape)
	err = w.WriteTile(constProba(2, 16, 32, 0.5), gt, "bad.tif")
	assert.ErrorIs(t, err, ErrWrongProbaShape)
	assert.False(t, fileExists(filepath.Join(w.cfg.OutputDir, "bad.tif")))
}

func TestWriteBatch(t *testing.T) {
	w := newTestTileWriter(t, OUTPUT_TYPE_FLOAT32)
	gt := [6]float64{600000, 10, 0, 6900000, 0, -10}
	probas := []Probabilities{constProba(2, 32, 32, 0.25), constProba(2, 32, 32, 0.75)}

	err := w.WriteBatch(probas, []string{"a.tif"}, [][6]float64{gt, gt})
	assert.ErrorIs(t, err, ErrBatchSizeMismatch)

	require.NoError(t, w.WriteBatch(probas, []string{"a.tif", "b.tif"}, [][6]float64{gt, gt}))
	a := readTestPatch(t, filepath.Join(w.cfg.OutputDir, "a.tif"))
	b := readTestPatch(t, filepath.Join(w.cfg.OutputDir, "b.tif"))
	assert.Equal(t, 0.25, a.bands[1][0])
	assert.Equal(t, 0.75, b.bands[0][0])
}
