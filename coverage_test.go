package geopatch

import (
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageIndexFilterInterior(t *testing.T) {
	f := newStackFixture(t)
	// 右半部分另一幅栅格，只与左侧栅格部分重叠
	half := writeTestRaster(t, f.dir+"/half.tif", testRaster{
		width: stackSize / 2, height: stackSize, dt: godal.Byte,
		gt:    [6]float64{stackOrigX + 2560, stackRes, 0, stackOrigY, 0, -stackRes},
		bands: [][]float64{constBand(stackSize/2, stackSize, 1)},
	})
	idx, err := NewCoverageIndex(f.rgb, f.coarse, f.rgb)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.count)

	centers := []SampleCenter{
		{X: stackOrigX + 2560, Y: stackOrigY - 2560, ImageFile: "in"},
		{X: stackOrigX + 100, Y: stackOrigY - 100, ImageFile: "edge"},
		{X: stackOrigX - 5000, Y: stackOrigY + 5000, ImageFile: "out"},
	}
	kept, dropped := idx.FilterInterior(centers, f.shape)
	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 1)
	assert.Equal(t, "in", kept[0].ImageFile)

	idx, err = NewCoverageIndex(f.rgb, half)
	require.NoError(t, err)
	assert.False(t, idx.Interior(stackOrigX+2560, stackOrigY-2560, f.shape))
	assert.True(t, idx.Interior(stackOrigX+3840, stackOrigY-2560, f.shape))
	assert.Equal(t, []string{f.rgb}, idx.Covering(Bounds{Left: stackOrigX, Bottom: stackOrigY - 100, Right: stackOrigX + 100, Top: stackOrigY}))
}

func TestCoverageIndexMissingRaster(t *testing.T) {
	_, err := NewCoverageIndex(tempPath(t, "nope.tif"))
	assert.ErrorIs(t, err, ErrIOFailure)
}
