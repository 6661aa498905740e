package geopatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanReadInterior(t *testing.T) {
	p, ok := planRead(Window{ColOff: 10, RowOff: 20, Width: 64, Height: 32}, 100, 100, 128, 64)
	assert.True(t, ok)
	assert.Equal(t, readPlan{srcX: 10, srcY: 20, srcW: 64, srcH: 32, dstX: 0, dstY: 0, dstW: 128, dstH: 64}, p)
}

func TestPlanReadPartial(t *testing.T) {
	// 左侧与上方各有一半越界
	p, ok := planRead(Window{ColOff: -8, RowOff: -4, Width: 16, Height: 8}, 100, 100, 32, 16)
	assert.True(t, ok)
	assert.Equal(t, readPlan{srcX: 0, srcY: 0, srcW: 8, srcH: 4, dstX: 16, dstY: 8, dstW: 16, dstH: 8}, p)

	p, ok = planRead(Window{ColOff: 96, RowOff: 0, Width: 8, Height: 8}, 100, 100, 8, 8)
	assert.True(t, ok)
	assert.Equal(t, readPlan{srcX: 96, srcY: 0, srcW: 4, srcH: 8, dstX: 0, dstY: 0, dstW: 4, dstH: 8}, p)
}

func TestPlanReadRoundsFractionalWindow(t *testing.T) {
	p, ok := planRead(Window{ColOff: 9.6, RowOff: 19.4, Width: 63.7, Height: 32.2}, 100, 100, 64, 32)
	assert.True(t, ok)
	assert.Equal(t, 10, p.srcX)
	assert.Equal(t, 19, p.srcY)
	assert.Equal(t, 64, p.srcW)
	assert.Equal(t, 32, p.srcH)
}

func TestPlanReadEmpty(t *testing.T) {
	_, ok := planRead(Window{ColOff: 200, RowOff: 0, Width: 10, Height: 10}, 100, 100, 10, 10)
	assert.False(t, ok)
	_, ok = planRead(Window{Width: 0, Height: 10}, 100, 100, 10, 10)
	assert.False(t, ok)
}

func TestGeoTransformForShape(t *testing.T) {
	gt := geoTransformForShape(Bounds{Left: 100, Bottom: 0, Right: 164, Top: 32}, 128, 64)
	assert.Equal(t, [6]float64{100, 0.5, 0, 32, 0, -0.5}, gt)
}
