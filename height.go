package geopatch

import (
	"fmt"

	"github.com/wgdzlh/geopatch/log"

	"github.com/airbusgeo/godal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// 由DSM与DTM合成高程差波段：分别归一化后相减，放大5倍并截断到[0.2, 255]。
// 整数编码下0.2无法表示，下界取1以区分“无高度”与0值。
func SynthesizeHeight(surface, terrain []float64, dt PixelType) []float64 {
	maxVal := dt.MaxValue()
	if !dt.IsInteger() {
		maxVal = Uint8.MaxValue()
	}
	s := Normalize(surface, dt, maxVal)
	t := Normalize(terrain, dt, maxVal)
	lower := HeightLowerBound
	if dt.IsInteger() {
		lower = 1
	}
	band := make([]float64, len(s))
	for i := range band {
		v := (s[i] - t[i]) * HeightScaleFactor
		if v < HeightLowerBound {
			v = lower
		} else if v > HeightUpperBound {
			v = HeightUpperBound
		}
		band[i] = castValue(v, dt)
	}
	return band
}

// 整幅读取DSM/DTM第一波段并合成高程差，两者尺寸须一致
func (g *GeoPatcher) HeightBandFromFiles(surfacePath, terrainPath string, dt PixelType) (band []float64, width, height int, err error) {
	surface, sw, sh, err := readFullBand(surfacePath)
	if err != nil {
		return
	}
	terrain, tw, th, err := readFullBand(terrainPath)
	if err != nil {
		return
	}
	if sw != tw || sh != th {
		log.Error(g.logTag+"surface and terrain size differ", zap.Int("sw", sw), zap.Int("sh", sh), zap.Int("tw", tw), zap.Int("th", th))
		err = fmt.Errorf("%w: %dx%d vs %dx%d", ErrUndefinedHeightInputs, sw, sh, tw, th)
		return
	}
	band = SynthesizeHeight(surface, terrain, dt)
	width, height = sw, sh
	return
}

func readFullBand(path string) (data []float64, width, height int, err error) {
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		err = ioFailure(path, err)
		return
	}
	defer func() {
		if e := ds.Close(); e != nil {
			err = multierr.Append(err, ioFailure(path, e))
		}
	}()
	bands := ds.Bands()
	if len(bands) == 0 {
		err = fmt.Errorf("%w: %s has no band", ErrBandIndexOutOfRange, path)
		return
	}
	st := bands[0].Structure()
	width, height = st.SizeX, st.SizeY
	data = make([]float64, width*height)
	if e := bands[0].Read(0, 0, data, width, height); e != nil {
		err = ioFailure(path, e)
	}
	return
}
