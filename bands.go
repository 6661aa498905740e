package geopatch

import (
	"github.com/wgdzlh/geopatch/log"

	"go.uber.org/zap"
)

// 统计堆叠所需波段数：各普通图层的实际波段数之和，存在高程对时再加1
func (g *GeoPatcher) CountBands(set RasterSet) (n int, err error) {
	var c int
	for _, l := range set.Layers {
		if c, err = rasterBandCount(l.Path); err != nil {
			return
		}
		n += c
	}
	if set.Elevation != nil {
		n++
	}
	log.Info(g.logTag+"counted bands for stacking", zap.Int("layers", len(set.Layers)), zap.Bool("height", set.Elevation != nil), zap.Int("bands", n))
	return
}

// 切片编码类型：源栅格中最宽的整数编码，默认uint8
func MaxPatchType(set RasterSet) PixelType {
	dt := Uint8
	for _, src := range set.Sources() {
		info, ok := pixelTypes[src.DataType]
		if ok && info.rank > pixelTypes[dt].rank {
			dt = src.DataType
		}
	}
	return dt
}
