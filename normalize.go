package geopatch

import (
	"math"

	"github.com/wgdzlh/geopatch/log"

	"go.uber.org/zap"
)

// 按目标编码归一化：以数组最大值映射到maxTypeValue做线性缩放（不把最小值拉到0），
// 全零数组不缩放。结果先四舍五入再截断到目标类型取值范围。
func Normalize(data []float64, dt PixelType, maxTypeValue float64) []float64 {
	ret := make([]float64, len(data))
	copy(ret, data)
	peak := maxOf(ret)
	log.Debug("normalize band", zap.Float64("max", peak), zap.String("dtype", string(dt)))
	if peak != 0 {
		k := maxTypeValue / peak
		for i := range ret {
			ret[i] *= k
		}
	}
	castInPlace(ret, dt)
	return ret
}

func maxOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// 转换为目标类型可表示的值
func castValue(v float64, dt PixelType) float64 {
	if dt.IsInteger() {
		v = math.Round(v)
		if v < 0 || math.IsNaN(v) {
			return 0
		}
		if m := dt.MaxValue(); v > m {
			return m
		}
		return v
	}
	return float64(float32(v))
}

func castInPlace(data []float64, dt PixelType) {
	for i, v := range data {
		data[i] = castValue(v, dt)
	}
}

// 生成GDAL写入所需的类型化缓冲区
func toBuffer(data []float64, dt PixelType) (buf interface{}, err error) {
	switch dt {
	case Uint8:
		b := make([]uint8, len(data))
		for i, v := range data {
			b[i] = uint8(castValue(v, dt))
		}
		buf = b
	case Uint16:
		b := make([]uint16, len(data))
		for i, v := range data {
			b[i] = uint16(castValue(v, dt))
		}
		buf = b
	case Uint32:
		b := make([]uint32, len(data))
		for i, v := range data {
			b[i] = uint32(castValue(v, dt))
		}
		buf = b
	case Float32:
		b := make([]float32, len(data))
		for i, v := range data {
			b[i] = float32(v)
		}
		buf = b
	default:
		err = ErrUnsupportedPixelType
	}
	return
}
