package geopatch

import (
	"fmt"
	"math"
)

func isClose(a, b, relTol float64) bool {
	return math.Abs(a-b) <= relTol*math.Max(math.Abs(a), math.Abs(b))
}

// 计算源栅格相对目标分辨率的缩放系数及窗口尺寸
// 两轴分辨率均在容差内时视为已对齐，不做重采样
func ScaleFactorAndSize(native, desired [2]float64, width, height int) Scale {
	if isClose(native[0], desired[0], ResolutionRelTol) && isClose(native[1], desired[1], ResolutionRelTol) {
		return Scale{1, 1, float64(width), float64(height)}
	}
	sx := native[0] / desired[0]
	sy := native[1] / desired[1]
	return Scale{
		ScaleX:       sx,
		ScaleY:       sy,
		ScaledWidth:  float64(width) / sx,
		ScaledHeight: float64(height) / sy,
	}
}

// 以(x,y)为中心，宽高为 width*resX × height*resY 的地理范围
func BoundsFromCenter(x, y, width, height, resX, resY float64) Bounds {
	xSide := 0.5 * width * resX
	ySide := 0.5 * height * resY
	return Bounds{
		Left:   x - xSide,
		Bottom: y - ySide,
		Right:  x + xSide,
		Top:    y + ySide,
	}
}

// 地理范围转为栅格像素窗口（北向上栅格）
func WindowFromBounds(b Bounds, gt [6]float64) Window {
	xs := [4]float64{b.Left, b.Right, b.Right, b.Left}
	ys := [4]float64{b.Top, b.Top, b.Bottom, b.Bottom}
	minC, minR := math.Inf(1), math.Inf(1)
	maxC, maxR := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		c := (xs[i] - gt[0]) / gt[1]
		r := (ys[i] - gt[3]) / gt[5]
		minC, maxC = math.Min(minC, c), math.Max(maxC, c)
		minR, maxR = math.Min(minR, r), math.Max(maxR, r)
	}
	return Window{ColOff: minC, RowOff: minR, Width: maxC - minC, Height: maxR - minR}
}

// 窗口左上角对应的仿射变换
func WindowGeoTransform(w Window, gt [6]float64) [6]float64 {
	return [6]float64{
		gt[0] + w.ColOff*gt[1] + w.RowOff*gt[2],
		gt[1],
		gt[2],
		gt[3] + w.ColOff*gt[4] + w.RowOff*gt[5],
		gt[4],
		gt[5],
	}
}

// 窗口的地理范围
func WindowBounds(w Window, gt [6]float64) Bounds {
	wgt := WindowGeoTransform(w, gt)
	x0, y0 := wgt[0], wgt[3]
	x1 := x0 + w.Width*gt[1]
	y1 := y0 + w.Height*gt[5]
	return Bounds{
		Left:   math.Min(x0, x1),
		Bottom: math.Min(y0, y1),
		Right:  math.Max(x0, x1),
		Top:    math.Max(y0, y1),
	}
}

// 将仿射变换对齐到分辨率网格，返回对齐后的变换及覆盖原范围所需的尺寸
func AlignedTarget(gt [6]float64, width, height int, res [2]float64) (aligned [6]float64, w, h int) {
	xmin := gt[0]
	ymin := gt[3] + float64(height)*gt[5]
	xmax := gt[0] + float64(width)*gt[1]
	ymax := gt[3]

	xmin = math.Floor(xmin/res[0]) * res[0]
	xmax = math.Ceil(xmax/res[0]) * res[0]
	ymin = math.Floor(ymin/res[1]) * res[1]
	ymax = math.Ceil(ymax/res[1]) * res[1]

	aligned = [6]float64{xmin, res[0], 0, ymax, 0, -res[1]}
	w = max(int(math.Ceil((xmax-xmin)/res[0])), 1)
	h = max(int(math.Ceil((ymax-ymin)/res[1])), 1)
	return
}

// (a,b,c,d,e,f) 顺序的仿射系数转为GDAL GeoTransform
func AffineToGeoTransform(a [6]float64) [6]float64 {
	return [6]float64{a[2], a[0], a[1], a[5], a[3], a[4]}
}

func GeoTransformToAffine(gt [6]float64) [6]float64 {
	return [6]float64{gt[1], gt[2], gt[0], gt[4], gt[5], gt[3]}
}

func BoundsToWkt(b Bounds) string {
	return fmt.Sprintf("POLYGON((%[1]f %[3]f, %[1]f %[4]f, %[2]f %[4]f, %[2]f %[3]f, %[1]f %[3]f))", b.Left, b.Right, b.Bottom, b.Top)
}

func (b Bounds) Contains(o Bounds) bool {
	return o.Left >= b.Left && o.Right <= b.Right && o.Bottom >= b.Bottom && o.Top <= b.Top
}
