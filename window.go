package geopatch

import (
	"math"

	"github.com/airbusgeo/godal"
)

// 窗口读取计划：源栅格内的有效区域及其在输出缓冲区中的位置
type readPlan struct {
	srcX, srcY, srcW, srcH int
	dstX, dstY, dstW, dstH int
}

func roundWindow(w Window) Window {
	return Window{
		ColOff: math.Round(w.ColOff),
		RowOff: math.Round(w.RowOff),
		Width:  math.Round(w.Width),
		Height: math.Round(w.Height),
	}
}

// 窗口与栅格范围求交；越界部分在输出中保持为0
func planRead(w Window, sizeX, sizeY, outW, outH int) (p readPlan, ok bool) {
	rw := roundWindow(w)
	x0, y0 := int(rw.ColOff), int(rw.RowOff)
	ww, wh := int(rw.Width), int(rw.Height)
	if ww <= 0 || wh <= 0 || outW <= 0 || outH <= 0 {
		return
	}
	ix0, iy0 := max(x0, 0), max(y0, 0)
	ix1, iy1 := min(x0+ww, sizeX), min(y0+wh, sizeY)
	if ix1 <= ix0 || iy1 <= iy0 {
		return
	}
	kx := float64(outW) / float64(ww)
	ky := float64(outH) / float64(wh)
	dx0 := int(math.Round(float64(ix0-x0) * kx))
	dy0 := int(math.Round(float64(iy0-y0) * ky))
	dx1 := int(math.Round(float64(ix1-x0) * kx))
	dy1 := int(math.Round(float64(iy1-y0) * ky))
	if dx1 <= dx0 || dy1 <= dy0 {
		return
	}
	p = readPlan{
		srcX: ix0, srcY: iy0, srcW: ix1 - ix0, srcH: iy1 - iy0,
		dstX: dx0, dstY: dy0, dstW: dx1 - dx0, dstH: dy1 - dy0,
	}
	ok = true
	return
}

// 按窗口读取单个波段并双线性重采样到 outW×outH
func readWindow(band godal.Band, w Window, outW, outH int) (out []float64, err error) {
	st := band.Structure()
	out = make([]float64, outW*outH)
	p, ok := planRead(w, st.SizeX, st.SizeY, outW, outH)
	if !ok {
		return
	}
	if p.dstX == 0 && p.dstY == 0 && p.dstW == outW && p.dstH == outH {
		err = band.Read(p.srcX, p.srcY, out, outW, outH, godal.Window(p.srcW, p.srcH), godal.Resampling(godal.Bilinear))
		return
	}
	buf := make([]float64, p.dstW*p.dstH)
	if err = band.Read(p.srcX, p.srcY, buf, p.dstW, p.dstH, godal.Window(p.srcW, p.srcH), godal.Resampling(godal.Bilinear)); err != nil {
		return
	}
	for r := 0; r < p.dstH; r++ {
		copy(out[(p.dstY+r)*outW+p.dstX:], buf[r*p.dstW:(r+1)*p.dstW])
	}
	return
}

// 由地理范围与输出尺寸构造北向上的仿射变换
func geoTransformForShape(b Bounds, width, height int) [6]float64 {
	return [6]float64{
		b.Left, (b.Right - b.Left) / float64(width), 0,
		b.Top, 0, -(b.Top - b.Bottom) / float64(height),
	}
}
