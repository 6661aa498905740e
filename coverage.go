package geopatch

import (
	"github.com/wgdzlh/geopatch/log"

	"github.com/dhconnelly/rtreego"
	"go.uber.org/zap"
)

const minRectSide = 1e-9

// 源栅格覆盖范围
type footprint struct {
	path   string
	bounds Bounds
}

func boundsRect(b Bounds) rtreego.Rect {
	point := rtreego.Point{b.Left, b.Bottom}
	lengths := []float64{max(b.Right-b.Left, minRectSide), max(b.Top-b.Bottom, minRectSide)}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

func (f *footprint) Bounds() rtreego.Rect {
	return boundsRect(f.bounds)
}

// 源栅格覆盖范围的R树索引，用于筛选切片完全落在所有源栅格内的采样中心
type CoverageIndex struct {
	tree   *rtreego.Rtree
	count  int
	logTag string
}

func NewCoverageIndex(paths ...string) (c *CoverageIndex, err error) {
	c = &CoverageIndex{
		tree:   rtreego.NewTree(2, 25, 50),
		logTag: "CoverageIndex:",
	}
	seen := map[string]struct{}{}
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		var b Bounds
		if b, err = rasterBounds(p); err != nil {
			return nil, err
		}
		c.tree.Insert(&footprint{path: p, bounds: b})
		c.count++
		log.Debug(c.logTag+"indexed raster footprint", zap.String("path", p), zap.String("wkt", BoundsToWkt(b)))
	}
	return
}

func rasterBounds(path string) (b Bounds, err error) {
	ds, err := openRaster(path)
	if err != nil {
		return
	}
	defer closeRaster(ds, path, &err)
	gt, e := ds.GeoTransform()
	if e != nil {
		err = ioFailure(path, e)
		return
	}
	st := ds.Structure()
	b = WindowBounds(Window{Width: float64(st.SizeX), Height: float64(st.SizeY)}, gt)
	return
}

// 完全包含b的源栅格
func (c *CoverageIndex) Covering(b Bounds) (paths []string) {
	for _, s := range c.tree.SearchIntersect(boundsRect(b)) {
		f := s.(*footprint)
		if f.bounds.Contains(b) {
			paths = append(paths, f.path)
		}
	}
	return
}

// 切片是否完全落在全部源栅格内
func (c *CoverageIndex) Interior(x, y float64, shape PatchShape) bool {
	b := BoundsFromCenter(x, y, float64(shape.Width), float64(shape.Height), shape.ResX, shape.ResY)
	return len(c.Covering(b)) == c.count
}

// 过滤出内部采样中心，返回保留的中心及丢弃数
func (c *CoverageIndex) FilterInterior(centers []SampleCenter, shape PatchShape) (kept []SampleCenter, dropped int) {
	kept = make([]SampleCenter, 0, len(centers))
	for _, ct := range centers {
		if c.Interior(ct.X, ct.Y, shape) {
			kept = append(kept, ct)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		log.Warn(c.logTag+"dropped centers outside raster coverage", zap.Int("dropped", dropped), zap.Int("kept", len(kept)))
	}
	return
}
