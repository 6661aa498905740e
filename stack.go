package geopatch

import (
	"fmt"

	"github.com/wgdzlh/geopatch/log"

	"github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

// 切片生成器，无调用间可变状态，可并发用于不同的输出文件
type GeoPatcher struct {
	logTag string
}

func NewGeoPatcher() *GeoPatcher {
	ensureRegistered()
	return &GeoPatcher{logTag: "GeoPatcher:"}
}

// 一次堆叠调用中已解析的参考网格
type patchFrame struct {
	bounds Bounds
	gt     [6]float64
	crs    string
}

// 源栅格在中心点处的窗口：以缩放后的尺寸在自身分辨率下求地理范围
func layerWindow(ds *godal.Dataset, src RasterSource, center SampleCenter) (w Window, gt [6]float64, err error) {
	if gt, err = ds.GeoTransform(); err != nil {
		err = ioFailure(src.Path, err)
		return
	}
	b := BoundsFromCenter(center.X, center.Y, src.Scale.ScaledWidth, src.Scale.ScaledHeight, src.ResX, src.ResY)
	w = WindowFromBounds(b, gt)
	return
}

// 由参考栅格确定切片范围与仿射变换，掩膜与影像切片共用
func (g *GeoPatcher) resolveFrame(ref RasterSource, center SampleCenter, meta PatchMetadata) (f patchFrame, err error) {
	ds, err := openRaster(ref.Path)
	if err != nil {
		return
	}
	defer closeRaster(ds, ref.Path, &err)
	w, gt, err := layerWindow(ds, ref, center)
	if err != nil {
		return
	}
	f.bounds = WindowBounds(roundWindow(w), gt)
	f.gt = geoTransformForShape(f.bounds, meta.Width, meta.Height)
	f.crs = meta.CRS
	if f.crs == "" {
		f.crs = ref.CRS
	}
	log.Debug(g.logTag+"resolved patch frame", zap.String("ref", ref.Name), zap.String("bounds", BoundsToWkt(f.bounds)))
	return
}

// 在中心点处堆叠各图层波段，生成影像切片与对齐的掩膜切片。
// computeOnlyMasks为true时只生成掩膜切片。
func (g *GeoPatcher) StackWindow(center SampleCenter, set RasterSet, meta PatchMetadata, computeOnlyMasks bool, maskRaster string, maskMeta PatchMetadata) (err error) {
	ref, ok := set.Reference()
	if !ok {
		return ErrEmptyRasterSet
	}
	if !computeOnlyMasks {
		if n := set.DeclaredBands(); n != meta.Count {
			log.Error(g.logTag+"declared bands differ from patch count", zap.Int("declared", n), zap.Int("count", meta.Count))
			return fmt.Errorf("%w: stacking %d bands into %d", ErrBandCountMismatch, n, meta.Count)
		}
	}
	if err = removeIfExists(center.ImageFile); err != nil {
		return
	}
	frame, err := g.resolveFrame(ref, center, meta)
	if err != nil {
		return
	}
	if err = g.extractMask(center, frame, maskRaster, maskMeta); err != nil {
		return
	}
	if computeOnlyMasks {
		return
	}
	return g.stackImage(center, set, meta.WithGeoTransform(frame.gt).WithCRS(frame.crs))
}

// 以参考范围在完整掩膜栅格上开窗，重采样到掩膜切片尺寸
func (g *GeoPatcher) extractMask(center SampleCenter, frame patchFrame, maskRaster string, maskMeta PatchMetadata) (err error) {
	src, err := openRaster(maskRaster)
	if err != nil {
		return
	}
	defer closeRaster(src, maskRaster, &err)
	gt, e := src.GeoTransform()
	if e != nil {
		return ioFailure(maskRaster, e)
	}
	bands := src.Bands()
	if maskMeta.Count == 0 {
		maskMeta.Count = len(bands)
	}
	if maskMeta.DataType == "" {
		maskMeta.DataType = Uint8
	}
	if maskMeta.Count > len(bands) {
		return fmt.Errorf("%w: mask patch wants %d bands, %s has %d", ErrBandIndexOutOfRange, maskMeta.Count, maskRaster, len(bands))
	}
	meta := maskMeta.WithGeoTransform(geoTransformForShape(frame.bounds, maskMeta.Width, maskMeta.Height)).WithCRS(frame.crs)
	w := WindowFromBounds(frame.bounds, gt)
	dst, err := createPatch(center.MaskFile, meta, tiffCreationOptions(min(meta.Width, meta.Height), false, false))
	if err != nil {
		return
	}
	defer closeRaster(dst, center.MaskFile, &err)
	for i := 0; i < meta.Count; i++ {
		data, e := readWindow(bands[i], w, meta.Width, meta.Height)
		if e != nil {
			return ioFailure(maskRaster, e)
		}
		if err = writeBand(dst, i, data, meta, center.MaskFile); err != nil {
			return
		}
	}
	log.Debug(g.logTag+"mask patch written", zap.String("file", center.MaskFile), zap.Int("bands", meta.Count))
	return
}

func (g *GeoPatcher) stackImage(center SampleCenter, set RasterSet, meta PatchMetadata) (err error) {
	dst, err := createPatch(center.ImageFile, meta, tiffCreationOptions(min(meta.Width, meta.Height), false, false))
	if err != nil {
		return
	}
	defer closeRaster(dst, center.ImageFile, &err)
	idx := 0
	for _, layer := range set.Layers {
		var n int
		if n, err = g.stackLayer(dst, idx, layer, center, meta); err != nil {
			return
		}
		idx += n
	}
	if set.Elevation != nil {
		var band []float64
		if band, err = g.heightWindow(*set.Elevation, center, meta); err != nil {
			return
		}
		if err = writeBand(dst, idx, band, meta, center.ImageFile); err != nil {
			return
		}
		idx++
	}
	if idx != meta.Count {
		log.Error(g.logTag+"stacked bands differ from patch count", zap.Int("stacked", idx), zap.Int("count", meta.Count))
		return fmt.Errorf("%w: stacked %d bands into %d", ErrBandCountMismatch, idx, meta.Count)
	}
	log.Debug(g.logTag+"image patch written", zap.String("file", center.ImageFile), zap.Int("bands", idx))
	return
}

// 读取一个图层声明的波段，按需归一化后依次写入
func (g *GeoPatcher) stackLayer(dst *godal.Dataset, idx int, layer RasterSource, center SampleCenter, meta PatchMetadata) (n int, err error) {
	src, err := openRaster(layer.Path)
	if err != nil {
		return
	}
	defer closeRaster(src, layer.Path, &err)
	w, _, err := layerWindow(src, layer, center)
	if err != nil {
		return
	}
	bands := src.Bands()
	for _, b := range layer.Bands {
		if b < 1 || b > len(bands) {
			err = fmt.Errorf("%w: band %d of %s", ErrBandIndexOutOfRange, b, layer.Path)
			return
		}
		data, e := readWindow(bands[b-1], w, meta.Width, meta.Height)
		if e != nil {
			err = ioFailure(layer.Path, e)
			return
		}
		if layer.DataType != meta.DataType && meta.DataType.IsInteger() {
			data = Normalize(data, meta.DataType, meta.DataType.MaxValue())
		}
		if err = writeBand(dst, idx+n, data, meta, center.ImageFile); err != nil {
			return
		}
		n++
	}
	return
}

// 在中心点处读取DSM/DTM窗口并合成高程差波段
func (g *GeoPatcher) heightWindow(pair ElevationPair, center SampleCenter, meta PatchMetadata) (band []float64, err error) {
	surface, err := readLayerBand(pair.Surface, center, meta)
	if err != nil {
		return
	}
	terrain, err := readLayerBand(pair.Terrain, center, meta)
	if err != nil {
		return
	}
	band = SynthesizeHeight(surface, terrain, meta.DataType)
	return
}

func readLayerBand(src RasterSource, center SampleCenter, meta PatchMetadata) (data []float64, err error) {
	ds, err := openRaster(src.Path)
	if err != nil {
		return
	}
	defer closeRaster(ds, src.Path, &err)
	w, _, err := layerWindow(ds, src, center)
	if err != nil {
		return
	}
	if data, err = readWindow(ds.Bands()[0], w, meta.Width, meta.Height); err != nil {
		err = ioFailure(src.Path, err)
	}
	return
}
