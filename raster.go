package geopatch

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/wgdzlh/geopatch/log"

	"github.com/airbusgeo/godal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var registerOnce sync.Once

func ensureRegistered() {
	registerOnce.Do(godal.RegisterAll)
}

// 只读打开栅格，后端错误统一转为ErrIOFailure
func openRaster(path string) (ds *godal.Dataset, err error) {
	ensureRegistered()
	if ds, err = godal.Open(path, godal.RasterOnly()); err != nil {
		log.Error("open raster failed", zap.String("path", path), zap.Error(err))
		err = ioFailure(path, err)
	}
	return
}

func closeRaster(ds *godal.Dataset, path string, err *error) {
	if e := ds.Close(); e != nil {
		*err = multierr.Append(*err, ioFailure(path, e))
	}
}

// 登记一个源栅格：读取分辨率、数据类型、波段数、坐标系，并计算相对目标切片的缩放。
// bands为空时取全部波段。
func OpenRasterSource(name, path string, bands []int, shape PatchShape) (src RasterSource, err error) {
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
	dsBands := ds.Bands()
	if len(dsBands) == 0 {
		err = fmt.Errorf("%w: %s has no band", ErrBandIndexOutOfRange, path)
		return
	}
	if len(bands) == 0 {
		for i := range dsBands {
			bands = append(bands, i+1)
		}
	}
	for _, b := range bands {
		if b < 1 || b > len(dsBands) {
			err = fmt.Errorf("%w: band %d of %s (count %d)", ErrBandIndexOutOfRange, b, path, len(dsBands))
			return
		}
	}
	dt := dsBands[0].Structure().DataType
	src = RasterSource{
		Name:      name,
		Path:      path,
		Bands:     append([]int(nil), bands...),
		ResX:      math.Abs(gt[1]),
		ResY:      math.Abs(gt[5]),
		DataType:  PixelTypeOf(dt),
		GdalType:  dt,
		BandCount: len(dsBands),
		CRS:       ds.Projection(),
	}
	src.Scale = ScaleFactorAndSize([2]float64{src.ResX, src.ResY}, shape.Resolution(), shape.Width, shape.Height)
	log.Info("registered raster source", zap.String("name", name), zap.String("path", path),
		zap.Ints("bands", src.Bands), zap.Float64("resX", src.ResX), zap.Float64("resY", src.ResY),
		zap.String("dt", dt.String()), zap.Float64("scaleX", src.Scale.ScaleX), zap.Float64("scaleY", src.Scale.ScaleY))
	return
}

// GeoTIFF创建选项：LZW压缩；分块尺寸为16的倍数时启用分块
func tiffCreationOptions(block int, sparse, oneBit bool) []string {
	opts := []string{CO_COMPRESS}
	if block > 0 && block%TiffBlockAlign == 0 {
		opts = append(opts, CO_TILED, fmt.Sprintf(CO_BLOCK_X, block), fmt.Sprintf(CO_BLOCK_Y, block))
	}
	if sparse {
		opts = append(opts, CO_SPARSE)
	}
	if oneBit {
		opts = append(opts, CO_NBITS_ONE)
	}
	return opts
}

// 删除已存在的输出文件
func removeIfExists(path string) (err error) {
	if e := os.Remove(path); e != nil && !errors.Is(e, os.ErrNotExist) {
		err = ioFailure(path, e)
	}
	return
}

// 按元数据创建GeoTIFF切片
func createPatch(path string, meta PatchMetadata, opts []string) (ds *godal.Dataset, err error) {
	ensureRegistered()
	if !meta.DataType.Valid() {
		err = fmt.Errorf("%w: %q", ErrUnsupportedPixelType, meta.DataType)
		return
	}
	driver := godal.DriverName(PATCH_DRIVER_NAME)
	if meta.Driver != "" {
		driver = godal.DriverName(meta.Driver)
	}
	ds, err = godal.Create(driver, path, meta.Count, meta.DataType.gdal(), meta.Width, meta.Height, godal.CreationOption(opts...))
	if err != nil {
		log.Error("create patch failed", zap.String("path", path), zap.Error(err))
		err = ioFailure(path, err)
		return
	}
	if e := ds.SetGeoTransform(meta.GeoTransform); e != nil {
		err = ioFailure(path, e)
	} else if meta.CRS != "" {
		if e = ds.SetProjection(meta.CRS); e != nil {
			err = ioFailure(path, e)
		}
	}
	if err != nil {
		ds.Close()
		ds = nil
	}
	return
}

// 写入一个波段（idx从0起）
func writeBand(ds *godal.Dataset, idx int, data []float64, meta PatchMetadata, path string) (err error) {
	bands := ds.Bands()
	if idx >= len(bands) {
		return fmt.Errorf("%w: band %d exceeds %d in %s", ErrBandCountMismatch, idx+1, len(bands), path)
	}
	buf, err := toBuffer(data, meta.DataType)
	if err != nil {
		return
	}
	if e := bands[idx].Write(0, 0, buf, meta.Width, meta.Height); e != nil {
		log.Error("write patch band failed", zap.String("path", path), zap.Int("band", idx+1), zap.Error(e))
		err = ioFailure(path, e)
	}
	return
}

// 读取栅格的波段数
func rasterBandCount(path string) (n int, err error) {
	ds, err := openRaster(path)
	if err != nil {
		return
	}
	defer closeRaster(ds, path, &err)
	n = len(ds.Bands())
	return
}
