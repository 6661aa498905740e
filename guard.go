package geopatch

import (
	"errors"
	"fmt"
	"os"

	"github.com/wgdzlh/geopatch/log"

	"github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

// 逐个打开栅格并执行检查
func eachRaster(paths []string, check func(path string, ds *godal.Dataset) error) (err error) {
	for _, p := range paths {
		if err = withRaster(p, check); err != nil {
			return
		}
	}
	return
}

func withRaster(path string, check func(path string, ds *godal.Dataset) error) (err error) {
	ds, err := openRaster(path)
	if err != nil {
		return
	}
	defer closeRaster(ds, path, &err)
	err = check(path, ds)
	return
}

// 检查栅格坐标系非空
func RasterCRSGuard(paths ...string) error {
	return eachRaster(paths, func(path string, ds *godal.Dataset) error {
		if ds.Projection() == "" {
			log.Error("raster without crs", zap.String("path", path))
			return fmt.Errorf("%w: the crs of raster %s is empty", ErrInvalidCRS, path)
		}
		return nil
	})
}

// 检查栅格驱动（GTiff/VRT）
func RasterDriverGuard(paths ...string) error {
	return eachRaster(paths, func(path string, ds *godal.Dataset) error {
		name := ds.Driver().ShortName()
		for _, d := range RasterDriverAccepted {
			if d == name {
				return nil
			}
		}
		log.Error("raster driver not accepted", zap.String("path", path), zap.String("driver", name))
		return fmt.Errorf("%w: the driver %s of raster %s is not accepted", ErrUnsupportedDriver, name, path)
	})
}

// 检查请求的波段序号均在栅格波段数范围内
func RasterBandsExist(bands []int, paths ...string) error {
	return eachRaster(paths, func(path string, ds *godal.Dataset) error {
		n := len(ds.Bands())
		for _, b := range bands {
			if b < 1 || b > n {
				return fmt.Errorf("%w: the band %d from raster %s does not exist (count %d)", ErrBandIndexOutOfRange, b, path, n)
			}
		}
		return nil
	})
}

// 检查多个栅格坐标系是否一致
func RastersShareCRS(paths ...string) (same bool, err error) {
	var (
		first *godal.SpatialRef
		sr    *godal.SpatialRef
	)
	defer func() {
		if first != nil {
			first.Close()
		}
	}()
	same = true
	err = eachRaster(paths, func(path string, ds *godal.Dataset) (e error) {
		if sr, e = godal.NewSpatialRefFromWKT(ds.Projection()); e != nil {
			return fmt.Errorf("%w: the crs of raster %s is unreadable: %v", ErrInvalidCRS, path, e)
		}
		if first == nil {
			first = sr
			return
		}
		if !first.IsSame(sr) {
			same = false
		}
		sr.Close()
		return
	})
	return
}

// 检查文件均存在；不存在或非普通文件为ErrMissingFile，其他stat错误为ErrIOFailure
func FilesExist(paths ...string) error {
	for _, p := range paths {
		fi, err := os.Stat(p)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("%w: %s", ErrMissingFile, p)
		case err != nil:
			return ioFailure(p, err)
		case !fi.Mode().IsRegular():
			return fmt.Errorf("%w: %s is not a regular file", ErrMissingFile, p)
		}
	}
	return nil
}

// 检查目录均存在
func DirsExist(paths ...string) error {
	for _, p := range paths {
		fi, err := os.Stat(p)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("%w: %s", ErrMissingDirectory, p)
		case err != nil:
			return ioFailure(p, err)
		case !fi.IsDir():
			return fmt.Errorf("%w: %s is not a directory", ErrMissingDirectory, p)
		}
	}
	return nil
}
