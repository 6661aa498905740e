package geopatch

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wgdzlh/geopatch/log"
	"github.com/wgdzlh/geopatch/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

var (
	vectorDrivers     map[string]struct{}
	vectorDriversOnce sync.Once
)

// 矢量后端已注册的全部OGR驱动
func VectorDriverAccepted() (names []string) {
	loadVectorDrivers()
	for k := range vectorDrivers {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}

func loadVectorDrivers() {
	vectorDriversOnce.Do(func() {
		vectorDrivers = map[string]struct{}{}
		for i, n := 0, gdal.OGRDriverCount(); i < n; i++ {
			vectorDrivers[gdal.OGRDriverByIndex(i).Name()] = struct{}{}
		}
	})
}

// 获取矢量文件的驱动名
func vectorDriverName(path string) (name string, err error) {
	ds, e := gdal.OpenEx(path, gdal.OFVector, nil, nil, nil)
	if e != nil {
		log.Error("open vector failed", zap.String("path", path), zap.Error(e))
		err = ioFailure(path, e)
		return
	}
	name = ds.Driver().ShortName()
	ds.Close()
	return
}

// 以OGR驱动打开矢量文件
func openVector(path string) (ds gdal.DataSource, err error) {
	name, err := vectorDriverName(path)
	if err != nil {
		return
	}
	ds, ok := gdal.OGRDriverByName(name).Open(path, 0)
	if !ok {
		err = fmt.Errorf("%w: %s: open with driver %s failed", ErrIOFailure, path, name)
	}
	return
}

// 检查矢量驱动在后端支持的驱动集合内
func VectorDriverGuard(paths ...string) (err error) {
	loadVectorDrivers()
	var name string
	for _, p := range paths {
		if name, err = vectorDriverName(p); err != nil {
			return
		}
		if _, ok := vectorDrivers[name]; !ok {
			log.Error("vector driver not accepted", zap.String("path", p), zap.String("driver", name))
			return fmt.Errorf("%w: the driver %s of mask file %s is not accepted", ErrUnsupportedDriver, name, p)
		}
	}
	return
}

// 检查矢量坐标系非空
func VectorCRSGuard(paths ...string) (err error) {
	for _, p := range paths {
		if err = vectorCRS(p); err != nil {
			return
		}
	}
	return
}

func vectorCRS(path string) (err error) {
	ds, err := openVector(path)
	if err != nil {
		return
	}
	defer ds.Destroy()
	if ds.LayerCount() == 0 {
		return fmt.Errorf("%w: vector %s has no layer", ErrInvalidCRS, path)
	}
	layer := ds.LayerByIndex(0)
	if layer.Definition().GeometryType() == gdal.GT_None {
		return fmt.Errorf("%w: vector %s has no geometry", ErrInvalidCRS, path)
	}
	sp := layer.SpatialReference()
	wkt, e := sp.ToWKT()
	if e != nil || strings.TrimSpace(wkt) == "" {
		log.Error("vector without crs", zap.String("path", path), zap.NamedError("cause", e))
		return fmt.Errorf("%w: the crs of vector %s is empty", ErrInvalidCRS, path)
	}
	code, ok := sp.AttrValue("AUTHORITY", 1)
	log.Info("vector crs", zap.String("path", path), zap.String("authority", code), zap.Bool("hasAuthority", ok))
	return
}

// 获取矢量掩膜中的类别标签，字段名找不到时尝试GBK编码的字段名
func VectorLabels(path, labelField string) (labels []string, err error) {
	ds, err := openVector(path)
	if err != nil {
		return
	}
	defer ds.Destroy()
	if ds.LayerCount() == 0 {
		return
	}
	layer := ds.LayerByIndex(0)
	def := layer.Definition()
	labelIdx := def.FieldIndex(labelField)
	if labelIdx < 0 {
		if gbk, e := utils.Utf8StrToGbk(labelField); e == nil {
			labelIdx = def.FieldIndex(gbk)
		}
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("%w: field %s missing in %s", ErrIOFailure, labelField, path)
	}
	var (
		labelSet = map[string]struct{}{}
		feature  *gdal.Feature
		cnt      int
	)
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		labelSet[feature.FieldAsString(labelIdx)] = struct{}{}
		feature.Destroy()
		cnt++
	}
	for k := range labelSet {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	log.Info("got labels from vector", zap.String("file", path), zap.Strings("labels", labels), zap.Int("cnt", cnt))
	return
}
