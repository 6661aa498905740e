package geopatch

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// 像素编码类型
type PixelType string

const (
	Uint8   PixelType = "uint8"
	Uint16  PixelType = "uint16"
	Uint32  PixelType = "uint32"
	Float32 PixelType = "float32"
)

type pixelTypeInfo struct {
	rank     int
	maxValue float64
	gdalType godal.DataType
}

var pixelTypes = map[PixelType]pixelTypeInfo{
	Uint8:   {0, 1<<8 - 1, godal.Byte},
	Uint16:  {1, 1<<16 - 1, godal.UInt16},
	Uint32:  {2, 1<<32 - 1, godal.UInt32},
	Float32: {-1, 0, godal.Float32},
}

// 整数编码的最大值，浮点类型返回0
func (p PixelType) MaxValue() float64 {
	return pixelTypes[p].maxValue
}

func (p PixelType) IsInteger() bool {
	info, ok := pixelTypes[p]
	return ok && info.rank >= 0
}

func (p PixelType) Valid() bool {
	_, ok := pixelTypes[p]
	return ok
}

func (p PixelType) gdal() godal.DataType {
	return pixelTypes[p].gdalType
}

// 由GDAL数据类型获取编码类型，非支持类型返回空串
func PixelTypeOf(dt godal.DataType) PixelType {
	for k, v := range pixelTypes {
		if v.gdalType == dt {
			return k
		}
	}
	return ""
}

// 地理范围
type Bounds struct {
	Left, Bottom, Right, Top float64
}

// 像素窗口（允许小数，读取时取整）
type Window struct {
	ColOff, RowOff float64
	Width, Height  float64
}

// 输出切片的目标网格
type PatchShape struct {
	Width  int
	Height int
	ResX   float64
	ResY   float64
}

func (s PatchShape) Resolution() [2]float64 {
	return [2]float64{s.ResX, s.ResY}
}

// 源栅格在目标分辨率下的缩放
type Scale struct {
	ScaleX, ScaleY            float64
	ScaledWidth, ScaledHeight float64
}

// 一个物理栅格文件，登记后不可变
type RasterSource struct {
	Name      string
	Path      string
	Bands     []int // 1起始的波段序号
	ResX      float64
	ResY      float64
	DataType  PixelType
	GdalType  godal.DataType
	BandCount int
	CRS       string
	Scale     Scale
}

// DSM/DTM 高程对，两者必须同时存在
type ElevationPair struct {
	Surface RasterSource
	Terrain RasterSource
}

// 参与堆叠的栅格集合：普通图层（登记顺序）+ 可选高程对（始终为最后一个波段）
type RasterSet struct {
	Layers    []RasterSource
	Elevation *ElevationPair
}

// 按名称整理栅格集合，withHeight时DSM/DTM进入高程对
func NewRasterSet(sources []RasterSource, withHeight bool) (set RasterSet, err error) {
	var surface, terrain *RasterSource
	for i := range sources {
		src := sources[i]
		if withHeight {
			switch src.Name {
			case SURFACE_MODEL_NAME:
				surface = &src
				continue
			case TERRAIN_MODEL_NAME:
				terrain = &src
				continue
			}
		}
		set.Layers = append(set.Layers, src)
	}
	switch {
	case surface != nil && terrain != nil:
		set.Elevation = &ElevationPair{Surface: *surface, Terrain: *terrain}
	case surface != nil || terrain != nil:
		err = fmt.Errorf("%w: both %s and %s are required", ErrUndefinedHeightInputs, SURFACE_MODEL_NAME, TERRAIN_MODEL_NAME)
	}
	return
}

// 参考栅格：第一个普通图层，没有则为DSM；其窗口决定切片与掩膜的仿射变换
func (s RasterSet) Reference() (ref RasterSource, ok bool) {
	if len(s.Layers) > 0 {
		return s.Layers[0], true
	}
	if s.Elevation != nil {
		return s.Elevation.Surface, true
	}
	return
}

// 堆叠时实际写出的波段数
func (s RasterSet) DeclaredBands() (n int) {
	for _, l := range s.Layers {
		n += len(l.Bands)
	}
	if s.Elevation != nil {
		n++
	}
	return
}

func (s RasterSet) Sources() (ret []RasterSource) {
	ret = append(ret, s.Layers...)
	if s.Elevation != nil {
		ret = append(ret, s.Elevation.Surface, s.Elevation.Terrain)
	}
	return
}

// 采样中心及其输出文件
type SampleCenter struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ImageFile string  `json:"img_file"`
	MaskFile  string  `json:"msk_file"`
}

// 切片元数据，按值传递，各阶段返回新副本
type PatchMetadata struct {
	Driver       string
	DataType     PixelType
	Count        int
	Width        int
	Height       int
	GeoTransform [6]float64
	CRS          string
}

func (m PatchMetadata) WithGeoTransform(gt [6]float64) PatchMetadata {
	m.GeoTransform = gt
	return m
}

func (m PatchMetadata) WithCount(n int) PatchMetadata {
	m.Count = n
	return m
}

func (m PatchMetadata) WithCRS(wkt string) PatchMetadata {
	m.CRS = wkt
	return m
}

func (m PatchMetadata) size() int {
	return m.Width * m.Height
}

// 模型输出的单个切片概率，Data按 类别×行×列 排列
type Probabilities struct {
	Classes int
	Height  int
	Width   int
	Data    []float32
}

func (p Probabilities) Class(i int) []float32 {
	n := p.Width * p.Height
	return p.Data[i*n : (i+1)*n]
}
