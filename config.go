package geopatch

const (
	FILE_EXT_TIF = ".tif"
	FILE_EXT_VRT = ".vrt"

	PATCH_DRIVER_NAME = "GTiff"

	// 高程差波段保留的栅格名
	SURFACE_MODEL_NAME = "DSM"
	TERRAIN_MODEL_NAME = "DTM"

	// 分辨率相对容差，差值在此范围内视为已对齐
	ResolutionRelTol = 1e-4

	// 高程差编码：1像素=1米 -> 1像素=20厘米，最大可表示高度 255*0.2=51米
	HeightScaleFactor = 5.0
	HeightLowerBound  = 0.2
	HeightUpperBound  = 255.0

	DefaultThreshold = 0.5

	// GeoTIFF分块尺寸须为16的倍数
	TiffBlockAlign = 16

	OUTPUT_TYPE_UINT8   = "uint8"
	OUTPUT_TYPE_BIT     = "bit"
	OUTPUT_TYPE_FLOAT32 = "float32"

	CO_COMPRESS   = "COMPRESS=LZW"
	CO_TILED      = "TILED=YES"
	CO_BLOCK_X    = "BLOCKXSIZE=%d"
	CO_BLOCK_Y    = "BLOCKYSIZE=%d"
	CO_SPARSE     = "SPARSE_OK=TRUE"
	CO_NBITS_ONE  = "NBITS=1"
	SAMPLE_HEADER = "x"
)

// 栅格输入可接受的驱动
var RasterDriverAccepted = []string{"GTiff", "GeoTIFF", "VRT"}
