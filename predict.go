package geopatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wgdzlh/geopatch/log"
	"github.com/wgdzlh/geopatch/utils"

	"go.uber.org/zap"
)

// 预测结果写出配置
type TileWriterConfig struct {
	OutputDir  string
	OutputType string  // uint8 | bit | 其他按float32输出
	Threshold  float64 // bit输出的阈值，默认0.5
	Classes    int
	Width      int
	Height     int
	Resolution [2]float64
	CRS        string
	BlockSize  int // 默认取切片宽高的较小值
	Sparse     bool
}

// 将模型逐切片输出的概率重建为带地理参考的栅格切片
type TileWriter struct {
	cfg    TileWriterConfig
	meta   PatchMetadata
	opts   []string
	logTag string
}

func NewTileWriter(cfg TileWriterConfig) (w *TileWriter, err error) {
	ensureRegistered()
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = min(cfg.Width, cfg.Height)
	}
	if cfg.OutputDir != "" {
		if err = os.MkdirAll(cfg.OutputDir, os.ModePerm); err != nil {
			err = ioFailure(cfg.OutputDir, err)
			return
		}
	}
	dt := Float32
	if cfg.OutputType == OUTPUT_TYPE_UINT8 || cfg.OutputType == OUTPUT_TYPE_BIT {
		dt = Uint8
	}
	w = &TileWriter{
		cfg: cfg,
		meta: PatchMetadata{
			Driver:   PATCH_DRIVER_NAME,
			DataType: dt,
			Count:    cfg.Classes,
			Width:    cfg.Width,
			Height:   cfg.Height,
			CRS:      cfg.CRS,
		},
		opts:   tiffCreationOptions(cfg.BlockSize, cfg.Sparse, cfg.OutputType == OUTPUT_TYPE_BIT),
		logTag: "TileWriter:",
	}
	log.Info(w.logTag+"prediction writer ready", zap.String("dir", cfg.OutputDir), zap.String("type", cfg.OutputType),
		zap.Int("classes", cfg.Classes), zap.Int("block", cfg.BlockSize), zap.Bool("sparse", cfg.Sparse))
	return
}

// 概率转为输出编码：uint8线性映射到[0,255]，bit按阈值二值化，其他保持float32
func ConvertProbabilities(proba []float32, outputType string, threshold float64) []float64 {
	ret := make([]float64, len(proba))
	switch outputType {
	case OUTPUT_TYPE_UINT8:
		for i, p := range proba {
			ret[i] = castValue(float64(p)*Uint8.MaxValue(), Uint8)
		}
	case OUTPUT_TYPE_BIT:
		for i, p := range proba {
			if float64(p) > threshold {
				ret[i] = 1
			}
		}
	default:
		for i, p := range proba {
			ret[i] = float64(p)
		}
	}
	return ret
}

// 写出一个切片的预测结果，affine为GDAL顺序的仿射变换；输出统一为OutputDir下的.tif文件
func (w *TileWriter) WriteTile(proba Probabilities, affine [6]float64, filename string) (err error) {
	if proba.Classes != w.meta.Count || proba.Width != w.meta.Width || proba.Height != w.meta.Height ||
		len(proba.Data) != proba.Classes*proba.Width*proba.Height {
		log.Error(w.logTag+"probability shape mismatch", zap.Int("classes", proba.Classes), zap.Int("width", proba.Width), zap.Int("height", proba.Height))
		return fmt.Errorf("%w: got %dx%dx%d, want %dx%dx%d", ErrWrongProbaShape,
			proba.Classes, proba.Height, proba.Width, w.meta.Count, w.meta.Height, w.meta.Width)
	}
	gt, _, _ := AlignedTarget(affine, w.meta.Width, w.meta.Height, w.cfg.Resolution)
	meta := w.meta.WithGeoTransform(gt)
	out := filepath.Join(w.cfg.OutputDir, utils.GetFilenameWithoutExt(filename)+FILE_EXT_TIF)
	if err = removeIfExists(out); err != nil {
		return
	}
	dst, err := createPatch(out, meta, w.opts)
	if err != nil {
		return
	}
	defer closeRaster(dst, out, &err)
	for c := 0; c < proba.Classes; c++ {
		band := ConvertProbabilities(proba.Class(c), w.cfg.OutputType, w.cfg.Threshold)
		if err = writeBand(dst, c, band, meta, out); err != nil {
			return
		}
	}
	log.Debug(w.logTag+"tile written", zap.String("file", out))
	return
}

// 批量写出：概率、文件名、仿射变换一一对应
func (w *TileWriter) WriteBatch(probas []Probabilities, filenames []string, affines [][6]float64) (err error) {
	if len(probas) != len(filenames) || len(probas) != len(affines) {
		return fmt.Errorf("%w: %d probas, %d filenames, %d affines", ErrBatchSizeMismatch, len(probas), len(filenames), len(affines))
	}
	for i := range probas {
		if err = w.WriteTile(probas[i], affines[i], filenames[i]); err != nil {
			return
		}
	}
	return
}
