package geopatch

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCRS            = errors.New("invalid coordinate reference system")
	ErrUnsupportedDriver     = errors.New("unsupported driver")
	ErrMissingFile           = errors.New("file does not exist")
	ErrMissingDirectory      = errors.New("directory does not exist")
	ErrBandIndexOutOfRange   = errors.New("band index out of range")
	ErrIOFailure             = errors.New("io failure")
	ErrBandCountMismatch     = errors.New("band count mismatch")
	ErrUndefinedHeightInputs = errors.New("undefined height inputs")
	ErrUnsupportedPixelType  = errors.New("unsupported pixel type")
	ErrWrongProbaShape       = errors.New("wrong probability array shape")
	ErrBatchSizeMismatch     = errors.New("batch size mismatch")
	ErrEmptyRasterSet        = errors.New("empty raster set")
)

// 将后端（GDAL）错误转为统一的ErrIOFailure，仅保留错误文本
func ioFailure(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrIOFailure, path, err)
}
