package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wgdzlh/geopatch"
	"github.com/wgdzlh/geopatch/utils"
)

const (
	envPrefix      = "GEOPATCH_"
	envBandsPrefix = "BANDS_"
)

type RasterConfig struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Bands []int  `json:"bands,omitempty"`
}

type PatchConfig struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	ResX   float64 `json:"res_x"`
	ResY   float64 `json:"res_y"`
}

// 切片生成任务配置
type Config struct {
	Rasters          []RasterConfig `json:"rasters"`
	MaskRaster       string         `json:"mask_raster"`
	MaskVector       string         `json:"mask_vector,omitempty"`
	LabelField       string         `json:"label_field,omitempty"`
	Samples          string         `json:"samples"`
	SamplesGBK       bool           `json:"samples_gbk,omitempty"`
	OutputDir        string         `json:"output_dir"`
	UniqueOutput     bool           `json:"unique_output,omitempty"`
	Patch            PatchConfig    `json:"patch"`
	DataType         string         `json:"dtype,omitempty"`
	HeightBand       bool           `json:"height_band,omitempty"`
	ComputeOnlyMasks bool           `json:"compute_only_masks,omitempty"`
	FilterInterior   bool           `json:"filter_interior,omitempty"`
	Workers          int            `json:"workers,omitempty"`
	LogLevel         string         `json:"log_level,omitempty"`
}

func Defaults() Config {
	return Config{
		Workers:  1,
		LogLevel: "info",
	}
}

// 从文件或原始JSON解析配置，拒绝未知字段
func LoadJSON(path string, raw []byte) (Config, error) {
	cfg := Defaults()
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("config: no source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// 以GEOPATCH_前缀的环境变量覆盖部分字段
func EnvOverlay(cfg Config, environ []string) (Config, error) {
	cfg.Rasters = append([]RasterConfig(nil), cfg.Rasters...)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, envPrefix) {
			continue
		}
		var err error
		key := strings.TrimPrefix(k, envPrefix)
		if name, ok := strings.CutPrefix(key, envBandsPrefix); ok {
			if err = overlayBands(&cfg, name, v); err != nil {
				return cfg, fmt.Errorf("config: env %s: %w", k, err)
			}
			continue
		}
		switch key {
		case "OUTPUT_DIR":
			cfg.OutputDir = v
		case "MASK_RASTER":
			cfg.MaskRaster = v
		case "SAMPLES":
			cfg.Samples = v
		case "LOG_LEVEL":
			cfg.LogLevel = v
		case "DTYPE":
			cfg.DataType = v
		case "WORKERS":
			cfg.Workers, err = strconv.Atoi(v)
		case "COMPUTE_ONLY_MASKS":
			cfg.ComputeOnlyMasks, err = strconv.ParseBool(v)
		case "HEIGHT_BAND":
			cfg.HeightBand, err = strconv.ParseBool(v)
		}
		if err != nil {
			return cfg, fmt.Errorf("config: env %s: %w", k, err)
		}
	}
	return cfg, nil
}

// GEOPATCH_BANDS_<NAME>=1,2,3 覆盖同名栅格的波段列表
func overlayBands(cfg *Config, name, v string) error {
	bands, bad := utils.StrToInts(v, ",")
	if len(bad) > 0 {
		return fmt.Errorf("bad band indexes %v", bad)
	}
	for i := range cfg.Rasters {
		if strings.EqualFold(cfg.Rasters[i].Name, name) {
			cfg.Rasters[i].Bands = bands
			return nil
		}
	}
	return fmt.Errorf("no raster named %s", name)
}

func Validate(cfg Config) error {
	if len(cfg.Rasters) == 0 {
		return errors.New("config: rasters empty")
	}
	names := map[string]struct{}{}
	for _, r := range cfg.Rasters {
		if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Path) == "" {
			return errors.New("config: raster name and path are required")
		}
		if _, dup := names[r.Name]; dup {
			return fmt.Errorf("config: duplicate raster name %q", r.Name)
		}
		names[r.Name] = struct{}{}
	}
	if cfg.MaskRaster == "" {
		return errors.New("config: mask_raster not set")
	}
	if cfg.Patch.Width <= 0 || cfg.Patch.Height <= 0 {
		return errors.New("config: patch width and height must be > 0")
	}
	if cfg.Patch.ResX <= 0 || cfg.Patch.ResY <= 0 {
		return errors.New("config: patch resolution must be > 0")
	}
	if cfg.DataType != "" && !geopatch.PixelType(cfg.DataType).IsInteger() {
		return fmt.Errorf("config: dtype %q must be uint8, uint16 or uint32", cfg.DataType)
	}
	if cfg.Workers < 1 {
		return errors.New("config: workers must be >= 1")
	}
	return nil
}

func (c Config) Shape() geopatch.PatchShape {
	return geopatch.PatchShape{Width: c.Patch.Width, Height: c.Patch.Height, ResX: c.Patch.ResX, ResY: c.Patch.ResY}
}

func (c Config) RasterPaths() (paths []string) {
	for _, r := range c.Rasters {
		paths = append(paths, r.Path)
	}
	return
}

// 读取、覆盖并校验配置
func loadConfig(path string) (cfg Config, err error) {
	if cfg, err = LoadJSON(path, nil); err != nil {
		return
	}
	if cfg, err = EnvOverlay(cfg, os.Environ()); err != nil {
		return
	}
	err = Validate(cfg)
	return
}
