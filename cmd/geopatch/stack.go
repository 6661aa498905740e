package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/wgdzlh/geopatch"
	"github.com/wgdzlh/geopatch/log"
	"github.com/wgdzlh/geopatch/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	imgSubDir  = "img"
	mskSubDir  = "msk"
	indexFile  = "patches.csv"
	progressAt = 1000
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Generate image/mask patch pairs for every sample center",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if err = log.SetLevel(cfg.LogLevel); err != nil {
			return err
		}
		return runStack(cfg)
	},
}

func init() {
	rootCmd.AddCommand(stackCmd)
}

func runStack(cfg Config) (err error) {
	if err = runGuards(cfg); err != nil {
		return
	}
	set, err := buildRasterSet(cfg)
	if err != nil {
		return
	}
	patcher := geopatch.NewGeoPatcher()
	count, err := patcher.CountBands(set)
	if err != nil {
		return
	}
	if n := set.DeclaredBands(); !cfg.ComputeOnlyMasks && n != count {
		log.Error("band subset cannot fill stacked patch", zap.Int("declared", n), zap.Int("count", count))
		return fmt.Errorf("%w: %d declared bands, rasters carry %d", geopatch.ErrBandCountMismatch, n, count)
	}
	ref, _ := set.Reference()
	meta := geopatch.PatchMetadata{
		Driver:   geopatch.PATCH_DRIVER_NAME,
		DataType: patchType(cfg, set),
		Count:    count,
		Width:    cfg.Patch.Width,
		Height:   cfg.Patch.Height,
		CRS:      ref.CRS,
	}
	maskMeta := geopatch.PatchMetadata{
		Driver:   geopatch.PATCH_DRIVER_NAME,
		DataType: geopatch.Uint8,
		Width:    cfg.Patch.Width,
		Height:   cfg.Patch.Height,
	}

	centers, err := geopatch.ReadSampleFile(cfg.Samples, cfg.SamplesGBK)
	if err != nil {
		return
	}
	if cfg.FilterInterior {
		var idx *geopatch.CoverageIndex
		if idx, err = geopatch.NewCoverageIndex(append(cfg.RasterPaths(), cfg.MaskRaster)...); err != nil {
			return
		}
		centers, _ = idx.FilterInterior(centers, cfg.Shape())
	}

	outDir := cfg.OutputDir
	if cfg.UniqueOutput {
		if outDir, err = utils.GetUniqSubDir(outDir); err != nil {
			return
		}
	}
	if err = prepareDirs(outDir); err != nil {
		return
	}
	for i := range centers {
		centers[i].ImageFile = utils.JoinIfRelative(filepath.Join(outDir, imgSubDir), centers[i].ImageFile)
		centers[i].MaskFile = utils.JoinIfRelative(filepath.Join(outDir, mskSubDir), centers[i].MaskFile)
	}

	log.Info("start stacking patches", zap.Int("centers", len(centers)), zap.Int("bands", count),
		zap.String("dtype", string(meta.DataType)), zap.Int("workers", cfg.Workers), zap.String("out", outDir))
	var done atomic.Int64
	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(cfg.Workers)
	for _, ct := range centers {
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if e := patcher.StackWindow(ct, set, meta, cfg.ComputeOnlyMasks, cfg.MaskRaster, maskMeta); e != nil {
				log.Error("stack window failed", zap.String("img", ct.ImageFile), zap.Error(e))
				return e
			}
			if n := done.Add(1); n%progressAt == 0 {
				log.Info("stacking progress", zap.Int64("done", n), zap.Int("total", len(centers)))
			}
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return
	}
	err = geopatch.WritePatchIndex(filepath.Join(outDir, indexFile), centers)
	log.Info("end stacking patches", zap.Int64("done", done.Load()), zap.String("out", outDir))
	return
}

func prepareDirs(outDir string) error {
	for _, d := range []string{imgSubDir, mskSubDir} {
		if _, err := utils.GetSubDir(outDir, d); err != nil {
			return err
		}
	}
	return geopatch.DirsExist(filepath.Join(outDir, imgSubDir), filepath.Join(outDir, mskSubDir))
}
