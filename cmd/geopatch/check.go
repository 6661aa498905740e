package main

import (
	"fmt"

	"github.com/wgdzlh/geopatch"
	"github.com/wgdzlh/geopatch/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate rasters, mask sources and sample file of a job config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if err = log.SetLevel(cfg.LogLevel); err != nil {
			return err
		}
		if err = runGuards(cfg); err != nil {
			return err
		}
		if cfg.MaskVector != "" && cfg.LabelField != "" {
			labels, err := geopatch.VectorLabels(cfg.MaskVector, cfg.LabelField)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mask classes: %v\n", labels)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// 依次执行文件、驱动、坐标系、波段检查
func runGuards(cfg Config) error {
	rasters := append(cfg.RasterPaths(), cfg.MaskRaster)
	if err := geopatch.FilesExist(rasters...); err != nil {
		return err
	}
	if cfg.Samples != "" {
		if err := geopatch.FilesExist(cfg.Samples); err != nil {
			return err
		}
	}
	if err := geopatch.RasterDriverGuard(rasters...); err != nil {
		return err
	}
	if err := geopatch.RasterCRSGuard(rasters...); err != nil {
		return err
	}
	for _, r := range cfg.Rasters {
		if err := geopatch.RasterBandsExist(r.Bands, r.Path); err != nil {
			return err
		}
	}
	same, err := geopatch.RastersShareCRS(rasters...)
	if err != nil {
		return err
	}
	if !same {
		log.Warn("rasters do not share the same crs", zap.Strings("rasters", rasters))
	}
	if cfg.MaskVector != "" {
		if err = geopatch.FilesExist(cfg.MaskVector); err != nil {
			return err
		}
		if err = geopatch.VectorDriverGuard(cfg.MaskVector); err != nil {
			return err
		}
		if err = geopatch.VectorCRSGuard(cfg.MaskVector); err != nil {
			return err
		}
	}
	return nil
}
