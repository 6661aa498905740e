package main

import (
	"fmt"

	"github.com/wgdzlh/geopatch"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of bands a stacked patch will carry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		set, err := buildRasterSet(cfg)
		if err != nil {
			return err
		}
		n, err := geopatch.NewGeoPatcher().CountBands(set)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d bands, dtype %s\n", n, patchType(cfg, set))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}

// 按配置登记源栅格并组织为栅格集合
func buildRasterSet(cfg Config) (set geopatch.RasterSet, err error) {
	shape := cfg.Shape()
	sources := make([]geopatch.RasterSource, 0, len(cfg.Rasters))
	for _, r := range cfg.Rasters {
		var src geopatch.RasterSource
		if src, err = geopatch.OpenRasterSource(r.Name, r.Path, r.Bands, shape); err != nil {
			return
		}
		sources = append(sources, src)
	}
	return geopatch.NewRasterSet(sources, cfg.HeightBand)
}

func patchType(cfg Config, set geopatch.RasterSet) geopatch.PixelType {
	if cfg.DataType != "" {
		return geopatch.PixelType(cfg.DataType)
	}
	return geopatch.MaxPatchType(set)
}
