package main

import (
	"os"

	"github.com/wgdzlh/geopatch/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "geopatch",
	Short:         "Extract georeferenced image/mask patches for segmentation training",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "geopatch.json", "Path to job config (JSON)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("geopatch failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}
