package geopatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/require"
)

const testEPSG = 2154

// 测试栅格：band[i]为第i个波段的像素值
type testRaster struct {
	width, height int
	dt            godal.DataType
	gt            [6]float64
	noCRS         bool
	bands         [][]float64
}

func constBand(w, h int, v float64) []float64 {
	b := make([]float64, w*h)
	for i := range b {
		b[i] = v
	}
	return b
}

func writeTestRaster(t *testing.T, path string, r testRaster) string {
	t.Helper()
	ensureRegistered()
	ds, err := godal.Create(godal.GTiff, path, len(r.bands), r.dt, r.width, r.height)
	require.NoError(t, err)
	require.NoError(t, ds.SetGeoTransform(r.gt))
	if !r.noCRS {
		sr, err := godal.NewSpatialRefFromEPSG(testEPSG)
		require.NoError(t, err)
		defer sr.Close()
		require.NoError(t, ds.SetSpatialRef(sr))
	}
	for i, b := range r.bands {
		require.NoError(t, ds.Bands()[i].Write(0, 0, b, r.width, r.height))
	}
	require.NoError(t, ds.Close())
	return path
}

type patchContent struct {
	gt     [6]float64
	crs    string
	width  int
	height int
	bands  [][]float64
}

func readTestPatch(t *testing.T, path string) (p patchContent) {
	t.Helper()
	ds, err := godal.Open(path, godal.RasterOnly())
	require.NoError(t, err)
	defer ds.Close()
	p.gt, err = ds.GeoTransform()
	require.NoError(t, err)
	p.crs = ds.Projection()
	st := ds.Structure()
	p.width, p.height = st.SizeX, st.SizeY
	for _, b := range ds.Bands() {
		buf := make([]float64, p.width*p.height)
		require.NoError(t, b.Read(0, 0, buf, p.width, p.height))
		p.bands = append(p.bands, buf)
	}
	return
}

func tempPath(t *testing.T, name string) string {
	return filepath.Join(t.TempDir(), name)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
