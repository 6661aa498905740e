package geopatch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wgdzlh/geopatch/log"
	"github.com/wgdzlh/geopatch/utils"

	"go.uber.org/zap"
)

// 读取采样中心CSV：x,y,img_file,msk_file，首行为表头时跳过；gbk为true时路径按GBK解码
func ReadSampleFile(path string, gbk bool) (centers []SampleCenter, err error) {
	if err = FilesExist(path); err != nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		err = ioFailure(path, err)
		return
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = 4
	r.TrimLeadingSpace = true
	line := 0
	for {
		rec, e := r.Read()
		if errors.Is(e, io.EOF) {
			break
		}
		line++
		if e != nil {
			err = ioFailure(path, e)
			return
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), SAMPLE_HEADER) {
			continue
		}
		var ct SampleCenter
		if ct, err = parseSample(rec, gbk); err != nil {
			err = fmt.Errorf("%w: %s line %d: %v", ErrIOFailure, path, line, err)
			return
		}
		centers = append(centers, ct)
	}
	log.Info("read sample file", zap.String("path", path), zap.Int("centers", len(centers)), zap.Bool("gbk", gbk))
	return
}

func parseSample(rec []string, gbk bool) (ct SampleCenter, err error) {
	if ct.X, err = strconv.ParseFloat(strings.TrimSpace(rec[0]), 64); err != nil {
		return
	}
	if ct.Y, err = strconv.ParseFloat(strings.TrimSpace(rec[1]), 64); err != nil {
		return
	}
	ct.ImageFile, ct.MaskFile = rec[2], rec[3]
	if gbk {
		if ct.ImageFile, err = utils.GbkStrToUtf8(ct.ImageFile); err != nil {
			return
		}
		ct.MaskFile, err = utils.GbkStrToUtf8(ct.MaskFile)
	}
	return
}

// 写出训练用的 影像,掩膜 对照CSV
func WritePatchIndex(path string, centers []SampleCenter) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return ioFailure(path, err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = ioFailure(path, e)
		}
	}()
	w := csv.NewWriter(f)
	for _, ct := range centers {
		if err = w.Write([]string{ct.ImageFile, ct.MaskFile}); err != nil {
			return ioFailure(path, err)
		}
	}
	w.Flush()
	if e := w.Error(); e != nil {
		err = ioFailure(path, e)
	}
	return
}
