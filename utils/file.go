package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// 在parentPath下创建以uuid命名的子目录
func GetUniqSubDir(parentPath string) (path string, err error) {
	path = filepath.Join(parentPath, uuid.NewString())
	err = os.MkdirAll(path, os.ModePerm)
	return
}

func GetFilenameWithoutExt(path string) (name string) {
	name = filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(path))
	return
}

// 将相对路径放到dir下，绝对路径保持不变
func JoinIfRelative(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func GetSubDir(parentPath, name string) (path string, err error) {
	path = filepath.Join(parentPath, name)
	err = os.MkdirAll(path, os.ModePerm)
	return
}
