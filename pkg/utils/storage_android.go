//go:build android

package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// storageSubdir gdata 在应用私有目录下使用的子目录
const storageSubdir = "saves"

// EnsureStorageDir 在打开 gdata 前准备 Android 私有存储目录
//
// gdata 在 Android 上不会自行创建子目录，设置和引导进度首次保存时会失败。
// 这里创建目录并做一次写入探测，失败时由调用方降级为不持久化。
func EnsureStorageDir() error {
	root, err := androidDataDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(root, storageSubdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create storage dir %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".probe")
	if err := os.WriteFile(probe, nil, 0644); err != nil {
		return fmt.Errorf("storage dir %s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}

// GetStoragePath 返回应用私有目录，探测失败时返回空串
func GetStoragePath() string {
	root, err := androidDataDir()
	if err != nil {
		return ""
	}
	return root
}

// androidDataDir 由 /proc/self/cmdline 中的包名推出 /data/data/{package}
func androidDataDir() (string, error) {
	raw, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", fmt.Errorf("read process cmdline: %w", err)
	}
	// cmdline 以 NUL 分隔参数，包名是第一个参数
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	pkg := string(bytes.TrimSpace(raw))
	if pkg == "" {
		return "", fmt.Errorf("empty package name in process cmdline")
	}
	return filepath.Join("/data/data", pkg), nil
}
