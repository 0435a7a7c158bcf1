//go:build !android

package utils

// EnsureStorageDir 桌面平台由 gdata 自行创建目录
func EnsureStorageDir() error {
	return nil
}

// GetStoragePath 桌面平台没有需要记录的固定路径，返回空串
func GetStoragePath() string {
	return ""
}
