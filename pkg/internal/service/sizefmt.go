package service

import (
	"fmt"
	"math"
)

// sizeUnits 固定 1024 进制的单位梯子.
var sizeUnits = [...]string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatSize 把字节数格式化为人类可读的尺寸串，取整到最近的整数单位.
// 0 字节的特例输出 "0 Byte"，超出 TB 的值停在 TB.
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 Byte"
	}

	v := float64(bytes)
	i := 0

	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}

	return fmt.Sprintf("%d %s", int64(math.Round(v)), sizeUnits[i])
}
