package service_test

import (
	"testing"

	"github.com/yeisme/filerelay/pkg/internal/service"
)

// TestFormatSize 测试尺寸格式化的单位梯子与取整.
func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Byte"},
		{1, "1 Bytes"},
		{512, "512 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "2 KB"},  // 四舍五入到最近整数
		{1400, "1 KB"},
		{1048576, "1 MB"},
		{5 * 1024 * 1024, "5 MB"},
		{1073741824, "1 GB"},
		{1099511627776, "1 TB"},
		{1099511627776 * 2048, "2048 TB"}, // 超出 TB 停在 TB
	}

	for _, c := range cases {
		if got := service.FormatSize(c.bytes); got != c.want {
			t.Errorf("FormatSize(%d) = %q, want %q", c.bytes, got, c.want)
		}
	}
}
