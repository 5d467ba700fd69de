package service_test

import (
	"testing"

	"github.com/yeisme/filerelay/pkg/internal/service"
)

// TestLinkCodec_Encode 测试深链接格式.
func TestLinkCodec_Encode(t *testing.T) {
	codec := service.NewLinkCodec("filerelay_bot")

	got := codec.Encode("12345")
	want := "https://t.me/filerelay_bot?start=12345"

	if got != want {
		t.Errorf("Encode(12345) = %q, want %q", got, want)
	}
}

// TestLinkCodec_RoundTrip 测试编码后解码还原出相同令牌.
func TestLinkCodec_RoundTrip(t *testing.T) {
	codec := service.NewLinkCodec("filerelay_bot")

	for _, token := range []string{"42", "batch-1730000000000-99", "weird token"} {
		if got := codec.Decode(token); got != token {
			t.Errorf("Decode(%q) = %q, want identity", token, got)
		}
	}
}
