package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yeisme/filerelay/pkg/internal/model"
)

// TestClassify_Document 测试文档分类携带原始文件名.
func TestClassify_Document(t *testing.T) {
	msg := &tgbotapi.Message{
		Document: &tgbotapi.Document{FileID: "d-1", FileName: "report.pdf", FileSize: 2048},
	}

	att, ok := classify(msg)
	if !ok {
		t.Fatal("expected a media attachment")
	}

	if att.Type != model.FileTypeDocument || att.Name != "report.pdf" || att.SizeBytes != 2048 {
		t.Errorf("unexpected attachment: %+v", att)
	}
}

// TestClassify_PhotoPicksLargest 测试照片取最大分辨率变体.
func TestClassify_PhotoPicksLargest(t *testing.T) {
	msg := &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{
			{FileID: "p-small", FileSize: 100},
			{FileID: "p-medium", FileSize: 1000},
			{FileID: "p-large", FileSize: 10000},
		},
	}

	att, ok := classify(msg)
	if !ok {
		t.Fatal("expected a media attachment")
	}

	if att.Type != model.FileTypePhoto || att.ProviderFileID != "p-large" {
		t.Errorf("unexpected attachment: %+v", att)
	}

	// 照片没有文件名，回退为类型名
	if att.Name != "photo" {
		t.Errorf("Name = %q, want %q", att.Name, "photo")
	}
}

// TestClassify_NameFallback 测试视频与音频缺失文件名时回退为类型名.
func TestClassify_NameFallback(t *testing.T) {
	video := &tgbotapi.Message{Video: &tgbotapi.Video{FileID: "v-1"}}
	if att, _ := classify(video); att.Name != "video" {
		t.Errorf("video Name = %q, want %q", att.Name, "video")
	}

	audio := &tgbotapi.Message{Audio: &tgbotapi.Audio{FileID: "a-1"}}
	if att, _ := classify(audio); att.Name != "audio" {
		t.Errorf("audio Name = %q, want %q", att.Name, "audio")
	}
}

// TestClassify_NonMedia 测试纯文本消息不产生附件.
func TestClassify_NonMedia(t *testing.T) {
	msg := &tgbotapi.Message{Text: "hello"}

	if _, ok := classify(msg); ok {
		t.Error("text message must not classify as media")
	}
}
