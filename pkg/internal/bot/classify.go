package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yeisme/filerelay/pkg/internal/model"
	"github.com/yeisme/filerelay/pkg/internal/service"
)

// classify 把入站消息归入四类媒体之一.
// 附带文件名缺失时回退为类型名；照片取最大分辨率变体（切片末位）.
// 非媒体消息返回 ok=false.
func classify(msg *tgbotapi.Message) (service.Attachment, bool) {
	switch {
	case msg.Document != nil:
		return service.Attachment{
			Type:           model.FileTypeDocument,
			ProviderFileID: msg.Document.FileID,
			Name:           msg.Document.FileName,
			SizeBytes:      int64(msg.Document.FileSize),
		}, true
	case len(msg.Photo) > 0:
		largest := msg.Photo[len(msg.Photo)-1]

		return service.Attachment{
			Type:           model.FileTypePhoto,
			ProviderFileID: largest.FileID,
			Name:           "photo",
			SizeBytes:      int64(largest.FileSize),
		}, true
	case msg.Video != nil:
		name := msg.Video.FileName
		if name == "" {
			name = "video"
		}

		return service.Attachment{
			Type:           model.FileTypeVideo,
			ProviderFileID: msg.Video.FileID,
			Name:           name,
			SizeBytes:      int64(msg.Video.FileSize),
		}, true
	case msg.Audio != nil:
		name := msg.Audio.FileName
		if name == "" {
			name = "audio"
		}

		return service.Attachment{
			Type:           model.FileTypeAudio,
			ProviderFileID: msg.Audio.FileID,
			Name:           name,
			SizeBytes:      int64(msg.Audio.FileSize),
		}, true
	}

	return service.Attachment{}, false
}
