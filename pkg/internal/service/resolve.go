package service

import (
	"context"

	"github.com/yeisme/filerelay/pkg/internal/model"
	"github.com/yeisme/filerelay/pkg/internal/repo"
	nlog "github.com/yeisme/filerelay/pkg/log"
	"github.com/yeisme/filerelay/pkg/metrics"
)

const (
	welcomeHTML = "<blockquote>Hello, <b> Dear User </b>!</blockquote>\n\n" +
		"<b>Unlimited Storage Telegram Bot</b>\n\n" +
		"Maximize your storage capabilities with the Unlimited Storage Telegram bot. " +
		"Easily store and share your files with friends and colleagues. " +
		"Type /help to explore more features and benefits.."

	helpHTML = `<b>Help Menu:</b>
1. <b>/start</b> - Start the bot or retrieve files with a link.
2. <b>/startbatch</b> - Start a batch mode for uploading multiple files.
3. <b>/endbatch</b> - End the batch and receive a link to the files.
4. <b>/help</b> - Show this help message.

You can send files directly to this chat, and I will generate a link for them. If you're in batch mode, send multiple files and receive one link for the entire batch.`
)

// ResolveService 链接解析：令牌 → 归档记录 → 按原始类型重放.
// 解析是只读的，命中与否都不会改动存储.
type ResolveService struct {
	tr    Transport
	store repo.UserStore
	codec *LinkCodec
	// welcomePhotoURL 空令牌欢迎图，为空时退化为纯 HTML 消息
	welcomePhotoURL string
}

// NewResolveService 创建链接解析服务.
func NewResolveService(tr Transport, store repo.UserStore, codec *LinkCodec, welcomePhotoURL string) *ResolveService {
	return &ResolveService{
		tr:              tr,
		store:           store,
		codec:           codec,
		welcomePhotoURL: welcomePhotoURL,
	}
}

// Resolve 解析 start 令牌：
//   - 空令牌走欢迎消息；
//   - 先按批次号查，命中则按入库顺序重放整批；
//   - 再按归档消息 ID 查单文件；
//   - 都未命中时提示链接无效.
//
// 批次查找优先，batchID 与某条 archiveMessageID 撞车时整批获胜.
func (s *ResolveService) Resolve(ctx context.Context, chatID int64, token string) {
	token = s.codec.Decode(token)
	if token == "" {
		s.Welcome(ctx, chatID)

		return
	}

	files, err := s.store.FilesByBatchID(ctx, token)
	if err != nil {
		nlog.Logger().Error().Err(err).Str("token", token).Msg("batch lookup failed")
		s.notify(ctx, chatID, "No file found with that link.")

		return
	}

	if len(files) > 0 {
		for i := range files {
			s.replay(ctx, chatID, &files[i])
		}

		metrics.LinksResolved.WithLabelValues("batch").Inc()

		return
	}

	rec, err := s.store.FileByArchiveMessageID(ctx, token)
	if err != nil {
		nlog.Logger().Error().Err(err).Str("token", token).Msg("file lookup failed")
		s.notify(ctx, chatID, "No file found with that link.")

		return
	}

	if rec == nil {
		metrics.LinksResolved.WithLabelValues("miss").Inc()
		s.notify(ctx, chatID, "No file found with that link.")

		return
	}

	s.replay(ctx, chatID, rec)
	metrics.LinksResolved.WithLabelValues("single").Inc()
}

// Welcome 发送欢迎消息.
func (s *ResolveService) Welcome(ctx context.Context, chatID int64) {
	var err error
	if s.welcomePhotoURL != "" {
		err = s.tr.SendPhotoURL(ctx, chatID, s.welcomePhotoURL, welcomeHTML)
	} else {
		err = s.tr.SendHTML(ctx, chatID, welcomeHTML)
	}

	if err != nil {
		nlog.Logger().Error().Err(err).Int64("chat_id", chatID).Msg("failed to send welcome message")
	}
}

// Help 发送帮助消息.
func (s *ResolveService) Help(ctx context.Context, chatID int64) {
	if err := s.tr.SendHTML(ctx, chatID, helpHTML); err != nil {
		nlog.Logger().Error().Err(err).Int64("chat_id", chatID).Msg("failed to send help message")
	}
}

// replay 按记录类型把一份归档媒体重发给用户.
func (s *ResolveService) replay(ctx context.Context, chatID int64, rec *model.FileRecord) {
	var err error

	switch rec.FileType {
	case model.FileTypeDocument:
		err = s.tr.SendDocument(ctx, chatID, rec.ProviderFileID)
	case model.FileTypePhoto:
		err = s.tr.SendPhoto(ctx, chatID, rec.ProviderFileID)
	case model.FileTypeVideo:
		err = s.tr.SendVideo(ctx, chatID, rec.ProviderFileID)
	case model.FileTypeAudio:
		err = s.tr.SendAudio(ctx, chatID, rec.ProviderFileID)
	default:
		err = s.tr.SendText(ctx, chatID, "File type not recognized.")
	}

	if err != nil {
		nlog.Logger().Error().Err(err).
			Int64("chat_id", chatID).
			Str("archive_message_id", rec.ArchiveMessageID).
			Msg("failed to replay file")
	}
}

// notify 给用户发送提示，失败只记日志.
func (s *ResolveService) notify(ctx context.Context, chatID int64, text string) {
	if err := s.tr.SendText(ctx, chatID, text); err != nil {
		nlog.Logger().Error().Err(err).Int64("chat_id", chatID).Msg("failed to notify user")
	}
}
