// Package bot 承载 Telegram 接入层：传输适配、附件分类与更新分发.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram 基于 Bot API 的 service.Transport 实现.
// 底层客户端不感知 context，这里只在发送前检查取消状态.
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram 用 token 建立 Bot API 会话.
func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Telegram{api: api}, nil
}

// Username 返回机器人自身的用户名，用于拼接深链.
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

// Updates 开启长轮询并返回更新通道.
func (t *Telegram) Updates(pollTimeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	return t.api.GetUpdatesChan(u)
}

// StopPolling 结束长轮询，Updates 返回的通道随之关闭.
func (t *Telegram) StopPolling() {
	t.api.StopReceivingUpdates()
}

func (t *Telegram) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := t.api.Send(c)

	return err
}

// SendText 发送纯文本消息.
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	return t.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendHTML 发送 HTML 格式消息.
func (t *Telegram) SendHTML(ctx context.Context, chatID int64, html string) error {
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML

	return t.send(ctx, msg)
}

// SendHTMLWithButton 发送带单个跳转按钮的 HTML 消息.
func (t *Telegram) SendHTMLWithButton(ctx context.Context, chatID int64, html, buttonText, buttonURL string) error {
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(buttonText, buttonURL),
		),
	)

	return t.send(ctx, msg)
}

// SendPhotoURL 按外部 URL 发送图片，caption 为 HTML.
func (t *Telegram) SendPhotoURL(ctx context.Context, chatID int64, photoURL, captionHTML string) error {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	msg.Caption = captionHTML
	msg.ParseMode = tgbotapi.ModeHTML

	return t.send(ctx, msg)
}

// SendDocument 按文件句柄重发文档.
func (t *Telegram) SendDocument(ctx context.Context, chatID int64, providerFileID string) error {
	return t.send(ctx, tgbotapi.NewDocument(chatID, tgbotapi.FileID(providerFileID)))
}

// SendPhoto 按文件句柄重发图片.
func (t *Telegram) SendPhoto(ctx context.Context, chatID int64, providerFileID string) error {
	return t.send(ctx, tgbotapi.NewPhoto(chatID, tgbotapi.FileID(providerFileID)))
}

// SendVideo 按文件句柄重发视频.
func (t *Telegram) SendVideo(ctx context.Context, chatID int64, providerFileID string) error {
	return t.send(ctx, tgbotapi.NewVideo(chatID, tgbotapi.FileID(providerFileID)))
}

// SendAudio 按文件句柄重发音频.
func (t *Telegram) SendAudio(ctx context.Context, chatID int64, providerFileID string) error {
	return t.send(ctx, tgbotapi.NewAudio(chatID, tgbotapi.FileID(providerFileID)))
}

// ForwardMessage 把消息转发到目标会话，返回目标侧的消息 ID.
func (t *Telegram) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sent, err := t.api.Send(tgbotapi.NewForward(toChatID, fromChatID, messageID))
	if err != nil {
		return 0, err
	}

	return sent.MessageID, nil
}

// ChatMemberStatus 查询用户在频道中的成员状态.
func (t *Telegram) ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	member, err := t.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", err
	}

	return member.Status, nil
}

// 编译期保证适配器满足传输层契约.
var _ Transport = (*Telegram)(nil)
