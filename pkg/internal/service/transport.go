// Package service 实现文件注册与链接解析的业务流程.
//
// 入站消息 → 订阅门禁 → （批次会话）→ 文件注册 → 落库记录 + 链接；
// 带令牌的 start 命令 → 订阅门禁 → 链接解析 → 按原始媒体类型重放.
package service

import "context"

// 传输层返回的成员状态.
const (
	MemberStatusMember        = "member"
	MemberStatusAdministrator = "administrator"
	MemberStatusCreator       = "creator"
)

// Transport 消息传输层契约. 所有操作都是异步调用、可能失败；
// 调用方负责捕获并记录错误，绝不让失败冒泡成崩溃.
type Transport interface {
	// SendText 发送纯文本消息.
	SendText(ctx context.Context, chatID int64, text string) error
	// SendHTML 发送 HTML 格式消息.
	SendHTML(ctx context.Context, chatID int64, html string) error
	// SendHTMLWithButton 发送带单个跳转按钮的 HTML 消息.
	SendHTMLWithButton(ctx context.Context, chatID int64, html, buttonText, buttonURL string) error
	// SendPhotoURL 按外部 URL 发送图片，caption 为 HTML.
	SendPhotoURL(ctx context.Context, chatID int64, photoURL, captionHTML string) error

	// 按传输层文件句柄重发媒体，与 FileType 一一对应.
	SendDocument(ctx context.Context, chatID int64, providerFileID string) error
	SendPhoto(ctx context.Context, chatID int64, providerFileID string) error
	SendVideo(ctx context.Context, chatID int64, providerFileID string) error
	SendAudio(ctx context.Context, chatID int64, providerFileID string) error

	// ForwardMessage 把消息转发到目标会话，返回目标侧的消息 ID.
	ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error)
	// ChatMemberStatus 查询用户在频道中的成员状态.
	ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error)
}
