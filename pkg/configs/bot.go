package configs

import (
	"time"

	"github.com/spf13/viper"
)

// BatchPolicy 在已有批次未结束时再次 /startbatch 的处理策略.
type BatchPolicy string

const (
	// BatchOverwrite 丢弃旧批次未落库的文件，直接开新批次.
	BatchOverwrite BatchPolicy = "overwrite"
	// BatchReject 拒绝开新批次，提示用户先 /endbatch.
	BatchReject BatchPolicy = "reject"
)

const (
	DefaultBotPollTimeout      = 30                    // 长轮询超时，单位秒
	DefaultBatchPolicy         = BatchOverwrite        // 默认沿用旧行为：静默覆盖
	DefaultMembershipCacheTTL  = 5 * time.Minute       // 订阅检查正向结果缓存时长，0 表示不缓存
	DefaultWelcomePhotoURL     = ""                    // 欢迎消息图片，空则退回纯文本
	DefaultRequiredChannelLink = "https://t.me/+joinus" // 加入频道按钮的跳转链接
)

type (
	// BotConfig 机器人配置.
	BotConfig struct {
		// Token 机器人凭据，通常由 FILERELAY_BOT_TOKEN 注入
		Token string `mapstructure:"token" rule:"required"`
		// Username 机器人公开用户名，用于拼接深链接（不含 @）
		Username string `mapstructure:"username" rule:"required"`
		// ArchiveChannelID 归档频道，媒体转发到这里落库
		ArchiveChannelID int64 `mapstructure:"archive_channel_id" rule:"required"`
		// RequiredChannelID 订阅门禁检查的频道
		RequiredChannelID int64 `mapstructure:"required_channel_id" rule:"required"`
		// RequiredChannelLink 未订阅时提示按钮的跳转链接
		RequiredChannelLink string `mapstructure:"required_channel_link" rule:"omitempty,url"`
		// AdminIDs 允许使用 /broadcast 的用户
		AdminIDs []int64 `mapstructure:"admin_ids"`
		// PollTimeout 长轮询超时（秒）
		PollTimeout int `mapstructure:"poll_timeout" rule:"min=1,max=120"`
		// BatchPolicy 已有批次进行中时再次开批的策略
		BatchPolicy BatchPolicy `mapstructure:"batch_policy" rule:"oneof=overwrite reject"`
		// MembershipCacheTTL 订阅检查正向结果的缓存时长，0 禁用缓存
		MembershipCacheTTL time.Duration `mapstructure:"membership_cache_ttl"`
		// WelcomePhotoURL 欢迎消息图片
		WelcomePhotoURL string `mapstructure:"welcome_photo_url" rule:"omitempty,url"`
	}
)

// IsAdmin 判断用户是否在广播管理员列表中.
func (b *BotConfig) IsAdmin(userID int64) bool {
	for _, id := range b.AdminIDs {
		if id == userID {
			return true
		}
	}

	return false
}

// setDefaults 设置机器人配置的默认值.
func (b *BotConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.username", "")
	v.SetDefault("bot.archive_channel_id", 0)
	v.SetDefault("bot.required_channel_id", 0)
	v.SetDefault("bot.required_channel_link", DefaultRequiredChannelLink)
	v.SetDefault("bot.admin_ids", []int64{})
	v.SetDefault("bot.poll_timeout", DefaultBotPollTimeout)
	v.SetDefault("bot.batch_policy", string(DefaultBatchPolicy))
	v.SetDefault("bot.membership_cache_ttl", DefaultMembershipCacheTTL)
	v.SetDefault("bot.welcome_photo_url", DefaultWelcomePhotoURL)
}
