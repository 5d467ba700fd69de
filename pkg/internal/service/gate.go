package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yeisme/filerelay/pkg/cache"
	"github.com/yeisme/filerelay/pkg/configs"
	nlog "github.com/yeisme/filerelay/pkg/log"
	"github.com/yeisme/filerelay/pkg/metrics"
)

// gateNoticeHTML 未订阅时的提示文案.
const gateNoticeHTML = "<b>Notice:</b> Due to high server load, access to this free service " +
	"is restricted to users who are not subscribed to our channel. " +
	"Please subscribe to gain access.\n\nPlease click the button below:"

const gateJoinButtonText = "Join our channel"

// Gate 订阅门禁：所有文件操作前检查用户是否加入了指定频道.
// 成员查询自己失败时按未订阅处理（fail closed）——门禁检查的可用性本身没有保障，
// 宁可拒绝也不放行.
type Gate struct {
	tr    Transport
	cfg   *configs.BotConfig
	cb    *gobreaker.CircuitBreaker
	cache *cache.Cache
	ttl   time.Duration
}

// NewGate 创建订阅门禁. c 为 nil 或 TTL 为 0 时不缓存检查结果.
func NewGate(tr Transport, botCfg *configs.BotConfig, cbCfg configs.CircuitBreakerConfig, c *cache.Cache) *Gate {
	g := &Gate{
		tr:    tr,
		cfg:   botCfg,
		cache: c,
		ttl:   botCfg.MembershipCacheTTL,
	}

	if cbCfg.Enabled {
		settings := gobreaker.Settings{
			Name:        "membership-query",
			MaxRequests: cbCfg.MaxRequestsInHalf,
			Interval:    time.Duration(cbCfg.IntervalSeconds) * time.Second,
			Timeout:     time.Duration(cbCfg.TimeoutSeconds) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				total := counts.Requests
				if total < cbCfg.MinRequests {
					return false
				}
				// 失败比例
				failureRate := float64(counts.TotalFailures) / float64(total)

				return failureRate >= cbCfg.FailureRate
			},
		}
		g.cb = gobreaker.NewCircuitBreaker(settings)
	}

	return g
}

// IsMember 查询用户是否为频道成员. 查询失败或熔断打开时返回 false.
// 正向结果按 TTL 缓存；拒绝从不缓存，保持 fail closed 语义.
func (g *Gate) IsMember(ctx context.Context, userID int64) bool {
	key := fmt.Sprintf("member:%d:%d", g.cfg.RequiredChannelID, userID)

	if g.cache != nil && g.ttl > 0 {
		if ok, err := cache.Get[bool](ctx, g.cache, key); err == nil && ok {
			return true
		}
	}

	status, err := g.queryStatus(ctx, userID)
	if err != nil {
		nlog.Logger().Error().Err(err).Int64("user_id", userID).
			Msg("membership query failed, denying access")

		return false
	}

	member := status == MemberStatusMember ||
		status == MemberStatusAdministrator ||
		status == MemberStatusCreator

	if member && g.cache != nil && g.ttl > 0 {
		if err := cache.Set(ctx, g.cache, key, true, g.ttl); err != nil {
			nlog.Logger().Warn().Err(err).Msg("failed to cache membership result")
		}
	}

	return member
}

// queryStatus 经熔断器查询成员状态.
func (g *Gate) queryStatus(ctx context.Context, userID int64) (string, error) {
	if g.cb == nil {
		return g.tr.ChatMemberStatus(ctx, g.cfg.RequiredChannelID, userID)
	}

	res, err := g.cb.Execute(func() (any, error) {
		return g.tr.ChatMemberStatus(ctx, g.cfg.RequiredChannelID, userID)
	})
	if err != nil {
		return "", err
	}

	status, _ := res.(string)

	return status, nil
}

// Enforce 校验订阅状态；未通过时发送带加入按钮的提示并返回 false，调用方必须中止当前操作.
// 通过时返回 true，无副作用.
func (g *Gate) Enforce(ctx context.Context, userID, chatID int64) bool {
	if g.IsMember(ctx, userID) {
		return true
	}

	metrics.GateDenied.Inc()

	err := g.tr.SendHTMLWithButton(ctx, chatID, gateNoticeHTML,
		gateJoinButtonText, g.cfg.RequiredChannelLink)
	if err != nil {
		nlog.Logger().Error().Err(err).Int64("chat_id", chatID).
			Msg("failed to send subscription notice")
	}

	return false
}
