package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/yeisme/filerelay/pkg/internal/repo"
	nlog "github.com/yeisme/filerelay/pkg/log"
)

// BroadcastService 向所有已知用户群发一条消息.
type BroadcastService struct {
	tr    Transport
	store repo.UserStore
}

// NewBroadcastService 创建群发服务.
func NewBroadcastService(tr Transport, store repo.UserStore) *BroadcastService {
	return &BroadcastService{tr: tr, store: store}
}

// Broadcast 把 fromChatID 中的 messageID 转发给每个注册用户.
// 单个用户发送失败（被拉黑、账号注销）只记日志并跳过，不中断整轮.
// 返回成功与失败的份数.
func (s *BroadcastService) Broadcast(ctx context.Context, fromChatID int64, messageID int) (sent, failed int, err error) {
	runID := uuid.NewString()

	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, 0, err
	}

	nlog.Logger().Info().
		Str("run_id", runID).
		Int("recipients", len(userIDs)).
		Msg("broadcast started")

	for _, uid := range userIDs {
		if _, ferr := s.tr.ForwardMessage(ctx, uid, fromChatID, messageID); ferr != nil {
			failed++

			nlog.Logger().Warn().Err(ferr).
				Str("run_id", runID).
				Int64("user_id", uid).
				Msg("broadcast delivery failed")

			continue
		}

		sent++
	}

	nlog.Logger().Info().
		Str("run_id", runID).
		Int("sent", sent).
		Int("failed", failed).
		Msg("broadcast finished")

	return sent, failed, nil
}
