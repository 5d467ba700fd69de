package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/service"
	nlog "github.com/yeisme/filerelay/pkg/log"
)

// Transport 在业务收发能力之上补齐长轮询所需的接口.
type Transport interface {
	service.Transport

	Updates(pollTimeout int) tgbotapi.UpdatesChannel
	Username() string
	StopPolling()
}

// Bot 长轮询分发器，把更新路由到各业务服务.
type Bot struct {
	tr        Transport
	cfg       *configs.BotConfig
	gate      *service.Gate
	register  *service.RegisterService
	resolve   *service.ResolveService
	broadcast *service.BroadcastService
}

// New 创建分发器.
func New(tr Transport, cfg *configs.BotConfig,
	gate *service.Gate,
	register *service.RegisterService,
	resolve *service.ResolveService,
	broadcast *service.BroadcastService,
) *Bot {
	return &Bot{
		tr:        tr,
		cfg:       cfg,
		gate:      gate,
		register:  register,
		resolve:   resolve,
		broadcast: broadcast,
	}
}

// Run 消费更新直到 ctx 取消. 每条更新在独立 goroutine 中处理，
// 单条消息的 panic 被就地捕获，不拖垮轮询循环.
func (b *Bot) Run(ctx context.Context) error {
	updates := b.tr.Updates(b.cfg.PollTimeout)

	nlog.Logger().Info().Str("username", b.tr.Username()).Msg("bot polling started")

	var wg sync.WaitGroup

	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.tr.StopPolling()

			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			// 频道帖等无发送者的更新不在处理范围内
			if update.Message == nil || update.Message.From == nil {
				continue
			}

			wg.Add(1)

			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						nlog.Logger().Error().
							Interface("panic", r).
							Int64("chat_id", msg.Chat.ID).
							Msg("update handler panicked")
					}
				}()

				b.handle(ctx, msg)
			}(update.Message)
		}
	}
}

// handle 路由一条入站消息.
func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if !b.gate.Enforce(ctx, userID, chatID) {
			return
		}

		b.resolve.Resolve(ctx, chatID, msg.CommandArguments())

		return
	case "help":
		if !b.gate.Enforce(ctx, userID, chatID) {
			return
		}

		b.resolve.Help(ctx, chatID)

		return
	case "startbatch":
		if !b.gate.Enforce(ctx, userID, chatID) {
			return
		}

		b.register.StartBatch(ctx, userID, chatID)

		return
	case "endbatch":
		if !b.gate.Enforce(ctx, userID, chatID) {
			return
		}

		b.register.EndBatch(ctx, userID, chatID)

		return
	case "broadcast":
		b.handleBroadcast(ctx, msg)

		return
	}

	// 非命令消息一律先过门禁，纯文本也要提示入群
	if !b.gate.Enforce(ctx, userID, chatID) {
		return
	}

	att, ok := classify(msg)
	if !ok {
		return
	}

	if err := b.register.Register(ctx, userID, chatID, msg.MessageID, att); err != nil {
		b.reply(ctx, chatID, "Something went wrong saving your file. Please try again.")
	}
}

// handleBroadcast 管理员专用：对 /broadcast 所回复的消息做全量转发.
func (b *Bot) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.IsAdmin(msg.From.ID) {
		return
	}

	if msg.ReplyToMessage == nil {
		b.reply(ctx, msg.Chat.ID, "Reply to the message you want to broadcast with /broadcast.")

		return
	}

	sent, failed, err := b.broadcast.Broadcast(ctx, msg.Chat.ID, msg.ReplyToMessage.MessageID)
	if err != nil {
		nlog.Logger().Error().Err(err).Msg("broadcast aborted")
		b.reply(ctx, msg.Chat.ID, "Broadcast failed to start.")

		return
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Broadcast done: %d delivered, %d failed.", sent, failed))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.tr.SendText(ctx, chatID, text); err != nil {
		nlog.Logger().Error().Err(err).Int64("chat_id", chatID).Msg("failed to reply")
	}
}
