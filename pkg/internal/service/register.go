package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/yeisme/filerelay/pkg/internal/model"
	"github.com/yeisme/filerelay/pkg/internal/repo"
	nlog "github.com/yeisme/filerelay/pkg/log"
	"github.com/yeisme/filerelay/pkg/metrics"
)

// Attachment 一条已分类的入站附件.
type Attachment struct {
	Type           model.FileType
	ProviderFileID string
	// Name 展示名，传输层未提供时已回退为类型名
	Name string
	// SizeBytes 原始字节数
	SizeBytes int64
}

// RegisterService 文件注册流程：归档、落库、回发链接.
type RegisterService struct {
	tr      Transport
	store   repo.UserStore
	codec   *LinkCodec
	tracker *BatchTracker
	// archiveChannelID 归档频道，单文件令牌的唯一真源来自这里的消息 ID
	archiveChannelID int64

	// userLocks 按用户串行化「读账户、追加、写回」，避免同一用户并发上传时丢更新
	userLocks sync.Map
}

// NewRegisterService 创建文件注册服务.
func NewRegisterService(tr Transport, store repo.UserStore, codec *LinkCodec,
	tracker *BatchTracker, archiveChannelID int64,
) *RegisterService {
	return &RegisterService{
		tr:               tr,
		store:            store,
		codec:            codec,
		tracker:          tracker,
		archiveChannelID: archiveChannelID,
	}
}

// lockUser 取 per-user 互斥锁.
func (s *RegisterService) lockUser(userID int64) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})

	return mu.(*sync.Mutex)
}

// Register 注册一条附件：
//  1. 转发到归档频道，归档侧消息 ID 即 archiveMessageID；
//  2. 构造 FileRecord 并派生单文件链接；
//  3. 追加到用户名下（用户不存在时惰性创建）；
//  4. 有活动批次时喂入批次并提示「已加入批次」，否则直接回发链接.
//
// 归档失败时快速失败，记录不会被创建，没有补偿事务.
func (s *RegisterService) Register(ctx context.Context, userID, chatID int64, messageID int, att Attachment) error {
	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	archiveMsgID, err := s.tr.ForwardMessage(ctx, s.archiveChannelID, chatID, messageID)
	if err != nil {
		nlog.Logger().Error().Err(err).
			Int64("user_id", userID).
			Str("type", string(att.Type)).
			Msg("failed to archive file")

		return fmt.Errorf("archive file: %w", err)
	}

	rec := model.FileRecord{
		FileName:         att.Name,
		FileSize:         FormatSize(att.SizeBytes),
		ProviderFileID:   att.ProviderFileID,
		ArchiveMessageID: strconv.Itoa(archiveMsgID),
		FileType:         att.Type,
	}
	rec.Link = s.codec.Encode(rec.ArchiveMessageID)

	if err := s.store.AppendFile(ctx, userID, &rec); err != nil {
		nlog.Logger().Error().Err(err).
			Int64("user_id", userID).
			Str("archive_message_id", rec.ArchiveMessageID).
			Msg("failed to persist file record")

		return fmt.Errorf("persist file record: %w", err)
	}

	metrics.FilesRegistered.WithLabelValues(string(att.Type)).Inc()

	if _, batched := s.tracker.Append(userID, rec); batched {
		s.notify(ctx, chatID, fmt.Sprintf("File added to batch! (%s)", rec.FileName))
	} else {
		s.notify(ctx, chatID, fmt.Sprintf("File saved! Here's your link: %s", rec.Link))
	}

	return nil
}

// StartBatch 开启批次会话.
func (s *RegisterService) StartBatch(ctx context.Context, userID, chatID int64) {
	_, err := s.tracker.Start(userID, time.Now())
	if err != nil {
		s.notify(ctx, chatID, "A batch is already in progress. Send /endbatch to finish it first.")

		return
	}

	s.notify(ctx, chatID, "Batch mode started. Send the files you want to batch together, and end with /endbatch.")
}

// EndBatch 结束批次：为累积的记录打上批次号、统一指向批次链接，并回发链接.
func (s *RegisterService) EndBatch(ctx context.Context, userID, chatID int64) {
	batchID, files, err := s.tracker.End(userID)
	if err != nil {
		s.notify(ctx, chatID, "No batch in progress or no files have been added.")

		return
	}

	link := s.codec.Encode(batchID)

	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ArchiveMessageID)
	}

	if err := s.store.AssignBatch(ctx, userID, ids, batchID, link); err != nil {
		nlog.Logger().Error().Err(err).
			Int64("user_id", userID).
			Str("batch_id", batchID).
			Msg("failed to finalize batch")
		s.notify(ctx, chatID, "Something went wrong saving your batch. Please try again.")

		return
	}

	metrics.BatchesFinalized.Inc()

	s.notify(ctx, chatID, fmt.Sprintf("Batch saved! Here's your link: %s", link))
}

// notify 给用户发送提示，失败只记日志.
func (s *RegisterService) notify(ctx context.Context, chatID int64, text string) {
	if err := s.tr.SendText(ctx, chatID, text); err != nil {
		nlog.Logger().Error().Err(err).Int64("chat_id", chatID).Msg("failed to notify user")
	}
}
