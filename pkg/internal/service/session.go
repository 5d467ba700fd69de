package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/model"
)

var (
	// ErrBatchActive 在 reject 策略下，已有批次未结束时再次开批.
	ErrBatchActive = errors.New("a batch is already in progress")
	// ErrEmptyBatch 结束一个不存在或没有文件的批次.
	ErrEmptyBatch = errors.New("no batch in progress or no files added")
)

// batchSession 单个用户的进行中批次.
type batchSession struct {
	id    string
	files []model.FileRecord
}

// BatchTracker 按用户跟踪进行中的多文件上传会话.
// 状态只存在于进程内存，重启即丢失——已接受的限制，不做跨重启持久化.
// 不同用户的会话完全独立.
type BatchTracker struct {
	mu       sync.Mutex
	sessions map[int64]*batchSession
	policy   configs.BatchPolicy
}

// NewBatchTracker 创建批次跟踪器.
func NewBatchTracker(policy configs.BatchPolicy) *BatchTracker {
	return &BatchTracker{
		sessions: make(map[int64]*batchSession),
		policy:   policy,
	}
}

// newBatchID 生成批次号，格式 batch-<毫秒时间戳>-<userID>，每次开批唯一.
func newBatchID(now time.Time, userID int64) string {
	return fmt.Sprintf("batch-%d-%d", now.UnixMilli(), userID)
}

// Start 开启新批次并返回批次号.
// 已有批次进行中时按策略处理：overwrite 静默丢弃旧批次未落库的文件，
// reject 返回 ErrBatchActive.
func (t *BatchTracker) Start(userID int64, now time.Time) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, active := t.sessions[userID]; active && t.policy == configs.BatchReject {
		return "", ErrBatchActive
	}

	id := newBatchID(now, userID)
	t.sessions[userID] = &batchSession{id: id}

	return id, nil
}

// Append 把一条记录加入用户的进行中批次.
// 无活动批次时不做任何事并返回 false（文件按独立注册处理）.
func (t *BatchTracker) Append(userID int64, rec model.FileRecord) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, active := t.sessions[userID]
	if !active {
		return "", false
	}

	s.files = append(s.files, rec)

	return s.id, true
}

// End 结束用户的批次，返回批次号与累积的记录（注册顺序）.
// 无活动批次或批次为空时返回 ErrEmptyBatch，调用方提示用户无可落库内容；
// 空批次保持活动，后续文件仍会入批.
func (t *BatchTracker) End(userID int64) (string, []model.FileRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, active := t.sessions[userID]
	if !active || len(s.files) == 0 {
		return "", nil, ErrEmptyBatch
	}

	delete(t.sessions, userID)

	return s.id, s.files, nil
}

// Active 判断用户是否有进行中的批次.
func (t *BatchTracker) Active(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, active := t.sessions[userID]

	return active
}
