package bot

import (
	"context"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/model"
	"github.com/yeisme/filerelay/pkg/internal/service"
)

const (
	dispatchArchiveChannelID  = -1009999
	dispatchRequiredChannelID = -1001234
)

// dispatchCall 记录一次出站调用.
type dispatchCall struct {
	chatID int64
	text   string
}

// dispatchTransport 分发器侧的传输层假实现，同时满足轮询接口.
type dispatchTransport struct {
	mu sync.Mutex

	updates chan tgbotapi.Update

	texts    []dispatchCall
	buttons  []dispatchCall
	forwards []dispatchCall

	nextForwardID int
	memberStatus  map[int64]string
	stopped       bool
}

func newDispatchTransport() *dispatchTransport {
	return &dispatchTransport{
		updates:       make(chan tgbotapi.Update, 16),
		nextForwardID: 1000,
		memberStatus:  make(map[int64]string),
	}
}

func (f *dispatchTransport) Updates(pollTimeout int) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *dispatchTransport) Username() string { return "relaybot" }

func (f *dispatchTransport) StopPolling() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *dispatchTransport) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, dispatchCall{chatID: chatID, text: text})

	return nil
}

func (f *dispatchTransport) SendHTML(ctx context.Context, chatID int64, html string) error {
	return f.SendText(ctx, chatID, html)
}

func (f *dispatchTransport) SendHTMLWithButton(ctx context.Context, chatID int64, html, buttonText, buttonURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buttons = append(f.buttons, dispatchCall{chatID: chatID, text: html})

	return nil
}

func (f *dispatchTransport) SendPhotoURL(ctx context.Context, chatID int64, photoURL, captionHTML string) error {
	return f.SendText(ctx, chatID, captionHTML)
}

func (f *dispatchTransport) SendDocument(ctx context.Context, chatID int64, providerFileID string) error {
	return f.SendText(ctx, chatID, providerFileID)
}

func (f *dispatchTransport) SendPhoto(ctx context.Context, chatID int64, providerFileID string) error {
	return f.SendText(ctx, chatID, providerFileID)
}

func (f *dispatchTransport) SendVideo(ctx context.Context, chatID int64, providerFileID string) error {
	return f.SendText(ctx, chatID, providerFileID)
}

func (f *dispatchTransport) SendAudio(ctx context.Context, chatID int64, providerFileID string) error {
	return f.SendText(ctx, chatID, providerFileID)
}

func (f *dispatchTransport) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextForwardID++
	f.forwards = append(f.forwards, dispatchCall{chatID: toChatID})

	return f.nextForwardID, nil
}

func (f *dispatchTransport) ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status, ok := f.memberStatus[userID]
	if !ok {
		return "left", nil
	}

	return status, nil
}

// dispatchStore 最小化的内存 UserStore.
type dispatchStore struct {
	mu     sync.Mutex
	nextID uint
	files  map[int64][]model.FileRecord
}

func newDispatchStore() *dispatchStore {
	return &dispatchStore{files: make(map[int64][]model.FileRecord)}
}

func (s *dispatchStore) FindByUserID(ctx context.Context, userID int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, ok := s.files[userID]
	if !ok {
		return nil, nil
	}

	return &model.User{UserID: userID, Files: files}, nil
}

func (s *dispatchStore) AppendFile(ctx context.Context, userID int64, rec *model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	s.files[userID] = append(s.files[userID], *rec)

	return nil
}

func (s *dispatchStore) AssignBatch(ctx context.Context, userID int64, archiveMessageIDs []string, batchID, link string) error {
	return nil
}

func (s *dispatchStore) FilesByBatchID(ctx context.Context, batchID string) ([]model.FileRecord, error) {
	return nil, nil
}

func (s *dispatchStore) FileByArchiveMessageID(ctx context.Context, archiveMessageID string) (*model.FileRecord, error) {
	return nil, nil
}

func (s *dispatchStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	return nil, nil
}

func (s *dispatchStore) ListAllFiles(ctx context.Context) ([]model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []model.FileRecord
	for _, files := range s.files {
		all = append(all, files...)
	}

	return all, nil
}

// newDispatchBot 组装接在假传输层上的完整分发器.
func newDispatchBot(t *testing.T) (*Bot, *dispatchTransport, *dispatchStore) {
	t.Helper()

	tr := newDispatchTransport()
	store := newDispatchStore()

	cfg := &configs.BotConfig{
		Token:               "test-token",
		Username:            "relaybot",
		ArchiveChannelID:    dispatchArchiveChannelID,
		RequiredChannelID:   dispatchRequiredChannelID,
		RequiredChannelLink: "https://t.me/+joinus",
		PollTimeout:         30,
		BatchPolicy:         configs.BatchOverwrite,
	}

	codec := service.NewLinkCodec(cfg.Username)
	tracker := service.NewBatchTracker(cfg.BatchPolicy)
	gate := service.NewGate(tr, cfg, configs.CircuitBreakerConfig{}, nil)
	register := service.NewRegisterService(tr, store, codec, tracker, cfg.ArchiveChannelID)
	resolve := service.NewResolveService(tr, store, codec, "")
	broadcast := service.NewBroadcastService(tr, store)

	return New(tr, cfg, gate, register, resolve, broadcast), tr, store
}

// runUpdates 投递给定更新后关闭通道，同步跑完分发循环.
func runUpdates(t *testing.T, b *Bot, tr *dispatchTransport, msgs ...*tgbotapi.Message) {
	t.Helper()

	for _, msg := range msgs {
		tr.updates <- tgbotapi.Update{Message: msg}
	}

	close(tr.updates)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func documentMessage(userID int64, messageID int) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: messageID,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: userID},
		Document:  &tgbotapi.Document{FileID: "doc-file-id", FileName: "report.pdf", FileSize: 2048},
	}
}

// TestBot_DeniedUploadHasNoSideEffects 测试未订阅用户发文件时：
// 不转发、不落库，只收到入群提示.
func TestBot_DeniedUploadHasNoSideEffects(t *testing.T) {
	b, tr, store := newDispatchBot(t)

	runUpdates(t, b, tr, documentMessage(42, 7))

	if len(tr.forwards) != 0 {
		t.Errorf("forwards = %d, want 0", len(tr.forwards))
	}

	if all, _ := store.ListAllFiles(context.Background()); len(all) != 0 {
		t.Errorf("stored records = %d, want 0", len(all))
	}

	if len(tr.buttons) != 1 {
		t.Fatalf("join prompts = %d, want 1", len(tr.buttons))
	}

	if len(tr.texts) != 0 {
		t.Errorf("texts = %d, want none besides the prompt", len(tr.texts))
	}
}

// TestBot_DeniedPlainTextGetsPrompt 测试未订阅用户发纯文本也会被门禁拦截并收到提示.
func TestBot_DeniedPlainTextGetsPrompt(t *testing.T) {
	b, tr, _ := newDispatchBot(t)

	msg := &tgbotapi.Message{
		MessageID: 3,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "hello",
	}

	runUpdates(t, b, tr, msg)

	if len(tr.buttons) != 1 {
		t.Fatalf("join prompts = %d, want 1", len(tr.buttons))
	}

	if len(tr.forwards) != 0 {
		t.Errorf("forwards = %d, want 0", len(tr.forwards))
	}
}

// TestBot_MemberUploadRegistered 测试订阅用户的文件被转发归档并回发链接.
func TestBot_MemberUploadRegistered(t *testing.T) {
	b, tr, store := newDispatchBot(t)
	tr.memberStatus[42] = "member"

	runUpdates(t, b, tr, documentMessage(42, 7))

	if len(tr.forwards) != 1 || tr.forwards[0].chatID != dispatchArchiveChannelID {
		t.Fatalf("forwards = %+v, want one forward to archive channel", tr.forwards)
	}

	all, _ := store.ListAllFiles(context.Background())
	if len(all) != 1 || all[0].FileName != "report.pdf" {
		t.Fatalf("stored records = %+v, want one record for report.pdf", all)
	}

	if len(tr.texts) != 1 || !strings.HasPrefix(tr.texts[0].text, "File saved! Here's your link: ") {
		t.Errorf("texts = %+v, want the saved-file link reply", tr.texts)
	}

	if len(tr.buttons) != 0 {
		t.Errorf("join prompts = %d, want 0", len(tr.buttons))
	}
}
