package service_test

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/yeisme/filerelay/pkg/internal/model"
)

// sentMessage 记录一次出站消息.
type sentMessage struct {
	chatID int64
	text   string
}

// sentMedia 记录一次媒体重发.
type sentMedia struct {
	kind   string
	chatID int64
	fileID string
}

// forwardCall 记录一次转发.
type forwardCall struct {
	toChatID   int64
	fromChatID int64
	messageID  int
}

// fakeTransport 可编程的传输层假实现，记录全部出站调用.
type fakeTransport struct {
	mu sync.Mutex

	texts   []sentMessage
	htmls   []sentMessage
	buttons []sentMessage
	photos  []sentMessage
	media   []sentMedia

	forwards      []forwardCall
	nextForwardID int
	forwardErr    error

	memberStatus map[int64]string
	memberErr    error
	statusCalls  int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		nextForwardID: 1000,
		memberStatus:  make(map[int64]string),
	}
}

func (f *fakeTransport) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, sentMessage{chatID: chatID, text: text})

	return nil
}

func (f *fakeTransport) SendHTML(ctx context.Context, chatID int64, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.htmls = append(f.htmls, sentMessage{chatID: chatID, text: html})

	return nil
}

func (f *fakeTransport) SendHTMLWithButton(ctx context.Context, chatID int64, html, buttonText, buttonURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buttons = append(f.buttons, sentMessage{chatID: chatID, text: html})

	return nil
}

func (f *fakeTransport) SendPhotoURL(ctx context.Context, chatID int64, photoURL, captionHTML string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, sentMessage{chatID: chatID, text: captionHTML})

	return nil
}

func (f *fakeTransport) sendMedia(kind string, chatID int64, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media = append(f.media, sentMedia{kind: kind, chatID: chatID, fileID: fileID})

	return nil
}

func (f *fakeTransport) SendDocument(ctx context.Context, chatID int64, providerFileID string) error {
	return f.sendMedia("document", chatID, providerFileID)
}

func (f *fakeTransport) SendPhoto(ctx context.Context, chatID int64, providerFileID string) error {
	return f.sendMedia("photo", chatID, providerFileID)
}

func (f *fakeTransport) SendVideo(ctx context.Context, chatID int64, providerFileID string) error {
	return f.sendMedia("video", chatID, providerFileID)
}

func (f *fakeTransport) SendAudio(ctx context.Context, chatID int64, providerFileID string) error {
	return f.sendMedia("audio", chatID, providerFileID)
}

func (f *fakeTransport) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.forwardErr != nil {
		return 0, f.forwardErr
	}

	f.nextForwardID++
	f.forwards = append(f.forwards, forwardCall{toChatID: toChatID, fromChatID: fromChatID, messageID: messageID})

	return f.nextForwardID, nil
}

func (f *fakeTransport) ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statusCalls++

	if f.memberErr != nil {
		return "", f.memberErr
	}

	status, ok := f.memberStatus[userID]
	if !ok {
		return "left", nil
	}

	return status, nil
}

// fakeStore 内存版 UserStore，保持插入顺序.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[int64][]model.FileRecord

	appendErr error
	assignErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[int64][]model.FileRecord)}
}

func (s *fakeStore) FindByUserID(ctx context.Context, userID int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, ok := s.users[userID]
	if !ok {
		return nil, nil
	}

	return &model.User{UserID: userID, Files: files}, nil
}

func (s *fakeStore) AppendFile(ctx context.Context, userID int64, rec *model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return s.appendErr
	}

	s.nextID++
	rec.ID = s.nextID
	s.users[userID] = append(s.users[userID], *rec)

	return nil
}

func (s *fakeStore) AssignBatch(ctx context.Context, userID int64, archiveMessageIDs []string, batchID, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assignErr != nil {
		return s.assignErr
	}

	if _, ok := s.users[userID]; !ok {
		return errors.New("user not found")
	}

	ids := make(map[string]bool, len(archiveMessageIDs))
	for _, id := range archiveMessageIDs {
		ids[id] = true
	}

	files := s.users[userID]
	for i := range files {
		if ids[files[i].ArchiveMessageID] {
			files[i].BatchID = batchID
			files[i].Link = link
		}
	}

	return nil
}

func (s *fakeStore) FilesByBatchID(ctx context.Context, batchID string) ([]model.FileRecord, error) {
	all, err := s.ListAllFiles(ctx)
	if err != nil {
		return nil, err
	}

	var recs []model.FileRecord

	for _, f := range all {
		if f.BatchID == batchID {
			recs = append(recs, f)
		}
	}

	return recs, nil
}

func (s *fakeStore) FileByArchiveMessageID(ctx context.Context, archiveMessageID string) (*model.FileRecord, error) {
	all, err := s.ListAllFiles(ctx)
	if err != nil {
		return nil, err
	}

	for _, f := range all {
		if f.ArchiveMessageID == archiveMessageID {
			rec := f

			return &rec, nil
		}
	}

	return nil, nil
}

func (s *fakeStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}

	return ids, nil
}

func (s *fakeStore) ListAllFiles(ctx context.Context) ([]model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []model.FileRecord
	for _, files := range s.users {
		all = append(all, files...)
	}

	// 按主键序，等价于插入顺序
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j-1].ID > all[j].ID; j-- {
			all[j-1], all[j] = all[j], all[j-1]
		}
	}

	return all, nil
}

// archiveIDOf 取第 n 次转发分配的归档消息 ID（从 1 数起）.
func archiveIDOf(tr *fakeTransport, n int) string {
	return strconv.Itoa(1000 + n)
}
