// Package repo 提供用户与文件记录的存取，对上层暴露文档式的查询契约.
package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/filerelay/pkg/internal/model"
	"github.com/yeisme/filerelay/pkg/internal/storage/db"
)

// UserStore 用户与文件记录的存取契约.
// 查询语义对应文档库的 findUserByUserId / upsertUser / findUsersByFileField.
type UserStore interface {
	// FindByUserID 按传输层用户标识查找用户，未找到时返回 (nil, nil).
	FindByUserID(ctx context.Context, userID int64) (*model.User, error)
	// AppendFile 把一条文件记录追加到用户名下，用户不存在时惰性创建.
	AppendFile(ctx context.Context, userID int64, rec *model.FileRecord) error
	// AssignBatch 把用户名下指定归档消息的记录标记为同一批次并更新链接.
	AssignBatch(ctx context.Context, userID int64, archiveMessageIDs []string, batchID, link string) error
	// FilesByBatchID 按批次号取全部记录，跨所有用户，按存储顺序返回.
	FilesByBatchID(ctx context.Context, batchID string) ([]model.FileRecord, error)
	// FileByArchiveMessageID 按归档消息 ID 取第一条记录，未找到时返回 (nil, nil).
	FileByArchiveMessageID(ctx context.Context, archiveMessageID string) (*model.FileRecord, error)
	// ListUserIDs 列出全部用户标识，广播用.
	ListUserIDs(ctx context.Context) ([]int64, error)
	// ListAllFiles 跨所有用户展平全部文件记录，Web 只读视图用.
	ListAllFiles(ctx context.Context) ([]model.FileRecord, error)
}

// Users 基于 GORM 的 UserStore 实现.
type Users struct {
	dbc *db.Client
}

// NewUsers 创建 Users 存取实例.
func NewUsers(dbc *db.Client) *Users {
	return &Users{dbc: dbc}
}

// Migrate 建表，serve 启动时调用一次.
func Migrate(dbc *db.Client) error {
	if err := dbc.GetDB().AutoMigrate(&model.User{}, &model.FileRecord{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}

// FindByUserID 按传输层用户标识查找用户，带文件列表.
func (u *Users) FindByUserID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User

	err := u.dbc.GetDB().WithContext(ctx).
		Preload("Files", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("user_id = ?", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}

	return &user, nil
}

// AppendFile 把一条文件记录追加到用户名下，用户不存在时惰性创建.
func (u *Users) AppendFile(ctx context.Context, userID int64, rec *model.FileRecord) error {
	tx := u.dbc.GetDB().WithContext(ctx)

	var user model.User
	if err := tx.Where(model.User{UserID: userID}).FirstOrCreate(&user).Error; err != nil {
		return fmt.Errorf("find or create user %d: %w", userID, err)
	}

	rec.UserRef = user.ID
	if err := tx.Create(rec).Error; err != nil {
		return fmt.Errorf("append file for user %d: %w", userID, err)
	}

	return nil
}

// AssignBatch 批次落库：把已注册的记录标记为同一批次并指向批次链接.
func (u *Users) AssignBatch(ctx context.Context, userID int64, archiveMessageIDs []string, batchID, link string) error {
	if len(archiveMessageIDs) == 0 {
		return nil
	}

	tx := u.dbc.GetDB().WithContext(ctx)

	var user model.User
	if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return fmt.Errorf("find user %d: %w", userID, err)
	}

	err := tx.Model(&model.FileRecord{}).
		Where("user_ref = ? AND archive_message_id IN ?", user.ID, archiveMessageIDs).
		Updates(map[string]any{"batch_id": batchID, "link": link}).Error
	if err != nil {
		return fmt.Errorf("assign batch %s: %w", batchID, err)
	}

	return nil
}

// FilesByBatchID 按批次号取全部记录，按主键序即注册顺序.
func (u *Users) FilesByBatchID(ctx context.Context, batchID string) ([]model.FileRecord, error) {
	var recs []model.FileRecord

	err := u.dbc.GetDB().WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("files by batch %s: %w", batchID, err)
	}

	return recs, nil
}

// FileByArchiveMessageID 按归档消息 ID 取第一条记录.
func (u *Users) FileByArchiveMessageID(ctx context.Context, archiveMessageID string) (*model.FileRecord, error) {
	var rec model.FileRecord

	err := u.dbc.GetDB().WithContext(ctx).
		Where("archive_message_id = ?", archiveMessageID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("file by archive message %s: %w", archiveMessageID, err)
	}

	return &rec, nil
}

// ListUserIDs 列出全部用户标识.
func (u *Users) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64

	err := u.dbc.GetDB().WithContext(ctx).
		Model(&model.User{}).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}

	return ids, nil
}

// ListAllFiles 跨所有用户展平全部文件记录.
func (u *Users) ListAllFiles(ctx context.Context) ([]model.FileRecord, error) {
	var recs []model.FileRecord

	err := u.dbc.GetDB().WithContext(ctx).
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list all files: %w", err)
	}

	return recs, nil
}
