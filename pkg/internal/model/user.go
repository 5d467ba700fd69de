// Package model 定义数据库模型.
package model

import (
	"time"
)

// FileType 附件类型的封闭枚举，按类型分派重发操作.
type FileType string

const (
	FileTypeDocument FileType = "document"
	FileTypePhoto    FileType = "photo"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
)

// Valid 判断是否为已知附件类型.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeDocument, FileTypePhoto, FileTypeVideo, FileTypeAudio:
		return true
	default:
		return false
	}
}

// FileRecord 一条已归档的附件记录.
// ArchiveMessageID 是归档频道里转发副本的消息 ID，由归档操作串行分配，
// 全局唯一，同时充当单文件深链接的令牌.
type FileRecord struct {
	ID      uint `gorm:"primaryKey"     json:"-"`
	UserRef uint `gorm:"index"          json:"-"`
	// FileName 展示名，传输层未提供时回退为类型名
	FileName string `gorm:"size:512"       json:"file_name"`
	// FileSize 人类可读的尺寸串，如 "2 MB"
	FileSize string `gorm:"size:32"        json:"file_size"`
	// ProviderFileID 传输层的文件句柄，重发文件时必须
	ProviderFileID string `gorm:"size:256"       json:"provider_file_id"`
	// ArchiveMessageID 归档频道消息 ID，字符串形式存储
	ArchiveMessageID string `gorm:"size:64;uniqueIndex" json:"archive_message_id"`
	// BatchID 仅当文件以批次注册时存在
	BatchID string `gorm:"size:64;index"  json:"batch_id,omitempty"`
	// Link 派生的深链接，非权威来源
	Link      string    `gorm:"size:512"       json:"link"`
	FileType  FileType  `gorm:"size:16"        json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

// User 一个请求方身份，文件列表只追加.
type User struct {
	ID uint `gorm:"primaryKey" json:"-"`
	// UserID 传输层提供的稳定用户标识
	UserID    int64        `gorm:"uniqueIndex"           json:"user_id"`
	Files     []FileRecord `gorm:"foreignKey:UserRef"    json:"files"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
