// Package types 定义 HTTP API 的请求与响应结构.
package types

import "github.com/yeisme/filerelay/pkg/internal/model"

// ListFilesResponse 全量文件清单响应.
type ListFilesResponse struct {
	Files []model.FileRecord `json:"files"`
	Total int                `json:"total"`
}
