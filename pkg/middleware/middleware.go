// Package middleware 提供 gin 中间件：日志、CORS、限流、指标与存储注入.
package middleware
