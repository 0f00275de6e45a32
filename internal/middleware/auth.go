// Package middleware 提供HTTP中间件
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/logger"
)

// AuthConfig 认证配置
type AuthConfig struct {
	APIKey    string   // 为空时不做认证
	SkipPaths []string // 跳过认证的路径
}

// ExtractAPIKey 从 X-API-Key 或 Authorization: Bearer 中提取密钥
func ExtractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// AuthMiddleware 认证中间件
func AuthMiddleware(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if config.APIKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 检查是否跳过认证
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			apiKey := ExtractAPIKey(r)
			if apiKey == "" {
				writeError(w, apperrors.New(apperrors.CodeUnauthorized, "API密钥未提供"))
				return
			}

			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(config.APIKey)) != 1 {
				logger.WithContext(r.Context()).Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("API密钥验证失败")
				writeError(w, apperrors.New(apperrors.CodeUnauthorized, "无效的API密钥"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
