// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/chatrelay/internal/model"
)

// errorResponse はAPIエラーレスポンスの統一フォーマット。
// ボディはユーザー向けメッセージのみで、内部分類はログにのみ残る。
type errorResponse struct {
	Error string `json:"error"`
}

// successResponse は認証系エンドポイントの成功レスポンス。
type successResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// writeJSON はJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIError はAPIErrorを統一フォーマットで書き込む。
func writeAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	writeJSON(w, apiErr.Status, errorResponse{Error: apiErr.Message})
}
