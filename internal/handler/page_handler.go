package handler

import (
	"net/http"
	"path/filepath"
)

// PageHandler は静的ページを配信するHTTPハンドラー。
// ページ本体の生成はスコープ外で、設定されたディレクトリのファイルを返すだけ。
type PageHandler struct {
	staticDir string
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(staticDir string) *PageHandler {
	return &PageHandler{staticDir: staticDir}
}

// SigninPage は登録ページを返す。
// GET /signin
func (h *PageHandler) SigninPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.staticDir, "signin.html"))
}

// LoginPage はログインページを返す。
// GET /login
func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.staticDir, "login.html"))
}

// IndexPage はチャット画面を返す。セッションゲートの内側でのみ配線される。
// GET /
func (h *PageHandler) IndexPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}

// Assets はページ以外の静的アセット（CSS・JS等）のフォールバックハンドラーを返す。
func (h *PageHandler) Assets() http.Handler {
	return http.FileServer(http.Dir(h.staticDir))
}
