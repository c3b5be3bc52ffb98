package handler

import (
	"net/http"

	"copydesk/internal/httputil"
	"copydesk/internal/notify"
)

// NoticeHandler hands queued notices to the UI
type NoticeHandler struct {
	notices *notify.Queue
}

// NewNoticeHandler creates a new notice handler
func NewNoticeHandler(notices *notify.Queue) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// DrainNotices returns and clears the shop's pending notices
// GET /api/notices
func (h *NoticeHandler) DrainNotices(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.notices.Drain(httputil.GetShop(r)))
}
