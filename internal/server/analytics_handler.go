package server

import (
	"net/http"

	"github.com/mshibata/studyledger/internal/analytics"
)

func (h *Handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	timeRange := analytics.ParseTimeRange(r.URL.Query().Get("timeRange"))

	report, err := h.analytics.GetReport(r.Context(), userID(r), timeRange)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
