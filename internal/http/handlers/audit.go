package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/http/response"
	"github.com/yungbote/sealant-catalog-backend/internal/services"
)

type AuditHandler struct {
	audits services.AuditService
}

func NewAuditHandler(audits services.AuditService) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// GET /api/audit-logs?action=&entity_type=&entity_id=&user_name=&limit=&offset=
func (h *AuditHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	filter := audit.Filter{
		Action:     audit.Action(strings.ToUpper(strings.TrimSpace(c.Query("action")))),
		EntityType: audit.EntityType(strings.ToLower(strings.TrimSpace(c.Query("entity_type")))),
		EntityID:   strings.TrimSpace(c.Query("entity_id")),
		UserName:   strings.TrimSpace(c.Query("user_name")),
	}
	page, err := h.audits.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"logs": page.Logs, "total": page.Total})
}

// GET /api/audit-logs/:id
func (h *AuditHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, err := h.audits.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"log": row})
}
