package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sealant-catalog-backend/internal/http/response"
	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/apierr"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
	"github.com/yungbote/sealant-catalog-backend/internal/services"
)

const emptySnapshotWarning = "backup contained no products; the catalog is now empty"

type BackupHandler struct {
	log     *logger.Logger
	backups services.BackupService
}

func NewBackupHandler(baseLog *logger.Logger, backups services.BackupService) *BackupHandler {
	return &BackupHandler{
		log:     baseLog.With("handler", "BackupHandler"),
		backups: backups,
	}
}

// GET /api/backups
func (h *BackupHandler) List(c *gin.Context) {
	out, err := h.backups.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"backups": out})
}

// GET /api/backups/:id
func (h *BackupHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.backups.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"backup": b})
}

// GET /api/backups/:id/preview?limit=
func (h *BackupHandler) Preview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	p, err := h.backups.Preview(c.Request.Context(), id, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": p.Products, "total": p.Total})
}

// POST /api/backups
// body: { "name": "...", "description": "...", "created_by": "..." }
func (h *BackupHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
		CreatedBy   string `json:"created_by" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request: %w", err))
		return
	}
	b, err := h.backups.Create(c.Request.Context(), services.CreateBackupInput{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"backup": b})
}

// POST /api/backups/:id/promote
// body: { "promoted_by": "..." }
func (h *BackupHandler) Promote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		PromotedBy string `json:"promoted_by" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation",
			fmt.Errorf("invalid request, no data was changed: %w", err))
		return
	}
	res, err := h.backups.Promote(c.Request.Context(), id, req.PromotedBy)
	if err != nil {
		ae := promotionError(err)
		response.RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	out := gin.H{
		"productsRestored": res.ProductsRestored,
		"previousCount":    res.PreviousCount,
		"backup":           res.Backup,
	}
	if res.EmptySnapshot {
		out["warning"] = emptySnapshotWarning
	}
	response.RespondOK(c, out)
}

// POST /api/backups/:id/archive
// body: { "archived_by": "..." }
func (h *BackupHandler) Archive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		ArchivedBy string `json:"archived_by" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request: %w", err))
		return
	}
	b, err := h.backups.Archive(c.Request.Context(), id, req.ArchivedBy)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"backup": b})
}

// DELETE /api/backups/:id
// body (optional): { "deleted_by": "..." }
func (h *BackupHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		DeletedBy string `json:"deleted_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request: %w", err))
		return
	}
	deleted, err := h.backups.Delete(c.Request.Context(), id, req.DeletedBy)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, string(domainagg.CodeNotFound), fmt.Errorf("backup %d not found", id))
		return
	}
	response.RespondOK(c, nil)
}

// promotionError keeps 404 and 409 for unknown backups and lost races. Every
// other failure is a 400 that states the catalog was left untouched.
func promotionError(err error) *apierr.Error {
	msg := domainagg.MessageOf(err)
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return apierr.BadRequest(string(domainagg.CodeValidation), fmt.Errorf("%s; no data was changed", msg))
	case domainagg.CodeNotFound:
		return apierr.NotFound(string(domainagg.CodeNotFound), fmt.Errorf("%s; no data was changed", msg))
	case domainagg.CodeConflict:
		return apierr.Conflict(string(domainagg.CodeConflict), fmt.Errorf("%s; no data was changed", msg))
	default:
		return apierr.BadRequest("promotion_failed", errors.New("promotion failed; no data was changed"))
	}
}

func pathID(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid id %q", raw))
		return 0, false
	}
	return id, true
}

// queryInt returns 0 when the parameter is absent.
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid %s %q", key, raw))
		return 0, false
	}
	return n, true
}
