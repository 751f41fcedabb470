package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos"
	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/ctxutil"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/logger"
)

const (
	DefaultAuditPageLimit = 50
	MaxAuditPageLimit     = 500
)

type AuditPage struct {
	Logs  []*audit.AuditLog `json:"logs"`
	Total int64             `json:"total"`
}

// AuditService records and reads the append-only audit trail. Record is the
// audit.Recorder used by every mutating flow.
type AuditService interface {
	audit.Recorder
	List(ctx context.Context, filter audit.Filter, limit, offset int) (AuditPage, error)
	Get(ctx context.Context, id int64) (*audit.AuditLog, error)
}

type auditService struct {
	log          *logger.Logger
	audits       repos.AuditLogRepo
	defaultLimit int
}

func NewAuditService(baseLog *logger.Logger, audits repos.AuditLogRepo, defaultLimit int) AuditService {
	if defaultLimit <= 0 || defaultLimit > MaxAuditPageLimit {
		defaultLimit = DefaultAuditPageLimit
	}
	return &auditService{
		log:          baseLog.With("service", "AuditService"),
		audits:       audits,
		defaultLimit: defaultLimit,
	}
}

// Record writes one row on dbc.Tx when present. Actor fields left empty are
// filled from the request context.
func (s *auditService) Record(dbc dbctx.Context, in audit.Entry) (*audit.AuditLog, error) {
	const op = "Audit.Record"
	if !in.Action.Valid() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid audit action %q", in.Action), nil)
	}
	if !in.EntityType.Valid() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid entity type %q", in.EntityType), nil)
	}
	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "user_name is required", nil)
	}

	row := &audit.AuditLog{
		Action:         in.Action,
		EntityType:     in.EntityType,
		EntityID:       strings.TrimSpace(in.EntityID),
		UserName:       userName,
		UserEmail:      strings.TrimSpace(in.UserEmail),
		IPAddress:      strings.TrimSpace(in.IPAddress),
		UserAgent:      strings.TrimSpace(in.UserAgent),
		ChangesSummary: in.Summary,
		CreatedAt:      time.Now().UTC(),
	}
	if rd := ctxutil.GetRequestData(dbc.Ctx); rd != nil {
		if row.UserEmail == "" {
			row.UserEmail = rd.UserEmail
		}
		if row.IPAddress == "" {
			row.IPAddress = rd.IPAddress
		}
		if row.UserAgent == "" {
			row.UserAgent = rd.UserAgent
		}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		row.RequestID = td.RequestID
	}

	var err error
	if row.BeforeData, err = marshalAuditData(in.Before); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	if row.AfterData, err = marshalAuditData(in.After); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}

	created, err := s.audits.Create(dbc, row)
	if err != nil {
		s.log.Error("audit write failed",
			"action", string(in.Action),
			"entity_type", string(in.EntityType),
			"entity_id", row.EntityID,
			"error", err,
		)
		return nil, err
	}
	return created, nil
}

func (s *auditService) List(ctx context.Context, filter audit.Filter, limit, offset int) (AuditPage, error) {
	const op = "Audit.List"
	if filter.Action != "" && !filter.Action.Valid() {
		return AuditPage{}, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid action %q", filter.Action), nil)
	}
	if filter.EntityType != "" && !filter.EntityType.Valid() {
		return AuditPage{}, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid entity_type %q", filter.EntityType), nil)
	}
	if offset < 0 {
		return AuditPage{}, domainagg.NewError(domainagg.CodeValidation, op, "offset must be >= 0", nil)
	}
	limit = clampLimit(limit, s.defaultLimit, MaxAuditPageLimit)

	logs, total, err := s.audits.List(dbctx.Context{Ctx: ctx}, filter, limit, offset)
	if err != nil {
		return AuditPage{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if logs == nil {
		logs = []*audit.AuditLog{}
	}
	return AuditPage{Logs: logs, Total: total}, nil
}

func (s *auditService) Get(ctx context.Context, id int64) (*audit.AuditLog, error) {
	const op = "Audit.Get"
	row, err := s.audits.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("audit log %d not found", id), nil)
	}
	return row, nil
}

func marshalAuditData(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return datatypes.JSON(raw), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// clampLimit applies the default for limit <= 0 and caps at max.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
