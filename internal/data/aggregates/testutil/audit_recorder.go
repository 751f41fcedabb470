package testutil

import (
	"encoding/json"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos"
	"github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
)

// AuditRecorder writes audit rows straight through an AuditLogRepo. Setting
// Fail makes every Record call fail after counting it.
type AuditRecorder struct {
	mu sync.Mutex

	Repo repos.AuditLogRepo
	Fail error

	Calls   int
	Entries []audit.Entry
}

var _ audit.Recorder = (*AuditRecorder)(nil)

func (r *AuditRecorder) Record(dbc dbctx.Context, in audit.Entry) (*audit.AuditLog, error) {
	r.mu.Lock()
	r.Calls++
	r.Entries = append(r.Entries, in)
	fail := r.Fail
	r.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	row := &audit.AuditLog{
		Action:         in.Action,
		EntityType:     in.EntityType,
		EntityID:       in.EntityID,
		UserName:       in.UserName,
		ChangesSummary: in.Summary,
		CreatedAt:      time.Now().UTC(),
	}
	if in.Before != nil {
		b, err := json.Marshal(in.Before)
		if err != nil {
			return nil, err
		}
		row.BeforeData = datatypes.JSON(b)
	}
	if in.After != nil {
		b, err := json.Marshal(in.After)
		if err != nil {
			return nil, err
		}
		row.AfterData = datatypes.JSON(b)
	}
	if r.Repo == nil {
		return row, nil
	}
	return r.Repo.Create(dbc, row)
}
