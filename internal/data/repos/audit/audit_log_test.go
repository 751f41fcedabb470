package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sealant-catalog-backend/internal/domain/audit"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
)

func seedAudit(t *testing.T, repo AuditLogRepo, dbc dbctx.Context, action types.Action, entity types.EntityType, entityID, user string) *types.AuditLog {
	t.Helper()
	row, err := repo.Create(dbc, &types.AuditLog{
		Action:         action,
		EntityType:     entity,
		EntityID:       entityID,
		UserName:       user,
		ChangesSummary: string(action) + " " + entityID,
		AfterData:      datatypes.JSON([]byte(`{"k":"v"}`)),
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create audit: %v", err)
	}
	return row
}

func TestAuditLogRepoListFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewAuditLogRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	first := seedAudit(t, repo, dbc, types.ActionBackup, types.EntityBackup, "1", "Alice Admin")
	seedAudit(t, repo, dbc, types.ActionRestore, types.EntityProduct, types.EntityIDAllProducts, "bob")
	seedAudit(t, repo, dbc, types.ActionDelete, types.EntityBackup, "1", "ALICE")
	last := seedAudit(t, repo, dbc, types.ActionCreate, types.EntityProduct, "A-1", "100%_user")

	all, total, err := repo.List(dbc, types.Filter{}, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Fatalf("List: total=%d len=%d", total, len(all))
	}
	if all[0].ID != last.ID || all[3].ID != first.ID {
		t.Fatalf("List: expected id DESC order")
	}

	byEntity, total, err := repo.List(dbc, types.Filter{EntityType: types.EntityBackup, EntityID: "1"}, 10, 0)
	if err != nil || total != 2 || len(byEntity) != 2 {
		t.Fatalf("List entity: total=%d len=%d err=%v", total, len(byEntity), err)
	}

	byUser, total, err := repo.List(dbc, types.Filter{UserName: "alice"}, 10, 0)
	if err != nil || total != 2 || len(byUser) != 2 {
		t.Fatalf("List user substring: total=%d len=%d err=%v", total, len(byUser), err)
	}

	wildcard, total, err := repo.List(dbc, types.Filter{UserName: "%"}, 10, 0)
	if err != nil || total != 1 || len(wildcard) != 1 || wildcard[0].ID != last.ID {
		t.Fatalf("List escaped wildcard: total=%d len=%d err=%v", total, len(wildcard), err)
	}

	page, total, err := repo.List(dbc, types.Filter{}, 2, 1)
	if err != nil || total != 4 || len(page) != 2 {
		t.Fatalf("List page: total=%d len=%d err=%v", total, len(page), err)
	}

	restores, _, err := repo.List(dbc, types.Filter{Action: types.ActionRestore}, 10, 0)
	if err != nil || len(restores) != 1 || restores[0].EntityID != types.EntityIDAllProducts {
		t.Fatalf("List action: %+v err=%v", restores, err)
	}
}

func TestAuditLogRepoGetByID(t *testing.T) {
	db := testutil.DB(t)
	repo := NewAuditLogRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	row := seedAudit(t, repo, dbc, types.ActionBackup, types.EntityBackup, "7", "carol")
	got, err := repo.GetByID(dbc, row.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.UserName != "carol" || !strings.Contains(string(got.AfterData), `"v"`) {
		t.Fatalf("GetByID: unexpected row %+v", got)
	}

	missing, err := repo.GetByID(dbc, row.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", missing, err)
	}
}
