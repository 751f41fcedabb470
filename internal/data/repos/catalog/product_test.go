package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/sealant-catalog-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sealant-catalog-backend/internal/domain/catalog"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/dbctx"
)

func TestProductRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewProductRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.Product{
		testutil.Product("B-2", "Beta"),
		testutil.Product("A-1", "Alpha"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 || created[0].ID == 0 || created[1].ID <= created[0].ID {
		t.Fatalf("Create: ids not assigned in order: %+v", created)
	}

	all, err := repo.ListAll(dbc)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 || all[0].ProductID != "B-2" || all[1].ProductID != "A-1" {
		t.Fatalf("ListAll: expected insertion order, got %v", types.ProductIDs(all))
	}
	if len(all[0].Technical) != 1 || all[0].Technical[0].Unit != "h" {
		t.Fatalf("ListAll: technical not round-tripped: %+v", all[0].Technical)
	}

	page, total, err := repo.List(dbc, 1, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(page) != 1 || page[0].ProductID != "A-1" {
		t.Fatalf("List: total=%d page=%v", total, types.ProductIDs(page))
	}

	got, err := repo.GetByProductID(dbc, "A-1")
	if err != nil || got == nil {
		t.Fatalf("GetByProductID: got=%v err=%v", got, err)
	}
	got.Name = "Alpha v2"
	got.Benefits = append(got.Benefits, "uv stable")
	got.UpdatedAt = got.UpdatedAt.Add(1)
	if err := repo.Update(dbc, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	reloaded, err := repo.GetByProductID(dbc, "A-1")
	if err != nil {
		t.Fatalf("GetByProductID after update: %v", err)
	}
	if reloaded.Name != "Alpha v2" || reloaded.BenefitsCount != 3 {
		t.Fatalf("Update: unexpected row %+v", reloaded)
	}

	missing, err := repo.GetByProductID(dbc, "nope")
	if err != nil || missing != nil {
		t.Fatalf("GetByProductID (missing): got=%v err=%v", missing, err)
	}

	n, err := repo.DeleteByProductID(dbc, "B-2")
	if err != nil || n != 1 {
		t.Fatalf("DeleteByProductID: n=%d err=%v", n, err)
	}
	count, err := repo.Count(dbc)
	if err != nil || count != 1 {
		t.Fatalf("Count: n=%d err=%v", count, err)
	}
}

func TestProductRepoDuplicateProductIDFails(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProductRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, err := repo.Create(dbc, []*types.Product{testutil.Product("A-1", "Alpha")}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(dbc, []*types.Product{testutil.Product("A-1", "Again")}); err == nil {
		t.Fatalf("Create duplicate: expected unique violation")
	}
}

func TestProductRepoDeleteAllRequiresTx(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedProducts(t, db, "A-1", "B-2", "C-3")
	repo := NewProductRepo(db, testutil.Logger(t))

	if _, err := repo.DeleteAll(dbctx.Context{Ctx: context.Background()}); !errors.Is(err, ErrTxRequired) {
		t.Fatalf("DeleteAll without tx: expected ErrTxRequired, got %v", err)
	}
	if err := repo.LockForReplace(dbctx.Context{Ctx: context.Background()}); !errors.Is(err, ErrTxRequired) {
		t.Fatalf("LockForReplace without tx: expected ErrTxRequired, got %v", err)
	}

	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	if err := repo.LockForReplace(dbc); err != nil {
		t.Fatalf("LockForReplace: %v", err)
	}
	n, err := repo.DeleteAll(dbc)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 3 {
		t.Fatalf("DeleteAll: want=3 got=%d", n)
	}
	left, err := repo.Count(dbc)
	if err != nil || left != 0 {
		t.Fatalf("Count after DeleteAll: n=%d err=%v", left, err)
	}
}

func TestProductRepoUpdateMissing(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProductRepo(db, testutil.Logger(t))
	err := repo.Update(dbctx.Context{Ctx: context.Background()}, testutil.Product("ghost", "Ghost"))
	if err == nil {
		t.Fatalf("Update missing: expected error")
	}
}
