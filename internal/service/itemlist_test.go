package service

import (
	"context"
	"errors"
	"testing"

	"gobag/internal/model"
)

func newListFixture() (*ItemListService, *fakeItemListRepo, *fakeSessionRepo) {
	listRepo := newFakeItemListRepo()
	sessionRepo := newFakeSessionRepo()
	return NewItemListService(listRepo, sessionRepo), listRepo, sessionRepo
}

func TestEnsureDefaultIdempotent(t *testing.T) {
	svc, _, _ := newListFixture()
	ctx := context.Background()

	first, err := svc.EnsureDefault(ctx)
	if err != nil {
		t.Fatalf("first EnsureDefault: %v", err)
	}
	if first.Name != DefaultListName {
		t.Errorf("Name = %q, want %q", first.Name, DefaultListName)
	}
	if len(first.Items) != 40 {
		t.Errorf("seeded %d items, want 40", len(first.Items))
	}
	if !first.IsDefault {
		t.Errorf("IsDefault not set")
	}

	second, err := svc.EnsureDefault(ctx)
	if err != nil {
		t.Fatalf("second EnsureDefault: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call created a new list: %q vs %q", second.ID, first.ID)
	}

	all, _ := svc.ListAll(ctx)
	if len(all) != 1 {
		t.Errorf("got %d lists, want 1", len(all))
	}
}

func TestCreateDuplicateName(t *testing.T) {
	svc, _, _ := newListFixture()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "避難リスト", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "避難リスト", nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("error = %v, want ErrDuplicateName", err)
	}
	if _, err := svc.Create(ctx, "  ", nil); err == nil {
		t.Fatal("blank name accepted")
	}
}

func TestRename(t *testing.T) {
	svc, _, _ := newListFixture()
	ctx := context.Background()

	a, _ := svc.Create(ctx, "リストA", nil)
	b, _ := svc.Create(ctx, "リストB", nil)

	if err := svc.Rename(ctx, a.ID, "リストB"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("collision error = %v, want ErrDuplicateName", err)
	}
	// Renaming to its own current name is a no-op, not a collision.
	if err := svc.Rename(ctx, b.ID, "リストB"); err != nil {
		t.Fatalf("self rename: %v", err)
	}
	if err := svc.Rename(ctx, a.ID, "リストC"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, _ := svc.GetList(ctx, a.ID)
	if got.Name != "リストC" {
		t.Errorf("Name = %q, want リストC", got.Name)
	}
}

func TestAddAndRemoveItem(t *testing.T) {
	svc, _, _ := newListFixture()
	ctx := context.Background()

	list, _ := svc.Create(ctx, "リスト", []model.Item{{Name: "水"}})

	if err := svc.AddItem(ctx, list.ID, model.Item{Name: "水"}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate item error = %v, want ErrDuplicateName", err)
	}
	if err := svc.AddItem(ctx, list.ID, model.Item{Name: "マスク", Category: "衛生"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveItem(ctx, list.ID, "水"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got, _ := svc.GetList(ctx, list.ID)
	if len(got.Items) != 1 || got.Items[0].Name != "マスク" {
		t.Errorf("Items = %v", got.Items)
	}
}

func TestDeleteGuards(t *testing.T) {
	svc, _, sessionRepo := newListFixture()
	ctx := context.Background()

	def, _ := svc.EnsureDefault(ctx)
	if err := svc.Delete(ctx, def.ID); !errors.Is(err, ErrDefaultList) {
		t.Fatalf("default delete error = %v, want ErrDefaultList", err)
	}

	list, _ := svc.Create(ctx, "使用中リスト", nil)
	if _, err := sessionRepo.Create(ctx, &model.Session{Name: "s1", Type: model.SessionLesson, ItemListID: list.ID}); err != nil {
		t.Fatal(err)
	}

	err := svc.Delete(ctx, list.ID)
	var inUse *InUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("in-use delete error = %v, want *InUseError", err)
	}
	if len(inUse.Sessions) != 1 || inUse.Sessions[0].Name != "s1" {
		t.Errorf("InUseError.Sessions = %+v", inUse.Sessions)
	}

	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrListNotFound) {
		t.Fatalf("missing delete error = %v, want ErrListNotFound", err)
	}
}

func TestDeleteAfterMigration(t *testing.T) {
	listRepo := newFakeItemListRepo()
	sessionRepo := newFakeSessionRepo()
	listSvc := NewItemListService(listRepo, sessionRepo)
	migrationSvc := NewMigrationService(sessionRepo, listRepo)
	ctx := context.Background()

	from, _ := listSvc.Create(ctx, "旧リスト", nil)
	to, _ := listSvc.Create(ctx, "新リスト", nil)
	for i := 0; i < 3; i++ {
		sessionRepo.Create(ctx, &model.Session{Name: "s", Type: model.SessionWorkshop, ItemListID: from.ID})
	}

	affected, err := listSvc.SessionsUsing(ctx, from.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n, err := migrationSvc.Migrate(ctx, from.ID, to.ID, affected); err != nil || n != 3 {
		t.Fatalf("Migrate = (%d, %v), want (3, nil)", n, err)
	}

	// The referential scan is empty now, so the delete goes through.
	if err := listSvc.Delete(ctx, from.ID); err != nil {
		t.Fatalf("delete after migration: %v", err)
	}
	if got, _ := listSvc.GetList(ctx, from.ID); got != nil {
		t.Errorf("list still present after delete")
	}
}
