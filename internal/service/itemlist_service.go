package service

import (
	"context"
	"fmt"
	"strings"

	"gobag/internal/model"
	"gobag/internal/repository"
)

// DefaultListName is the name of the auto-created default catalog.
const DefaultListName = "基本セット"

var defaultItemNames = []string{
	"水（500ml x 4本程度）", "食料（3日分）", "非常食（乾パン、缶詰など）", "医薬品・救急セット",
	"現金（小銭も）", "身分証明書のコピー", "懐中電灯（予備電池も）", "携帯ラジオ",
	"スマートフォン・携帯電話", "モバイルバッテリー", "ヘルメット・防災頭巾", "マスク",
	"軍手", "ロープ", "笛・ホイッスル", "筆記用具・メモ帳",
	"常備薬・お薬手帳", "生理用品", "乳幼児用品（ミルク、おむつ）", "介護用品",
	"めがね・コンタクトレンズ", "衣類（下着、靴下など）", "タオル", "レインコート・雨具",
	"ブランケット・寝袋", "携帯トイレ", "トイレットペーパー", "ティッシュペーパー",
	"ウェットティッシュ", "ゴミ袋（大小）", "サランラップ", "マッチ・ライター",
	"缶切り・ナイフ", "家族の写真", "地域のハザードマップ", "使い捨てカイロ",
	"歯ブラシ・衛生用品", "安眠グッズ（アイマスク、耳栓）", "布製ガムテープ", "予備の鍵",
}

// DefaultItems returns the seeded catalog for the default list.
func DefaultItems() []model.Item {
	items := make([]model.Item, len(defaultItemNames))
	for i, name := range defaultItemNames {
		items[i] = model.Item{Name: name}
	}
	return items
}

// ItemListService owns the item-list registry: default-list bootstrap, CRUD,
// and referential-integrity-guarded deletion.
type ItemListService struct {
	listRepo    repository.ItemListRepo
	sessionRepo repository.SessionRepo
}

// NewItemListService creates a new item list service
func NewItemListService(listRepo repository.ItemListRepo, sessionRepo repository.SessionRepo) *ItemListService {
	return &ItemListService{
		listRepo:    listRepo,
		sessionRepo: sessionRepo,
	}
}

// EnsureDefault creates the default list from the seed if none exists.
// Idempotent and safe to call from concurrent clients.
func (s *ItemListService) EnsureDefault(ctx context.Context) (*model.ItemList, error) {
	return s.listRepo.EnsureDefault(ctx, DefaultListName, DefaultItems())
}

// Create adds a named list. List names collide case-sensitively across lists.
func (s *ItemListService) Create(ctx context.Context, name string, items []model.Item) (*model.ItemList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("list name is required")
	}
	existing, err := s.listRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	if items == nil {
		items = []model.Item{}
	}
	list := &model.ItemList{Name: name, Items: items}
	if _, err := s.listRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return list, nil
}

// Rename changes a list's name, rejecting collisions with other lists.
func (s *ItemListService) Rename(ctx context.Context, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("list name is required")
	}
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if list == nil {
		return ErrListNotFound
	}
	existing, err := s.listRepo.FindByName(ctx, newName)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != id {
		return ErrDuplicateName
	}
	return s.listRepo.Rename(ctx, id, newName)
}

// AddItem appends an item, rejecting an exact name match within the list.
func (s *ItemListService) AddItem(ctx context.Context, id string, item model.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return fmt.Errorf("item name is required")
	}
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if list == nil {
		return ErrListNotFound
	}
	if model.ContainsItem(list.Items, item.Name) {
		return ErrDuplicateName
	}
	return s.listRepo.UpdateItems(ctx, id, append(list.Items, item))
}

// RemoveItem drops the item with the exact name from the list.
func (s *ItemListService) RemoveItem(ctx context.Context, id, itemName string) error {
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if list == nil {
		return ErrListNotFound
	}
	kept := make([]model.Item, 0, len(list.Items))
	for _, it := range list.Items {
		if it.Name != itemName {
			kept = append(kept, it)
		}
	}
	return s.listRepo.UpdateItems(ctx, id, kept)
}

// SessionsUsing is the referential-integrity scan: every session currently
// pointing at the list. Callers re-run it after migrating before retrying a
// delete.
func (s *ItemListService) SessionsUsing(ctx context.Context, listID string) ([]*model.Session, error) {
	return s.sessionRepo.FindByItemList(ctx, listID)
}

// Delete removes a list. The default list is never deletable; a list still
// referenced by sessions is refused with the referencing sessions attached.
func (s *ItemListService) Delete(ctx context.Context, id string) error {
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if list == nil {
		return ErrListNotFound
	}
	if list.IsDefault {
		return ErrDefaultList
	}

	inUse, err := s.SessionsUsing(ctx, id)
	if err != nil {
		return err
	}
	if len(inUse) > 0 {
		return &InUseError{Sessions: inUse}
	}

	return s.listRepo.Delete(ctx, id)
}

// GetList retrieves a list by ID
func (s *ItemListService) GetList(ctx context.Context, id string) (*model.ItemList, error) {
	return s.listRepo.GetByID(ctx, id)
}

// ListAll retrieves every list, oldest first
func (s *ItemListService) ListAll(ctx context.Context) ([]*model.ItemList, error) {
	return s.listRepo.List(ctx)
}
