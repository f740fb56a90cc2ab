package service

import (
	"context"
	"log"
	"strings"

	"gobag/internal/cache"
	"gobag/internal/model"
	"gobag/internal/repository"
)

// ResolverService maps a typed 4-digit code to the session (and team) it was
// issued for. Phase 1 checks session-level codes (workshop), phase 2 the team
// codes (lesson). A Redis pointer short-circuits both phases when warm; Mongo
// stays authoritative.
type ResolverService struct {
	sessionRepo repository.SessionRepo
	teamRepo    repository.TeamRepo
	listRepo    repository.ItemListRepo
	codeCache   cache.CodeCache
}

// NewResolverService creates a new resolver service
func NewResolverService(
	sessionRepo repository.SessionRepo,
	teamRepo repository.TeamRepo,
	listRepo repository.ItemListRepo,
	codeCache cache.CodeCache,
) *ResolverService {
	return &ResolverService{
		sessionRepo: sessionRepo,
		teamRepo:    teamRepo,
		listRepo:    listRepo,
		codeCache:   codeCache,
	}
}

// NormalizeCode folds full-width digits to ASCII, strips everything that is
// not a digit, and requires exactly 4 digits to remain.
func NormalizeCode(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '０' && r <= '９':
			b.WriteRune('0' + (r - '０'))
		}
	}
	code := b.String()
	if len(code) != 4 {
		return "", ErrInvalidFormat
	}
	return code, nil
}

// Resolve looks the code up and returns the full joining context.
func (s *ResolverService) Resolve(ctx context.Context, rawInput string) (*model.SessionContext, error) {
	code, err := NormalizeCode(rawInput)
	if err != nil {
		return nil, err
	}

	// Fast path via the code index; a cache failure is not a lookup failure.
	if ptr, err := s.codeCache.Get(ctx, code); err == nil && ptr != nil {
		if sc, err := s.fromPointer(ctx, code, ptr); err == nil && sc != nil {
			return sc, nil
		}
	} else if err != nil {
		log.Printf("code cache read failed for %s: %v", code, err)
	}

	// Phase 1: workshop sessions carry the code themselves.
	session, err := s.sessionRepo.GetByAccessCode(ctx, code)
	if err != nil {
		return nil, &LookupError{Err: err}
	}
	if session != nil {
		list, err := s.loadItemList(ctx, session)
		if err != nil {
			return nil, err
		}
		s.remember(ctx, code, &cache.CodePointer{SessionID: session.ID})
		return &model.SessionContext{
			Type:     model.SessionWorkshop,
			Session:  session,
			ItemList: list,
		}, nil
	}

	// Phase 2: team codes, across every lesson session.
	team, err := s.teamRepo.GetByAccessCode(ctx, code)
	if err != nil {
		return nil, &LookupError{Err: err}
	}
	if team == nil {
		return nil, ErrCodeNotFound
	}

	session, err = s.sessionRepo.GetByID(ctx, team.SessionID)
	if err != nil {
		return nil, &LookupError{Err: err}
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	list, err := s.loadItemList(ctx, session)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, code, &cache.CodePointer{SessionID: session.ID, TeamID: team.ID})
	return &model.SessionContext{
		Type:     model.SessionLesson,
		Session:  session,
		Team:     team,
		ItemList: list,
	}, nil
}

// fromPointer rebuilds the context from a cached pointer, verifying the code
// still belongs to that scope. Any mismatch falls back to the full lookup.
func (s *ResolverService) fromPointer(ctx context.Context, code string, ptr *cache.CodePointer) (*model.SessionContext, error) {
	session, err := s.sessionRepo.GetByID(ctx, ptr.SessionID)
	if err != nil || session == nil {
		return nil, err
	}

	if ptr.TeamID == "" {
		if session.AccessCode != code {
			return nil, nil // stale pointer
		}
		list, err := s.loadItemList(ctx, session)
		if err != nil {
			return nil, err
		}
		return &model.SessionContext{
			Type:     model.SessionWorkshop,
			Session:  session,
			ItemList: list,
		}, nil
	}

	team, err := s.teamRepo.GetByID(ctx, ptr.TeamID)
	if err != nil || team == nil || team.AccessCode != code {
		return nil, err
	}
	list, err := s.loadItemList(ctx, session)
	if err != nil {
		return nil, err
	}
	return &model.SessionContext{
		Type:     model.SessionLesson,
		Session:  session,
		Team:     team,
		ItemList: list,
	}, nil
}

func (s *ResolverService) loadItemList(ctx context.Context, session *model.Session) (*model.ItemList, error) {
	if session.ItemListID == "" {
		return nil, ErrDanglingItemList
	}
	list, err := s.listRepo.GetByID(ctx, session.ItemListID)
	if err != nil {
		return nil, &LookupError{Err: err}
	}
	if list == nil {
		return nil, ErrDanglingItemList
	}
	return list, nil
}

func (s *ResolverService) remember(ctx context.Context, code string, ptr *cache.CodePointer) {
	if err := s.codeCache.Set(ctx, code, ptr); err != nil {
		log.Printf("code cache write failed for %s: %v", code, err)
	}
}
