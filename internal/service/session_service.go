package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strconv"

	"gobag/internal/cache"
	"gobag/internal/model"
	"gobag/internal/repository"
)

const maxTeamCount = 50

// SessionService handles the session lifecycle: creation with bulk team
// setup, destructive reset, and cascading deletion.
type SessionService struct {
	sessionRepo     repository.SessionRepo
	teamRepo        repository.TeamRepo
	participantRepo repository.ParticipantRepo
	listRepo        repository.ItemListRepo
	codeCache       cache.CodeCache
	resultsCache    cache.ResultsCache
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repository.SessionRepo,
	teamRepo repository.TeamRepo,
	participantRepo repository.ParticipantRepo,
	listRepo repository.ItemListRepo,
	codeCache cache.CodeCache,
	resultsCache cache.ResultsCache,
) *SessionService {
	return &SessionService{
		sessionRepo:     sessionRepo,
		teamRepo:        teamRepo,
		participantRepo: participantRepo,
		listRepo:        listRepo,
		codeCache:       codeCache,
		resultsCache:    resultsCache,
	}
}

// CreateSession creates a session and, for lesson sessions, its teams. An
// empty itemListID selects the default list.
func (s *SessionService) CreateSession(ctx context.Context, name string, sessionType model.SessionType, itemListID string, teamCount int) (*model.Session, []*model.Team, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("session name is required")
	}
	if sessionType != model.SessionLesson && sessionType != model.SessionWorkshop {
		return nil, nil, fmt.Errorf("unknown session type %q", sessionType)
	}
	if sessionType == model.SessionLesson && (teamCount < 1 || teamCount > maxTeamCount) {
		return nil, nil, fmt.Errorf("team count must be between 1 and %d", maxTeamCount)
	}

	list, err := s.resolveItemList(ctx, itemListID)
	if err != nil {
		return nil, nil, err
	}

	code, err := s.generateAccessCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	session := &model.Session{
		Name:       name,
		Type:       sessionType,
		ItemListID: list.ID,
		AccessCode: code,
		IsActive:   false,
	}
	if _, err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.rememberCode(ctx, code, &cache.CodePointer{SessionID: session.ID})

	var teams []*model.Team
	if sessionType == model.SessionLesson {
		teams = make([]*model.Team, 0, teamCount)
		for i := 1; i <= teamCount; i++ {
			teamCode, err := s.generateAccessCode(ctx)
			if err != nil {
				return nil, nil, err
			}
			teams = append(teams, &model.Team{
				SessionID:     session.ID,
				TeamNumber:    i,
				AccessCode:    teamCode,
				SelectedItems: []string{},
			})
		}
		if err := s.teamRepo.CreateMany(ctx, teams); err != nil {
			return nil, nil, fmt.Errorf("failed to create teams: %w", err)
		}
		for _, t := range teams {
			s.rememberCode(ctx, t.AccessCode, &cache.CodePointer{SessionID: session.ID, TeamID: t.ID})
		}
	}

	return session, teams, nil
}

// GetSession retrieves a session by ID
func (s *SessionService) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

// ListSessions retrieves all sessions, newest first
func (s *SessionService) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.sessionRepo.List(ctx)
}

// GetTeam retrieves one team by ID
func (s *SessionService) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	return s.teamRepo.GetByID(ctx, id)
}

// ListTeams retrieves a lesson session's teams in team-number order
func (s *SessionService) ListTeams(ctx context.Context, sessionID string) ([]*model.Team, error) {
	return s.teamRepo.ListBySession(ctx, sessionID)
}

// Reset wipes all answers of a session and rotates its session-level access
// code. Team codes are intentionally left as they are, so printed handouts
// stay valid across rounds. Destructive; callers confirm before invoking.
func (s *SessionService) Reset(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.Type == model.SessionLesson {
		if err := s.teamRepo.ResetBySession(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("failed to reset teams: %w", err)
		}
	} else {
		// Workshop participants are deleted outright: fresh start, no
		// residual identities.
		if err := s.participantRepo.DeleteBySession(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("failed to delete participants: %w", err)
		}
	}

	code, err := s.generateAccessCode(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.ResetAccessCode(ctx, sessionID, code); err != nil {
		return nil, fmt.Errorf("failed to rotate access code: %w", err)
	}
	s.forgetCode(ctx, session.AccessCode)
	s.rememberCode(ctx, code, &cache.CodePointer{SessionID: sessionID})

	if err := s.resultsCache.Delete(ctx, sessionID); err != nil {
		log.Printf("results cache delete failed for %s: %v", sessionID, err)
	}

	session.AccessCode = code
	session.IsActive = false
	return session, nil
}

// Delete removes a session and cascades to its teams or participants.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	codes := []string{session.AccessCode}
	if session.Type == model.SessionLesson {
		teams, err := s.teamRepo.ListBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		for _, t := range teams {
			codes = append(codes, t.AccessCode)
		}
		if err := s.teamRepo.DeleteBySession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete teams: %w", err)
		}
	} else {
		if err := s.participantRepo.DeleteBySession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete participants: %w", err)
		}
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := s.codeCache.Delete(ctx, codes...); err != nil {
		log.Printf("code cache delete failed: %v", err)
	}
	if err := s.resultsCache.Delete(ctx, sessionID); err != nil {
		log.Printf("results cache delete failed for %s: %v", sessionID, err)
	}
	return nil
}

func (s *SessionService) resolveItemList(ctx context.Context, itemListID string) (*model.ItemList, error) {
	if itemListID == "" {
		list, err := s.listRepo.EnsureDefault(ctx, DefaultListName, DefaultItems())
		if err != nil {
			return nil, fmt.Errorf("failed to load default list: %w", err)
		}
		return list, nil
	}
	list, err := s.listRepo.GetByID(ctx, itemListID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrListNotFound
	}
	return list, nil
}

// generateAccessCode draws 4 random digits, retrying while the code index
// already knows the code. With a cold index this degrades to unchecked
// random codes, which is the original behavior.
func (s *SessionService) generateAccessCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			return "", err
		}
		code := strconv.FormatInt(1000+n.Int64(), 10)

		exists, err := s.codeCache.Exists(ctx, code)
		if err != nil {
			log.Printf("code cache unavailable, skipping uniqueness probe: %v", err)
			return code, nil
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique access code")
}

func (s *SessionService) rememberCode(ctx context.Context, code string, ptr *cache.CodePointer) {
	if err := s.codeCache.Set(ctx, code, ptr); err != nil {
		log.Printf("code cache write failed for %s: %v", code, err)
	}
}

func (s *SessionService) forgetCode(ctx context.Context, code string) {
	if code == "" {
		return
	}
	if err := s.codeCache.Delete(ctx, code); err != nil {
		log.Printf("code cache delete failed for %s: %v", code, err)
	}
}
