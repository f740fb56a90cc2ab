package service

import (
	"context"
	"fmt"
	"time"

	"gobag/internal/model"
	"gobag/internal/repository"
)

// MaxSelection caps how many items a team or participant may hold at once.
const MaxSelection = 10

// SubmissionService moves team and participant records between the open and
// submitted states. Team toggles persist immediately so every member sees the
// shared selection; workshop selections live client-side until submit.
type SubmissionService struct {
	teamRepo        repository.TeamRepo
	participantRepo repository.ParticipantRepo
	sessionRepo     repository.SessionRepo
	broadcaster     Broadcaster
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(teamRepo repository.TeamRepo, participantRepo repository.ParticipantRepo, sessionRepo repository.SessionRepo) *SubmissionService {
	return &SubmissionService{
		teamRepo:        teamRepo,
		participantRepo: participantRepo,
		sessionRepo:     sessionRepo,
	}
}

// SetBroadcaster injects the WebSocket broadcaster
func (s *SubmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ToggleTeamItem adds or removes one item from a team's shared selection and
// persists the result in a single conditional write. Submitted teams reject
// further toggles.
func (s *SubmissionService) ToggleTeamItem(ctx context.Context, teamID, itemName string) (*model.Team, error) {
	if itemName == "" {
		return nil, fmt.Errorf("item name is required")
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	if team.IsSubmitted {
		return nil, ErrAlreadySubmitted
	}

	next, removed := toggle(team.SelectedItems, itemName)
	if !removed && len(next) > MaxSelection {
		return nil, ErrSelectionLimit
	}

	matched, err := s.teamRepo.UpdateSelection(ctx, teamID, next)
	if err != nil {
		return nil, err
	}
	if !matched {
		// Lost the race against a submit from another member.
		return nil, ErrAlreadySubmitted
	}

	team.SelectedItems = next
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToTeam(team.SessionID, team.ID, "selection_update", map[string]interface{}{
			"teamId":        team.ID,
			"selectedItems": team.SelectedItems,
		})
	}
	return team, nil
}

// SubmitTeam finalizes a team's selection. The selection, flag, and timestamp
// go out in one write so the record is never observable half-submitted.
func (s *SubmissionService) SubmitTeam(ctx context.Context, teamID string) (*model.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	if team.IsSubmitted {
		return nil, ErrAlreadySubmitted
	}
	if len(team.SelectedItems) == 0 {
		return nil, ErrEmptySelection
	}

	now := time.Now()
	matched, err := s.teamRepo.Submit(ctx, teamID, team.SelectedItems, now)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrAlreadySubmitted
	}

	team.IsSubmitted = true
	team.SubmittedAt = &now
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToTeam(team.SessionID, team.ID, "team_submitted", map[string]interface{}{
			"teamId":      team.ID,
			"submittedAt": now,
		})
	}
	return team, nil
}

// SubmitParticipant records a workshop individual's selection in one write,
// keyed by the anonymous identity subject. Resubmitting replaces the earlier
// record instead of duplicating it. The selection is a set; repeated names in
// the client payload collapse before the limit check.
func (s *SubmissionService) SubmitParticipant(ctx context.Context, sessionID, subject string, selectedItems []string) (*model.Participant, error) {
	if subject == "" {
		return nil, ErrNotAuthenticated
	}
	selectedItems = dedupe(selectedItems)
	if len(selectedItems) == 0 {
		return nil, ErrEmptySelection
	}
	if len(selectedItems) > MaxSelection {
		return nil, ErrSelectionLimit
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Type != model.SessionWorkshop {
		return nil, ErrWrongSessionType
	}

	now := time.Now()
	participant := &model.Participant{
		ID:            subject,
		SessionID:     sessionID,
		SelectedItems: selectedItems,
		IsSubmitted:   true,
		SubmittedAt:   &now,
	}
	if err := s.participantRepo.Upsert(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// dedupe keeps the first occurrence of each name, preserving order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// toggle returns the selection with itemName added or removed, and whether
// the item was removed.
func toggle(selected []string, itemName string) ([]string, bool) {
	next := make([]string, 0, len(selected)+1)
	removed := false
	for _, name := range selected {
		if name == itemName {
			removed = true
			continue
		}
		next = append(next, name)
	}
	if !removed {
		next = append(next, itemName)
	}
	return next, removed
}
