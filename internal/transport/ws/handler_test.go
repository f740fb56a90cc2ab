package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"gobag/internal/model"
	"gobag/internal/repository"
	"gobag/internal/service"
)

// stubTeamRepo serves GetByID from a map; the team endpoint touches nothing
// else before the upgrade.
type stubTeamRepo struct {
	teams map[string]*model.Team
}

func (r *stubTeamRepo) CreateMany(ctx context.Context, teams []*model.Team) error { return nil }

func (r *stubTeamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	return r.teams[id], nil
}

func (r *stubTeamRepo) GetByAccessCode(ctx context.Context, code string) (*model.Team, error) {
	return nil, nil
}

func (r *stubTeamRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Team, error) {
	return nil, nil
}

func (r *stubTeamRepo) UpdateSelection(ctx context.Context, id string, items []string) (bool, error) {
	return false, nil
}

func (r *stubTeamRepo) Submit(ctx context.Context, id string, items []string, at time.Time) (bool, error) {
	return false, nil
}

func (r *stubTeamRepo) ResetBySession(ctx context.Context, sessionID string) error  { return nil }
func (r *stubTeamRepo) DeleteBySession(ctx context.Context, sessionID string) error { return nil }

func (r *stubTeamRepo) Watch(ctx context.Context, sessionID string) (<-chan repository.ChangeEvent, error) {
	return nil, nil
}

func TestTeamWSRejectsUnknownTeam(t *testing.T) {
	teams := &stubTeamRepo{teams: map[string]*model.Team{
		"team-1": {ID: "team-1", SessionID: "sess-1", TeamNumber: 1},
	}}
	sessionSvc := service.NewSessionService(nil, teams, nil, nil, nil, nil)
	handler := NewHandler(NewHub(), nil, nil, sessionSvc)

	router := mux.NewRouter()
	router.HandleFunc("/v1/ws/sessions/{id}/teams/{teamId}", handler.TeamWS)
	srv := httptest.NewServer(router)
	defer srv.Close()

	cases := []struct {
		name string
		path string
		want int
	}{
		{"unknown team", "/v1/ws/sessions/sess-1/teams/missing", http.StatusNotFound},
		{"team from another session", "/v1/ws/sessions/other/teams/team-1", http.StatusNotFound},
		// A known team reaches the upgrader, which rejects a plain GET.
		{"known team without handshake", "/v1/ws/sessions/sess-1/teams/team-1", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tc.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tc.path, err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("GET %s status = %d, want %d", tc.path, resp.StatusCode, tc.want)
			}
		})
	}
}
