package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"gobag/internal/cache"
	"gobag/internal/model"
	"gobag/internal/repository"
)

// In-memory fakes for the repository and cache interfaces. Each fake takes an
// optional err that every method returns when set, for failure-path tests.

type fakeItemListRepo struct {
	mu     sync.Mutex
	lists  map[string]*model.ItemList
	nextID int
	err    error
}

func newFakeItemListRepo() *fakeItemListRepo {
	return &fakeItemListRepo{lists: make(map[string]*model.ItemList)}
}

func (r *fakeItemListRepo) genID() string {
	r.nextID++
	return "list-" + strconv.Itoa(r.nextID)
}

func (r *fakeItemListRepo) Create(ctx context.Context, list *model.ItemList) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if list.ID == "" {
		list.ID = r.genID()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now()
	}
	cp := *list
	r.lists[list.ID] = &cp
	return list.ID, nil
}

func (r *fakeItemListRepo) GetByID(ctx context.Context, id string) (*model.ItemList, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if list, ok := r.lists[id]; ok {
		cp := *list
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeItemListRepo) FindByName(ctx context.Context, name string) (*model.ItemList, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.lists {
		if list.Name == name {
			cp := *list
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeItemListRepo) List(ctx context.Context) ([]*model.ItemList, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.ItemList, 0, len(r.lists))
	for _, list := range r.lists {
		cp := *list
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}

func (r *fakeItemListRepo) Rename(ctx context.Context, id, name string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if list, ok := r.lists[id]; ok {
		list.Name = name
	}
	return nil
}

func (r *fakeItemListRepo) UpdateItems(ctx context.Context, id string, items []model.Item) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if list, ok := r.lists[id]; ok {
		list.Items = items
	}
	return nil
}

func (r *fakeItemListRepo) EnsureDefault(ctx context.Context, name string, items []model.Item) (*model.ItemList, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.lists {
		if list.IsDefault {
			cp := *list
			return &cp, nil
		}
	}
	list := &model.ItemList{
		ID:        r.genID(),
		Name:      name,
		Items:     items,
		IsDefault: true,
		CreatedAt: time.Now(),
	}
	r.lists[list.ID] = list
	cp := *list
	return &cp, nil
}

func (r *fakeItemListRepo) Delete(ctx context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lists, id)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	nextID   int
	err      error

	// instrumentation for migration batching
	refBatches  [][]string
	failRefsAt  int // 1-based batch index to fail at, 0 disables
	refCalls    int
	refBatchErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *model.Session) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		r.nextID++
		session.ID = "sess-" + strconv.Itoa(r.nextID)
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return session.ID, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		cp := *session
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) GetByAccessCode(ctx context.Context, code string) (*model.Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.AccessCode == code {
			cp := *session
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) List(ctx context.Context) ([]*model.Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		cp := *session
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r *fakeSessionRepo) FindByItemList(ctx context.Context, itemListID string) ([]*model.Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Session
	for _, session := range r.sessions {
		if session.ItemListID == itemListID {
			cp := *session
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateItemListRefs(ctx context.Context, sessionIDs []string, toListID string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refCalls++
	if r.failRefsAt > 0 && r.refCalls >= r.failRefsAt {
		return r.refBatchErr
	}
	batch := append([]string(nil), sessionIDs...)
	r.refBatches = append(r.refBatches, batch)
	for _, id := range sessionIDs {
		if session, ok := r.sessions[id]; ok {
			session.ItemListID = toListID
		}
	}
	return nil
}

func (r *fakeSessionRepo) ResetAccessCode(ctx context.Context, id, code string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.AccessCode = code
		session.IsActive = false
	}
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	teams  map[string]*model.Team
	nextID int
	err    error
	events chan repository.ChangeEvent
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:  make(map[string]*model.Team),
		events: make(chan repository.ChangeEvent, 16),
	}
}

func (r *fakeTeamRepo) CreateMany(ctx context.Context, teams []*model.Team) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range teams {
		if t.ID == "" {
			r.nextID++
			t.ID = "team-" + strconv.Itoa(r.nextID)
		}
		cp := *t
		r.teams[t.ID] = &cp
	}
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.teams[id]; ok {
		cp := *t
		cp.SelectedItems = append([]string(nil), t.SelectedItems...)
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTeamRepo) GetByAccessCode(ctx context.Context, code string) (*model.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.AccessCode == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTeamRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Team
	for _, t := range r.teams {
		if t.SessionID == sessionID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].TeamNumber < out[b].TeamNumber })
	return out, nil
}

func (r *fakeTeamRepo) UpdateSelection(ctx context.Context, id string, items []string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok || t.IsSubmitted {
		return false, nil
	}
	t.SelectedItems = append([]string(nil), items...)
	return true, nil
}

func (r *fakeTeamRepo) Submit(ctx context.Context, id string, items []string, at time.Time) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok || t.IsSubmitted {
		return false, nil
	}
	t.SelectedItems = append([]string(nil), items...)
	t.IsSubmitted = true
	t.SubmittedAt = &at
	return true, nil
}

func (r *fakeTeamRepo) ResetBySession(ctx context.Context, sessionID string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.SessionID == sessionID {
			t.SelectedItems = []string{}
			t.IsSubmitted = false
			t.SubmittedAt = nil
		}
	}
	return nil
}

func (r *fakeTeamRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.teams {
		if t.SessionID == sessionID {
			delete(r.teams, id)
		}
	}
	return nil
}

func (r *fakeTeamRepo) Watch(ctx context.Context, sessionID string) (<-chan repository.ChangeEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.events, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*model.Participant
	err          error
	events       chan repository.ChangeEvent
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		participants: make(map[string]*model.Participant),
		events:       make(chan repository.ChangeEvent, 16),
	}
}

func (r *fakeParticipantRepo) Upsert(ctx context.Context, p *model.Participant) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.participants[p.ID] = &cp
	return nil
}

func (r *fakeParticipantRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Participant, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Participant
	for _, p := range r.participants {
		if p.SessionID == sessionID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.participants {
		if p.SessionID == sessionID {
			delete(r.participants, id)
		}
	}
	return nil
}

func (r *fakeParticipantRepo) Watch(ctx context.Context, sessionID string) (<-chan repository.ChangeEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.events, nil
}

type fakeCodeCache struct {
	mu       sync.Mutex
	pointers map[string]*cache.CodePointer
	err      error
}

func newFakeCodeCache() *fakeCodeCache {
	return &fakeCodeCache{pointers: make(map[string]*cache.CodePointer)}
}

func (c *fakeCodeCache) Set(ctx context.Context, code string, ptr *cache.CodePointer) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *ptr
	c.pointers[code] = &cp
	return nil
}

func (c *fakeCodeCache) Get(ctx context.Context, code string) (*cache.CodePointer, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ptr, ok := c.pointers[code]; ok {
		cp := *ptr
		return &cp, nil
	}
	return nil, nil
}

func (c *fakeCodeCache) Delete(ctx context.Context, codes ...string) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, code := range codes {
		delete(c.pointers, code)
	}
	return nil
}

func (c *fakeCodeCache) Exists(ctx context.Context, code string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pointers[code]
	return ok, nil
}

type fakeResultsCache struct {
	mu      sync.Mutex
	results map[string]*model.SessionResults
	err     error
}

func newFakeResultsCache() *fakeResultsCache {
	return &fakeResultsCache{results: make(map[string]*model.SessionResults)}
}

func (c *fakeResultsCache) Set(ctx context.Context, sessionID string, results *model.SessionResults) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[sessionID] = results
	return nil
}

func (c *fakeResultsCache) Get(ctx context.Context, sessionID string) (*model.SessionResults, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[sessionID], nil
}

func (c *fakeResultsCache) Delete(ctx context.Context, sessionID string) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, sessionID)
	return nil
}

type broadcastMsg struct {
	SessionID string
	TeamID    string
	MsgType   string
	Payload   interface{}
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []broadcastMsg
}

func (b *fakeBroadcaster) BroadcastToDashboard(sessionID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, broadcastMsg{SessionID: sessionID, MsgType: msgType, Payload: payload})
}

func (b *fakeBroadcaster) BroadcastToTeam(sessionID, teamID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, broadcastMsg{SessionID: sessionID, TeamID: teamID, MsgType: msgType, Payload: payload})
}

func (b *fakeBroadcaster) byType(msgType string) []broadcastMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []broadcastMsg
	for _, m := range b.messages {
		if m.MsgType == msgType {
			out = append(out, m)
		}
	}
	return out
}
