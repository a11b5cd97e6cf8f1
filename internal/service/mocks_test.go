package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/auth"
	"github.com/sakif/boardnomore/internal/config"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

// =========================================================================
// MOCK STORE
// =========================================================================
//
// mockStore is a hand-written in-memory implementation of every repository
// interface, mirroring how sqlite.DB implements them all on one receiver.
// It keeps the same semantics the services rely on: Join is the capacity
// authority, Delete cascades, lists come back in deterministic order.

type mockStore struct {
	sessions  map[string]*model.Session
	attendees map[string][]string // sessionID -> userIDs in join order
	comments  map[string]*model.Comment
	games     map[string]*model.Game
	users     map[string]*model.Profile
	favorites map[string][]string // userID -> gameIDs
	avail     map[string][]model.AvailabilitySlot
	nextID    int
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions:  make(map[string]*model.Session),
		attendees: make(map[string][]string),
		comments:  make(map[string]*model.Comment),
		games:     make(map[string]*model.Game),
		users:     make(map[string]*model.Profile),
		favorites: make(map[string][]string),
		avail:     make(map[string][]model.AvailabilitySlot),
	}
}

func (m *mockStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

// --- SessionRepository ---

func (m *mockStore) Create(_ context.Context, session *model.Session) error {
	session.ID = m.id("session")
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	stored := *session
	m.sessions[session.ID] = &stored
	// Host attendance is written in the same transaction as the session.
	m.attendees[session.ID] = []string{session.HostID}
	session.AttendeeIDs = []string{session.HostID}
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (*model.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	result := *session
	result.AttendeeIDs = append([]string(nil), m.attendees[id]...)
	return &result, nil
}

func (m *mockStore) List(_ context.Context, filter repository.SessionFilter) ([]model.Session, error) {
	result := []model.Session{}
	for id, s := range m.sessions {
		if filter.GameID != "" && s.GameID != filter.GameID {
			continue
		}
		if filter.SkillLevel != "" && s.SkillLevel != filter.SkillLevel {
			continue
		}
		if filter.HostID != "" && s.HostID != filter.HostID {
			continue
		}
		if filter.AttendeeID != "" && !contains(m.attendees[id], filter.AttendeeID) {
			continue
		}
		copied := *s
		copied.AttendeeIDs = append([]string(nil), m.attendees[id]...)
		result = append(result, copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].StartTime.Before(result[j].StartTime)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) Update(_ context.Context, session *model.Session) error {
	if _, ok := m.sessions[session.ID]; !ok {
		return apperror.NotFound("session", session.ID)
	}
	// Same guard the real store builds into its UPDATE statement.
	if session.Capacity < len(m.attendees[session.ID]) {
		return apperror.ValidationFailed("capacity",
			"capacity cannot be reduced below the current attendee count")
	}
	session.UpdatedAt = time.Now()
	stored := *session
	m.sessions[session.ID] = &stored
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	if _, ok := m.sessions[id]; !ok {
		return apperror.NotFound("session", id)
	}
	delete(m.sessions, id)
	delete(m.attendees, id)
	// Comments cascade with the session.
	for cid, c := range m.comments {
		if c.SessionID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

// --- AttendanceRepository ---

func (m *mockStore) Join(_ context.Context, sessionID, userID string) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		return apperror.NotFound("session", sessionID)
	}
	current := m.attendees[sessionID]
	if contains(current, userID) {
		return apperror.DuplicateAttendance(sessionID, userID)
	}
	if len(current) >= session.Capacity {
		return apperror.CapacityExceeded(sessionID)
	}
	m.attendees[sessionID] = append(current, userID)
	return nil
}

func (m *mockStore) Leave(_ context.Context, sessionID, userID string) (bool, error) {
	current := m.attendees[sessionID]
	for i, id := range current {
		if id == userID {
			m.attendees[sessionID] = append(current[:i:i], current[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) ListUserIDs(_ context.Context, sessionID string) ([]string, error) {
	return append([]string(nil), m.attendees[sessionID]...), nil
}

func (m *mockStore) ListProfiles(_ context.Context, sessionID string) ([]model.Profile, error) {
	profiles := []model.Profile{}
	for _, userID := range m.attendees[sessionID] {
		if p, ok := m.users[userID]; ok {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

func (m *mockStore) Count(_ context.Context, sessionID string) (int, error) {
	return len(m.attendees[sessionID]), nil
}

// --- CommentRepository ---

func (m *mockStore) CreateComment(_ context.Context, comment *model.Comment) error {
	comment.ID = m.id("comment")
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockStore) GetCommentByID(_ context.Context, id string) (*model.Comment, error) {
	comment, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	result := *comment
	return &result, nil
}

func (m *mockStore) ListBySession(_ context.Context, sessionID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.SessionID == sessionID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) UpdateComment(_ context.Context, comment *model.Comment) error {
	if _, ok := m.comments[comment.ID]; !ok {
		return apperror.NotFound("comment", comment.ID)
	}
	comment.UpdatedAt = time.Now()
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockStore) DeleteComment(_ context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(m.comments, id)
	return nil
}

// --- GameRepository ---

func (m *mockStore) ListGames(_ context.Context) ([]model.Game, error) {
	result := []model.Game{}
	for _, g := range m.games {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockStore) GetGameByID(_ context.Context, id string) (*model.Game, error) {
	game, ok := m.games[id]
	if !ok {
		return nil, apperror.NotFound("game", id)
	}
	result := *game
	return &result, nil
}

func (m *mockStore) SearchGames(_ context.Context, term string) ([]model.Game, error) {
	all, _ := m.ListGames(context.Background())
	result := []model.Game{}
	for _, g := range all {
		if containsFold(g.Name, term) {
			result = append(result, g)
		}
	}
	return result, nil
}

func (m *mockStore) ListGamesByTags(_ context.Context, tags []string) ([]model.Game, error) {
	all, _ := m.ListGames(context.Background())
	result := []model.Game{}
	for _, g := range all {
		matches := true
		for _, tag := range tags {
			if !contains(g.Tags, tag) {
				matches = false
				break
			}
		}
		if matches {
			result = append(result, g)
		}
	}
	return result, nil
}

// --- UserRepository ---

func (m *mockStore) CreateUser(_ context.Context, profile *model.Profile) error {
	for _, u := range m.users {
		if u.Email == profile.Email {
			return apperror.Conflict("user", profile.Email)
		}
	}
	profile.ID = m.id("user")
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	stored := *profile
	m.users[profile.ID] = &stored
	return nil
}

func (m *mockStore) GetUserByID(_ context.Context, id string) (*model.Profile, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockStore) UpdateUser(_ context.Context, profile *model.Profile) error {
	if _, ok := m.users[profile.ID]; !ok {
		return apperror.NotFound("user", profile.ID)
	}
	profile.UpdatedAt = time.Now()
	stored := *profile
	m.users[profile.ID] = &stored
	return nil
}

func (m *mockStore) SetAvailability(_ context.Context, userID string, slots []model.AvailabilitySlot) error {
	m.avail[userID] = append([]model.AvailabilitySlot(nil), slots...)
	return nil
}

func (m *mockStore) GetAvailability(_ context.Context, userID string) ([]model.AvailabilitySlot, error) {
	return append([]model.AvailabilitySlot(nil), m.avail[userID]...), nil
}

func (m *mockStore) AddFavoriteGame(_ context.Context, userID, gameID string) error {
	if contains(m.favorites[userID], gameID) {
		return apperror.Conflict("favorite", gameID)
	}
	m.favorites[userID] = append(m.favorites[userID], gameID)
	return nil
}

func (m *mockStore) RemoveFavoriteGame(_ context.Context, userID, gameID string) error {
	current := m.favorites[userID]
	for i, id := range current {
		if id == gameID {
			m.favorites[userID] = append(current[:i:i], current[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockStore) ListFavoriteGames(_ context.Context, userID string) ([]model.Game, error) {
	result := []model.Game{}
	for _, gameID := range m.favorites[userID] {
		if g, ok := m.games[gameID]; ok {
			result = append(result, *g)
		}
	}
	return result, nil
}

// =========================================================================
// HELPERS
// =========================================================================

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	h := []byte(haystack)
	n := []byte(needle)
	lower := func(b byte) byte {
		if b >= 'A' && b <= 'Z' {
			return b + 32
		}
		return b
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// seedUser registers a bare user directly in the store.
func seedUser(t *testing.T, store *mockStore, name string) *model.Profile {
	t.Helper()
	profile := &model.Profile{
		Email: name + "@example.com",
		Name:  name,
	}
	if err := store.CreateUser(context.Background(), profile); err != nil {
		t.Fatalf("setup: CreateUser() error = %v", err)
	}
	return profile
}

// seedGame puts a catalog game directly in the store.
func seedGame(t *testing.T, store *mockStore, name string, tags ...string) *model.Game {
	t.Helper()
	game := &model.Game{
		ID:         store.id("game"),
		Name:       name,
		MinPlayers: 2,
		MaxPlayers: 6,
		Tags:       tags,
		CreatedAt:  time.Now(),
	}
	store.games[game.ID] = game
	return game
}

// newSessionService wires a SessionService over the mock store with the
// given host-leave policy.
func newSessionService(t *testing.T, store *mockStore, policy config.HostLeavePolicy) *SessionService {
	t.Helper()
	return NewSessionService(store, store, store, store, policy, testLogger())
}

// validDraft returns a draft that passes validation for the given game.
func validDraft(gameID string, capacity int) SessionDraft {
	start := time.Now().Add(24 * time.Hour)
	return SessionDraft{
		GameID:     gameID,
		StartTime:  start,
		EndTime:    start.Add(3 * time.Hour),
		Location:   "Meeple Cafe",
		Capacity:   capacity,
		SkillLevel: model.SkillAllLevels,
	}
}

// newAuthService wires an AuthService over the mock store with fast bcrypt.
func newAuthService(t *testing.T, store *mockStore) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-test-secret")
	if err != nil {
		t.Fatalf("setup: NewTokenService() error = %v", err)
	}
	return NewAuthService(store, auth.NewPasswordServiceForTest(4), tokens, testLogger())
}
