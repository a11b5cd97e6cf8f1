package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHandler_UpdateOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")

	body := map[string]interface{}{"bio": "catan veteran", "willingToHost": true}

	req := authedRequest(http.MethodPut, "/api/users/x", bob.ID, body)
	req.SetPathValue("id", alice.ID)
	rr := httptest.NewRecorder()
	env.profiles.HandleUpdate(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = authedRequest(http.MethodPut, "/api/users/x", alice.ID, body)
	req.SetPathValue("id", alice.ID)
	rr = httptest.NewRecorder()
	env.profiles.HandleUpdate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var profile map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
	assert.Equal(t, "catan veteran", profile["bio"])
	assert.Equal(t, true, profile["willingToHost"])
}

func TestProfileHandler_AvailabilityAndFavorites(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")
	game := env.seedGame(t, "Catan")

	availReq := authedRequest(http.MethodPut, "/api/users/x/availability", alice.ID,
		map[string]interface{}{
			"slots": []map[string]string{{"dayOfWeek": "friday", "timeSlot": "evening"}},
		})
	availReq.SetPathValue("id", alice.ID)
	rr := httptest.NewRecorder()
	env.profiles.HandleSetAvailability(rr, availReq)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	favReq := authedRequest(http.MethodPost, "/api/users/x/favorites/y", alice.ID, nil)
	favReq.SetPathValue("id", alice.ID)
	favReq.SetPathValue("gameId", game.ID)
	rr = httptest.NewRecorder()
	env.profiles.HandleAddFavorite(rr, favReq)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// The standalone availability route returns just the slots.
	availGet := httptest.NewRequest(http.MethodGet, "/api/users/x/availability", nil)
	availGet.SetPathValue("id", alice.ID)
	rr = httptest.NewRecorder()
	env.profiles.HandleGetAvailability(rr, availGet)
	require.Equal(t, http.StatusOK, rr.Code)
	var avail map[string][]map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&avail))
	assert.Len(t, avail["slots"], 1)

	// The public profile view includes both.
	getReq := httptest.NewRequest(http.MethodGet, "/api/users/x", nil)
	getReq.SetPathValue("id", alice.ID)
	rr = httptest.NewRecorder()
	env.profiles.HandleGet(rr, getReq)

	require.Equal(t, http.StatusOK, rr.Code)
	var profile map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
	assert.Len(t, profile["favoriteGames"], 1)
	assert.Len(t, profile["availability"], 1)
	assert.NotContains(t, profile, "passwordHash")
}

func TestProfileHandler_HostedAndAttending(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice")
	bob := env.registerUser(t, "bob")
	game := env.seedGame(t, "Catan")

	// alice hosts one session; bob hosts one that alice joins.
	req := authedRequest(http.MethodPost, "/api/sessions", alice.ID, createSessionBody(game.ID, 4))
	rr := httptest.NewRecorder()
	env.sessions.HandleCreate(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req = authedRequest(http.MethodPost, "/api/sessions", bob.ID, createSessionBody(game.ID, 4))
	rr = httptest.NewRecorder()
	env.sessions.HandleCreate(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	var bobSession map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&bobSession))

	joinReq := authedRequest(http.MethodPost, "/api/sessions/x/join", alice.ID, nil)
	joinReq.SetPathValue("id", bobSession["id"].(string))
	rr = httptest.NewRecorder()
	env.sessions.HandleJoin(rr, joinReq)
	require.Equal(t, http.StatusOK, rr.Code)

	hostedReq := httptest.NewRequest(http.MethodGet, "/api/users/x/sessions/hosted", nil)
	hostedReq.SetPathValue("id", alice.ID)
	rr = httptest.NewRecorder()
	env.profiles.HandleHostedSessions(rr, hostedReq)
	require.Equal(t, http.StatusOK, rr.Code)
	var hosted []map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&hosted))
	assert.Len(t, hosted, 1)

	attendingReq := httptest.NewRequest(http.MethodGet, "/api/users/x/sessions/attending", nil)
	attendingReq.SetPathValue("id", alice.ID)
	rr = httptest.NewRecorder()
	env.profiles.HandleAttendingSessions(rr, attendingReq)
	require.Equal(t, http.StatusOK, rr.Code)
	var attending []map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&attending))
	require.Len(t, attending, 1)
	assert.Equal(t, bobSession["id"], attending[0]["id"])
}
