package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizgame/internal/models"
)

func TestFetchQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/questions/", r.URL.Path)
		w.Write([]byte(`{"questions":[{"id":1,"question":"2 + 2?","options":["3","4"],"answer":"4"}]}`))
	}))
	defer srv.Close()

	qs, err := New(srv.URL+"/", nil).FetchQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "2 + 2?", qs[0].Text)
	assert.Equal(t, "4", qs[0].Answer)
}

func TestFetchQuestions_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).FetchQuestions(context.Background())
	require.Error(t, err)
}

func TestLogin_SendsCredentialsAndDecodesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req models.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		w.Write([]byte(`{"token":"tok","user":{"username":"alice"}}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, nil).Login(context.Background(), "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestErrorShapes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"structured", http.StatusUnauthorized, `{"error":{"code":"UNAUTHORIZED","message":"Invalid username or password"}}`, "Invalid username or password"},
		{"flat", http.StatusBadRequest, `{"error":"Username already exists"}`, "Username already exists"},
		{"fields", http.StatusBadRequest, `{"error":{"code":"VALIDATION_ERROR","message":"Validation failed","fields":{"username":"required","password":"too short"}}}`, "Validation failed (password: too short; username: required)"},
		{"empty", http.StatusBadGateway, ``, "request failed with status 502"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).Login(context.Background(), "a", "b")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.wantMsg, apiErr.Error())
			assert.Equal(t, tc.status == http.StatusUnauthorized, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestProfileAndLogout_SendBearerToken(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		if r.URL.Path == "/api/profile/" {
			w.Write([]byte(`{"username":"alice","profile":{"total_games":3}}`))
			return
		}
		w.Write([]byte(`{"message":"Logged out successfully"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	user, err := c.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 3, user.Profile.TotalGames)
	require.NoError(t, c.Logout(context.Background(), "tok"))
	assert.Equal(t, []string{"Bearer tok", "Bearer tok"}, seen)
}

func TestScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			w.Write([]byte(`{"scores":[{"player_name":"alice","score":4}]}`))
			return
		}
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"player_name":"Guest","score":2}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	scores, err := c.TopScores(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "alice", scores[0].PlayerName)

	score, err := c.SubmitScore(context.Background(), "", models.SubmitScoreRequest{Score: 2})
	require.NoError(t, err)
	assert.Equal(t, "Guest", score.PlayerName)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL, nil).FetchQuestions(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
