package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remna-tg-admin/internal/config"
	"remna-tg-admin/internal/constants"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.PanelConfig{URL: server.URL, APIToken: "test-token"}, testLogger())
}

func TestDoSendsBearerAuth(t *testing.T) {
	var gotAuth, gotAccept string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"response":{}}`))
	})

	_, err := client.Do(context.Background(), http.MethodGet, "/api/users", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestDoNormalizesOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantBody   string
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "success passes body through",
			status:   http.StatusOK,
			body:     `{"response":{"ok":true}}`,
			wantBody: `{"response":{"ok":true}}`,
		},
		{
			name:     "no content becomes empty object",
			status:   http.StatusNoContent,
			wantBody: `{}`,
		},
		{
			name:    "not found is the sentinel",
			status:  http.StatusNotFound,
			body:    `{"message":"no such user"}`,
			wantErr: ErrNotFound,
		},
		{
			name:       "server error uses message detail",
			status:     http.StatusInternalServerError,
			body:       `{"message":"database exploded"}`,
			wantErrMsg: "HTTP Error 500: database exploded",
		},
		{
			name:       "server error without message uses raw body",
			status:     http.StatusBadRequest,
			body:       `not json at all`,
			wantErrMsg: "HTTP Error 400: not json at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			body, err := client.Do(context.Background(), http.MethodGet, "/api/test", nil, nil)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrMsg, err.Error())
				var httpErr *HTTPError
				assert.ErrorAs(t, err, &httpErr)
			default:
				require.NoError(t, err)
				assert.JSONEq(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestDoTransportFailure(t *testing.T) {
	client := NewClient(config.PanelConfig{URL: "http://127.0.0.1:1", APIToken: "x"}, testLogger())

	_, err := client.Do(context.Background(), http.MethodGet, "/api/users", nil, nil)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "Unknown error", err.Error())
}

func usersPageJSON(start, count int) string {
	users := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, map[string]any{
			"uuid":     fmt.Sprintf("uuid-%d", start+i),
			"username": fmt.Sprintf("user%d", start+i),
		})
	}
	page, _ := json.Marshal(map[string]any{"response": map[string]any{"users": users}})
	return string(page)
}

func TestGetAllUsersWalksPages(t *testing.T) {
	pageSize := constants.UsersPageSize
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		switch start {
		case "0":
			w.Write([]byte(usersPageJSON(0, pageSize)))
		case fmt.Sprint(pageSize):
			w.Write([]byte(usersPageJSON(pageSize, 3)))
		default:
			t.Errorf("unexpected page start %q", start)
		}
	})

	users, err := client.GetAllUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, pageSize+3)
	assert.Equal(t, "user0", users[0].Username)
	assert.Equal(t, fmt.Sprintf("user%d", pageSize+2), users[len(users)-1].Username)
}

func TestGetAllUsersStopsOnEmptyFirstPage(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(usersPageJSON(0, 0)))
	})

	users, err := client.GetAllUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 1, calls)
}

func TestGetAllUsersSurfacesPageError(t *testing.T) {
	pageSize := constants.UsersPageSize
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "0" {
			w.Write([]byte(usersPageJSON(0, pageSize)))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"page broke"}`))
	})

	users, err := client.GetAllUsers(context.Background())
	require.Error(t, err)
	assert.Nil(t, users, "partial accumulation must be discarded")
}

func TestGetUserByUsername(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/by-username/alice", r.URL.Path)
		w.Write([]byte(`{"response":{"uuid":"u-1","username":"alice","status":"ACTIVE"}}`))
	})

	user, err := client.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UUID)
	assert.True(t, user.IsActive())
}

func TestUpdateUserSendsPatch(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"response":{}}`))
	})

	limit := int64(1024)
	err := client.UpdateUser(context.Background(), UserPatch{UUID: "u-1", TrafficLimitBytes: &limit})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/users", gotPath)
	assert.Equal(t, "u-1", gotBody["uuid"])
	assert.EqualValues(t, 1024, gotBody["trafficLimitBytes"])
	assert.NotContains(t, gotBody, "expireAt", "unset fields must stay out of the patch")
}

func TestCreateUserSendsFullPayload(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"response":{"uuid":"u-new","username":"alice"}}`))
	})

	user, err := client.CreateUser(context.Background(), CreateUserRequest{
		Username:             "alice",
		Status:               "ACTIVE",
		TrojanPassword:       "trojanpass",
		VlessUUID:            "11111111-2222-3333-4444-555555555555",
		SsPassword:           "sspassword",
		TrafficLimitBytes:    10 * constants.BytesInGB,
		TrafficLimitStrategy: "NO_RESET",
		ExpireAt:             "2026-07-01T18:30:00.000Z",
		Tag:                  "ABC12345",
		Email:                "abcde@placeholder.com",
		ActiveInternalSquads: []string{"s-1", "s-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "u-new", user.UUID)

	assert.Equal(t, "ACTIVE", gotBody["status"])
	assert.Equal(t, "NO_RESET", gotBody["trafficLimitStrategy"])
	assert.EqualValues(t, 0, gotBody["telegramId"])
	assert.Equal(t, "", gotBody["description"])
	assert.Equal(t, []any{"s-1", "s-2"}, gotBody["activeInternalSquads"])
}

func TestUserAction(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.UserAction(context.Background(), "u-9", ActionResetTraffic)
	require.NoError(t, err)
	assert.Equal(t, "/api/users/u-9/actions/reset-traffic", gotPath)
}

func TestEncryptHappLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "https://sub.example/abc", body["linkToEncrypt"])
		w.Write([]byte(`{"response":{"encryptedLink":"happ://crypt"}}`))
	})

	link, err := client.EncryptHappLink(context.Background(), "https://sub.example/abc")
	require.NoError(t, err)
	assert.Equal(t, "happ://crypt", link)
}
