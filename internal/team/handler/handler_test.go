package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/auth"
	"github.com/hacktopia/platform/internal/notify"
	"github.com/hacktopia/platform/internal/response"
	teamModel "github.com/hacktopia/platform/internal/team/model"
	"github.com/hacktopia/platform/internal/team/service"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) CreateTeam(ctx context.Context, req *teamModel.CreateTeamRequest) (*teamModel.Team, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*teamModel.Team), args.Error(1)
}

func (m *mockService) Join(ctx context.Context, req *teamModel.JoinTeamRequest) (*teamModel.JoinRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*teamModel.JoinRequest), args.Error(1)
}

func (m *mockService) Accept(ctx context.Context, req *teamModel.DecisionRequest) (*teamModel.AcceptResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*teamModel.AcceptResult), args.Error(1)
}

func (m *mockService) Reject(ctx context.Context, req *teamModel.DecisionRequest) (*teamModel.JoinRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*teamModel.JoinRequest), args.Error(1)
}

func (m *mockService) TeamNameAvailable(ctx context.Context, teamName string) (bool, error) {
	args := m.Called(ctx, teamName)
	return args.Bool(0), args.Error(1)
}

func (m *mockService) ListTeams(ctx context.Context) ([]teamModel.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]teamModel.Team), args.Error(1)
}

func (m *mockService) MyTeam(ctx context.Context, userID string) (*teamModel.MyTeam, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*teamModel.MyTeam), args.Error(1)
}

func (m *mockService) Details(ctx context.Context, teamID string) (*teamModel.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*teamModel.Team), args.Error(1)
}

var _ service.Service = (*mockService)(nil)

// recordingNotifier keeps published events in memory.
type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event notify.Event) {
	n.events = append(n.events, event)
}

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			auth.SetClaims(c, &auth.Claims{Identity: auth.Identity{UserID: userID}})
		}
		c.Next()
	}
}

func setupRouter(svc service.Service, notifier Notifier, strict bool, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := New(svc, notifier, strict, zap.NewNop().Sugar())

	team := router.Group("/team", withUser(userID))
	team.POST("/create", h.CreateTeam)
	team.POST("/join", h.Join)
	team.POST("/accept", h.Accept)
	team.POST("/reject", h.Reject)
	team.GET("/check-team", h.CheckTeam)
	team.GET("/list", h.ListTeams)
	team.GET("/my-team", h.MyTeam)
	team.GET("/details", h.Details)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestHandler_CreateTeam(t *testing.T) {
	body := gin.H{"teamName": "Alpha", "teamCaptain": "alice", "teamMotto": "ship it", "teamCountry": "NL"}

	t.Run("success publishes newTeamAdded", func(t *testing.T) {
		svc := new(mockService)
		notifier := &recordingNotifier{}
		router := setupRouter(svc, notifier, false, "")

		team := &teamModel.Team{TeamID: "t1", TeamName: "Alpha", TeamCaptain: "alice"}
		svc.On("CreateTeam", mock.Anything, &teamModel.CreateTeamRequest{
			TeamName: "Alpha", TeamCaptain: "alice", TeamMotto: "ship it", TeamCountry: "NL",
		}).Return(team, nil)

		w, out := doJSON(t, router, http.MethodPost, "/team/create", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, out["success"])
		assert.Equal(t, CodeTeamCreated, out["code"])
		assert.Equal(t, "t1", out["team"].(map[string]any)["teamId"])

		require.Len(t, notifier.events, 1)
		assert.Equal(t, notify.EventTeamCreated, notifier.events[0].Name)
		assert.Equal(t, gin.H{"teamId": "t1", "teamName": "Alpha"}, notifier.events[0].Payload)
		svc.AssertExpectations(t)
	})

	t.Run("missing field", func(t *testing.T) {
		svc := new(mockService)
		notifier := &recordingNotifier{}
		router := setupRouter(svc, notifier, false, "")

		w, out := doJSON(t, router, http.MethodPost, "/team/create", gin.H{"teamName": "Alpha"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.CodeAllFieldsRequired, out["code"])
		assert.Empty(t, notifier.events)
		svc.AssertNotCalled(t, "CreateTeam", mock.Anything, mock.Anything)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"captain has team", teamModel.ErrCaptainHasTeam, http.StatusBadRequest, CodeTeamNotCreated, "Team Captain has already created a team"},
		{"name taken", teamModel.ErrTeamNameTaken, http.StatusBadRequest, CodeTeamNameNotAvailable, "Team already exists"},
		{"captain not found", teamModel.ErrCaptainNotFound, http.StatusBadRequest, CodeTeamNotCreated, "Team Captain not found"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, response.CodeInternalError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			notifier := &recordingNotifier{}
			router := setupRouter(svc, notifier, false, "")
			svc.On("CreateTeam", mock.Anything, mock.Anything).Return(nil, tt.err)

			w, out := doJSON(t, router, http.MethodPost, "/team/create", body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.wantCode, out["code"])
			assert.Equal(t, tt.wantMsg, out["message"])
			assert.Empty(t, notifier.events)
		})
	}
}

func TestHandler_Join(t *testing.T) {
	tests := []struct {
		name       string
		strict     bool
		tokenUser  string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"created", false, "", nil, http.StatusOK, CodeJoinRequestCreated},
		{"exists", false, "", teamModel.ErrJoinRequestExists, http.StatusBadRequest, CodeJoinRequestExists},
		{"team missing", false, "", teamModel.ErrTeamNotFound, http.StatusBadRequest, CodeTeamNotFound},
		{"user missing", false, "", teamModel.ErrUserNotFound, http.StatusBadRequest, CodeTeamNotFound},
		{"strict matching token", true, "u-bob", nil, http.StatusOK, CodeJoinRequestCreated},
		{"strict other user", true, "u-mallory", nil, http.StatusForbidden, response.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			router := setupRouter(svc, &recordingNotifier{}, tt.strict, tt.tokenUser)

			req := &teamModel.JoinTeamRequest{TeamID: "t1", UserID: "u-bob"}
			if tt.err != nil {
				svc.On("Join", mock.Anything, req).Return(nil, tt.err)
			} else {
				svc.On("Join", mock.Anything, req).Return(&teamModel.JoinRequest{
					ID: "r1", TeamID: "t1", UserID: "u-bob", Status: teamModel.StatusPending,
				}, nil)
			}

			w, out := doJSON(t, router, http.MethodPost, "/team/join", gin.H{"teamId": "t1", "userId": "u-bob"})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, out["code"])
			if tt.wantCode == CodeJoinRequestCreated {
				assert.Equal(t, "pending", out["joinRequest"].(map[string]any)["status"])
			}
			if tt.wantStatus == http.StatusForbidden {
				svc.AssertNotCalled(t, "Join", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandler_Accept(t *testing.T) {
	body := gin.H{"requestId": "r1", "teamCaptainUserId": "u-alice"}
	req := &teamModel.DecisionRequest{RequestID: "r1", TeamCaptainUserID: "u-alice"}

	t.Run("accepted publishes teamJoined", func(t *testing.T) {
		svc := new(mockService)
		notifier := &recordingNotifier{}
		router := setupRouter(svc, notifier, false, "")

		member := teamModel.NewMember("t1", "u-bob", teamModel.RoleMember)
		svc.On("Accept", mock.Anything, req).Return(&teamModel.AcceptResult{Member: member, TeamName: "Alpha"}, nil)

		w, out := doJSON(t, router, http.MethodPost, "/team/accept", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, CodeJoinRequestAccepted, out["code"])
		assert.Equal(t, "Alpha", out["teamName"])
		teamMember := out["teamMember"].(map[string]any)
		assert.Equal(t, "member", teamMember["userRole"])
		assert.Equal(t, float64(0), teamMember["userPoints"])
		assert.Equal(t, []any{}, teamMember["userChallengesAnswered"])

		require.Len(t, notifier.events, 1)
		assert.Equal(t, notify.EventTeamJoined, notifier.events[0].Name)
		assert.Equal(t, gin.H{"teamId": "t1", "teamName": "Alpha", "userId": "u-bob"}, notifier.events[0].Payload)
	})

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{"not captain", teamModel.ErrNotCaptain, response.CodeUnauthorized, "Only the team captain can accept join requests"},
		{"not found", teamModel.ErrJoinRequestNotFound, CodeJoinRequestNotFound, "Join request not found"},
		{"already member", teamModel.ErrMemberExists, CodeTeamNotCreated, "Error. Team member not created!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			notifier := &recordingNotifier{}
			router := setupRouter(svc, notifier, false, "")
			svc.On("Accept", mock.Anything, req).Return(nil, tt.err)

			w, out := doJSON(t, router, http.MethodPost, "/team/accept", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, out["code"])
			assert.Equal(t, tt.wantMsg, out["message"])
			assert.Empty(t, notifier.events)
		})
	}

	t.Run("strict mode checks acting user", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, true, "u-carol")

		w, out := doJSON(t, router, http.MethodPost, "/team/accept", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, response.CodeForbidden, out["code"])
		svc.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
	})
}

func TestHandler_Reject(t *testing.T) {
	body := gin.H{"requestId": "r1", "teamCaptainUserId": "u-alice"}
	req := &teamModel.DecisionRequest{RequestID: "r1", TeamCaptainUserID: "u-alice"}

	t.Run("rejected", func(t *testing.T) {
		svc := new(mockService)
		notifier := &recordingNotifier{}
		router := setupRouter(svc, notifier, false, "")
		svc.On("Reject", mock.Anything, req).Return(&teamModel.JoinRequest{
			ID: "r1", TeamID: "t1", UserID: "u-bob", Status: teamModel.StatusRejected,
		}, nil)

		w, out := doJSON(t, router, http.MethodPost, "/team/reject", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, CodeJoinRequestRejected, out["code"])
		assert.Equal(t, "rejected", out["joinRequest"].(map[string]any)["status"])
		assert.Empty(t, notifier.events)
	})

	t.Run("not captain", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, false, "")
		svc.On("Reject", mock.Anything, req).Return(nil, teamModel.ErrNotCaptain)

		w, out := doJSON(t, router, http.MethodPost, "/team/reject", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.CodeUnauthorized, out["code"])
		assert.Equal(t, "Only the team captain can reject join requests", out["message"])
	})

	t.Run("missing body", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, false, "")

		w, out := doJSON(t, router, http.MethodPost, "/team/reject", gin.H{"requestId": "r1"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.CodeAllFieldsRequired, out["code"])
	})
}

func TestHandler_CheckTeam(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		wantCode  string
		wantMsg   string
	}{
		{"available", true, CodeTeamNameAvailable, "Team available"},
		{"taken", false, CodeTeamNameNotAvailable, "Team already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			router := setupRouter(svc, &recordingNotifier{}, false, "")
			svc.On("TeamNameAvailable", mock.Anything, "Alpha").Return(tt.available, nil)

			w, out := doJSON(t, router, http.MethodGet, "/team/check-team?teamName=Alpha", nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, true, out["success"])
			assert.Equal(t, tt.wantCode, out["code"])
			assert.Equal(t, tt.wantMsg, out["message"])
		})
	}

	t.Run("missing name", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, false, "")
		svc.On("TeamNameAvailable", mock.Anything, "").Return(false, teamModel.ErrMissingFields)

		w, out := doJSON(t, router, http.MethodGet, "/team/check-team", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, response.CodeAllFieldsRequired, out["code"])
	})
}

func TestHandler_Queries(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, false, "")
		svc.On("ListTeams", mock.Anything).Return([]teamModel.Team{{TeamID: "t1"}, {TeamID: "t2"}}, nil)

		w, out := doJSON(t, router, http.MethodGet, "/team/list", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, CodeTeamListed, out["code"])
		assert.Len(t, out["teams"], 2)
	})

	t.Run("my team", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, false, "")
		svc.On("MyTeam", mock.Anything, "u-alice").Return(&teamModel.MyTeam{
			Team:     &teamModel.Team{TeamID: "t1"},
			Requests: []teamModel.JoinRequest{{ID: "r1", Status: teamModel.StatusPending}},
		}, nil)

		w, out := doJSON(t, router, http.MethodGet, "/team/my-team?userId=u-alice", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, CodeTeamDetailsFetched, out["code"])
		assert.Len(t, out["teamRequests"], 1)
	})

	t.Run("my team missing", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, false, "")
		svc.On("MyTeam", mock.Anything, "u-bob").Return(nil, teamModel.ErrTeamNotFound)

		w, out := doJSON(t, router, http.MethodGet, "/team/my-team?userId=u-bob", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeTeamNotFound, out["code"])
		assert.Equal(t, "Error. Team not found!", out["message"])
	})

	t.Run("my team strict", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, true, "u-bob")

		w, _ := doJSON(t, router, http.MethodGet, "/team/my-team?userId=u-alice", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertNotCalled(t, "MyTeam", mock.Anything, mock.Anything)
	})

	t.Run("details", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, false, "")
		svc.On("Details", mock.Anything, "t1").Return(&teamModel.Team{TeamID: "t1", TeamName: "Alpha"}, nil)

		w, out := doJSON(t, router, http.MethodGet, "/team/details?teamId=t1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, CodeTeamDetailsFetched, out["code"])
		assert.Equal(t, "Alpha", out["team"].(map[string]any)["teamName"])
	})

	t.Run("details missing", func(t *testing.T) {
		svc := new(mockService)
		router := setupRouter(svc, &recordingNotifier{}, false, "")
		svc.On("Details", mock.Anything, "nope").Return(nil, teamModel.ErrTeamNotFound)

		w, out := doJSON(t, router, http.MethodGet, "/team/details?teamId=nope", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeTeamNotFound, out["code"])
	})
}
