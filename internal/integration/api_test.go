package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"mockforge/internal/audit"
	"mockforge/internal/auth"
	authhandler "mockforge/internal/auth/handler"
	"mockforge/internal/fixture"
	issuehandler "mockforge/internal/issue/handler"
	orghandler "mockforge/internal/organization/handler"
	prhandler "mockforge/internal/pullrequest/handler"
	repohandler "mockforge/internal/repo/handler"
	runhandler "mockforge/internal/run/handler"
	searchhandler "mockforge/internal/search/handler"
	"mockforge/internal/security"
	"mockforge/internal/server"
	"mockforge/internal/server/middleware"
	teamhandler "mockforge/internal/team/handler"
	userhandler "mockforge/internal/user/handler"
)

type apiResponse struct {
	Success          bool                `json:"success"`
	Data             json.RawMessage     `json:"data"`
	Error            string              `json:"error"`
	ValidationErrors map[string][]string `json:"validation_errors"`
	Retryable        bool                `json:"retryable"`
}

type APISuite struct {
	suite.Suite

	srv   *httptest.Server
	store *fixture.Store

	aliceToken string
	bobToken   string
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	store := fixture.NewStore(5 * time.Minute)
	hasher := security.NewHasher(4)
	require.NoError(s.T(), fixture.Seed(s.T().Context(), store, hasher))

	tokens := security.NewTokenProvider(
		[]byte("integration-test-secret"), "mockforge", "mockforge-api",
		time.Hour, 5*time.Minute,
	)
	auditor := audit.NewLogger(store.AuditLogs, middleware.ClientIP)
	authSvc := auth.NewService(
		store.Users, store.Identities, store.Sessions, store.Devices, store.MFA,
		store.Pending, tokens, hasher, auditor,
		"mockforge", "https://sso.example.com",
	)

	handler := server.New(server.Deps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:   tokens,
		Sessions: store.Sessions,

		Auth:  authhandler.New(authSvc),
		Users: userhandler.New(store.Users),
		Repos: repohandler.New(store.Repos, store.Users,
			store.Issues.HasForRepo, store.Runs.HasForRepo),
		Issues:       issuehandler.New(store.Issues, store.Repos, store.Users),
		PullRequests: prhandler.New(store.PullRequests, store.Repos, store.Users),
		Organizations: orghandler.New(
			store.Orgs, store.Members, store.Teams, store.Users,
			store.Repos, store.Issues, store.Runs, store.AuditLogs, auditor,
		),
		Teams:  teamhandler.New(store.Teams, store.Orgs, store.Members, auditor),
		Runs:   runhandler.New(store.Runs, store.Repos),
		Search: searchhandler.New(store.Repos, store.Issues, store.Users),
	})

	s.store = store
	s.srv = httptest.NewServer(handler)
	s.aliceToken = s.loginWithMFA("alice@example.com")
	s.bobToken = s.loginPlain("bob@example.com")
}

func (s *APISuite) TearDownTest() {
	s.srv.Close()
}

func (s *APISuite) do(method, path, token string, body any, headers map[string]string) (*http.Response, apiResponse) {
	s.T().Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	require.NoError(s.T(), err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.srv.Client().Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	var out apiResponse
	require.NoError(s.T(), json.Unmarshal(raw, &out), "body: %s", raw)
	return resp, out
}

func (s *APISuite) decodeData(out apiResponse, dst any) {
	s.T().Helper()
	require.NoError(s.T(), json.Unmarshal(out.Data, dst))
}

// loginWithMFA walks the full password plus TOTP flow and returns an
// access token.
func (s *APISuite) loginWithMFA(email string) string {
	s.T().Helper()
	resp, out := s.do(http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": email, "password": fixture.SeedPassword}, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var step struct {
		RequiresMFA bool   `json:"requiresMFA"`
		TempToken   string `json:"tempToken"`
	}
	s.decodeData(out, &step)
	require.True(s.T(), step.RequiresMFA)
	require.NotEmpty(s.T(), step.TempToken)

	code, err := totp.GenerateCode(fixture.SeedTOTPSecret, time.Now())
	require.NoError(s.T(), err)
	resp, out = s.do(http.MethodPost, "/api/v1/auth/mfa/verify", "",
		map[string]any{"tempToken": step.TempToken, "code": code}, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var done struct {
		AccessToken string `json:"access_token"`
	}
	s.decodeData(out, &done)
	require.NotEmpty(s.T(), done.AccessToken)
	return done.AccessToken
}

func (s *APISuite) loginPlain(email string) string {
	s.T().Helper()
	resp, out := s.do(http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": email, "password": fixture.SeedPassword}, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var done struct {
		AccessToken string `json:"access_token"`
	}
	s.decodeData(out, &done)
	require.NotEmpty(s.T(), done.AccessToken)
	return done.AccessToken
}

func (s *APISuite) TestCurrentUser() {
	resp, out := s.do(http.MethodGet, "/api/v1/user", s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var data struct {
		User struct {
			Username   string `json:"username"`
			MFAEnabled bool   `json:"mfa_enabled"`
		} `json:"user"`
	}
	s.decodeData(out, &data)
	s.Equal("alice", data.User.Username)
	s.True(data.User.MFAEnabled)
}

func (s *APISuite) TestMissingTokenRejected() {
	resp, out := s.do(http.MethodGet, "/api/v1/user", "", nil, nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.False(out.Success)
}

func (s *APISuite) TestSearchRepositoriesByLanguage() {
	resp, out := s.do(http.MethodGet,
		"/api/v1/search?type=repositories&language=JavaScript", s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		Repositories []struct {
			FullName string `json:"full_name"`
		} `json:"repositories"`
		TotalCount int `json:"total_count"`
	}
	s.decodeData(out, &data)
	s.Equal(1, data.TotalCount)
	s.Require().Len(data.Repositories, 1)
	s.Equal("acme/webapp", data.Repositories[0].FullName)
}

func (s *APISuite) TestRepositoryPaginationKeepsTotal() {
	resp, out := s.do(http.MethodGet,
		"/api/v1/repositories?per_page=2&page=2", s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		Repositories []json.RawMessage `json:"repositories"`
		TotalCount   int               `json:"total_count"`
	}
	s.decodeData(out, &data)
	s.Equal(3, data.TotalCount)
	s.Len(data.Repositories, 1)
}

func (s *APISuite) TestIssueCloseAndReopen() {
	// Issue #2 on acme/webapp is seeded open.
	resp, out := s.do(http.MethodPatch,
		"/api/v1/repositories/acme/webapp/issues/2", s.aliceToken,
		map[string]string{"state": "closed"}, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		Issue struct {
			State    string  `json:"state"`
			ClosedAt *string `json:"closed_at"`
		} `json:"issue"`
	}
	s.decodeData(out, &data)
	s.Equal("closed", data.Issue.State)
	s.NotNil(data.Issue.ClosedAt)

	resp, out = s.do(http.MethodPatch,
		"/api/v1/repositories/acme/webapp/issues/2", s.aliceToken,
		map[string]string{"state": "open"}, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	// Decode into a fresh struct: closed_at is omitted when cleared.
	var reopened struct {
		Issue struct {
			State    string  `json:"state"`
			ClosedAt *string `json:"closed_at"`
		} `json:"issue"`
	}
	s.decodeData(out, &reopened)
	s.Equal("open", reopened.Issue.State)
	s.Nil(reopened.Issue.ClosedAt)
}

func (s *APISuite) TestIssueLabelFilterMatchesOnAnySharedLabel() {
	// Webapp issues carry [bug frontend], [enhancement], [bug ci]. An issue
	// qualifies when it shares at least one label with the filter set.
	type listData struct {
		Issues []struct {
			Number int      `json:"number"`
			Labels []string `json:"labels"`
		} `json:"issues"`
		TotalCount int `json:"total_count"`
	}

	resp, out := s.do(http.MethodGet,
		"/api/v1/repositories/acme/webapp/issues?labels=enhancement,nonexistent",
		s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var data listData
	s.decodeData(out, &data)
	s.Equal(1, data.TotalCount)
	s.Require().Len(data.Issues, 1)
	s.Equal([]string{"enhancement"}, data.Issues[0].Labels)

	resp, out = s.do(http.MethodGet,
		"/api/v1/repositories/acme/webapp/issues?labels=bug,enhancement",
		s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var both listData
	s.decodeData(out, &both)
	s.Equal(3, both.TotalCount)

	// Same semantics on the cross-repo search.
	resp, out = s.do(http.MethodGet,
		"/api/v1/search?type=issues&labels=enhancement,nonexistent",
		s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var search struct {
		Issues []struct {
			Labels []string `json:"labels"`
		} `json:"issues"`
		TotalCount int `json:"total_count"`
	}
	s.decodeData(out, &search)
	s.Equal(1, search.TotalCount)
	s.Require().Len(search.Issues, 1)
	s.Equal([]string{"enhancement"}, search.Issues[0].Labels)
}

func (s *APISuite) TestMergeApprovedPullRequest() {
	resp, out := s.do(http.MethodPost,
		"/api/v1/repositories/acme/webapp/pulls/1/merge", s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		PullRequest struct {
			Merged bool   `json:"merged"`
			State  string `json:"state"`
		} `json:"pull_request"`
	}
	s.decodeData(out, &data)
	s.True(data.PullRequest.Merged)
	s.Equal("closed", data.PullRequest.State)

	// Merging again conflicts.
	resp, _ = s.do(http.MethodPost,
		"/api/v1/repositories/acme/webapp/pulls/1/merge", s.aliceToken, nil, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)

	// The draft cannot be merged at all.
	resp, _ = s.do(http.MethodPost,
		"/api/v1/repositories/acme/webapp/pulls/2/merge", s.aliceToken, nil, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *APISuite) TestTeamCycleRejected() {
	resp, out := s.do(http.MethodPatch,
		"/api/v1/organizations/acme/teams/engineering", s.aliceToken,
		map[string]any{"parent": "backend"}, nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.False(out.Success)
	s.Contains(out.ValidationErrors, "parent")
}

func (s *APISuite) TestWorkflowRunCancelAndRerun() {
	// run-2 is in progress; cancelling completes it as cancelled.
	resp, out := s.do(http.MethodPost,
		"/api/v1/repos/acme/webapp/actions/runs/run-2/cancel", s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		Run struct {
			Status     string `json:"status"`
			Conclusion string `json:"conclusion"`
		} `json:"workflow_run"`
	}
	s.decodeData(out, &data)
	s.Equal("completed", data.Run.Status)
	s.Equal("cancelled", data.Run.Conclusion)

	// Cancelling a finished run conflicts; rerunning it resets to queued.
	resp, _ = s.do(http.MethodPost,
		"/api/v1/repos/acme/webapp/actions/runs/run-2/cancel", s.aliceToken, nil, nil)
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, out = s.do(http.MethodPost,
		"/api/v1/repos/acme/webapp/actions/runs/run-2/rerun", s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var rerun struct {
		Run struct {
			Status     string `json:"status"`
			Conclusion string `json:"conclusion"`
		} `json:"workflow_run"`
	}
	s.decodeData(out, &rerun)
	s.Equal("queued", rerun.Run.Status)
	s.Empty(rerun.Run.Conclusion)
}

func (s *APISuite) TestWorkflowRunLogsOffset() {
	resp, out := s.do(http.MethodGet,
		"/api/v1/repos/acme/webapp/actions/runs/run-1/logs?offset=3", s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		Lines      []string `json:"lines"`
		NextOffset int      `json:"next_offset"`
		InProgress bool     `json:"in_progress"`
	}
	s.decodeData(out, &data)
	s.Len(data.Lines, 2)
	s.Equal(5, data.NextOffset)
	s.False(data.InProgress)
}

func (s *APISuite) TestSimulatedFault() {
	resp, out := s.do(http.MethodGet, "/api/v1/repositories", s.aliceToken, nil,
		map[string]string{"X-Simulate-Fault": "1"})
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	s.False(out.Success)
	s.True(out.Retryable)
}

func (s *APISuite) TestLegacyAuthAlias() {
	resp, out := s.do(http.MethodGet, "/api/auth/sessions", s.bobToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		Sessions []struct {
			This bool `json:"this_session"`
		} `json:"sessions"`
		TotalCount int `json:"total_count"`
	}
	s.decodeData(out, &data)
	s.Equal(1, data.TotalCount)
	s.Require().Len(data.Sessions, 1)
	s.True(data.Sessions[0].This)
}

func (s *APISuite) TestUnknownRouteEnvelope() {
	resp, out := s.do(http.MethodGet, "/api/v1/nope", s.aliceToken, nil, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.False(out.Success)
	s.Equal("route not found", out.Error)
}

func (s *APISuite) TestOrgAnalytics() {
	resp, out := s.do(http.MethodGet,
		"/api/v1/organizations/acme/analytics", s.aliceToken, nil, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var data struct {
		Members             int     `json:"members"`
		Teams               int     `json:"teams"`
		Repositories        int     `json:"repositories"`
		IssuesOpen          int     `json:"issues_open"`
		IssuesClosed        int     `json:"issues_closed"`
		WorkflowSuccessRate float64 `json:"workflow_success_rate"`
	}
	s.decodeData(out, &data)
	s.Equal(3, data.Members)
	s.Equal(3, data.Teams)
	s.Equal(2, data.Repositories)
	s.Equal(3, data.IssuesOpen)
	s.Equal(1, data.IssuesClosed)
	s.InDelta(0.5, data.WorkflowSuccessRate, 0.001)
}
