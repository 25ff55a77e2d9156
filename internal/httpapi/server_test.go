package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/planning"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/service"
	"github.com/alexanderramin/planpilot/internal/testutil"
)

const testSecret = "test-secret"

const twoTaskPlan = `Here you go:
[
  {"title": "Kickoff", "description": "Agree on scope", "priority": "high", "daysFromNow": 1},
  {"title": "Retro", "description": "Look back", "priority": "low", "daysFromNow": 3}
]`

type apiEnv struct {
	server *Server
	llm    *testutil.FakeLLMClient
	users  *repository.SQLUserRepo
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAPI(t *testing.T, secret string) *apiEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	projectRepo := repository.NewSQLProjectRepo(database, db.DialectSQLite)
	taskRepo := repository.NewSQLTaskRepo(database, db.DialectSQLite)
	userRepo := repository.NewSQLUserRepo(database, db.DialectSQLite)
	uow := testutil.NewTestUoW(database)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := &testutil.FakeLLMClient{Text: twoTaskPlan}

	projects := service.NewProjectService(projectRepo, taskRepo, uow, db.DialectSQLite)
	tasks := service.NewTaskService(taskRepo, projectRepo)
	plans := service.NewPlanService(
		planning.NewGenerator(fake),
		planning.NewCommitter(taskRepo, planning.WithLogger(quiet)),
		planning.NewDescriber(fake),
		projects, projectRepo, taskRepo,
	)
	users := service.NewUserService(userRepo)

	srv := NewServer(Deps{Projects: projects, Tasks: tasks, Plans: plans, Users: users},
		Options{JWTSecret: secret, Logger: quiet})
	return &apiEnv{server: srv, llm: fake, users: userRepo}
}

func token(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	tok, err := IssueToken([]byte(testSecret), &domain.User{ID: id, Name: id, Email: id + "@example.com", Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *apiEnv) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createProject(t *testing.T, e *apiEnv, tok string, body map[string]any) projectDTO {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/projects", tok, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode[struct {
		Project projectDTO `json:"project"`
	}](t, w)
	return out.Project
}

func TestHealth(t *testing.T) {
	e := setupAPI(t, testSecret)
	w := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","ai":true}`, w.Body.String())
}

func TestPlannerDisabled(t *testing.T) {
	e := setupAPI(t, "")
	e.server.plans = nil

	w := e.do(t, http.MethodPost, "/api/plans/generate", "", map[string]any{"projectName": "Launch"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = e.do(t, http.MethodPost, "/api/projects", "", map[string]any{"name": "Launch", "ai": true})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = e.do(t, http.MethodPost, "/api/projects", "", map[string]any{"name": "Launch"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuth_RequiresBearerToken(t *testing.T) {
	e := setupAPI(t, testSecret)

	w := e.do(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodGet, "/api/projects", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := IssueToken([]byte("other-secret"), &domain.User{ID: "u1"}, time.Hour)
	require.NoError(t, err)
	w = e.do(t, http.MethodGet, "/api/projects", other, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	tok, err := IssueToken([]byte(testSecret), &domain.User{ID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken([]byte(testSecret), tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuth_UpsertsUserOnFirstRequest(t *testing.T) {
	e := setupAPI(t, testSecret)
	w := e.do(t, http.MethodGet, "/api/me", token(t, "alice", domain.RoleMember), nil)
	require.Equal(t, http.StatusOK, w.Code)

	me := decode[userDTO](t, w)
	assert.Equal(t, "alice", me.ID)
	assert.Equal(t, "member", me.Role)

	stored, err := e.users.GetByID(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
}

func TestAuth_NoSecretActsAsGuest(t *testing.T) {
	e := setupAPI(t, "")
	p := createProject(t, e, "", map[string]any{"name": "Guest project"})
	assert.Equal(t, domain.GuestOwnerID, p.OwnerID)
}

func TestProjects_CreateWithDefaults(t *testing.T) {
	e := setupAPI(t, testSecret)
	p := createProject(t, e, token(t, "alice", domain.RoleMember), map[string]any{"name": "Launch"})

	assert.Equal(t, "Launch", p.Name)
	assert.Equal(t, "active", p.Status)
	assert.Equal(t, "alice", p.OwnerID)
	assert.Equal(t, domain.DefaultProjectSpanDays, p.DurationDays)
}

func TestProjects_CreateRejectsBadInput(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)

	w := e.do(t, http.MethodPost, "/api/projects", tok, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/projects", tok, map[string]any{"name": "X", "startDate": "10/01/2024"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/projects", tok, map[string]any{
		"name": "X", "startDate": "2024-01-10", "endDate": "2024-01-09",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_OwnershipIsEnforced(t *testing.T) {
	e := setupAPI(t, testSecret)
	alice := token(t, "alice", domain.RoleMember)
	bob := token(t, "bob", domain.RoleMember)

	p := createProject(t, e, alice, map[string]any{"name": "Private", "startDate": "2024-01-10", "endDate": "2024-01-12"})
	assert.Equal(t, 3, p.DurationDays)

	w := e.do(t, http.MethodGet, "/api/projects/"+p.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/projects", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]projectDTO](t, w))

	w = e.do(t, http.MethodGet, "/api/projects/"+p.ID, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Admins see everything.
	w = e.do(t, http.MethodGet, "/api/projects/"+p.ID, token(t, "root", domain.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjects_UpdateStatsDelete(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)
	p := createProject(t, e, tok, map[string]any{"name": "Launch"})

	w := e.do(t, http.MethodPatch, "/api/projects/"+p.ID, tok, map[string]any{"description": "Ship it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ship it", decode[projectDTO](t, w).Description)

	for _, title := range []string{"A", "B"} {
		w = e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks", tok, map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	first := decode[taskDTO](t, w)
	w = e.do(t, http.MethodPost, "/api/tasks/"+first.ID+"/toggle", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode[taskDTO](t, w).Status)

	w = e.do(t, http.MethodGet, "/api/projects/"+p.ID+"/stats", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[statsDTO](t, w)
	assert.Equal(t, 2, stats.TaskCount)
	assert.Equal(t, 1, stats.CompletedCount)
	assert.Equal(t, 50, stats.Progress)

	w = e.do(t, http.MethodDelete, "/api/projects/"+p.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":"`+p.ID+`","tasksDeleted":2}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/tasks", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]taskDTO](t, w))
}

func TestTasks_UpdateAndDelete(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)
	p := createProject(t, e, tok, map[string]any{"name": "Launch"})

	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks", tok, map[string]any{
		"title": "Write docs", "priority": "high", "dueDate": "2024-01-12",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[taskDTO](t, w)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-01-12T17:00:00Z", *task.DueDate)
	assert.Equal(t, domain.UnassignedAssignee, task.Assignee)

	w = e.do(t, http.MethodPatch, "/api/tasks/"+task.ID, tok, map[string]any{"assignee": "bob", "dueDate": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[taskDTO](t, w)
	assert.Equal(t, "bob", updated.Assignee)
	assert.Nil(t, updated.DueDate)

	w = e.do(t, http.MethodPatch, "/api/tasks/"+task.ID, tok, map[string]any{"priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodDelete, "/api/tasks/"+task.ID, token(t, "mallory", domain.RoleMember), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodDelete, "/api/tasks/"+task.ID, tok, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/toggle", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlans_Generate(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)

	w := e.do(t, http.MethodPost, "/api/plans/generate", tok, map[string]any{"projectName": "Launch", "durationDays": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[planResponse](t, w)
	require.Len(t, plan.Drafts, 2)
	assert.Equal(t, "Kickoff", plan.Drafts[0].Title)
	assert.Equal(t, domain.PriorityLow, plan.Drafts[1].Priority)
	assert.Equal(t, "fake-model", plan.Model)
	assert.Empty(t, plan.Anomalies)

	w = e.do(t, http.MethodPost, "/api/plans/generate", tok, map[string]any{"durationDays": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlans_MalformedReplyIsBadGateway(t *testing.T) {
	e := setupAPI(t, testSecret)
	e.llm.Text = "I cannot help with that."

	w := e.do(t, http.MethodPost, "/api/plans/generate", token(t, "alice", domain.RoleMember),
		map[string]any{"projectName": "Launch", "durationDays": 3})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "I cannot help with that.", body.Payload)
}

func TestPlans_CommitDrafts(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)
	p := createProject(t, e, tok, map[string]any{"name": "Launch", "startDate": "2024-01-10"})

	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/plan", tok, map[string]any{
		"drafts": []domain.TaskDraft{
			{Title: "One", Priority: domain.PriorityHigh, DaysFromNow: 1},
			{Title: "Two", Priority: domain.PriorityNormal, DaysFromNow: 3},
			{Title: " ", DaysFromNow: 2},
		},
	})
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())
	res := decode[planning.CommitResult](t, w)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].Index)

	w = e.do(t, http.MethodGet, "/api/projects/"+p.ID+"/tasks", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]taskDTO](t, w)
	require.Len(t, tasks, 2)
	due := map[string]string{}
	for _, task := range tasks {
		require.NotNil(t, task.DueDate)
		due[task.Title] = *task.DueDate
		assert.Equal(t, "alice", task.OwnerID)
		assert.Equal(t, "pending", task.Status)
	}
	assert.Equal(t, "2024-01-10T17:00:00Z", due["One"])
	assert.Equal(t, "2024-01-12T17:00:00Z", due["Two"])
}

func TestPlans_CommitRepairsClientDrafts(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)
	p := createProject(t, e, tok, map[string]any{"name": "Launch", "startDate": "2024-01-10"})

	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/plan", tok, map[string]any{
		"drafts": []map[string]any{
			{"title": "Far out", "description": "later", "daysFromNow": math.MaxInt},
			{"title": "Bare", "daysFromNow": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/api/projects/"+p.ID+"/tasks", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]taskDTO](t, w)
	require.Len(t, tasks, 2)
	byTitle := map[string]taskDTO{}
	for _, task := range tasks {
		byTitle[task.Title] = task
	}

	require.NotNil(t, byTitle["Far out"].DueDate)
	assert.Equal(t, "2034-01-06T17:00:00Z", *byTitle["Far out"].DueDate)
	assert.True(t, strings.HasPrefix(byTitle["Bare"].Description, planning.MissingDescriptionPrefix), byTitle["Bare"].Description)
}

func TestProjects_CreateWithAIPlan(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)

	w := e.do(t, http.MethodPost, "/api/projects", tok, map[string]any{
		"name": "Launch", "startDate": "2024-01-10", "endDate": "2024-01-12", "ai": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode[struct {
		Project projectDTO             `json:"project"`
		Commit  planning.CommitResult `json:"commit"`
	}](t, w)
	assert.Equal(t, 2, out.Commit.Success)
	assert.Equal(t, 0, out.Commit.Failed)

	reqs := e.llm.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].UserPrompt, "3 days")

	w = e.do(t, http.MethodGet, "/api/projects/"+out.Project.ID+"/tasks", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]taskDTO](t, w), 2)
}

func TestProjects_CreateWithAIPlanKeepsProjectOnFailure(t *testing.T) {
	e := setupAPI(t, testSecret)
	e.llm.Text = "no json here"
	tok := token(t, "alice", domain.RoleMember)

	w := e.do(t, http.MethodPost, "/api/projects", tok, map[string]any{"name": "Launch", "ai": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode[map[string]any](t, w)
	assert.Contains(t, out, "planError")

	w = e.do(t, http.MethodGet, "/api/projects", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]projectDTO](t, w), 1)
}

func TestAI_Descriptions(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)
	e.llm.Text = "  A short summary.  "

	w := e.do(t, http.MethodPost, "/api/ai/project-description", tok, map[string]any{"projectName": "Launch"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"description":"A short summary."}`, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/ai/task-description", tok, map[string]any{"projectName": "Launch", "taskTitle": "Kickoff"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"description":"A short summary."}`, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/ai/task-description", tok, map[string]any{"projectName": "Launch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.llm.Text = "   "
	w = e.do(t, http.MethodPost, "/api/ai/project-description", tok, map[string]any{"projectName": "Launch"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAI_DescribeStoredTask(t *testing.T) {
	e := setupAPI(t, testSecret)
	tok := token(t, "alice", domain.RoleMember)
	p := createProject(t, e, tok, map[string]any{"name": "Launch"})
	w := e.do(t, http.MethodPost, "/api/projects/"+p.ID+"/tasks", tok, map[string]any{"title": "Kickoff"})
	require.Equal(t, http.StatusCreated, w.Code)
	task := decode[taskDTO](t, w)

	e.llm.Text = "- agree on scope\n- book a room"
	w = e.do(t, http.MethodPost, "/api/ai/task-description", tok, map[string]any{"taskId": task.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[struct {
		Task taskDTO `json:"task"`
	}](t, w)
	assert.Equal(t, "- agree on scope\n- book a room", out.Task.Description)
}

func TestAdmin_Users(t *testing.T) {
	e := setupAPI(t, testSecret)
	admin := token(t, "root", domain.RoleAdmin)
	member := token(t, "alice", domain.RoleMember)

	// First request registers alice.
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/me", member, nil).Code)

	w := e.do(t, http.MethodGet, "/api/admin/users", member, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodGet, "/api/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]userDTO](t, w), 2)

	w = e.do(t, http.MethodPut, "/api/admin/users/alice/role", admin, map[string]any{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, "/api/admin/users/alice/role", admin, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "admin", decode[userDTO](t, w).Role)

	// The stored role wins over the member claim in alice's token.
	w = e.do(t, http.MethodGet, "/api/admin/users", member, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_Preflight(t *testing.T) {
	e := setupAPI(t, testSecret)
	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(repository.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, statusFor(planning.ErrInvalidCommit))
	assert.Equal(t, http.StatusBadGateway, statusFor(planning.ErrGenerationFailed))
	assert.Equal(t, http.StatusBadGateway, statusFor(&planning.MalformedResponseError{Reason: "x"}))
	assert.Equal(t, http.StatusForbidden, statusFor(service.ErrForbidden))
	assert.Equal(t, http.StatusUnauthorized, statusFor(ErrUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
