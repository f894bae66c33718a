package api

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/logger"
	"alcyxob/exercise-tracker/internal/repository/memory"
	"alcyxob/exercise-tracker/internal/service"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	router    *gin.Engine
	exercises *memory.ExerciseRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	exercises := memory.NewExerciseRepository()
	router := gin.New()
	err := SetupRoutes(router, logger.Nop(), memory.HealthChecker{},
		service.NewUserService(users),
		service.NewExerciseService(users, exercises),
	)
	require.NoError(t, err)
	return &testServer{router: router, exercises: exercises}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) createUser(t *testing.T, username string) UserResponse {
	t.Helper()
	w := s.postForm("/api/users", url.Values{"username": {username}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u
}

func (s *testServer) addExercise(t *testing.T, userID, description, duration, date string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"description": {description}, "duration": {duration}}
	if date != "" {
		form.Set("date", date)
	}
	return s.postForm("/api/users/"+userID+"/exercises", form)
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestCreateAndListUsers(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm("/api/users", url.Values{"username": {"fcc_test"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, "fcc_test", body["username"])
	id, _ := body["_id"].(string)
	assert.NotEmpty(t, id)

	second := s.createUser(t, "other")

	w = s.get("/api/users")
	require.Equal(t, http.StatusOK, w.Code)
	var users []UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Equal(t, []UserResponse{{Username: "fcc_test", ID: id}, second}, users)
}

func TestCreateUser_JSONBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"username":"json_user"}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "json_user", decodeMap(t, w)["username"])
}

func TestCreateUser_MissingUsername(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm("/api/users", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "username is required", decodeMap(t, w)["error"])

	w = s.postForm("/api/users", url.Values{"username": {"   "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsers_Empty(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/api/users")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAddExercise_WithDate(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "fcc_test")

	w := s.addExercise(t, user.ID, "test", "60", "2023-01-01")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeMap(t, w)
	assert.Equal(t, user.ID, body["_id"])
	assert.Equal(t, "fcc_test", body["username"])
	assert.Equal(t, "Sun Jan 01 2023", body["date"])
	assert.Equal(t, float64(60), body["duration"])
	assert.Equal(t, "test", body["description"])
}

func TestAddExercise_DefaultsToToday(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "fcc_test")

	w := s.addExercise(t, user.ID, "walk", "20", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.FormatDate(time.Now()), decodeMap(t, w)["date"])
}

func TestAddExercise_UnknownUser(t *testing.T) {
	s := newTestServer(t)
	ghost := primitive.NewObjectID()

	w := s.addExercise(t, ghost.Hex(), "test", "60", "2023-01-01")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeMap(t, w)["error"])
	assert.Equal(t, 0, s.exercises.Count(ghost))

	w = s.addExercise(t, "not-an-object-id", "test", "60", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddExercise_Validation(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "fcc_test")

	tests := []struct {
		name        string
		description string
		duration    string
		date        string
		wantErr     string
	}{
		{"missing description", "", "10", "", "description is required"},
		{"missing duration", "run", "", "", "duration is required"},
		{"non-numeric duration", "run", "ten", "", `invalid number "ten"`},
		{"negative duration", "run", "-5", "", "duration must be at least 1"},
		{"bad date", "run", "10", "01/02/2023", `invalid date "01/02/2023", expected YYYY-MM-DD`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.addExercise(t, user.ID, tt.description, tt.duration, tt.date)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantErr, decodeMap(t, w)["error"])
		})
	}

	id, err := primitive.ObjectIDFromHex(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, s.exercises.Count(id))
}

func seedLog(t *testing.T, s *testServer) UserResponse {
	t.Helper()
	user := s.createUser(t, "fcc_test")
	// inserted out of order; the log must come back sorted
	for _, d := range []string{"2023-03-01", "2023-01-01", "2023-02-01"} {
		w := s.addExercise(t, user.ID, "test "+d, "60", d)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	return user
}

func getLog(t *testing.T, s *testServer, userID, query string) LogResponse {
	t.Helper()
	path := "/api/users/" + userID + "/logs"
	if query != "" {
		path += "?" + query
	}
	w := s.get(path)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out LogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestGetLogs_All(t *testing.T) {
	s := newTestServer(t)
	user := seedLog(t, s)

	out := getLog(t, s, user.ID, "")
	assert.Equal(t, user.ID, out.ID)
	assert.Equal(t, "fcc_test", out.Username)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, []LogEntryResponse{
		{Description: "test 2023-01-01", Duration: 60, Date: "Sun Jan 01 2023"},
		{Description: "test 2023-02-01", Duration: 60, Date: "Wed Feb 01 2023"},
		{Description: "test 2023-03-01", Duration: 60, Date: "Wed Mar 01 2023"},
	}, out.Log)
}

func TestGetLogs_DateRange(t *testing.T) {
	s := newTestServer(t)
	user := seedLog(t, s)

	out := getLog(t, s, user.ID, "from=2023-01-15&to=2023-02-15")
	assert.Equal(t, 1, out.Count)
	require.Len(t, out.Log, 1)
	assert.Equal(t, "Wed Feb 01 2023", out.Log[0].Date)

	// both bounds are inclusive
	out = getLog(t, s, user.ID, "from=2023-02-01&to=2023-03-01")
	assert.Equal(t, 2, out.Count)

	out = getLog(t, s, user.ID, "from=2023-02-02")
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "Wed Mar 01 2023", out.Log[0].Date)
}

func TestGetLogs_Limit(t *testing.T) {
	s := newTestServer(t)
	user := seedLog(t, s)

	out := getLog(t, s, user.ID, "limit=1")
	assert.Equal(t, 1, out.Count)
	require.Len(t, out.Log, 1)
	assert.Equal(t, "Sun Jan 01 2023", out.Log[0].Date)

	out = getLog(t, s, user.ID, "limit=0")
	assert.Equal(t, 3, out.Count)
}

func TestGetLogs_EmptyLogIsArray(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "lazy")

	w := s.get("/api/users/" + user.ID + "/logs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"_id":"`+user.ID+`","username":"lazy","count":0,"log":[]}`, w.Body.String())
}

func TestGetLogs_Errors(t *testing.T) {
	s := newTestServer(t)
	user := seedLog(t, s)

	w := s.get("/api/users/" + primitive.NewObjectID().Hex() + "/logs")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeMap(t, w)["error"])

	for _, q := range []string{"from=yesterday", "to=2023-13-45", "limit=abc", "limit=-2", "from=2023-03-01&to=2023-01-01"} {
		w := s.get("/api/users/" + user.ID + "/logs?" + q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.NotEmpty(t, decodeMap(t, w)["error"], q)
	}
}

type brokenUserService struct{}

func (brokenUserService) CreateUser(context.Context, string) (*domain.User, error) {
	return nil, errors.New("store down")
}
func (brokenUserService) GetUser(context.Context, primitive.ObjectID) (*domain.User, error) {
	return nil, errors.New("store down")
}
func (brokenUserService) ListUsers(context.Context) ([]domain.User, error) {
	return nil, errors.New("store down")
}

type unhealthy struct{}

func (unhealthy) Ping(context.Context) error { return errors.New("no primary") }

func TestInternalErrorsAreHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	require.NoError(t, SetupRoutes(router, logger.Nop(), unhealthy{}, brokenUserService{},
		service.NewExerciseService(memory.NewUserRepository(), memory.NewExerciseRepository())))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Exercise tracker")

	w = s.get("/public/style.css")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.get("/ping")
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = s.get("/healthz")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	s.get("/api/users")
	w = s.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "exercise_tracker_http_requests_total")

	w = s.get("/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, w.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/ping")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = s.do(req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Origin", "https://www.freecodecamp.org")
	w := s.do(req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
