package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"travel-planner-server/storage"
	"travel-planner-server/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Errors  []utils.FieldError `json:"errors"`
	Data    json.RawMessage    `json:"data"`
}

// buildTestApp wires the real routes to an in-memory SQLite store and a
// miniredis session store.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	store, err := storage.OpenGorm(sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	storage.Store = store

	mr := miniredis.RunT(t)
	storage.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		storage.Redis.Close()
		storage.Redis = nil
		store.Close()
		storage.Store = nil
	})

	app := iris.New()
	app.Validator = utils.NewValidator()
	RegisterRoutes(app)
	require.NoError(t, app.Build())
	return app
}

func doRequest(t *testing.T, app *iris.Application, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	var env envelope
	if resp.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	}
	return resp.Code, env
}

// registerUser creates an account and returns its bearer token.
func registerUser(t *testing.T, app *iris.Application, email string) string {
	t.Helper()
	code, env := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Traveller",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

type planData struct {
	TravelPlan struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		User      string `json:"user"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Days      []struct {
			ID        string `json:"id"`
			DayNumber int    `json:"dayNumber"`
			Date      string `json:"date"`
			Locations []struct {
				Name  string `json:"name"`
				Order int    `json:"order"`
			} `json:"locations"`
		} `json:"days"`
	} `json:"travelPlan"`
}

func decodePlan(t *testing.T, env envelope) planData {
	t.Helper()
	var data planData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func createPlan(t *testing.T, app *iris.Application, token, title string) planData {
	t.Helper()
	code, env := doRequest(t, app, http.MethodPost, "/api/travel-plans", token, map[string]interface{}{
		"title":     title,
		"startDate": "2024-03-01",
		"endDate":   "2024-03-05",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	return decodePlan(t, env)
}
