package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTravelPlan(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "create@example.com")

	code, env := doRequest(t, app, http.MethodPost, "/api/travel-plans", token, map[string]interface{}{
		"title":     "  Lisbon  ",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-04T00:00:00Z",
		"days": []map[string]interface{}{{
			"date":      "2024-03-01",
			"dayNumber": 1,
			"locations": []map[string]interface{}{
				{"name": "Belem Tower", "address": "Av. Brasilia", "coordinates": map[string]float64{"lat": 38.69, "lng": -9.21}},
				{"name": "Alfama", "address": "Alfama, Lisbon", "coordinates": map[string]float64{"lat": 38.71, "lng": -9.13}},
			},
		}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	plan := decodePlan(t, env).TravelPlan
	assert.Equal(t, "Lisbon", plan.Title)
	assert.NotEmpty(t, plan.ID)
	require.Len(t, plan.Days, 1)
	assert.NotEmpty(t, plan.Days[0].ID)
	require.Len(t, plan.Days[0].Locations, 2)
	assert.Equal(t, 0, plan.Days[0].Locations[0].Order)
	assert.Equal(t, 1, plan.Days[0].Locations[1].Order)

	code, env = doRequest(t, app, http.MethodGet, "/api/travel-plans/"+plan.ID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, plan.ID, decodePlan(t, env).TravelPlan.ID)
}

func TestCreateTravelPlanValidation(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "invalid@example.com")

	code, env := doRequest(t, app, http.MethodPost, "/api/travel-plans", token, map[string]interface{}{
		"title":     "   ",
		"startDate": "2024-03-01",
		"endDate":   "soon",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)
	fields := map[string]string{}
	for _, fe := range env.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "Title is required", fields["title"])
	assert.Equal(t, "End date must be a valid date", fields["endDate"])

	code, env = doRequest(t, app, http.MethodPost, "/api/travel-plans", token, map[string]interface{}{
		"title":     "Backwards",
		"startDate": "2024-03-05",
		"endDate":   "2024-03-05",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "End date must be after start date", env.Message)

	code, env = doRequest(t, app, http.MethodPost, "/api/travel-plans", token, map[string]interface{}{
		"title":     "Bad days",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-05",
		"days":      "monday",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestUpdateTravelPlanValidatesMergedDateRange(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "update@example.com")
	plan := createPlan(t, app, token, "Rome").TravelPlan
	path := "/api/travel-plans/" + plan.ID

	for name, body := range map[string]map[string]interface{}{
		"end before stored start": {"endDate": "2024-02-28"},
		"start equals stored end": {"startDate": "2024-03-05"},
		"both inverted":           {"startDate": "2024-04-02", "endDate": "2024-04-01"},
	} {
		code, env := doRequest(t, app, http.MethodPut, path, token, body)
		assert.Equal(t, http.StatusBadRequest, code, name)
		assert.Equal(t, "End date must be after start date", env.Message, name)
	}

	code, env := doRequest(t, app, http.MethodPut, path, token, map[string]interface{}{
		"title":   "Rome & Naples",
		"endDate": "2024-03-09",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	updated := decodePlan(t, env).TravelPlan
	assert.Equal(t, "Rome & Naples", updated.Title)
	assert.Contains(t, updated.EndDate, "2024-03-09")
	assert.Contains(t, updated.StartDate, "2024-03-01")
}

func TestAddDayRejectsDuplicateDayNumber(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "days@example.com")
	plan := createPlan(t, app, token, "Oslo").TravelPlan
	path := "/api/travel-plans/" + plan.ID + "/days"

	code, env := doRequest(t, app, http.MethodPost, path, token, map[string]interface{}{
		"date": "2024-03-01", "dayNumber": 1,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Len(t, decodePlan(t, env).TravelPlan.Days, 1)

	code, env = doRequest(t, app, http.MethodPost, path, token, map[string]interface{}{
		"date": "2024-03-02", "dayNumber": 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Day already exists", env.Message)

	code, env = doRequest(t, app, http.MethodPost, path, token, map[string]interface{}{
		"date": "2024-03-02", "dayNumber": 0,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)

	code, env = doRequest(t, app, http.MethodGet, "/api/travel-plans/"+plan.ID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decodePlan(t, env).TravelPlan.Days, 1)
}

func TestFullDaysArrayRejectsDuplicateDayNumbers(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "dupes@example.com")
	days := []map[string]interface{}{
		{"date": "2024-03-01", "dayNumber": 1},
		{"date": "2024-03-02", "dayNumber": 1},
	}

	code, env := doRequest(t, app, http.MethodPost, "/api/travel-plans", token, map[string]interface{}{
		"title": "Twice", "startDate": "2024-03-01", "endDate": "2024-03-05", "days": days,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Day already exists", env.Message)

	plan := createPlan(t, app, token, "Once").TravelPlan
	path := "/api/travel-plans/" + plan.ID
	code, env = doRequest(t, app, http.MethodPut, path, token, map[string]interface{}{"days": days})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Day already exists", env.Message)

	code, env = doRequest(t, app, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodePlan(t, env).TravelPlan.Days)
}

func TestPlansAreScopedToOwner(t *testing.T) {
	app := buildTestApp(t)
	alice := registerUser(t, app, "alice@example.com")
	bob := registerUser(t, app, "bob@example.com")
	plan := createPlan(t, app, alice, "Alice in Vienna").TravelPlan
	path := "/api/travel-plans/" + plan.ID

	code, env := doRequest(t, app, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Travel plan not found", env.Message)

	code, _ = doRequest(t, app, http.MethodPut, path, bob, map[string]string{"title": "Mine now"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doRequest(t, app, http.MethodPost, path+"/days", bob, map[string]interface{}{"date": "2024-03-01", "dayNumber": 1})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doRequest(t, app, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = doRequest(t, app, http.MethodGet, "/api/travel-plans?search=Vienna", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		TravelPlans []json.RawMessage `json:"travelPlans"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list.TravelPlans)

	code, _ = doRequest(t, app, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestListTravelPlansPaginatesAndSearches(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "list@example.com")
	for _, title := range []string{"Tokyo spring", "Kyoto temples", "Paris weekend"} {
		createPlan(t, app, token, title)
	}

	type listData struct {
		TravelPlans []struct {
			Title string `json:"title"`
		} `json:"travelPlans"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}

	code, env := doRequest(t, app, http.MethodGet, "/api/travel-plans?page=1&limit=2", token, nil)
	require.Equal(t, http.StatusOK, code)
	var page1 listData
	require.NoError(t, json.Unmarshal(env.Data, &page1))
	assert.Len(t, page1.TravelPlans, 2)
	assert.Equal(t, int64(3), page1.Pagination.Total)
	assert.Equal(t, int64(2), page1.Pagination.Pages)

	code, env = doRequest(t, app, http.MethodGet, "/api/travel-plans?page=2&limit=2", token, nil)
	require.Equal(t, http.StatusOK, code)
	var page2 listData
	require.NoError(t, json.Unmarshal(env.Data, &page2))
	assert.Len(t, page2.TravelPlans, 1)

	code, env = doRequest(t, app, http.MethodGet, "/api/travel-plans?search=KYO", token, nil)
	require.Equal(t, http.StatusOK, code)
	var found listData
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Equal(t, int64(2), found.Pagination.Total)
	titles := []string{}
	for _, p := range found.TravelPlans {
		titles = append(titles, p.Title)
	}
	assert.ElementsMatch(t, []string{"Tokyo spring", "Kyoto temples"}, titles)
}

func TestDeleteTravelPlan(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "delete@example.com")
	plan := createPlan(t, app, token, "Short trip").TravelPlan
	path := "/api/travel-plans/" + plan.ID

	code, env := doRequest(t, app, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Travel plan deleted successfully", env.Message)

	code, _ = doRequest(t, app, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doRequest(t, app, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMalformedPlanID(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "cast@example.com")

	code, env := doRequest(t, app, http.MethodGet, "/api/travel-plans/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid travel plan ID", env.Message)

	code, _ = doRequest(t, app, http.MethodGet, "/api/travel-plans/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPlanChangesAreAudited(t *testing.T) {
	app := buildTestApp(t)
	token := registerUser(t, app, "audit@example.com")
	other := registerUser(t, app, "quiet@example.com")
	plan := createPlan(t, app, token, "Audited").TravelPlan
	path := "/api/travel-plans/" + plan.ID

	code, _ := doRequest(t, app, http.MethodPut, path, token, map[string]interface{}{"title": "Renamed"})
	require.Equal(t, http.StatusOK, code)
	code, _ = doRequest(t, app, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := doRequest(t, app, http.MethodGet, "/api/auth/activity", token, nil)
	require.Equal(t, http.StatusOK, code)
	var data struct {
		Activity []struct {
			Action     string `json:"action"`
			ResourceID string `json:"resourceID"`
			BeforeJSON string `json:"beforeJSON"`
			AfterJSON  string `json:"afterJSON"`
		} `json:"activity"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Activity, 3)
	assert.Equal(t, "delete", data.Activity[0].Action)
	assert.Equal(t, "update", data.Activity[1].Action)
	assert.Contains(t, data.Activity[1].BeforeJSON, `"title":"Audited"`)
	assert.Contains(t, data.Activity[1].AfterJSON, `"title":"Renamed"`)
	assert.Equal(t, "create", data.Activity[2].Action)
	for _, entry := range data.Activity {
		assert.Equal(t, plan.ID, entry.ResourceID)
	}

	code, env = doRequest(t, app, http.MethodGet, "/api/auth/activity", other, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Empty(t, data.Activity)
}
