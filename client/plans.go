package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"travel-planner-server/models"
)

// ErrDuplicateDay is returned before any request when the plan already holds
// the day number being appended.
var ErrDuplicateDay = errors.New("day already exists")

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type PlanList struct {
	TravelPlans []models.TravelPlan `json:"travelPlans"`
	Pagination  Pagination          `json:"pagination"`
}

// ListOptions maps to the page, limit and search query parameters. Zero
// values are left to the server defaults.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

type planResult struct {
	TravelPlan models.TravelPlan `json:"travelPlan"`
}

// ListPlans returns the caller's plans, most recently updated first.
func (c *Client) ListPlans(ctx context.Context, opts ListOptions) (*PlanList, error) {
	var result PlanList
	if err := c.doRequest(ctx, http.MethodGet, "/api/travel-plans"+opts.query(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetPlan(ctx context.Context, id string) (*models.TravelPlan, error) {
	var result planResult
	if err := c.doRequest(ctx, http.MethodGet, "/api/travel-plans/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result.TravelPlan, nil
}

func (c *Client) CreatePlan(ctx context.Context, in models.CreateTravelPlanInput) (*models.TravelPlan, error) {
	var result planResult
	if err := c.doRequest(ctx, http.MethodPost, "/api/travel-plans", in, &result); err != nil {
		return nil, err
	}
	return &result.TravelPlan, nil
}

func (c *Client) UpdatePlan(ctx context.Context, id string, in models.UpdateTravelPlanInput) (*models.TravelPlan, error) {
	var result planResult
	if err := c.doRequest(ctx, http.MethodPut, "/api/travel-plans/"+url.PathEscape(id), in, &result); err != nil {
		return nil, err
	}
	return &result.TravelPlan, nil
}

func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/travel-plans/"+url.PathEscape(id), nil, nil)
}

// AddDay appends day to plan on the server. A day number already present on
// plan is refused locally without a request.
func (c *Client) AddDay(ctx context.Context, plan *models.TravelPlan, day models.DayInput) (*models.TravelPlan, error) {
	if plan.HasDay(day.DayNumber) {
		return nil, fmt.Errorf("%w: day %d", ErrDuplicateDay, day.DayNumber)
	}
	var result planResult
	path := "/api/travel-plans/" + url.PathEscape(plan.ID) + "/days"
	if err := c.doRequest(ctx, http.MethodPost, path, day, &result); err != nil {
		return nil, err
	}
	return &result.TravelPlan, nil
}
