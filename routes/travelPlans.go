package routes

import (
	"errors"
	"strings"

	"travel-planner-server/models"
	"travel-planner-server/storage"
	"travel-planner-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100

	msgPlanNotFound  = "Travel plan not found"
	msgInvalidPlanID = "Invalid travel plan ID"
	msgDateOrder     = "End date must be after start date"
)

// GetTravelPlans lists the caller's plans, most recently updated first.
func GetTravelPlans(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	limit := ctx.URLParamIntDefault("limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	query := storage.PlanQuery{Page: page, Limit: limit, Search: strings.TrimSpace(ctx.URLParam("search"))}

	plans, total, err := storage.Store.ListPlans(ctx.Request().Context(), utils.UserID(ctx), query)
	if err != nil {
		log.Error().Err(err).Str("func", "GetTravelPlans").Msg("list plans failed")
		utils.CreateInternalServerError(ctx, "Server error while fetching travel plans")
		return
	}

	utils.JSONData(ctx, iris.StatusOK, "", iris.Map{
		"travelPlans": plans,
		"pagination":  utils.NewPagination(page, limit, total),
	})
}

func GetTravelPlan(ctx iris.Context) {
	plan, ok := loadOwnedPlan(ctx, "Server error while fetching travel plan")
	if !ok {
		return
	}
	utils.JSONData(ctx, iris.StatusOK, "", iris.Map{"travelPlan": plan})
}

func CreateTravelPlan(ctx iris.Context) {
	var input models.CreateTravelPlanInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	startDate, _ := models.ParseISODate(input.StartDate)
	endDate, _ := models.ParseISODate(input.EndDate)
	if !startDate.Before(endDate) {
		utils.CreateError(iris.StatusBadRequest, msgDateOrder, ctx)
		return
	}

	days, err := models.DaysFromInput(input.Days)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, err.Error(), ctx)
		return
	}

	plan := models.TravelPlan{
		UserID:      utils.UserID(ctx),
		Title:       strings.TrimSpace(input.Title),
		StartDate:   startDate,
		EndDate:     endDate,
		Days:        days,
		IsPublic:    input.IsPublic,
		Tags:        input.Tags,
		Description: input.Description,
	}
	if err := storage.Store.CreatePlan(ctx.Request().Context(), &plan); err != nil {
		log.Error().Err(err).Str("func", "CreateTravelPlan").Msg("create plan failed")
		utils.CreateInternalServerError(ctx, "Server error while creating travel plan")
		return
	}
	utils.PlanOperations.WithLabelValues("create").Inc()
	utils.Audit(ctx, "create", utils.AuditResourcePlan, plan.ID, nil, plan)

	utils.JSONData(ctx, iris.StatusCreated, "Travel plan created successfully", iris.Map{"travelPlan": plan})
}

// UpdateTravelPlan applies a partial update. The date ordering rule is checked
// against the merged values, so sending only one date cannot invert the range.
func UpdateTravelPlan(ctx iris.Context) {
	var input models.UpdateTravelPlanInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	plan, ok := loadOwnedPlan(ctx, "Server error while updating travel plan")
	if !ok {
		return
	}

	startDate, endDate := plan.StartDate, plan.EndDate
	if input.StartDate != nil {
		startDate, _ = models.ParseISODate(*input.StartDate)
	}
	if input.EndDate != nil {
		endDate, _ = models.ParseISODate(*input.EndDate)
	}
	if !startDate.Before(endDate) {
		utils.CreateError(iris.StatusBadRequest, msgDateOrder, ctx)
		return
	}

	before := *plan
	if input.Days != nil {
		days, err := models.DaysFromInput(input.Days)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, err.Error(), ctx)
			return
		}
		plan.Days = days
	}
	if input.Title != nil {
		plan.Title = strings.TrimSpace(*input.Title)
	}
	plan.StartDate, plan.EndDate = startDate, endDate
	if input.IsPublic != nil {
		plan.IsPublic = *input.IsPublic
	}
	if input.Tags != nil {
		plan.Tags = input.Tags
	}
	if input.Description != nil {
		plan.Description = *input.Description
	}

	if err := storage.Store.SavePlan(ctx.Request().Context(), plan); err != nil {
		log.Error().Err(err).Str("func", "UpdateTravelPlan").Str("plan", plan.ID).Msg("save plan failed")
		utils.CreateInternalServerError(ctx, "Server error while updating travel plan")
		return
	}
	utils.PlanOperations.WithLabelValues("update").Inc()
	utils.Audit(ctx, "update", utils.AuditResourcePlan, plan.ID, before, plan)

	utils.JSONData(ctx, iris.StatusOK, "Travel plan updated successfully", iris.Map{"travelPlan": plan})
}

func DeleteTravelPlan(ctx iris.Context) {
	id, ok := planIDParam(ctx)
	if !ok {
		return
	}

	err := storage.Store.DeletePlan(ctx.Request().Context(), id, utils.UserID(ctx))
	if errors.Is(err, storage.ErrNotFound) {
		utils.CreateNotFound(ctx, msgPlanNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("func", "DeleteTravelPlan").Str("plan", id).Msg("delete plan failed")
		utils.CreateInternalServerError(ctx, "Server error while deleting travel plan")
		return
	}
	utils.PlanOperations.WithLabelValues("delete").Inc()
	utils.Audit(ctx, "delete", utils.AuditResourcePlan, id, nil, nil)

	utils.JSONData(ctx, iris.StatusOK, "Travel plan deleted successfully", nil)
}

// AddDay appends one day. A dayNumber already on the plan is rejected; the
// server never renumbers.
func AddDay(ctx iris.Context) {
	var input models.DayInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	plan, ok := loadOwnedPlan(ctx, "Server error while adding day")
	if !ok {
		return
	}

	if plan.HasDay(input.DayNumber) {
		utils.CreateError(iris.StatusBadRequest, models.ErrDuplicateDay.Error(), ctx)
		return
	}

	day, err := input.ToDay()
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, err.Error(), ctx)
		return
	}
	before := *plan
	plan.Days = append(plan.Days, day)

	if err := storage.Store.SavePlan(ctx.Request().Context(), plan); err != nil {
		log.Error().Err(err).Str("func", "AddDay").Str("plan", plan.ID).Msg("save plan failed")
		utils.CreateInternalServerError(ctx, "Server error while adding day")
		return
	}
	utils.PlanOperations.WithLabelValues("add_day").Inc()
	utils.Audit(ctx, "add_day", utils.AuditResourcePlan, plan.ID, before, plan)

	utils.JSONData(ctx, iris.StatusCreated, "Day added successfully", iris.Map{"travelPlan": plan})
}

func planIDParam(ctx iris.Context) (string, bool) {
	id := ctx.Params().Get("id")
	if _, err := uuid.Parse(id); err != nil {
		utils.CreateError(iris.StatusBadRequest, msgInvalidPlanID, ctx)
		return "", false
	}
	return id, true
}

// loadOwnedPlan writes the error response itself and returns ok=false when the
// plan is missing, owned by someone else, or the lookup fails.
func loadOwnedPlan(ctx iris.Context, serverErrMsg string) (*models.TravelPlan, bool) {
	id, ok := planIDParam(ctx)
	if !ok {
		return nil, false
	}

	plan, err := storage.Store.FindPlan(ctx.Request().Context(), id, utils.UserID(ctx))
	if errors.Is(err, storage.ErrNotFound) {
		utils.CreateNotFound(ctx, msgPlanNotFound)
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("plan", id).Msg("find plan failed")
		utils.CreateInternalServerError(ctx, serverErrMsg)
		return nil, false
	}
	return plan, true
}
