package models

// Request bodies shared by the routes and the client. Dates travel as ISO-8601
// strings (either 2006-01-02 or RFC 3339) and are parsed after validation.

type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileInput struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type CoordinatesInput struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

type LocationInput struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name" validate:"notblank"`
	Address     string            `json:"address" validate:"notblank"`
	Coordinates *CoordinatesInput `json:"coordinates" validate:"required"`
	Time        string            `json:"time,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

type NoteInput struct {
	ID        string `json:"id,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty" validate:"omitempty,isodate"`
}

type DayInput struct {
	ID        string          `json:"id,omitempty"`
	Date      string          `json:"date" validate:"required,isodate"`
	DayNumber int             `json:"dayNumber" validate:"required,min=1"`
	Locations []LocationInput `json:"locations" validate:"dive"`
	Notes     []NoteInput     `json:"notes" validate:"dive"`
}

type CreateTravelPlanInput struct {
	Title       string     `json:"title" validate:"notblank"`
	StartDate   string     `json:"startDate" validate:"required,isodate"`
	EndDate     string     `json:"endDate" validate:"required,isodate"`
	Days        []DayInput `json:"days,omitempty" validate:"dive"`
	IsPublic    bool       `json:"isPublic"`
	Tags        []string   `json:"tags,omitempty"`
	Description string     `json:"description,omitempty"`
}

// UpdateTravelPlanInput carries a partial update; nil fields keep the stored
// value. An empty days or tags array is distinct from an absent one.
type UpdateTravelPlanInput struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,notblank"`
	StartDate   *string    `json:"startDate,omitempty" validate:"omitempty,isodate"`
	EndDate     *string    `json:"endDate,omitempty" validate:"omitempty,isodate"`
	Days        []DayInput `json:"days" validate:"dive"`
	IsPublic    *bool      `json:"isPublic,omitempty"`
	Tags        []string   `json:"tags"`
	Description *string    `json:"description,omitempty"`
}
