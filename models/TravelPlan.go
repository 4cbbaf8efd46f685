package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const DefaultPlanTitle = "My Travel Plan"

type TravelPlan struct {
	ID          string                      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID      string                      `json:"user" gorm:"type:varchar(36);not null;index:idx_plan_user_updated,priority:1" bson:"user"`
	Title       string                      `json:"title" gorm:"not null;default:'My Travel Plan'" bson:"title"`
	StartDate   time.Time                   `json:"startDate" gorm:"not null" bson:"startDate"`
	EndDate     time.Time                   `json:"endDate" gorm:"not null" bson:"endDate"`
	Days        datatypes.JSONSlice[Day]    `json:"days" bson:"days"`
	IsPublic    bool                        `json:"isPublic" gorm:"default:false" bson:"isPublic"`
	Tags        datatypes.JSONSlice[string] `json:"tags" bson:"tags"`
	Description string                      `json:"description" gorm:"type:text" bson:"description"`
	CreatedAt   time.Time                   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt" gorm:"index:idx_plan_user_updated,priority:2" bson:"updatedAt"`
}

// Day is stored inside the plan document. DayNumber is unique per plan but the
// server never renumbers; clients own contiguity.
type Day struct {
	ID        string     `json:"id" bson:"id"`
	Date      time.Time  `json:"date" bson:"date"`
	DayNumber int        `json:"dayNumber" bson:"dayNumber"`
	Locations []Location `json:"locations" bson:"locations"`
	Notes     []Note     `json:"notes" bson:"notes"`
}

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type Location struct {
	ID          string      `json:"id" bson:"id"`
	Name        string      `json:"name" bson:"name"`
	Address     string      `json:"address" bson:"address"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
	Time        string      `json:"time,omitempty" bson:"time,omitempty"`
	Notes       string      `json:"notes,omitempty" bson:"notes,omitempty"`
	Order       int         `json:"order" bson:"order"`
}

type Note struct {
	ID        string    `json:"id" bson:"id"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// HasDay reports whether a day with the given number is already on the plan.
func (p *TravelPlan) HasDay(dayNumber int) bool {
	for _, d := range p.Days {
		if d.DayNumber == dayNumber {
			return true
		}
	}
	return false
}

// Normalize assigns missing sub-document ids and sets each location's Order
// to its position within the day.
func (p *TravelPlan) Normalize() {
	if p.Days == nil {
		p.Days = datatypes.JSONSlice[Day]{}
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	for i := range p.Days {
		p.Days[i].normalize()
	}
}

func (d *Day) normalize() {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Locations == nil {
		d.Locations = []Location{}
	}
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	for i := range d.Locations {
		if d.Locations[i].ID == "" {
			d.Locations[i].ID = uuid.NewString()
		}
		d.Locations[i].Order = i
	}
	for i := range d.Notes {
		if d.Notes[i].ID == "" {
			d.Notes[i].ID = uuid.NewString()
		}
	}
}
