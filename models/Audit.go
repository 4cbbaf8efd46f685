package models

import (
	"time"
)

// AuditLog records one change to a travel plan, with the plan as it was before
// and after the change.
type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey" bson:"-"`
	UserID       string    `json:"userID" gorm:"size:36;index;not null" bson:"userId"`
	Action       string    `json:"action" gorm:"size:64;index" bson:"action"`
	ResourceType string    `json:"resourceType" gorm:"size:64;index" bson:"resourceType"`
	ResourceID   string    `json:"resourceID" gorm:"size:36;index" bson:"resourceId"`
	BeforeJSON   string    `json:"beforeJSON" gorm:"type:text" bson:"beforeJson,omitempty"`
	AfterJSON    string    `json:"afterJSON" gorm:"type:text" bson:"afterJson,omitempty"`
	IPAddress    string    `json:"ipAddress" gorm:"size:64" bson:"ipAddress"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
