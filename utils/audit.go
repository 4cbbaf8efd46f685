package utils

import (
	"encoding/json"
	"net"

	"travel-planner-server/models"
	"travel-planner-server/storage"

	"github.com/kataras/iris/v12"
	"github.com/rs/zerolog/log"
)

const AuditResourcePlan = "travel_plan"

// Audit records a change made by the calling user. It never fails the
// request; a store error is only logged.
func Audit(ctx iris.Context, action, resourceType, resourceID string, before, after interface{}) {
	entry := models.AuditLog{
		UserID:       UserID(ctx),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeJSON:   marshalAudit(before),
		AfterJSON:    marshalAudit(after),
		IPAddress:    clientIP(ctx),
	}
	if err := storage.Store.RecordAudit(ctx.Request().Context(), &entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("resource", resourceID).
			Msg("audit write failed")
	}
}

func marshalAudit(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func clientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(ctx.RemoteAddr())
	if err != nil {
		return ctx.RemoteAddr()
	}
	return ip
}
