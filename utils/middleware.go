package utils

import (
	"travel-planner-server/storage"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/rs/zerolog/log"
)

// SessionMiddleware runs after the verifier and rejects tokens whose session
// was revoked by logout. It also stores the caller's id under "userID".
func SessionMiddleware(ctx iris.Context) {
	verified := jwt.GetVerifiedToken(ctx)
	claims := GetAccessToken(ctx)
	if verified == nil || claims == nil || claims.ID == "" {
		CreateUnauthorized(ctx, "Not authorized, token failed")
		return
	}

	active, err := storage.SessionActive(ctx.Request().Context(), string(verified.Token))
	if err != nil {
		log.Error().Err(err).Msg("session lookup failed")
		CreateInternalServerError(ctx, "Server error while checking session")
		return
	}
	if !active {
		CreateUnauthorized(ctx, "Session expired")
		return
	}

	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

func UserID(ctx iris.Context) string {
	return ctx.Values().GetString("userID")
}
