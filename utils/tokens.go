package utils

import (
	"os"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const AccessTokenTTL = 24 * time.Hour

type AccessToken struct {
	ID    string `json:"ID"`
	Email string `json:"email"`
}

func accessTokenSecret() []byte {
	return []byte(os.Getenv("ACCESS_TOKEN_SECRET"))
}

func CreateAccessToken(id, email string) (string, error) {
	signer := jwt.NewSigner(jwt.HS256, accessTokenSecret(), AccessTokenTTL)
	token, err := signer.Sign(AccessToken{ID: id, Email: email})
	if err != nil {
		return "", err
	}
	return string(token), nil
}

// NewAccessTokenVerifier rejects missing, malformed and expired tokens with the
// standard 401 envelope so clients can tear their session down.
func NewAccessTokenVerifier() *jwt.Verifier {
	verifier := jwt.NewVerifier(jwt.HS256, accessTokenSecret())
	verifier.ErrorHandler = func(ctx iris.Context, err error) {
		CreateUnauthorized(ctx, "Not authorized, token failed")
	}
	return verifier
}

func GetAccessToken(ctx iris.Context) *AccessToken {
	claims, _ := jwt.Get(ctx).(*AccessToken)
	return claims
}
