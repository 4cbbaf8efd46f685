package routes

import (
	"errors"
	"strings"

	"travel-planner-server/models"
	"travel-planner-server/storage"
	"travel-planner-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func Register(ctx iris.Context) {
	var userInput models.RegisterInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	reqCtx := ctx.Request().Context()

	_, err := storage.Store.FindUserByEmail(reqCtx, userInput.Email)
	if err == nil {
		utils.CreateError(iris.StatusBadRequest, "User already exists with this email", ctx)
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		log.Error().Err(err).Str("func", "Register").Msg("user lookup failed")
		utils.CreateInternalServerError(ctx, "Server error during registration")
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx, "Server error during registration")
		return
	}

	newUser := models.User{
		Name:     strings.TrimSpace(userInput.Name),
		Email:    strings.ToLower(userInput.Email),
		Password: hashedPassword,
	}
	if err := storage.Store.CreateUser(reqCtx, &newUser); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			utils.CreateError(iris.StatusBadRequest, "User already exists with this email", ctx)
			return
		}
		log.Error().Err(err).Str("func", "Register").Msg("create user failed")
		utils.CreateInternalServerError(ctx, "Server error during registration")
		return
	}

	returnUser(ctx, iris.StatusCreated, "User registered successfully", &newUser)
}

func Login(ctx iris.Context) {
	var userInput models.LoginInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid credentials"
	existingUser, err := storage.Store.FindUserByEmail(ctx.Request().Context(), userInput.Email)
	if errors.Is(err, storage.ErrNotFound) {
		utils.CreateUnauthorized(ctx, errorMsg)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("func", "Login").Msg("user lookup failed")
		utils.CreateInternalServerError(ctx, "Server error during login")
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateUnauthorized(ctx, errorMsg)
		return
	}

	returnUser(ctx, iris.StatusOK, "Login successful", existingUser)
}

func GetMe(ctx iris.Context) {
	user, err := storage.Store.FindUserByID(ctx.Request().Context(), utils.UserID(ctx))
	if errors.Is(err, storage.ErrNotFound) {
		utils.CreateNotFound(ctx, "User not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("func", "GetMe").Msg("user lookup failed")
		utils.CreateInternalServerError(ctx, "Server error while fetching profile")
		return
	}

	utils.JSONData(ctx, iris.StatusOK, "", iris.Map{"user": user.Summary()})
}

func UpdateProfile(ctx iris.Context) {
	var input models.ProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	reqCtx := ctx.Request().Context()

	user, err := storage.Store.FindUserByID(reqCtx, utils.UserID(ctx))
	if errors.Is(err, storage.ErrNotFound) {
		utils.CreateNotFound(ctx, "User not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("func", "UpdateProfile").Msg("user lookup failed")
		utils.CreateInternalServerError(ctx, "Server error while updating profile")
		return
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(*input.Email)
	}

	if err := storage.Store.UpdateUser(reqCtx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			utils.CreateError(iris.StatusBadRequest, "Email is already in use", ctx)
			return
		}
		log.Error().Err(err).Str("func", "UpdateProfile").Msg("update user failed")
		utils.CreateInternalServerError(ctx, "Server error while updating profile")
		return
	}

	utils.JSONData(ctx, iris.StatusOK, "Profile updated successfully", iris.Map{"user": user.Summary()})
}

func Logout(ctx iris.Context) {
	verified := jwt.GetVerifiedToken(ctx)
	if err := storage.RevokeSession(ctx.Request().Context(), string(verified.Token)); err != nil {
		log.Error().Err(err).Str("func", "Logout").Msg("revoke session failed")
		utils.CreateInternalServerError(ctx, "Server error during logout")
		return
	}
	utils.JSONData(ctx, iris.StatusOK, "Logged out successfully", nil)
}

// GetActivity returns the caller's most recent plan changes.
func GetActivity(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 20)
	if limit < 1 || limit > maxPageLimit {
		limit = 20
	}
	entries, err := storage.Store.ListAudit(ctx.Request().Context(), utils.UserID(ctx), limit)
	if err != nil {
		log.Error().Err(err).Str("func", "GetActivity").Msg("list audit failed")
		utils.CreateInternalServerError(ctx, "Server error while fetching activity")
		return
	}
	utils.JSONData(ctx, iris.StatusOK, "", iris.Map{"activity": entries})
}

func returnUser(ctx iris.Context, status int, message string, user *models.User) {
	token, err := utils.CreateAccessToken(user.ID, user.Email)
	if err != nil {
		utils.CreateInternalServerError(ctx, "Server error while issuing token")
		return
	}
	if err := storage.RecordSession(ctx.Request().Context(), token, user.ID, utils.AccessTokenTTL); err != nil {
		log.Error().Err(err).Str("user", user.ID).Msg("record session failed")
		utils.CreateInternalServerError(ctx, "Server error while issuing token")
		return
	}

	utils.JSONData(ctx, status, message, iris.Map{
		"token": token,
		"user":  user.Summary(),
	})
}

func hashAndSaltPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
