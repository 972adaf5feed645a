package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/middleware"
	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
	"github.com/vnkhanh/pathfinder-backend/ws"
)

type RegisterInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginInput struct {
	IDToken string `json:"idToken"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func setRefreshCookie(c *gin.Context, cfg *config.Config, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     utils.RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.RefreshCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     utils.RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func Register(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := services.RegisterUser(getDB(c), getConfig(c), services.RegisterInput{
		Username:  input.Username,
		Password:  input.Password,
		Email:     input.Email,
		Firstname: input.Firstname,
		Lastname:  input.Lastname,
		Role:      models.Role(input.Role),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// Báo cho superuser đang mở trang quản trị
	if user.Status != nil && *user.Status == models.StatusPending {
		ws.BroadcastAdminRequest("admin_request_created", user.ID.String(), user.Username, user.Email, string(*user.Status))
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	cfg := getConfig(c)
	session, err := services.LoginUser(getDB(c), cfg, input.Email, input.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	setRefreshCookie(c, cfg, session.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   session.AccessToken,
	})
}

func GoogleLogin(c *gin.Context) {
	var input GoogleLoginInput
	if !bindJSON(c, &input) {
		return
	}

	cfg := getConfig(c)
	session, err := services.GoogleLogin(c.Request.Context(), getDB(c), cfg, input.IDToken)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	setRefreshCookie(c, cfg, session.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   session.AccessToken,
	})
}

// RefreshToken cấp access token mới từ cookie jwt; refresh token giữ nguyên.
func RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(utils.RefreshCookieName)

	token, _, err := services.RefreshAccessToken(getDB(c), getConfig(c), refreshToken)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(utils.RefreshCookieName)
	accessToken, _ := middleware.BearerToken(c)
	denylist, _ := c.MustGet("denylist").(*services.TokenDenylist)

	err := services.LogoutUser(c.Request.Context(), getDB(c), getConfig(c), denylist, refreshToken, accessToken)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

func ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := services.ChangePassword(getDB(c), currentUserID(c), input.OldPassword, input.NewPassword); err != nil {
		utils.RespondError(c, err)
		return
	}

	clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
