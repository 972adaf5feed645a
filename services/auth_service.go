package services

import (
	"context"
	"strings"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	Firstname string
	Lastname  string
	Role      models.Role
}

// Session là cặp token được cấp sau khi đăng nhập.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser tạo tài khoản mới. Role lưu luôn là pathfinder; yêu cầu role
// admin chỉ tạo một yêu cầu pending chờ superuser duyệt.
func RegisterUser(db *gorm.DB, cfg *config.Config, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Firstname = strings.TrimSpace(in.Firstname)
	in.Lastname = strings.TrimSpace(in.Lastname)
	in.Email = normalizeEmail(in.Email)

	if in.Username == "" || in.Password == "" || in.Email == "" ||
		in.Firstname == "" || in.Lastname == "" || in.Role == "" {
		return nil, utils.NewValidationError("All fields are required")
	}
	if !in.Role.Valid() {
		return nil, utils.NewValidationError("Invalid role")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	if count > 0 {
		return nil, utils.NewConflictError("Username already exists")
	}
	if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	if count > 0 {
		return nil, utils.NewConflictError("Email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Password:  hash,
		Role:      models.RolePathfinder,
	}
	if in.Role == models.RoleAdmin {
		status := models.StatusPending
		user.Status = &status
	}
	if cfg.IsSuperuserEmail(in.Email) {
		status := models.StatusApproved
		user.Role = models.RoleSuperuser
		user.Status = &status
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError("User already exists")
		}
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// LoginUser không phân biệt "sai email" và "sai mật khẩu".
func LoginUser(db *gorm.DB, cfg *config.Config, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.NewValidationError("Email and password are required")
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewAuthError("Invalid credentials")
		}
		return nil, errors.WithStack(err)
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, utils.NewAuthError("Invalid credentials")
	}

	return IssueSession(db, cfg, &user)
}

// IssueSession cấp access + refresh token và ghi đè refresh token đang lưu.
func IssueSession(db *gorm.DB, cfg *config.Config, user *models.User) (*Session, error) {
	access, err := utils.GenerateAccessToken(cfg.JWTSecret, cfg.AccessTokenTTL, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken(cfg.JWTRefreshSecret, cfg.RefreshTokenTTL, user.Username)
	if err != nil {
		return nil, err
	}

	if err := db.Model(user).Update("refresh_token", refresh).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	user.RefreshToken = &refresh

	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// RefreshAccessToken cấp access token mới từ refresh token trong cookie.
// Refresh token không được xoay vòng.
func RefreshAccessToken(db *gorm.DB, cfg *config.Config, refreshToken string) (string, *models.User, error) {
	if refreshToken == "" {
		return "", nil, utils.NewAuthError("Unauthorized")
	}

	var user models.User
	if err := db.Where("refresh_token = ?", refreshToken).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, utils.NewForbiddenError("Forbidden")
		}
		return "", nil, errors.WithStack(err)
	}

	claims, err := utils.VerifyRefreshToken(cfg.JWTRefreshSecret, refreshToken)
	if err != nil || claims.Username != user.Username {
		return "", nil, utils.NewForbiddenError("Forbidden")
	}

	access, err := utils.GenerateAccessToken(cfg.JWTSecret, cfg.AccessTokenTTL, user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return access, &user, nil
}

// LogoutUser xoá refresh token đang lưu và đưa access token vào denylist.
// Gọi nhiều lần vẫn an toàn.
func LogoutUser(ctx context.Context, db *gorm.DB, cfg *config.Config, denylist *TokenDenylist, refreshToken, accessToken string) error {
	if refreshToken != "" {
		err := db.Model(&models.User{}).
			Where("refresh_token = ?", refreshToken).
			Update("refresh_token", nil).Error
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if accessToken != "" && denylist.Enabled() {
		claims, err := utils.VerifyAccessToken(cfg.JWTSecret, accessToken)
		if err == nil && claims.ExpiresAt != nil {
			if err := denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				return errors.Wrap(err, "revoking access token")
			}
		}
	}
	return nil
}

// GoogleIdentity là thông tin lấy từ Google ID token.
type GoogleIdentity struct {
	Email     string
	Firstname string
	Lastname  string
}

// ValidateGoogleIDToken có thể thay thế trong test.
var ValidateGoogleIDToken = func(ctx context.Context, idToken, audience string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, idToken, audience)
	if err != nil {
		return nil, err
	}
	email, _ := payload.Claims["email"].(string)
	given, _ := payload.Claims["given_name"].(string)
	family, _ := payload.Claims["family_name"].(string)
	return &GoogleIdentity{Email: email, Firstname: given, Lastname: family}, nil
}

// GoogleLogin xác minh ID token; email mới sẽ được tạo tài khoản pathfinder.
func GoogleLogin(ctx context.Context, db *gorm.DB, cfg *config.Config, idToken string) (*Session, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, utils.NewValidationError("idToken is required")
	}

	identity, err := ValidateGoogleIDToken(ctx, idToken, cfg.GoogleClientID)
	if err != nil || identity.Email == "" {
		return nil, utils.NewAuthError("Invalid Google token")
	}
	email := normalizeEmail(identity.Email)

	var user models.User
	err = db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, err := createGoogleUser(db, cfg, email, identity)
		if err != nil {
			return nil, err
		}
		user = *created
	default:
		return nil, errors.WithStack(err)
	}

	return IssueSession(db, cfg, &user)
}

func createGoogleUser(db *gorm.DB, cfg *config.Config, email string, identity *GoogleIdentity) (*models.User, error) {
	// mật khẩu ngẫu nhiên: tài khoản Google không đăng nhập bằng mật khẩu
	hash, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}

	username, err := uniqueUsername(db, strings.SplitN(email, "@", 2)[0])
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Firstname: identity.Firstname,
		Lastname:  identity.Lastname,
		Password:  hash,
		Role:      models.RolePathfinder,
	}
	if cfg.IsSuperuserEmail(email) {
		status := models.StatusApproved
		user.Role = models.RoleSuperuser
		user.Status = &status
	}
	if err := db.Create(user).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

func uniqueUsername(db *gorm.DB, base string) (string, error) {
	if base == "" {
		base = "pathfinder"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", errors.WithStack(err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:8]
	}
	return "", utils.NewConflictError("Username already exists")
}

// ChangePassword đổi mật khẩu sau khi kiểm tra mật khẩu cũ.
func ChangePassword(db *gorm.DB, userID uuid.UUID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return utils.NewValidationError("oldPassword and newPassword are required")
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found")
		}
		return errors.WithStack(err)
	}
	if !utils.CheckPassword(user.Password, oldPassword) {
		return utils.NewAuthError("Invalid credentials")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	// các phiên khác phải đăng nhập lại
	return errors.WithStack(db.Model(&user).Updates(map[string]interface{}{
		"password":      hash,
		"refresh_token": nil,
	}).Error)
}
