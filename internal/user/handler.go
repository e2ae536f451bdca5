package user

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/roamio/tripplanner/internal/apperr"
	"github.com/roamio/tripplanner/internal/mailer"
	"github.com/roamio/tripplanner/internal/middleware"
	"github.com/roamio/tripplanner/internal/models"
	"github.com/roamio/tripplanner/internal/response"
	"github.com/roamio/tripplanner/internal/storage"
	"github.com/roamio/tripplanner/internal/token"
)

var policy = bluemonday.StrictPolicy()

type Handler struct {
	DB          *gorm.DB
	Tokens      *token.Service
	Mail        mailer.Mailer
	Store       storage.Store
	Google      GoogleVerifier
	OAuth       *oauth2.Config
	FrontendURL string

	states *stateStore
}

func NewHandler(db *gorm.DB, tokens *token.Service, mail mailer.Mailer, store storage.Store, google GoogleVerifier, oauthCfg *oauth2.Config, frontendURL string) *Handler {
	return &Handler{
		DB:          db,
		Tokens:      tokens,
		Mail:        mail,
		Store:       store,
		Google:      google,
		OAuth:       oauthCfg,
		FrontendURL: frontendURL,
		states:      newStateStore(),
	}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.Name == "" || body.Email == "" || body.Password == "" || body.ConfirmPassword == "" {
		return response.Err(c, apperr.Validation("All fields are required"))
	}

	if body.Password != body.ConfirmPassword {
		return response.Err(c, apperr.Validation("Passwords do not match"))
	}

	var existing models.User
	if err := h.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil {
		return response.Err(c, apperr.Validation("User already exists"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return response.Err(c, apperr.Internal("User registration failed", err))
	}

	u := models.User{
		Name:     policy.Sanitize(body.Name),
		Email:    body.Email,
		Password: string(hashed),
		Role:     models.RoleUser,
		Status:   models.StatusActive,
		Provider: "local",
	}

	if err := h.DB.Create(&u).Error; err != nil {
		return response.Err(c, apperr.Internal("User registration failed", err))
	}

	return response.Created(c, fiber.Map{
		"id":     u.ID,
		"email":  u.Email,
		"role":   u.Role,
		"status": u.Status,
	}, "User registered successfully")
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.Email == "" || body.Password == "" {
		return response.Err(c, apperr.Validation("All fields are required"))
	}

	var u models.User
	if err := h.DB.Where("email = ?", body.Email).First(&u).Error; err != nil {
		return response.Err(c, apperr.Unauthorized("Invalid credentials"))
	}

	// SUSPEND is the only state that blocks login.
	if u.Status == models.StatusSuspend {
		return response.Err(c, apperr.Unauthorized("Account suspended"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(body.Password)); err != nil {
		return response.Err(c, apperr.Unauthorized("Invalid credentials"))
	}

	accessToken, refreshToken, err := h.issueTokenPair(&u)
	if err != nil {
		return response.Err(c, apperr.Internal("Login failed", err))
	}

	return response.Success(c, fiber.Map{
		"email":        u.Email,
		"role":         u.Role,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "Login successful")
}

func (h *Handler) Refresh(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.RefreshToken == "" {
		return response.Err(c, apperr.Validation("refreshToken is required"))
	}

	claims, err := h.Tokens.ParseRefresh(body.RefreshToken)
	if err != nil {
		return response.Err(c, apperr.Unauthorized("Invalid or expired token"))
	}

	// The subject must still exist and be allowed to log in.
	var u models.User
	if err := h.DB.First(&u, claims.UserID).Error; err != nil {
		return response.Err(c, apperr.Unauthorized("Invalid or expired token"))
	}
	if u.Status == models.StatusSuspend {
		return response.Err(c, apperr.Unauthorized("Account suspended"))
	}

	accessToken, err := h.Tokens.SignAccess(u.ID, u.Role)
	if err != nil {
		return response.Err(c, apperr.Internal("Token refresh failed", err))
	}

	return response.Success(c, fiber.Map{
		"accessToken": accessToken,
	}, "Token refreshed successfully")
}

func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.Email == "" {
		return response.Err(c, apperr.Validation("email is required"))
	}

	// Respond the same whether or not the account exists.
	const sent = "If account exists, reset link has been sent"

	var u models.User
	if err := h.DB.Where("email = ?", body.Email).First(&u).Error; err != nil {
		return response.Success(c, nil, sent)
	}

	plainToken, tokenHash, err := generateResetToken()
	if err != nil {
		return response.Err(c, apperr.Internal("Failed to generate reset token", err))
	}

	expires := time.Now().Add(1 * time.Hour)
	u.ResetPasswordToken = &tokenHash
	u.ResetPasswordExpires = &expires

	if err := h.DB.Save(&u).Error; err != nil {
		return response.Err(c, apperr.Internal("Failed to save reset token", err))
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", h.FrontendURL, plainToken)
	if err := h.Mail.SendPasswordReset(u.Email, resetURL); err != nil {
		return response.Err(c, apperr.Upstream("Failed to send reset email", nil, err))
	}

	return response.Success(c, nil, sent)
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	plainToken := c.Params("token")

	var body struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.Password == "" || body.ConfirmPassword == "" {
		return response.Err(c, apperr.Validation("All fields are required"))
	}

	if body.Password != body.ConfirmPassword {
		return response.Err(c, apperr.Validation("Passwords do not match"))
	}

	tokenHash := hashResetToken(plainToken)

	var u models.User
	err := h.DB.Where("reset_password_token = ? AND reset_password_expires > ?", tokenHash, time.Now()).
		First(&u).Error
	if err != nil {
		return response.Err(c, apperr.Validation("Invalid or expired token"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return response.Err(c, apperr.Internal("Password reset failed", err))
	}

	u.Password = string(hashed)
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil

	if err := h.DB.Save(&u).Error; err != nil {
		return response.Err(c, apperr.Internal("Password reset failed", err))
	}

	return response.Success(c, nil, "Password reset successful")
}

func (h *Handler) GetMyDetails(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var u models.User
	if err := h.DB.First(&u, userID).Error; err != nil {
		return response.Err(c, apperr.NotFound("User"))
	}

	return response.Success(c, u, "User details retrieved successfully")
}

// UpdateProfile applies optional name/email/password changes from a
// multipart form; an optional "profile" file replaces the picture via
// object storage.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var u models.User
	if err := h.DB.First(&u, userID).Error; err != nil {
		return response.Err(c, apperr.NotFound("User"))
	}

	if name := c.FormValue("name"); name != "" {
		u.Name = policy.Sanitize(name)
	}

	if email := c.FormValue("email"); email != "" && email != u.Email {
		var existing models.User
		if err := h.DB.Where("email = ? AND id != ?", email, u.ID).First(&existing).Error; err == nil {
			return response.Err(c, apperr.Validation("Email already taken"))
		}
		u.Email = email
	}

	if password := c.FormValue("password"); password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return response.Err(c, apperr.Internal("Profile update failed", err))
		}
		u.Password = string(hashed)
	}

	if file, err := c.FormFile("profile"); err == nil {
		url, err := h.Store.Upload(file)
		if err != nil {
			return response.Err(c, apperr.Upstream("Failed to upload profile picture", nil, err))
		}
		u.Profile = url
	}

	if err := h.DB.Save(&u).Error; err != nil {
		return response.Err(c, apperr.Internal("Profile update failed", err))
	}

	return response.Success(c, u, "Profile updated successfully")
}

// AllUsers lists non-admin accounts for the admin screens, paginated
// newest-first.
func (h *Handler) AllUsers(c *fiber.Ctx) error {
	page, limit := pagination(c)
	offset := (page - 1) * limit

	var users []models.User
	var total int64

	query := h.DB.Model(&models.User{}).Where("role = ?", models.RoleUser)
	query.Count(&total)

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return response.Err(c, apperr.Internal("Error fetching users", err))
	}

	return response.Paginated(c, users, "Users retrieved successfully", page, limit, total)
}

func (h *Handler) SuspendUser(c *fiber.Ctx) error {
	return h.setStatus(c, models.StatusSuspend, "User suspended successfully")
}

func (h *Handler) ActivateUser(c *fiber.Ctx) error {
	return h.setStatus(c, models.StatusActive, "User activated successfully")
}

func (h *Handler) setStatus(c *fiber.Ctx, status models.Status, message string) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return response.Err(c, apperr.Validation("User ID is required"))
	}

	var u models.User
	if err := h.DB.First(&u, id).Error; err != nil {
		return response.Err(c, apperr.NotFound("User"))
	}

	u.Status = status
	if err := h.DB.Save(&u).Error; err != nil {
		return response.Err(c, apperr.Internal("Error updating user status", err))
	}

	return response.Success(c, nil, message)
}

func (h *Handler) issueTokenPair(u *models.User) (string, string, error) {
	accessToken, err := h.Tokens.SignAccess(u.ID, u.Role)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := h.Tokens.SignRefresh(u.ID)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func pagination(c *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func generateResetToken() (string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain := hex.EncodeToString(b)
	return plain, hashResetToken(plain), nil
}

func hashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func randomPassword() string {
	return uuid.New().String()
}
