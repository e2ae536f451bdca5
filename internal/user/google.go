package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/roamio/tripplanner/internal/apperr"
	"github.com/roamio/tripplanner/internal/models"
	"github.com/roamio/tripplanner/internal/response"
)

// GoogleVerifier checks a Google ID token and returns the verified
// identity. Tests substitute a fake.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type GoogleIdentity struct {
	Email string
	Name  string
}

var errInvalidGoogleAudience = errors.New("invalid google audience")

// TokeninfoVerifier validates ID tokens against Google's tokeninfo
// endpoint and checks the audience matches our client id.
type TokeninfoVerifier struct {
	ClientID string
}

func (v *TokeninfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	svc, err := goauth2.NewService(ctx, option.WithHTTPClient(&http.Client{}))
	if err != nil {
		return nil, err
	}

	info, err := svc.Tokeninfo().IdToken(idToken).Do()
	if err != nil {
		return nil, err
	}

	if v.ClientID != "" && info.Audience != v.ClientID {
		return nil, errInvalidGoogleAudience
	}

	// Tokeninfo carries no display name; fall back to the mailbox part.
	name := info.Email
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}

	return &GoogleIdentity{Email: info.Email, Name: name}, nil
}

// GoogleLogin exchanges a verified Google ID token for our token pair,
// creating the account on first login.
func (h *Handler) GoogleLogin(c *fiber.Ctx) error {
	var body struct {
		IDToken string `json:"idToken"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.IDToken == "" {
		return response.Err(c, apperr.Validation("idToken is required"))
	}

	identity, err := h.Google.Verify(c.Context(), body.IDToken)
	if err != nil {
		return response.Err(c, apperr.Unauthorized("Invalid Google token"))
	}

	u, err := h.findOrCreateGoogleUser(identity)
	if err != nil {
		return response.Err(c, apperr.Internal("Google login failed", err))
	}

	if u.Status == models.StatusSuspend {
		return response.Err(c, apperr.Unauthorized("Account suspended"))
	}

	accessToken, refreshToken, err := h.issueTokenPair(u)
	if err != nil {
		return response.Err(c, apperr.Internal("Google login failed", err))
	}

	return response.Success(c, fiber.Map{
		"email":        u.Email,
		"role":         u.Role,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "Login successful")
}

func (h *Handler) findOrCreateGoogleUser(identity *GoogleIdentity) (*models.User, error) {
	var u models.User
	err := h.DB.Where("email = ?", identity.Email).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// First OAuth login: create the record with a random password so
	// the account can never be entered via the password form.
	u = models.User{
		Name:     policy.Sanitize(identity.Name),
		Email:    identity.Email,
		Password: randomPassword(),
		Role:     models.RoleUser,
		Status:   models.StatusActive,
		Provider: "google",
	}

	if err := h.DB.Create(&u).Error; err != nil {
		return nil, err
	}

	return &u, nil
}

// ---- Browser redirect flow ----

type stateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[string]time.Time)}
}

func (s *stateStore) issue() string {
	b := make([]byte, 32)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = time.Now().Add(5 * time.Minute)

	for k, v := range s.states {
		if time.Now().After(v) {
			delete(s.states, k)
		}
	}

	return state
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.states[state]
	if !exists || time.Now().After(expiry) {
		return false
	}
	delete(s.states, state)
	return true
}

func (h *Handler) GoogleRedirect(c *fiber.Ctx) error {
	state := h.states.issue()
	return c.Redirect(h.OAuth.AuthCodeURL(state))
}

func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	if !h.states.consume(c.Query("state")) {
		return response.Err(c, apperr.Validation("Invalid state parameter"))
	}

	tok, err := h.OAuth.Exchange(context.Background(), c.Query("code"))
	if err != nil {
		return response.Err(c, apperr.Upstream("Failed to exchange token", nil, err))
	}

	client := h.OAuth.Client(context.Background(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return response.Err(c, apperr.Upstream("Failed to get user info", nil, err))
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var userData struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &userData); err != nil || userData.Email == "" {
		return response.Err(c, apperr.Upstream("Failed to get user info", nil, err))
	}

	u, err := h.findOrCreateGoogleUser(&GoogleIdentity{Email: userData.Email, Name: userData.Name})
	if err != nil {
		return response.Err(c, apperr.Internal("Google login failed", err))
	}

	if u.Status == models.StatusSuspend {
		return response.Err(c, apperr.Unauthorized("Account suspended"))
	}

	accessToken, refreshToken, err := h.issueTokenPair(u)
	if err != nil {
		return response.Err(c, apperr.Internal("Google login failed", err))
	}

	return response.Success(c, fiber.Map{
		"email":        u.Email,
		"role":         u.Role,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "Login successful")
}
