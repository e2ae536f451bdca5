package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/roamio/tripplanner/internal/admin"
	"github.com/roamio/tripplanner/internal/models"
	"github.com/roamio/tripplanner/internal/providers"
	"github.com/roamio/tripplanner/internal/server"
	"github.com/roamio/tripplanner/internal/storage"
	"github.com/roamio/tripplanner/internal/token"
	"github.com/roamio/tripplanner/internal/trip"
	"github.com/roamio/tripplanner/internal/user"
)

const TestJWTSecret = "test_secret_key_minimum_32_characters_long_for_testing_only"

// MailRecorder captures outgoing reset mails instead of dialing SMTP.
type MailRecorder struct {
	To       []string
	ResetURL string
	Err      error
}

func (m *MailRecorder) SendPasswordReset(to, resetURL string) error {
	if m.Err != nil {
		return m.Err
	}
	m.To = append(m.To, to)
	m.ResetURL = resetURL
	return nil
}

// FakeGoogleVerifier returns a canned identity for google_login tests.
type FakeGoogleVerifier struct {
	Identity *user.GoogleIdentity
	Err      error
}

func (f *FakeGoogleVerifier) Verify(ctx context.Context, idToken string) (*user.GoogleIdentity, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Identity, nil
}

// TestApp bundles the app under test with the seams tests poke at.
type TestApp struct {
	App    *fiber.App
	DB     *gorm.DB
	Tokens *token.Service
	Mail   *MailRecorder
	Google *FakeGoogleVerifier
}

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Trip{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

// SetupTestApp builds the full route tree on an in-memory database.
// The provider clients point nowhere; tests that exercise them use
// SetupTestAppWithProviders.
func SetupTestApp(t *testing.T) *TestApp {
	return SetupTestAppWithProviders(t, nil, nil, nil)
}

func SetupTestAppWithProviders(t *testing.T, gemini *providers.GeminiClient, places *providers.PlacesClient, weather *providers.WeatherClient) *TestApp {
	db := TestDB(t)

	tokens := token.NewService(TestJWTSecret)
	mail := &MailRecorder{}
	google := &FakeGoogleVerifier{}

	store, err := storage.NewLocal(t.TempDir())
	assert.NoError(t, err, "Failed to initialize storage")

	if gemini == nil {
		gemini = providers.NewGemini("test-key")
	}
	if places == nil {
		places = providers.NewPlaces("test-key")
	}
	if weather == nil {
		weather = providers.NewWeather("test-key")
	}

	deps := server.Deps{
		Tokens: tokens,
		Users:  user.NewHandler(db, tokens, mail, store, google, nil, "http://localhost:5173"),
		Trips:  trip.NewHandler(db, gemini, places, weather),
		Admin:  admin.NewHandler(db),
	}

	return &TestApp{
		App:    server.New(deps),
		DB:     db,
		Tokens: tokens,
		Mail:   mail,
		Google: google,
	}
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password string, role models.Role) *models.User {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	assert.NoError(t, err)

	u := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hashed),
		Role:     role,
		Status:   models.StatusActive,
		Provider: "local",
	}

	err = db.Create(u).Error
	assert.NoError(t, err, "Failed to create test user")

	return u
}

func GetAuthToken(t *testing.T, tokens *token.Service, u *models.User) string {
	tok, err := tokens.SignAccess(u.ID, u.Role)
	assert.NoError(t, err, "Failed to generate test token")
	return tok
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func MakeMultipartRequest(app *fiber.App, method, url string, fields map[string]string, files map[string][]byte, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		writer.WriteField(key, val)
	}

	for fieldName, fileContent := range files {
		part, err := writer.CreateFormFile(fieldName, fieldName+".jpg")
		if err != nil {
			return nil, err
		}
		part.Write(fileContent)
	}

	contentType := writer.FormDataContentType()
	writer.Close()

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

// Body mirrors the wire envelope of the response package.
type Body struct {
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Error      interface{} `json:"error"`
	Page       int         `json:"page"`
	TotalCount int64       `json:"totalCount"`
	TotalPages int64       `json:"totalPages"`
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

func DataField(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	var result Body
	ParseResponse(t, resp, &result)

	data, ok := result.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object in data field, got %T", result.Data)
	}
	return data
}

func SeedTrip(t *testing.T, db *gorm.DB, userID uint, destination string, public bool) *models.Trip {
	tr := &models.Trip{
		UserID:      userID,
		Destination: destination,
		NoOfDays:    3,
		Budget:      "Moderate",
		Travelers:   "Couple",
		Plan:        []byte(fmt.Sprintf(`{"tripName":"Trip to %s","hotels":["Hotel A"],"itinerary":[]}`, destination)),
		IsPublic:    public,
	}
	err := db.Create(tr).Error
	assert.NoError(t, err, "Failed to seed trip")
	return tr
}
