package trip

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roamio/tripplanner/internal/apperr"
	"github.com/roamio/tripplanner/internal/middleware"
	"github.com/roamio/tripplanner/internal/models"
	"github.com/roamio/tripplanner/internal/providers"
	"github.com/roamio/tripplanner/internal/response"
)

var policy = bluemonday.StrictPolicy()

type Handler struct {
	DB      *gorm.DB
	Gemini  *providers.GeminiClient
	Places  *providers.PlacesClient
	Weather *providers.WeatherClient
}

func NewHandler(db *gorm.DB, gemini *providers.GeminiClient, places *providers.PlacesClient, weather *providers.WeatherClient) *Handler {
	return &Handler{DB: db, Gemini: gemini, Places: places, Weather: weather}
}

// Generate proxies the itinerary request to the AI service and returns
// the plan without persisting anything; the client saves explicitly.
func (h *Handler) Generate(c *fiber.Ctx) error {
	var body struct {
		Destination string `json:"destination"`
		NoOfDays    int    `json:"noOfDays"`
		Budget      string `json:"budget"`
		Travelers   string `json:"travelers"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.Destination == "" || body.NoOfDays == 0 || body.Budget == "" || body.Travelers == "" {
		return response.Err(c, apperr.Validation("All fields are required"))
	}

	plan, err := h.Gemini.GenerateItinerary(c.Context(), providers.GenerateRequest{
		Destination: body.Destination,
		NoOfDays:    body.NoOfDays,
		Budget:      body.Budget,
		Travelers:   body.Travelers,
	})
	if err != nil {
		return response.Err(c, err)
	}

	return response.Success(c, plan, "Itinerary generated successfully")
}

func (h *Handler) Save(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var body struct {
		Destination string          `json:"destination"`
		NoOfDays    int             `json:"noOfDays"`
		Budget      string          `json:"budget"`
		Travelers   string          `json:"travelers"`
		Plan        json.RawMessage `json:"plan"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.Destination == "" || body.NoOfDays == 0 || len(body.Plan) == 0 {
		return response.Err(c, apperr.Validation("All fields are required"))
	}

	t := models.Trip{
		UserID:      userID,
		Destination: policy.Sanitize(body.Destination),
		NoOfDays:    body.NoOfDays,
		Budget:      body.Budget,
		Travelers:   body.Travelers,
		Plan:        datatypes.JSON(body.Plan),
	}

	if err := h.DB.Create(&t).Error; err != nil {
		return response.Err(c, apperr.Internal("Failed to save trip", err))
	}

	return response.Created(c, t, "Trip saved successfully")
}

// MyTrips lists the caller's trips, paginated newest-first.
func (h *Handler) MyTrips(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	page, limit := pagination(c)
	offset := (page - 1) * limit

	var trips []models.Trip
	var total int64

	query := h.DB.Model(&models.Trip{}).Where("user_id = ?", userID)
	query.Count(&total)

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&trips).Error; err != nil {
		return response.Err(c, apperr.Internal("Error fetching trips", err))
	}

	return response.Paginated(c, trips, "Trips retrieved successfully", page, limit, total)
}

// ViewTrip returns a single trip. Private trips are visible to their
// owner and admins only.
func (h *Handler) ViewTrip(c *fiber.Ctx) error {
	t, err := h.findTrip(c)
	if err != nil {
		return response.Err(c, err)
	}

	if !t.IsPublic && !canManage(c, t) {
		return response.Err(c, apperr.Forbidden("You do not have access to this trip"))
	}

	return response.Success(c, t, "Trip retrieved successfully")
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	t, err := h.findTrip(c)
	if err != nil {
		return response.Err(c, err)
	}

	if !canManage(c, t) {
		return response.Err(c, apperr.Forbidden("You can only delete your own trips"))
	}

	if err := h.DB.Delete(t).Error; err != nil {
		return response.Err(c, apperr.Internal("Error deleting trip", err))
	}

	return response.Success(c, nil, "Trip deleted successfully")
}

// TogglePublish flips the public visibility flag.
func (h *Handler) TogglePublish(c *fiber.Ctx) error {
	t, err := h.findTrip(c)
	if err != nil {
		return response.Err(c, err)
	}

	if !canManage(c, t) {
		return response.Err(c, apperr.Forbidden("You can only publish your own trips"))
	}

	t.IsPublic = !t.IsPublic
	if err := h.DB.Save(t).Error; err != nil {
		return response.Err(c, apperr.Internal("Error updating trip", err))
	}

	message := "Trip unpublished successfully"
	if t.IsPublic {
		message = "Trip published successfully"
	}

	return response.Success(c, t, message)
}

// PublicTrips lists published trips, optionally filtered by a
// destination search term.
func (h *Handler) PublicTrips(c *fiber.Ctx) error {
	page, limit := pagination(c)
	offset := (page - 1) * limit

	var trips []models.Trip
	var total int64

	query := h.DB.Model(&models.Trip{}).Where("is_public = ?", true)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&trips).Error; err != nil {
		return response.Err(c, apperr.Internal("Error fetching trips", err))
	}

	return response.Paginated(c, trips, "Public trips retrieved successfully", page, limit, total)
}

// Clone copies a trip's content into a new record owned by the caller.
// The source must be public or already owned by the caller.
func (h *Handler) Clone(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	src, err := h.findTrip(c)
	if err != nil {
		return response.Err(c, err)
	}

	if !src.IsPublic && src.UserID != userID {
		return response.Err(c, apperr.Forbidden("You can only clone public trips"))
	}

	clone := models.Trip{
		UserID:      userID,
		Destination: src.Destination,
		NoOfDays:    src.NoOfDays,
		Budget:      src.Budget,
		Travelers:   src.Travelers,
		Plan:        src.Plan,
	}

	if err := h.DB.Create(&clone).Error; err != nil {
		return response.Err(c, apperr.Internal("Error cloning trip", err))
	}

	return response.Created(c, clone, "Trip cloned successfully")
}

// AllTrips lists every trip with the owner's name and email, admin
// only, paginated newest-first.
func (h *Handler) AllTrips(c *fiber.Ctx) error {
	page, limit := pagination(c)
	offset := (page - 1) * limit

	var trips []models.Trip
	var total int64

	query := h.DB.Model(&models.Trip{})
	query.Count(&total)

	err := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&trips).Error
	if err != nil {
		return response.Err(c, apperr.Internal("Error fetching trips", err))
	}

	return response.Paginated(c, trips, "Trips retrieved successfully", page, limit, total)
}

func (h *Handler) GetImage(c *fiber.Ctx) error {
	var body struct {
		PlaceName string `json:"placeName"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.PlaceName == "" {
		return response.Err(c, apperr.Validation("placeName is required"))
	}

	img, err := h.Places.SearchImage(c.Context(), body.PlaceName)
	if err != nil {
		return response.Err(c, err)
	}

	return response.Success(c, img, "Image retrieved successfully")
}

func (h *Handler) GetWeather(c *fiber.Ctx) error {
	var body struct {
		City string `json:"city"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if body.City == "" {
		return response.Err(c, apperr.Validation("city is required"))
	}

	weather, err := h.Weather.Current(c.Context(), body.City)
	if err != nil {
		return response.Err(c, err)
	}

	return response.Success(c, weather, "Weather retrieved successfully")
}

func (h *Handler) findTrip(c *fiber.Ctx) (*models.Trip, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, apperr.Validation("Trip ID is required")
	}

	var t models.Trip
	if err := h.DB.First(&t, id).Error; err != nil {
		return nil, apperr.NotFound("Trip")
	}

	return &t, nil
}

// canManage reports whether the caller owns the trip or is an admin.
func canManage(c *fiber.Ctx, t *models.Trip) bool {
	if t.UserID == middleware.UserID(c) {
		return true
	}
	return middleware.RoleOf(c) == models.RoleAdmin
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
