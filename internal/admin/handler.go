package admin

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/roamio/tripplanner/internal/apperr"
	"github.com/roamio/tripplanner/internal/models"
	"github.com/roamio/tripplanner/internal/response"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

type dayBucket struct {
	Name  string `json:"name"`
	Trips int64  `json:"trips"`
}

// DashboardStats returns the admin dashboard counters plus a per-day
// trip-creation series for the current calendar month.
func (h *Handler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers, activeUsers, suspendUsers, totalTrips int64

	if err := h.DB.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&totalUsers).Error; err != nil {
		return response.Err(c, apperr.Internal("Error fetching dashboard stats", err))
	}
	h.DB.Model(&models.User{}).Where("status = ?", models.StatusActive).Count(&activeUsers)
	h.DB.Model(&models.User{}).Where("status = ?", models.StatusSuspend).Count(&suspendUsers)
	h.DB.Model(&models.Trip{}).Count(&totalTrips)

	chartData, err := h.monthlyTripChart()
	if err != nil {
		return response.Err(c, apperr.Internal("Error fetching dashboard stats", err))
	}

	return response.Success(c, fiber.Map{
		"totalTrips":   totalTrips,
		"totalUsers":   totalUsers,
		"activeUsers":  activeUsers,
		"suspendUsers": suspendUsers,
		"chartData":    chartData,
	}, "Dashboard stats retrieved successfully")
}

// monthlyTripChart buckets this month's trips by day-of-month. The
// rows are bucketed in Go so the query stays portable between postgres
// and the sqlite test database.
func (h *Handler) monthlyTripChart() ([]dayBucket, error) {
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var createdAts []time.Time
	err := h.DB.Model(&models.Trip{}).
		Where("created_at >= ?", firstOfMonth).
		Pluck("created_at", &createdAts).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64)
	for _, ts := range createdAts {
		counts[ts.Day()]++
	}

	chart := []dayBucket{}
	for day := 1; day <= 31; day++ {
		if n, ok := counts[day]; ok {
			chart = append(chart, dayBucket{
				Name:  fmt.Sprintf("Day %d", day),
				Trips: n,
			})
		}
	}

	return chart, nil
}
