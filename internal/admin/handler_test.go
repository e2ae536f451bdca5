package admin_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roamio/tripplanner/internal/models"
	"github.com/roamio/tripplanner/internal/testutils"
)

func TestDashboardStats(t *testing.T) {
	ta := testutils.SetupTestApp(t)

	adminUser := testutils.CreateTestUser(t, ta.DB, "admin@example.com", "adminpass", models.RoleAdmin)
	active := testutils.CreateTestUser(t, ta.DB, "active@example.com", "password123", models.RoleUser)
	suspended := testutils.CreateTestUser(t, ta.DB, "suspended@example.com", "password123", models.RoleUser)
	ta.DB.Model(&models.User{}).Where("id = ?", suspended.ID).Update("status", models.StatusSuspend)

	testutils.SeedTrip(t, ta.DB, active.ID, "Rome", false)
	testutils.SeedTrip(t, ta.DB, active.ID, "Paris", true)
	testutils.SeedTrip(t, ta.DB, suspended.ID, "Tokyo", false)

	token := testutils.GetAuthToken(t, ta.Tokens, adminUser)

	resp, err := testutils.MakeRequest(ta.App, "GET", "/admin/dashboard_stats", nil, token)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	data := testutils.DataField(t, resp)

	// The admin row never counts toward totalUsers but its ACTIVE
	// status does count toward activeUsers.
	assert.Equal(t, float64(2), data["totalUsers"])
	assert.Equal(t, float64(2), data["activeUsers"])
	assert.Equal(t, float64(1), data["suspendUsers"])
	assert.Equal(t, float64(3), data["totalTrips"])

	chart, ok := data["chartData"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, chart, 1)

	bucket := chart[0].(map[string]interface{})
	assert.Equal(t, fmt.Sprintf("Day %d", time.Now().Day()), bucket["name"])
	assert.Equal(t, float64(3), bucket["trips"])
}

func TestDashboardStatsEmpty(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	adminUser := testutils.CreateTestUser(t, ta.DB, "admin@example.com", "adminpass", models.RoleAdmin)
	token := testutils.GetAuthToken(t, ta.Tokens, adminUser)

	resp, err := testutils.MakeRequest(ta.App, "GET", "/admin/dashboard_stats", nil, token)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	data := testutils.DataField(t, resp)
	assert.Equal(t, float64(0), data["totalUsers"])
	assert.Equal(t, float64(0), data["totalTrips"])

	chart, ok := data["chartData"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, chart, 0)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	ta := testutils.SetupTestApp(t)
	regular := testutils.CreateTestUser(t, ta.DB, "user@example.com", "password123", models.RoleUser)
	token := testutils.GetAuthToken(t, ta.Tokens, regular)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/admin/dashboard_stats"},
		{"GET", "/admin/all_users"},
		{"GET", "/admin/all_trips"},
		{"PATCH", "/admin/suspend_user/1"},
		{"PATCH", "/admin/activate_user/1"},
		{"DELETE", "/admin/delete/1"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			resp, err := testutils.MakeRequest(ta.App, rt.method, rt.path, nil, token)
			assert.NoError(t, err)
			assert.Equal(t, 403, resp.Code)
		})
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	ta := testutils.SetupTestApp(t)

	resp, err := testutils.MakeRequest(ta.App, "GET", "/admin/dashboard_stats", nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 401, resp.Code)
}
