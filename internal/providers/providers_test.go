package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roamio/tripplanner/internal/apperr"
)

func TestGenerateItinerary(t *testing.T) {
	t.Run("Success - fenced JSON is cleaned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-goog-api-key"))

			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{
						"parts": []map[string]string{
							{"text": "```json\n{\"tripName\":\"Trip to Rome\",\"hotels\":[\"A\"]}\n```"},
						},
					}},
				},
			})
		}))
		defer srv.Close()

		client := NewGeminiWithBase("test-key", srv.URL, srv.Client())
		plan, err := client.GenerateItinerary(context.Background(), GenerateRequest{
			Destination: "Rome", NoOfDays: 3, Budget: "Moderate", Travelers: "Couple",
		})
		assert.NoError(t, err)

		var decoded map[string]interface{}
		assert.NoError(t, json.Unmarshal(plan, &decoded))
		assert.Equal(t, "Trip to Rome", decoded["tripName"])
	})

	t.Run("Error - upstream failure carries payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "API key not valid"})
		}))
		defer srv.Close()

		client := NewGeminiWithBase("bad-key", srv.URL, srv.Client())
		_, err := client.GenerateItinerary(context.Background(), GenerateRequest{Destination: "Rome"})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	})

	t.Run("Error - empty candidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
		}))
		defer srv.Close()

		client := NewGeminiWithBase("test-key", srv.URL, srv.Client())
		_, err := client.GenerateItinerary(context.Background(), GenerateRequest{Destination: "Rome"})
		assert.Error(t, err)
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	})

	t.Run("Error - non-JSON model output", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{
						"parts": []map[string]string{{"text": "Sorry, I cannot do that."}},
					}},
				},
			})
		}))
		defer srv.Close()

		client := NewGeminiWithBase("test-key", srv.URL, srv.Client())
		_, err := client.GenerateItinerary(context.Background(), GenerateRequest{Destination: "Rome"})
		assert.Error(t, err)
	})
}

func TestSearchImage(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/places:searchText", r.URL.Path)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"places": []map[string]interface{}{
					{
						"displayName": map[string]string{"text": "Colosseum"},
						"location":    map[string]float64{"latitude": 41.89, "longitude": 12.49},
						"photos":      []map[string]string{{"name": "places/abc/photos/xyz"}},
					},
				},
			})
		}))
		defer srv.Close()

		client := NewPlacesWithBase("test-key", srv.URL, srv.Client())
		img, err := client.SearchImage(context.Background(), "Colosseum")
		assert.NoError(t, err)
		assert.Equal(t, "Colosseum", img.Place)
		assert.Contains(t, img.ImageURL, "places/abc/photos/xyz")
		assert.InDelta(t, 41.89, *img.Lat, 0.001)
	})

	t.Run("Error - no results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{"places": []interface{}{}})
		}))
		defer srv.Close()

		client := NewPlacesWithBase("test-key", srv.URL, srv.Client())
		_, err := client.SearchImage(context.Background(), "nowhere")
		assert.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestCurrentWeather(t *testing.T) {
	t.Run("Success - reshape", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Rome", r.URL.Query().Get("q"))
			assert.Equal(t, "metric", r.URL.Query().Get("units"))

			json.NewEncoder(w).Encode(map[string]interface{}{
				"name":    "Rome",
				"weather": []map[string]string{{"main": "Clear", "description": "clear sky"}},
				"main":    map[string]interface{}{"temp": 28.5, "feels_like": 30.1, "humidity": 40},
				"wind":    map[string]float64{"speed": 3.2},
			})
		}))
		defer srv.Close()

		client := NewWeatherWithBase("test-key", srv.URL, srv.Client())
		weather, err := client.Current(context.Background(), "Rome")
		assert.NoError(t, err)
		assert.Equal(t, "Rome", weather.City)
		assert.Equal(t, 28.5, weather.Temp)
		assert.Equal(t, "Clear", weather.Condition)
		assert.Equal(t, 40, weather.Humidity)
	})

	t.Run("Error - unknown city", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "city not found"})
		}))
		defer srv.Close()

		client := NewWeatherWithBase("test-key", srv.URL, srv.Client())
		_, err := client.Current(context.Background(), "Atlantis")
		assert.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}
