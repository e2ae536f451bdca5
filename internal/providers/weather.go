package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/roamio/tripplanner/internal/apperr"
)

const weatherBaseURL = "https://api.openweathermap.org/data/2.5"

type WeatherClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewWeather(apiKey string) *WeatherClient {
	return &WeatherClient{
		client:  http.DefaultClient,
		apiKey:  apiKey,
		baseURL: weatherBaseURL,
	}
}

func NewWeatherWithBase(apiKey, baseURL string, client *http.Client) *WeatherClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &WeatherClient{client: client, apiKey: apiKey, baseURL: baseURL}
}

type Weather struct {
	City        string  `json:"city"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feelsLike"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
}

type weatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches the current conditions for a city and flattens the
// upstream shape into the app's response form.
func (c *WeatherClient) Current(ctx context.Context, city string) (*Weather, error) {
	u := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=metric",
		c.baseURL, url.QueryEscape(city), c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("Weather lookup failed", nil, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound("City")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("Weather lookup failed", upstreamPayload(raw), fmt.Errorf("weather returned %d", resp.StatusCode))
	}

	var parsed weatherResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apperr.Upstream("Weather lookup failed", nil, err)
	}

	w := &Weather{
		City:      parsed.Name,
		Temp:      parsed.Main.Temp,
		FeelsLike: parsed.Main.FeelsLike,
		Humidity:  parsed.Main.Humidity,
		WindSpeed: parsed.Wind.Speed,
	}
	if len(parsed.Weather) > 0 {
		w.Condition = parsed.Weather[0].Main
		w.Description = parsed.Weather[0].Description
	}

	return w, nil
}
