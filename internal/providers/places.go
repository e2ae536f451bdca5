package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/roamio/tripplanner/internal/apperr"
)

const placesBaseURL = "https://places.googleapis.com/v1"

type PlacesClient struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewPlaces(apiKey string) *PlacesClient {
	return &PlacesClient{
		client:  http.DefaultClient,
		apiKey:  apiKey,
		baseURL: placesBaseURL,
	}
}

func NewPlacesWithBase(apiKey, baseURL string, client *http.Client) *PlacesClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &PlacesClient{client: client, apiKey: apiKey, baseURL: baseURL}
}

type PlaceImage struct {
	Place    string   `json:"place"`
	ImageURL string   `json:"imageUrl"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

type placesSearchResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		Location struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		Photos []struct {
			Name string `json:"name"`
		} `json:"photos"`
	} `json:"places"`
}

// SearchImage resolves a place name to its first photo URL plus
// coordinates via the Places text-search API.
func (c *PlacesClient) SearchImage(ctx context.Context, placeName string) (*PlaceImage, error) {
	body, err := json.Marshal(map[string]string{"textQuery": placeName})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/places:searchText"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", "places.displayName,places.location,places.photos")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("Image lookup failed", nil, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("Image lookup failed", upstreamPayload(raw), fmt.Errorf("places returned %d", resp.StatusCode))
	}

	var parsed placesSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apperr.Upstream("Image lookup failed", nil, err)
	}

	if len(parsed.Places) == 0 {
		return nil, apperr.NotFound("Place")
	}

	place := parsed.Places[0]
	result := &PlaceImage{Place: place.DisplayName.Text}

	if len(place.Photos) > 0 {
		result.ImageURL = fmt.Sprintf("%s/%s/media?key=%s&maxWidthPx=1200",
			c.baseURL, place.Photos[0].Name, c.apiKey)
	}

	lat, lng := place.Location.Latitude, place.Location.Longitude
	result.Lat = &lat
	result.Lng = &lng

	return result, nil
}
