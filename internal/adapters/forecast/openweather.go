package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
)

// Conditions is the subset of the OpenWeather current-weather payload the
// service uses.
type Conditions struct {
	Location     string  `json:"location"`
	Description  string  `json:"description"`
	TemperatureC float64 `json:"temperature_c"`
	CloudsPct    float64 `json:"clouds_pct"`
	WindSpeedMS  float64 `json:"wind_speed_ms"`
}

// OpenWeatherClient talks to the OpenWeather current-weather API.
type OpenWeatherClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewOpenWeatherClient creates an OpenWeather API client.
func NewOpenWeatherClient(baseURL, apiKey string) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org"
	}
	return &OpenWeatherClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// openWeatherResponse mirrors the fields we read from the provider payload.
type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches current conditions for a location.
func (c *OpenWeatherClient) Current(ctx context.Context, location string) (*Conditions, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenWeather API key is not configured")
	}

	endpoint := fmt.Sprintf("%s/data/2.5/weather?q=%s&appid=%s&units=metric",
		c.baseURL, url.QueryEscape(location), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OpenWeather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenWeather returned status %d", resp.StatusCode)
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	cond := &Conditions{
		Location:     payload.Name,
		TemperatureC: payload.Main.Temp,
		CloudsPct:    payload.Clouds.All,
		WindSpeedMS:  payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		cond.Description = payload.Weather[0].Description
	}
	return cond, nil
}

// WeatherForecaster implements ports.Forecaster from current cloud cover:
// clear skies put output near plant capacity, full overcast near a floor.
// A failed provider call degrades to the stub with a note, never an error.
type WeatherForecaster struct {
	client     *OpenWeatherClient
	location   string
	capacityMW float64
}

// overcastFloor is the share of capacity still generated under full cloud
// cover (diffuse irradiance).
const overcastFloor = 0.15

// NewWeatherForecaster creates a weather-derived forecaster.
func NewWeatherForecaster(client *OpenWeatherClient, location string, capacityMW float64) *WeatherForecaster {
	if capacityMW <= 0 {
		capacityMW = 50.0
	}
	return &WeatherForecaster{
		client:     client,
		location:   location,
		capacityMW: capacityMW,
	}
}

// Forecast estimates output from current cloud cover at the plant location.
func (f *WeatherForecaster) Forecast(ctx context.Context) (entities.Forecast, error) {
	cond, err := f.client.Current(ctx, f.location)
	if err != nil {
		return entities.Forecast{
			MW:         StubMW,
			Confidence: StubConfidence,
			Provider:   "weather",
			Note:       fmt.Sprintf("weather provider failed (%v); using stub", err),
		}, nil
	}

	clearShare := 1.0 - cond.CloudsPct/100.0
	mw := f.capacityMW * (overcastFloor + (1.0-overcastFloor)*clearShare)

	// Cloud cover is a crude proxy; confidence scales with how clear it is.
	confidence := 0.5 + 0.3*clearShare

	return entities.Forecast{
		MW:         mw,
		Confidence: confidence,
		Provider:   "weather",
	}, nil
}
