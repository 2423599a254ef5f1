package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/adilinfo14/sondage/internal/utils"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	suggestCacheTTL  = 10 * time.Minute
	forecastCacheTTL = 5 * time.Minute
)

// weatherCodes maps Open-Meteo WMO codes to French labels.
var weatherCodes = map[int]string{
	0:  "Ciel dégagé",
	1:  "Principalement dégagé",
	2:  "Partiellement nuageux",
	3:  "Couvert",
	45: "Brouillard",
	48: "Brouillard givrant",
	51: "Bruine légère",
	53: "Bruine modérée",
	55: "Bruine dense",
	56: "Bruine verglaçante légère",
	57: "Bruine verglaçante dense",
	61: "Pluie faible",
	63: "Pluie modérée",
	65: "Pluie forte",
	66: "Pluie verglaçante légère",
	67: "Pluie verglaçante forte",
	71: "Neige faible",
	73: "Neige modérée",
	75: "Neige forte",
	77: "Grains de neige",
	80: "Averses faibles",
	81: "Averses modérées",
	82: "Averses violentes",
	85: "Averses de neige faibles",
	86: "Averses de neige fortes",
	95: "Orage",
	96: "Orage avec grêle faible",
	99: "Orage avec grêle forte",
}

const unknownWeather = "Description indisponible"

// Place is one geocoding suggestion.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Label renders a place as "Ville, Région, Pays".
func (p Place) Label() string {
	if p.Admin1 != "" {
		return fmt.Sprintf("%s, %s, %s", p.Name, p.Admin1, p.Country)
	}
	return fmt.Sprintf("%s, %s", p.Name, p.Country)
}

type geocodingResponse struct {
	Results []Place `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode *int    `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time              []string  `json:"time"`
		WeatherCode       []int     `json:"weather_code"`
		TemperatureMax    []float64 `json:"temperature_2m_max"`
		TemperatureMin    []float64 `json:"temperature_2m_min"`
		PrecipProbability []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// CurrentWeather is the "now" section of a report.
type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Wind        float64 `json:"wind"`
	Weather     string  `json:"weather"`
}

// DailyForecast is one row of the 5-day outlook.
type DailyForecast struct {
	Date    string   `json:"date"`
	Weather string   `json:"weather"`
	TempMin *float64 `json:"temp_min"`
	TempMax *float64 `json:"temp_max"`
	Rain    *float64 `json:"rain"`
}

// WeatherReport is the payload returned by the weather endpoint.
type WeatherReport struct {
	Location string          `json:"location"`
	Current  CurrentWeather  `json:"current"`
	Daily    []DailyForecast `json:"daily"`
}

// WeatherService proxies the Open-Meteo geocoding and forecast APIs, with a
// short-lived cache in front so the debounced autocomplete stays cheap.
type WeatherService struct {
	client       *http.Client
	cache        *utils.GlobalCache
	geocodingURL string
	forecastURL  string
}

// NewWeatherService creates the service. Endpoint URLs can be overridden via
// WEATHER_GEOCODING_URL / WEATHER_FORECAST_URL (used by tests).
func NewWeatherService() *WeatherService {
	geocodingURL := os.Getenv("WEATHER_GEOCODING_URL")
	if geocodingURL == "" {
		geocodingURL = defaultGeocodingURL
	}
	forecastURL := os.Getenv("WEATHER_FORECAST_URL")
	if forecastURL == "" {
		forecastURL = defaultForecastURL
	}
	return &WeatherService{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache:        utils.GetCache(),
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
	}
}

var weatherService *WeatherService

// GetWeatherService returns the weather service singleton.
func GetWeatherService() *WeatherService {
	if weatherService == nil {
		weatherService = NewWeatherService()
	}
	return weatherService
}

// Suggest returns up to count geocoding matches for a city prefix.
func (s *WeatherService) Suggest(query string, count int) ([]Place, error) {
	cacheKey := fmt.Sprintf("weather:suggest:%d:%s", count, query)
	if cached := s.cache.Get(cacheKey); cached != nil {
		if places, ok := cached.([]Place); ok {
			return places, nil
		}
	}

	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("language", "fr")
	params.Set("format", "json")

	var payload geocodingResponse
	if err := s.getJSON(s.geocodingURL+"?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, payload.Results, suggestCacheTTL)
	return payload.Results, nil
}

// Report fetches the current conditions and the 5-day outlook for a place.
func (s *WeatherService) Report(place Place) (*WeatherReport, error) {
	cacheKey := fmt.Sprintf("weather:report:%.4f:%.4f", place.Latitude, place.Longitude)
	if cached := s.cache.Get(cacheKey); cached != nil {
		if report, ok := cached.(*WeatherReport); ok {
			return report, nil
		}
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', -1, 64))
	params.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	params.Set("timezone", "auto")
	params.Set("forecast_days", "5")

	var payload forecastResponse
	if err := s.getJSON(s.forecastURL+"?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	report := buildReport(place, payload)
	s.cache.Set(cacheKey, report, forecastCacheTTL)
	return report, nil
}

func (s *WeatherService) getJSON(rawURL string, out interface{}) error {
	resp, err := s.client.Get(rawURL)
	if err != nil {
		return fmt.Errorf("weather upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather upstream status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("weather upstream decode: %w", err)
	}
	return nil
}

func buildReport(place Place, payload forecastResponse) *WeatherReport {
	currentLabel := unknownWeather
	if payload.Current.WeatherCode != nil {
		if label, ok := weatherCodes[*payload.Current.WeatherCode]; ok {
			currentLabel = label
		}
	}

	daily := payload.Daily
	days := make([]DailyForecast, 0, len(daily.Time))
	for i, date := range daily.Time {
		day := DailyForecast{Date: date, Weather: unknownWeather}
		if i < len(daily.WeatherCode) {
			if label, ok := weatherCodes[daily.WeatherCode[i]]; ok {
				day.Weather = label
			}
		}
		if i < len(daily.TemperatureMin) {
			v := daily.TemperatureMin[i]
			day.TempMin = &v
		}
		if i < len(daily.TemperatureMax) {
			v := daily.TemperatureMax[i]
			day.TempMax = &v
		}
		if i < len(daily.PrecipProbability) {
			v := daily.PrecipProbability[i]
			day.Rain = &v
		}
		days = append(days, day)
	}

	return &WeatherReport{
		Location: place.Label(),
		Current: CurrentWeather{
			Temperature: payload.Current.Temperature,
			Humidity:    payload.Current.Humidity,
			Wind:        payload.Current.WindSpeed,
			Weather:     currentLabel,
		},
		Daily: days,
	}
}
