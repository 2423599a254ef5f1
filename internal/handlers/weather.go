package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/adilinfo14/sondage/internal/services"

	"github.com/gin-gonic/gin"
)

const maxSuggestions = 8

type WeatherHandler struct {
	weather *services.WeatherService
}

func NewWeatherHandler() *WeatherHandler {
	return &WeatherHandler{
		weather: services.GetWeatherService(),
	}
}

// Index renders the weather lookup page.
func (h *WeatherHandler) Index(c *gin.Context) {
	Render(c, http.StatusOK, "weather.html", nil)
}

// Suggest backs the debounced city autocomplete. Queries under two
// characters short-circuit to an empty list without touching the upstream.
func (h *WeatherHandler) Suggest(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < 2 {
		c.JSON(http.StatusOK, []gin.H{})
		return
	}

	places, err := h.weather.Suggest(query, maxSuggestions)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Impossible de récupérer les suggestions de villes."})
		return
	}

	results := make([]gin.H, 0, len(places))
	for _, place := range places {
		results = append(results, gin.H{
			"label":     place.Label(),
			"name":      place.Name,
			"country":   place.Country,
			"admin1":    place.Admin1,
			"latitude":  place.Latitude,
			"longitude": place.Longitude,
		})
	}
	c.JSON(http.StatusOK, results)
}

// Weather returns the current conditions and 5-day forecast, either for
// explicit coordinates (picked from a suggestion) or for a free-text city.
func (h *WeatherHandler) Weather(c *gin.Context) {
	city := strings.TrimSpace(c.Query("city"))
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	hasCoords := latErr == nil && lonErr == nil && c.Query("lat") != "" && c.Query("lon") != ""

	if city == "" && !hasCoords {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ville ou coordonnées manquantes."})
		return
	}

	var place services.Place
	if hasCoords {
		name := city
		if name == "" {
			name = "Ville sélectionnée"
		}
		country := strings.TrimSpace(c.Query("country"))
		if country == "" {
			country = "Pays inconnu"
		}
		place = services.Place{
			Name:      name,
			Country:   country,
			Admin1:    strings.TrimSpace(c.Query("admin1")),
			Latitude:  lat,
			Longitude: lon,
		}
	} else {
		places, err := h.weather.Suggest(city, 1)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Impossible de récupérer la météo pour le moment."})
			return
		}
		if len(places) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Aucune ville trouvée."})
			return
		}
		place = places[0]
	}

	report, err := h.weather.Report(place)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Impossible de récupérer la météo pour le moment."})
		return
	}
	c.JSON(http.StatusOK, report)
}
