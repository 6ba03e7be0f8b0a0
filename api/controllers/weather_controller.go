package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/weather"
)

type WeatherController struct {
	client   *weather.Client
	location *weather.Location // configured position; nil means none granted
}

func NewWeatherController(client *weather.Client, location *weather.Location) *WeatherController {
	return &WeatherController{client: client, location: location}
}

// HandleWeather returns the weather line. Explicit ?lat=&lon= win over the
// configured location.
func (ctrl *WeatherController) HandleWeather(c *gin.Context) {
	loc := ctrl.location
	lat, lon := c.Query("lat"), c.Query("lon")
	if lat != "" || lon != "" {
		la, lo, err := tool.ParseLocation(lat + "," + lon)
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
			return
		}
		loc = &weather.Location{Latitude: la, Longitude: lo}
	}
	text := ctrl.client.Describe(c.Request.Context(), loc)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{"text": text}))
}
