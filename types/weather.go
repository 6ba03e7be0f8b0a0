package types

// WeatherResponse is the subset of the provider's current-weather body that is rendered.
type WeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []WeatherCondition `json:"weather"`
}

type WeatherCondition struct {
	Description string `json:"description"`
}

// WeatherReport is the flattened form handed to the renderer.
type WeatherReport struct {
	City        string  `json:"city"`
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
}
