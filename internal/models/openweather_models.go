package models

// OWMCondition is one entry of the "weather" array in OpenWeatherMap responses
type OWMCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// OWMMain holds the "main" block of a reading
type OWMMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

// OWMWind holds the "wind" block; speed is m/s with units=metric
type OWMWind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
	Gust  float64 `json:"gust,omitempty"`
}

// OWMWeatherResponse is the body of /data/2.5/weather
type OWMWeatherResponse struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []OWMCondition `json:"weather"`
	Main    OWMMain        `json:"main"`
	Wind    OWMWind        `json:"wind"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Dt   int64  `json:"dt"`
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OWMForecastItem is one 3-hour step of /data/2.5/forecast
type OWMForecastItem struct {
	Dt      int64          `json:"dt"`
	Main    OWMMain        `json:"main"`
	Weather []OWMCondition `json:"weather"`
	Wind    OWMWind        `json:"wind"`
	DtTxt   string         `json:"dt_txt"`
}

// OWMForecastResponse is the body of /data/2.5/forecast
type OWMForecastResponse struct {
	Cnt  int               `json:"cnt"`
	List []OWMForecastItem `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

// OWMError is the error body; "cod" is a number or a string depending on the endpoint
type OWMError struct {
	Cod     interface{} `json:"cod"`
	Message string      `json:"message"`
}
