package weather

// Background is the coarse visual mood bucket of a condition.
type Background string

const (
	BackgroundSunny  Background = "sunny"
	BackgroundNight  Background = "night"
	BackgroundRain   Background = "rain"
	BackgroundCloudy Background = "cloudy"
)

// Icon names the pictogram of a condition.
type Icon string

const (
	IconSun               Icon = "sun"
	IconMoon              Icon = "moon"
	IconPartlyCloudyDay   Icon = "partly-cloudy-day"
	IconPartlyCloudyNight Icon = "partly-cloudy-night"
	IconCloud             Icon = "cloud"
	IconFog               Icon = "fog"
	IconRain              Icon = "rain"
	IconHeavyRain         Icon = "heavy-rain"
	IconSnow              Icon = "snow"
	IconThunder           Icon = "thunder"
)

// UnknownCondition is the label of codes missing from the table.
const UnknownCondition = "Unknown"

// Condition is the classification of a WMO weather code.
type Condition struct {
	Text       string     `json:"text"`
	Background Background `json:"background"`
}

var conditionText = map[int]string{
	1: "Mainly clear", 2: "Partly cloudy", 3: "Overcast",
	45: "Fog", 48: "Rime fog",
	51: "Light drizzle", 53: "Drizzle", 55: "Dense drizzle",
	61: "Light rain", 63: "Moderate rain", 65: "Heavy rain",
	71: "Light snow", 73: "Snow", 75: "Heavy snow",
	80: "Rain showers", 81: "Rain showers", 82: "Violent rain showers",
	95: "Thunderstorm", 96: "Thunderstorm with hail", 99: "Thunderstorm with hail",
}

// Classify maps a WMO weather code and day flag to a label and background.
// Unknown codes never fail; they get UnknownCondition and whichever
// background their numeric range selects.
func Classify(code, isDay int) Condition {
	text, ok := conditionText[code]
	if code == 0 {
		text, ok = "Clear night", true
		if isDay != 0 {
			text = "Clear"
		}
	}
	if !ok {
		text = UnknownCondition
	}

	return Condition{Text: text, Background: background(code, isDay)}
}

func background(code, isDay int) Background {
	switch {
	case code == 0:
		if isDay != 0 {
			return BackgroundSunny
		}
		return BackgroundNight
	case code == 1, code == 2, code == 3, code == 45, code == 48:
		return BackgroundCloudy
	case code > 50:
		return BackgroundRain
	default:
		return BackgroundCloudy
	}
}

// IconFor picks the pictogram for a weather code.
func IconFor(code, isDay int) Icon {
	day := isDay != 0
	switch {
	case code == 0:
		if day {
			return IconSun
		}
		return IconMoon
	case code == 1, code == 2:
		if day {
			return IconPartlyCloudyDay
		}
		return IconPartlyCloudyNight
	case code == 3:
		return IconCloud
	case code == 45, code == 48:
		return IconFog
	case code >= 51 && code <= 67:
		return IconRain
	case code >= 80 && code <= 82:
		return IconHeavyRain
	case code >= 71 && code <= 77:
		return IconSnow
	case code >= 95:
		return IconThunder
	default:
		return IconSun
	}
}
