package models

// Season describes when a clothing item can be worn.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
	SeasonAll    Season = "all"
)

// Seasons lists every accepted season value.
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter, SeasonAll}

// Valid reports whether s is one of the known seasons.
func (s Season) Valid() bool {
	for _, v := range Seasons {
		if s == v {
			return true
		}
	}
	return false
}

// Occasion is the social context an item or outfit suits.
type Occasion string

const (
	OccasionWork    Occasion = "work"
	OccasionCasual  Occasion = "casual"
	OccasionFormal  Occasion = "formal"
	OccasionParty   Occasion = "party"
	OccasionWorkout Occasion = "workout"
	OccasionDate    Occasion = "date"
	OccasionTravel  Occasion = "travel"
)

// Occasions lists every accepted occasion value.
var Occasions = []Occasion{
	OccasionWork, OccasionCasual, OccasionFormal, OccasionParty,
	OccasionWorkout, OccasionDate, OccasionTravel,
}

func (o Occasion) Valid() bool {
	for _, v := range Occasions {
		if o == v {
			return true
		}
	}
	return false
}

// Weather is the expected weather for an outfit or calendar day.
type Weather string

const (
	WeatherSunny  Weather = "sunny"
	WeatherCloudy Weather = "cloudy"
	WeatherRainy  Weather = "rainy"
	WeatherSnowy  Weather = "snowy"
	WeatherHot    Weather = "hot"
	WeatherCold   Weather = "cold"
	WeatherMild   Weather = "mild"
)

// Weathers lists every accepted weather value.
var Weathers = []Weather{
	WeatherSunny, WeatherCloudy, WeatherRainy, WeatherSnowy,
	WeatherHot, WeatherCold, WeatherMild,
}

func (w Weather) Valid() bool {
	for _, v := range Weathers {
		if w == v {
			return true
		}
	}
	return false
}

// SuitableSeasons returns the item seasons that make sense for w.
// A nil result means every season is acceptable.
func (w Weather) SuitableSeasons() []Season {
	switch w {
	case WeatherSnowy, WeatherCold:
		return []Season{SeasonFall, SeasonWinter, SeasonAll}
	case WeatherHot, WeatherSunny:
		return []Season{SeasonSpring, SeasonSummer, SeasonAll}
	default:
		return nil
	}
}
