package domain

import "context"

// UnknownCity is the locality used when a place cannot be resolved.
const UnknownCity = "Unknown location"

// UnknownPlace is returned by geocoders instead of an error.
var UnknownPlace = Place{City: UnknownCity}

// Place is a reverse-geocoded locality.
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

func (p Place) String() string {
	city := p.City
	if city == "" {
		city = UnknownCity
	}
	if p.Country == "" {
		return city
	}
	return city + ", " + p.Country
}

// Geocoder resolves coordinates to a place name.
// Implementations absorb lookup failures and return UnknownPlace.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c Coords) Place
}
