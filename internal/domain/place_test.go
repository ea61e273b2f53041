package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPlaceString(t *testing.T) {
	require.Equal(t, "Porto, Portugal", Place{City: "Porto", Country: "Portugal"}.String())
	require.Equal(t, "Porto", Place{City: "Porto"}.String())
	require.Equal(t, "Unknown location, Chile", Place{Country: "Chile"}.String())
	require.Equal(t, UnknownCity, UnknownPlace.String())
}

func TestFormatDescription(t *testing.T) {
	date := time.Date(2026, time.January, 9, 23, 59, 0, 0, time.UTC)
	got := FormatDescription(KindRide, Place{City: "Ghent", Country: "Belgium"}, date)
	require.Equal(t, "Ride in Ghent, Belgium on January 9", got)
}
