package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCachedExperience_RoundTrip(t *testing.T) {
	exp := Experience{
		ID:                  "7f209d18",
		Title:               "Abu Simbel Temples",
		CoverPhoto:          "https://example.com/abu.jpg",
		Description:         "short",
		ViewsNo:             120,
		LikesNo:             14,
		Recommended:         1,
		HasVideo:            1,
		City:                &City{ID: 3, Name: "Aswan", TopPick: 1},
		TourHTML:            "https://example.com/tour",
		DetailedDescription: "long",
		Address:             "Aswan Governorate",
	}

	row := NewCachedExperience(exp, 4)
	assert.Equal(t, 4, row.Ordinal)
	assert.Equal(t, "Aswan", row.CityName)

	back := row.Experience()
	assert.Equal(t, exp.ID, back.ID)
	assert.Equal(t, exp.Title, back.Title)
	assert.Equal(t, exp.LikesNo, back.LikesNo)
	assert.Equal(t, exp.City, back.City)
	assert.Equal(t, exp.DetailedDescription, back.DetailedDescription)

	// Not persisted
	assert.Empty(t, back.Description)
	assert.Empty(t, back.Address)
	assert.Zero(t, back.HasVideo)
}

func TestCachedExperience_NoCity(t *testing.T) {
	row := NewCachedExperience(Experience{ID: "1", Title: "Pyramids"}, 0)
	assert.Nil(t, row.Experience().City)
}

func TestExperience_Flags(t *testing.T) {
	assert.True(t, Experience{Recommended: 2}.IsRecommended())
	assert.False(t, Experience{}.IsRecommended())
	assert.True(t, Experience{TourHTML: "x"}.HasTour())
	assert.False(t, Experience{}.HasTour())
}
