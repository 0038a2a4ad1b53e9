package entities

// Experience is a point of interest as served by the AroundEgypt API.
// Liked state is kept separately, see catalog.Experience.
type Experience struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	CoverPhoto          string `json:"cover_photo"`
	Description         string `json:"description"`
	ViewsNo             int    `json:"views_no"`
	LikesNo             int    `json:"likes_no"`
	Recommended         int    `json:"recommended"`
	HasVideo            int    `json:"has_video"`
	City                *City  `json:"city,omitempty"`
	TourHTML            string `json:"tour_html"`
	DetailedDescription string `json:"detailed_description"`
	Address             string `json:"address"`
}

type City struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	TopPick int    `json:"top_pick"`
}

// IsRecommended reports whether the experience belongs to the recommended partition.
func (e Experience) IsRecommended() bool {
	return e.Recommended != 0
}

// HasTour reports whether an immersive tour is available.
func (e Experience) HasTour() bool {
	return e.TourHTML != ""
}

// CachedExperience is the on-device row for an Experience.
// Description, Address and HasVideo are not persisted.
type CachedExperience struct {
	ID                  string `gorm:"primaryKey;size:64" json:"id"`
	Title               string `gorm:"size:512" json:"title"`
	CoverPhoto          string `gorm:"size:2048" json:"cover_photo"`
	Ordinal             int    `gorm:"column:api_order;index" json:"api_order"` // write position within its partition
	ViewsNo             int    `json:"views_no"`
	LikesNo             int    `json:"likes_no"`
	Recommended         int    `gorm:"index;default:0" json:"recommended"`
	TourHTML            string `gorm:"size:2048" json:"tour_html"`
	DetailedDescription string `gorm:"type:text" json:"detailed_description"`
	CityID              int    `json:"city_id"`
	CityName            string `gorm:"size:256" json:"city_name"`
	CityTopPick         int    `json:"city_top_pick"`
}

func (CachedExperience) TableName() string {
	return "experiences"
}

// NewCachedExperience projects an Experience onto its cached row.
func NewCachedExperience(e Experience, ordinal int) CachedExperience {
	row := CachedExperience{
		ID:                  e.ID,
		Title:               e.Title,
		CoverPhoto:          e.CoverPhoto,
		Ordinal:             ordinal,
		ViewsNo:             e.ViewsNo,
		LikesNo:             e.LikesNo,
		Recommended:         e.Recommended,
		TourHTML:            e.TourHTML,
		DetailedDescription: e.DetailedDescription,
	}
	if e.City != nil {
		row.CityID = e.City.ID
		row.CityName = e.City.Name
		row.CityTopPick = e.City.TopPick
	}
	return row
}

// Experience rebuilds the domain record. Fields that are not cached come back empty.
func (c CachedExperience) Experience() Experience {
	e := Experience{
		ID:                  c.ID,
		Title:               c.Title,
		CoverPhoto:          c.CoverPhoto,
		ViewsNo:             c.ViewsNo,
		LikesNo:             c.LikesNo,
		Recommended:         c.Recommended,
		TourHTML:            c.TourHTML,
		DetailedDescription: c.DetailedDescription,
	}
	if c.CityID != 0 || c.CityName != "" {
		e.City = &City{ID: c.CityID, Name: c.CityName, TopPick: c.CityTopPick}
	}
	return e
}
