package services

import (
	"astro-admin-go/internal/models"
	"astro-admin-go/internal/store"
)

// Slice names, also used as gateway and CLI route segments.
const (
	SliceArticles      = "articles"
	SliceTags          = "tags"
	SliceCategories    = "categories"
	SlicePersonalities = "personalities"
	SlicePlanets       = "planets"
	SliceRashis        = "rashis"
	SliceHouses        = "houses"
	SliceQuestions     = "questions"
	SliceZones         = "zones"
	SliceEntrances     = "entrances"
	SliceAnalysis      = "analysis"
	SliceRemedies      = "remedies"
	SliceUsers         = "users"
	SliceProfile       = "profile"
)

// Slices lists every slice name in registration order.
var Slices = []string{
	SliceArticles, SliceTags, SliceCategories, SlicePersonalities, SlicePlanets,
	SliceRashis, SliceHouses, SliceQuestions, SliceZones, SliceEntrances,
	SliceAnalysis, SliceRemedies, SliceUsers, SliceProfile,
}

const profilePath = "/auth/profile/"

// Catalogue binds every entity type to its backend endpoint.
type Catalogue struct {
	Store *store.Store

	Articles      *store.Slice[models.Article]
	Tags          *store.Slice[models.Tag]
	Categories    *store.Slice[models.Category]
	Personalities *store.Slice[models.Personality]
	Planets       *store.Slice[models.Planet]
	Rashis        *store.Slice[models.Rashi]
	Houses        *store.Slice[models.House]
	Questions     *store.Slice[models.Question]
	Zones         *store.Slice[models.Zone]
	Entrances     *store.Slice[models.Entrance]
	Analysis      *store.Slice[models.Analysis]
	Remedies      *store.Slice[models.MissingNumberRemedy]
	Users         *store.Slice[models.User]
	Profile       *store.Slice[models.Profile]
}

func NewCatalogue(st *store.Store, api store.Requester) *Catalogue {
	return &Catalogue{
		Store:         st,
		Articles:      store.Register[models.Article](st, SliceArticles, api, store.Endpoint{Collection: "/articles/"}),
		Tags:          store.Register[models.Tag](st, SliceTags, api, store.Endpoint{Collection: "/articles/tags/"}),
		Categories:    store.Register[models.Category](st, SliceCategories, api, store.Endpoint{Collection: "/articles/categories/"}),
		Personalities: store.Register[models.Personality](st, SlicePersonalities, api, store.Endpoint{Collection: "/content/personalities/"}),
		Planets:       store.Register[models.Planet](st, SlicePlanets, api, store.Endpoint{Collection: "/kundli/planets/"}),
		Rashis:        store.Register[models.Rashi](st, SliceRashis, api, store.Endpoint{Collection: "/kundli/rashis/"}),
		Houses:        store.Register[models.House](st, SliceHouses, api, store.Endpoint{Collection: "/kundli/houses/"}),
		Questions:     store.Register[models.Question](st, SliceQuestions, api, store.Endpoint{Collection: "/karma-kundli/questions/"}),
		Zones:         store.Register[models.Zone](st, SliceZones, api, store.Endpoint{Collection: "/vastu/zones/"}),
		Entrances:     store.Register[models.Entrance](st, SliceEntrances, api, store.Endpoint{Collection: "/vastu/entrances/"}),
		Analysis:      store.Register[models.Analysis](st, SliceAnalysis, api, store.Endpoint{Collection: "/vastu/analysis/"}),
		Remedies:      store.Register[models.MissingNumberRemedy](st, SliceRemedies, api, store.Endpoint{Collection: "/numerology/missing-number-remedies/"}),
		Users:         store.Register[models.User](st, SliceUsers, api, store.Endpoint{Collection: "/users"}),
		Profile: store.Register[models.Profile](st, SliceProfile, api, store.Endpoint{
			Collection: profilePath,
			Item:       func(string) string { return profilePath },
		}),
	}
}

// ListRoute is the console route of a slice's list page.
func ListRoute(slice string) string {
	return "/" + slice
}
