package models

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	elements       = []interface{}{"fire", "earth", "air", "water"}
	planetNatures  = []interface{}{"benefic", "malefic", "neutral"}
	vastuDirection = []interface{}{
		"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
	}
	zoneElements    = []interface{}{"fire", "earth", "air", "water", "space"}
	entranceEffects = []interface{}{"auspicious", "inauspicious", "neutral"}
	entrancePattern = regexp.MustCompile(`^[NESW][1-8]$`)
)

type Planet struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol,omitempty"`
	Nature      string `json:"nature,omitempty"`
	Element     string `json:"element,omitempty"`
	Day         string `json:"day,omitempty"`
	Description string `json:"description,omitempty"`
}

func (p Planet) EntityID() string { return idString(p.ID) }

func (p Planet) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&p.Nature, validation.In(planetNatures...)),
		validation.Field(&p.Element, validation.In(elements...)),
	)
}

type Rashi struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	EnglishName  string `json:"english_name,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	Element      string `json:"element,omitempty"`
	RulingPlanet *int64 `json:"ruling_planet,omitempty"`
	Description  string `json:"description,omitempty"`
}

func (r Rashi) EntityID() string { return idString(r.ID) }

func (r Rashi) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Element, validation.In(elements...)),
	)
}

type House struct {
	ID           int64  `json:"id,omitempty"`
	Number       int    `json:"number"`
	Name         string `json:"name"`
	Significance string `json:"significance,omitempty"`
	Karaka       string `json:"karaka,omitempty"`
	Description  string `json:"description,omitempty"`
}

func (h House) EntityID() string { return idString(h.ID) }

func (h House) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Number, validation.Required, validation.Min(1), validation.Max(12)),
		validation.Field(&h.Name, validation.Required, validation.Length(1, 100)),
	)
}

// Question belongs to the karma kundli questionnaire.
type Question struct {
	ID       int64    `json:"id,omitempty"`
	Text     string   `json:"text"`
	Category string   `json:"category,omitempty"`
	Options  []string `json:"options,omitempty"`
	Order    int      `json:"order,omitempty"`
	IsActive bool     `json:"is_active"`
}

func (q Question) EntityID() string { return idString(q.ID) }

func (q Question) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Text, validation.Required, validation.Length(5, 500)),
		validation.Field(&q.Options, validation.Each(validation.Required)),
		validation.Field(&q.Order, validation.Min(0)),
	)
}

type Zone struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Direction   string `json:"direction"`
	Element     string `json:"element,omitempty"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	Remedies    string `json:"remedies,omitempty"`
}

func (z Zone) EntityID() string { return idString(z.ID) }

func (z Zone) Validate() error {
	return validation.ValidateStruct(&z,
		validation.Field(&z.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&z.Direction, validation.Required, validation.In(vastuDirection...)),
		validation.Field(&z.Element, validation.In(zoneElements...)),
	)
}

// Entrance is one of the 32 vastu entrance padas, coded like "N3".
type Entrance struct {
	ID          int64  `json:"id,omitempty"`
	Code        string `json:"code"`
	Direction   string `json:"direction,omitempty"`
	Effect      string `json:"effect,omitempty"`
	Description string `json:"description,omitempty"`
	Remedy      string `json:"remedy,omitempty"`
}

func (e Entrance) EntityID() string { return idString(e.ID) }

func (e Entrance) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Code, validation.Required, validation.Match(entrancePattern)),
		validation.Field(&e.Effect, validation.In(entranceEffects...)),
	)
}

type Analysis struct {
	ID       int64  `json:"id,omitempty"`
	Title    string `json:"title"`
	Zone     *int64 `json:"zone,omitempty"`
	Entrance *int64 `json:"entrance,omitempty"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content"`
}

func (a Analysis) EntityID() string { return idString(a.ID) }

func (a Analysis) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&a.Content, validation.Required),
	)
}

type Personality struct {
	ID          int64  `json:"id,omitempty"`
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Strengths   string `json:"strengths,omitempty"`
	Weaknesses  string `json:"weaknesses,omitempty"`
	Image       string `json:"image,omitempty"`
}

func (p Personality) EntityID() string { return idString(p.ID) }

func (p Personality) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Number, validation.Required, validation.Min(1), validation.Max(33)),
		validation.Field(&p.Name, validation.Required, validation.Length(1, 100)),
	)
}

// MissingNumberRemedy is the numerology remedy for a digit absent from a
// birth chart.
type MissingNumberRemedy struct {
	ID          int64  `json:"id,omitempty"`
	Number      int    `json:"number"`
	Title       string `json:"title,omitempty"`
	Effect      string `json:"effect,omitempty"`
	Remedy      string `json:"remedy"`
	Description string `json:"description,omitempty"`
}

func (m MissingNumberRemedy) EntityID() string { return idString(m.ID) }

func (m MissingNumberRemedy) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Number, validation.Required, validation.Min(1), validation.Max(9)),
		validation.Field(&m.Remedy, validation.Required),
	)
}
