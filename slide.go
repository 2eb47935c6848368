package carousel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teranos/carousel/trip"
)

// Slide is one full-screen content record. The style fields are opaque tokens:
// the carousel only passes them to the theme, it never interprets them.
type Slide struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Description string `yaml:"description"`
	Background  string `yaml:"background"`
	TextColor   string `yaml:"text_color"`
	Font        string `yaml:"font"`
}

// Deck is an ordered, non-empty, read-only sequence of slides.
type Deck struct {
	slides []Slide
}

// deckFile is the on-disk layout of a deck.
type deckFile struct {
	Slides []Slide `yaml:"slides"`
}

// NewDeck validates slides and returns a deck holding a private copy of them.
// An empty sequence is refused with a Fall: there is nothing to rotate.
func NewDeck(slides ...Slide) (Deck, error) {
	if len(slides) == 0 {
		return Deck{}, trip.NewFall(trip.TypePrecondition, "deck has no slides", nil)
	}

	seen := make(map[string]int, len(slides))
	for i, s := range slides {
		if s.ID == "" {
			return Deck{}, trip.NewTrip(trip.TypePrecondition, "slide has no id", trip.Context{"position": i})
		}
		if prev, dup := seen[s.ID]; dup {
			return Deck{}, trip.NewTrip(trip.TypePrecondition, fmt.Sprintf("duplicate slide id %q", s.ID), trip.Context{
				"first":  prev,
				"second": i,
			})
		}
		seen[s.ID] = i
	}

	owned := make([]Slide, len(slides))
	copy(owned, slides)
	return Deck{slides: owned}, nil
}

// Len returns the number of slides.
func (d Deck) Len() int { return len(d.slides) }

// At returns slide i. It panics when i is out of range, like a slice index.
func (d Deck) At(i int) Slide { return d.slides[i] }

// Slides returns a copy of the deck's slides.
func (d Deck) Slides() []Slide {
	out := make([]Slide, len(d.slides))
	copy(out, d.slides)
	return out
}

// ParseDeck decodes a YAML deck:
//
//	slides:
//	  - id: "1"
//	    title: Modern Architecture
//	    subtitle: Sleek & Sustainable Designs
//	    description: ...
//	    background: bg-slate-900
//	    text_color: text-white
//	    font: font-serif
func ParseDeck(data []byte) (Deck, error) {
	var file deckFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Deck{}, trip.Wrap(trip.TypeConfig, err, trip.Context{"stage": "decode"})
	}
	return NewDeck(file.Slides...)
}

// LoadDeck reads and parses a deck file.
func LoadDeck(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("failed to read deck: %w", err)
	}
	deck, err := ParseDeck(data)
	if err != nil {
		return Deck{}, fmt.Errorf("deck %s: %w", path, err)
	}
	return deck, nil
}

// MarshalYAML encodes the deck in the same layout ParseDeck reads.
func (d Deck) MarshalYAML() (interface{}, error) {
	return deckFile{Slides: d.slides}, nil
}

// DefaultDeck returns the six built-in slides.
func DefaultDeck() Deck {
	deck, err := NewDeck(defaultSlides...)
	if err != nil {
		panic(err)
	}
	return deck
}

var defaultSlides = []Slide{
	{
		ID:          "1",
		Title:       "Modern Architecture",
		Subtitle:    "Sleek & Sustainable Designs",
		Description: "Exploring the harmony between cutting-edge design and environmental consciousness in urban landscapes.",
		Background:  "bg-slate-900",
		TextColor:   "text-white",
		Font:        "font-serif",
	},
	{
		ID:          "2",
		Title:       "Digital Horizons",
		Subtitle:    "The Future of Connectivity",
		Description: "Dive into the evolving world of technology and how it shapes our interactions and daily lives.",
		Background:  "bg-blue-800",
		TextColor:   "text-white",
		Font:        "font-sans",
	},
	{
		ID:          "3",
		Title:       "Minimalist Living",
		Subtitle:    "Simplicity in Every Detail",
		Description: "Discover the beauty of less, focusing on intentionality and finding peace in uncluttered spaces.",
		Background:  "bg-emerald-900",
		TextColor:   "text-white",
		Font:        "font-mono",
	},
	{
		ID:          "4",
		Title:       "Culinary Journeys",
		Subtitle:    "Flavors Around the World",
		Description: "Embark on a taste adventure, exploring diverse cuisines and the stories behind traditional dishes.",
		Background:  "bg-rose-900",
		TextColor:   "text-white",
		Font:        "font-serif",
	},
	{
		ID:          "5",
		Title:       "Cosmic Wonders",
		Subtitle:    "Exploring the Universe",
		Description: "Gaze into the vastness of space, uncovering the mysteries of distant galaxies and celestial phenomena.",
		Background:  "bg-indigo-950",
		TextColor:   "text-white",
		Font:        "font-sans",
	},
	{
		ID:          "6",
		Title:       "Urban Rhythms",
		Subtitle:    "The Pulse of the City",
		Description: "Feel the energy of metropolitan life, capturing the dynamic spirit and diverse cultures of cityscapes.",
		Background:  "bg-amber-800",
		TextColor:   "text-white",
		Font:        "font-mono",
	},
}
