package scraper

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"apartment-tracker-backend/config"
	"apartment-tracker-backend/internal/parse"
	"apartment-tracker-backend/internal/store"
)

// Source names.
const (
	SourceMAA           = "maa"
	SourceApartmentsCom = "apartments_com"
	SourceRentCafe      = "rentcafe"
)

// Source is a listing site that can be scraped for available units.
type Source interface {
	Name() string
	Scrape(ctx context.Context) ([]store.ScrapedUnit, error)
}

// cardParser turns the i-th card's text into a unit. ok is false for cards to skip.
type cardParser func(i int, text string) (unit store.ScrapedUnit, ok bool)

// htmlSource scrapes unit cards out of a single listing page.
type htmlSource struct {
	name      string
	url       string
	fetcher   *Fetcher
	selectors []selector
	maxCards  int
	parseCard cardParser
}

func (s *htmlSource) Name() string { return s.name }

func (s *htmlSource) Scrape(ctx context.Context) ([]store.ScrapedUnit, error) {
	page, err := s.fetcher.Fetch(ctx, s.name, s.url)
	if err != nil {
		return nil, err
	}
	return s.extract(page), nil
}

func (s *htmlSource) extract(page *Page) []store.ScrapedUnit {
	cards := findCards(page.Doc, s.selectors)
	if s.maxCards > 0 && len(cards) > s.maxCards {
		cards = cards[:s.maxCards]
	}

	var units []store.ScrapedUnit
	for i, card := range cards {
		text := innerText(card)
		if text == "" {
			continue
		}
		unit, ok := s.parseCard(i, text)
		if !ok {
			continue
		}
		unit.Source = s.name
		unit.SourceURL = s.url
		unit.ImageURLs = imageURLs(card, page.URL)
		units = append(units, unit)
	}
	return units
}

// emptyCard reports cards that carry none of beds, baths and price.
func emptyCard(beds int, baths float64, price *float64) bool {
	return beds == 0 && baths == 0 && price == nil
}

var maaSelectors = []selector{
	{name: "[data-testid=unit-card]", match: attrEquals("data-testid", "unit-card")},
	{name: "[data-testid=available-unit-card]", match: attrEquals("data-testid", "available-unit-card")},
	{name: ".unit-card", match: hasClass("unit-card")},
	{name: ".fp-unit-card", match: hasClass("fp-unit-card")},
	{name: "[class*=unit][class*=card]", match: classContains("unit", "card")},
	{name: "[class*=available][class*=card]", match: classContains("available", "card")},
}

// NewMAASource scrapes the property manager's own availability page.
func NewMAASource(url string, fetcher *Fetcher) Source {
	return &htmlSource{
		name:      SourceMAA,
		url:       url,
		fetcher:   fetcher,
		selectors: maaSelectors,
		parseCard: parseMAACard,
	}
}

func parseMAACard(i int, text string) (store.ScrapedUnit, bool) {
	beds := parse.ParseBeds(text)
	baths := parse.ParseBaths(text)
	price := parse.ParsePrice(text)
	if emptyCard(beds, baths, price) {
		return store.ScrapedUnit{}, false
	}
	return store.ScrapedUnit{
		UnitNumber:    parse.ParseUnitNumber(text, fmt.Sprintf("MAA-%03d", i+1)),
		FloorPlanName: parse.ParseFloorPlanName(text),
		Beds:          beds,
		Baths:         baths,
		SqFt:          parse.ParseSqFt(text),
		Price:         price,
		AvailableDate: parse.ParseAvailableDate(text),
		MoveInSpecial: parse.ParseMoveInSpecial(text),
		FeatureTags:   parse.FeatureTags(text),
	}, true
}

const apartmentsComMaxCards = 60

var apartmentsComCards = selector{
	name:  "article, [class*=pricing], [class*=unitCard]",
	match: anyOf(tagIs("article"), classContains("pricing"), classContains("unitCard")),
}

// NewApartmentsComSource scrapes the listing aggregator page.
func NewApartmentsComSource(url string, fetcher *Fetcher) Source {
	return &htmlSource{
		name:      SourceApartmentsCom,
		url:       url,
		fetcher:   fetcher,
		selectors: []selector{apartmentsComCards},
		maxCards:  apartmentsComMaxCards,
		parseCard: parseApartmentsComCard,
	}
}

func parseApartmentsComCard(i int, text string) (store.ScrapedUnit, bool) {
	beds := parse.ParseBeds(text)
	baths := parse.ParseBaths(text)
	price := parse.ParsePrice(text)
	if emptyCard(beds, baths, price) {
		return store.ScrapedUnit{}, false
	}
	plan, ok := parse.ParsePlanCode(text)
	if !ok {
		plan = "Unknown"
	}
	return store.ScrapedUnit{
		UnitNumber:    fmt.Sprintf("APT-%03d", i+1),
		FloorPlanName: plan,
		Beds:          beds,
		Baths:         baths,
		SqFt:          parse.ParseSqFt(text),
		Price:         price,
		FeatureTags:   []string{},
	}, true
}

// NewSources builds the enabled sources from config. Names without a scraper are skipped.
func NewSources(cfg config.ScraperConfig, fetcher *Fetcher, logger *zap.Logger) []Source {
	var sources []Source
	for _, sc := range cfg.EnabledSources() {
		switch strings.ToLower(sc.Name) {
		case SourceMAA:
			sources = append(sources, NewMAASource(sc.URL, fetcher))
		case SourceApartmentsCom:
			sources = append(sources, NewApartmentsComSource(sc.URL, fetcher))
		default:
			logger.Warn("no scraper for source, skipping", zap.String("source", sc.Name))
		}
	}
	return sources
}

