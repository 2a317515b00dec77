package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/hijri-month/internal/lookup"
)

// harvest is what a single strategy found on the page
type harvest struct {
	MonthHeading Signal[string]
	Year         Signal[string]
	CurrentDate  Signal[string]
	CurrentDay   Signal[string]
	DayLength    Signal[int]
}

// Strategy is one way of reading the calendar page
type Strategy struct {
	Name    string
	Harvest func(doc *goquery.Document) harvest
}

// Strategy names, in priority order
const (
	StrategyStructured = "structured"
	StrategyHeading    = "heading"
	StrategyText       = "text"
)

// DefaultStrategies returns the strategy chain in priority order
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyStructured, Harvest: harvestStructured},
		{Name: StrategyHeading, Harvest: harvestHeadings},
		{Name: StrategyText, Harvest: harvestText},
	}
}

var (
	// "Rajab 1447", "Sha'baan 1447 AH"
	yearSuffixed = regexp.MustCompile(`^\s*(.*?)\s*\b(\d{4})\s*(?:A\.?H\.?)?\s*$`)
	todayPrefix  = regexp.MustCompile(`(?i)today\s*:\s*(.+)`)
	bodyToday    = regexp.MustCompile(`(?i)today\s*:\s*((?:[A-Za-z]+,?\s+)?(?:[A-Za-z]+\s+\d{1,2}|\d{1,2}\s+[A-Za-z]+),?\s+\d{4})`)
	fourDigits   = regexp.MustCompile(`^\d{4}$`)

	// a Hijri day number printed right before the abbreviated Gregorian month
	// and day of its calendar cell, e.g. "30Jan19"
	has30Pattern = regexp.MustCompile(`(?i)\b30(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s?\d{1,2}\b`)
	has29Pattern = regexp.MustCompile(`(?i)\b29(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s?\d{1,2}\b`)
)

// cleanText collapses whitespace in element text
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// harvestStructured reads the dedicated element IDs of the current calendar page
func harvestStructured(doc *goquery.Document) harvest {
	var h harvest

	if text := cleanText(doc.Find("#hijri-month-name").First().Text()); text != "" {
		h.MonthHeading = Found(text)
	}

	if text := cleanText(doc.Find("#hijri-year").First().Text()); fourDigits.MatchString(text) {
		h.Year = Found(text)
	}

	today := doc.Find("#today").First()
	if today.Length() > 0 {
		if text := cleanText(today.Find(".hijri-date").First().Text()); text != "" {
			h.CurrentDay = Found(text)
		}
		if text := cleanText(today.Find(".gregorian-date").First().Text()); text != "" {
			h.CurrentDate = Found(text)
		} else if attr, ok := today.Attr("data-date"); ok && strings.TrimSpace(attr) != "" {
			h.CurrentDate = Found(strings.TrimSpace(attr))
		}
	}

	calendar := doc.Find("#calendar").First()
	if calendar.Length() > 0 {
		if attr, ok := calendar.Attr("data-days"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(attr)); err == nil && (n == 29 || n == 30) {
				h.DayLength = Found(n)
			}
		}
		if !h.DayLength.Found {
			highest := 0
			calendar.Find(".hijri-date").Each(func(i int, sel *goquery.Selection) {
				if n, err := strconv.Atoi(cleanText(sel.Text())); err == nil && n > highest && n <= 30 {
					highest = n
				}
			})
			if highest == 29 || highest == 30 {
				h.DayLength = Found(highest)
			}
		}
	}

	return h
}

// harvestHeadings scans generic headings for the month title and the "Today:" line
func harvestHeadings(doc *goquery.Document) harvest {
	var h harvest
	var fallback string

	doc.Find("h1, h2, h3").Each(func(i int, sel *goquery.Selection) {
		text := cleanText(sel.Text())
		if text == "" {
			return
		}

		if !h.CurrentDate.Found {
			if m := todayPrefix.FindStringSubmatch(text); m != nil {
				h.CurrentDate = Found(strings.TrimSpace(m[1]))
				return
			}
		}

		if h.MonthHeading.Found {
			return
		}
		if m := yearSuffixed.FindStringSubmatch(text); m != nil && lookup.IsKnown(m[1]) {
			h.MonthHeading = Found(text)
			h.Year = Found(m[2])
			return
		}
		if lookup.IsKnown(text) {
			h.MonthHeading = Found(text)
			return
		}
		if fallback == "" && goquery.NodeName(sel) == "h1" && yearSuffixed.MatchString(text) {
			fallback = text
		}
	})

	// An unrecognized but year-suffixed title is still the best guess at the month
	if !h.MonthHeading.Found && fallback != "" {
		h.MonthHeading = Found(fallback)
		h.Year = Found(yearSuffixed.FindStringSubmatch(fallback)[2])
	}

	return h
}

// harvestText looks for day-length and date patterns anywhere in the body text
func harvestText(doc *goquery.Document) harvest {
	var h harvest

	body := doc.Find("body").Text()
	if body == "" {
		body = doc.Text()
	}

	switch {
	case has30Pattern.MatchString(body):
		h.DayLength = Found(30)
	case has29Pattern.MatchString(body):
		h.DayLength = Found(29)
	}

	if m := bodyToday.FindStringSubmatch(body); m != nil {
		h.CurrentDate = Found(cleanText(m[1]))
	}

	return h
}
