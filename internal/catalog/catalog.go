package catalog

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"go.uber.org/zap"
)

const top25URL = "https://cwe.mitre.org/top25/archive/2023/2023_top25_list.html"

var cwePattern = regexp.MustCompile(`CWE-\d+`)

// RefreshTop25 scrapes the MITRE listing of the most dangerous software
// weaknesses and returns the identifiers in ranking order. Callers keep the
// compiled-in membership set when this fails.
func RefreshTop25(logger *zap.Logger) ([]string, error) {
	ids := []string{}
	seen := map[string]struct{}{}
	collect := func(text string) {
		for _, id := range cwePattern.FindAllString(text, -1) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	c := colly.NewCollector()
	c.OnHTML("table td", func(h *colly.HTMLElement) {
		collect(h.Text)
	})

	if err := c.Visit(top25URL); err != nil {
		logger.Sugar().Errorf("Failed to crawl the Top 25 listing: %v", err)
	}

	// the collector can come back empty when the page layout shifts, so fall
	// back to a plain goquery pass over the whole document
	if len(ids) == 0 {
		res, err := http.Get(top25URL)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status code error: %d %s", res.StatusCode, res.Status)
		}

		doc, err := goquery.NewDocumentFromReader(res.Body)
		if err != nil {
			return nil, err
		}
		doc.Find("td").Each(func(_ int, s *goquery.Selection) {
			collect(s.Text())
		})
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no CWE identifiers found at %s", top25URL)
	}
	if len(ids) > 25 {
		ids = ids[:25]
	}

	logger.Info(fmt.Sprintf("Catalog refresh has found %d Top 25 weaknesses", len(ids)))
	return ids, nil
}
