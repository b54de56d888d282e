// Package scrape fetches competitor pages and profiles their on-page SEO
// structure.
package scrape

import (
	"context"

	"github.com/sells-group/evidence-cli/internal/model"
)

// PageScraper fetches a single URL and summarizes it.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (*model.CompetitorPageSummary, error)
}
