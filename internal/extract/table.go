package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/docdex/harvest/pkg/models"
)

// Attributes walks the configured row selector and emits ordered key/value
// pairs from the first two cells of each row. Rows with fewer than two cells
// or an empty key or value are dropped.
func Attributes(doc *goquery.Document, rowSelector string) []models.Attribute {
	if rowSelector == "" {
		return nil
	}

	var out []models.Attribute
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		key := cleanText(cells.Eq(0).Text())
		value := cleanText(cells.Eq(1).Text())
		if key == "" || value == "" {
			return
		}
		out = append(out, models.Attribute{Key: key, Value: value})
	})
	return out
}
