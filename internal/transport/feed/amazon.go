// Package feed decodes catalog dumps into products for import.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/stylesearch/internal/domain/product"
)

// idNamespace scopes derived product IDs so they never collide with other UUIDv5 users.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("stylesearch/products"))

type amazonFile struct {
	Data []amazonItem `json:"data"`
}

type amazonItem struct {
	ParentASIN    string        `json:"parent_asin"`
	Title         string        `json:"title"`
	Description   []string      `json:"description"`
	Images        []amazonImage `json:"images"`
	AverageRating *float64      `json:"average_rating"`
	RatingNumber  *int          `json:"rating_number"`
	MainCategory  string        `json:"main_category"`
}

type amazonImage struct {
	HiRes string `json:"hi_res"`
	Large string `json:"large"`
}

// DecodeAmazonFashion reads an Amazon Fashion metadata dump of the form
// {"data":[...]} and converts every item into a product stamped with now.
func DecodeAmazonFashion(r io.Reader, now time.Time) ([]product.Product, error) {
	var file amazonFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode amazon fashion dump: %w", err)
	}

	products := make([]product.Product, 0, len(file.Data))
	for i, item := range file.Data {
		p, err := item.toProduct(now)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (it amazonItem) toProduct(now time.Time) (product.Product, error) {
	urls := make([]string, 0, len(it.Images))
	for _, img := range it.Images {
		switch {
		case img.HiRes != "":
			urls = append(urls, img.HiRes)
		case img.Large != "":
			urls = append(urls, img.Large)
		}
	}

	p, err := product.New(it.id(), product.Attributes{
		Title:         it.Title,
		ImageURLs:     urls,
		Description:   strings.Join(it.Description, "\n"),
		AverageRating: it.AverageRating,
		RatingCount:   it.RatingNumber,
		Store:         it.MainCategory,
		CreatedAt:     now,
	})
	if err != nil {
		return product.Product{}, fmt.Errorf("build product %q: %w", it.Title, err)
	}
	return p, nil
}

// id prefers the ASIN and otherwise derives a stable UUID, so re-importing the
// same dump overwrites instead of duplicating.
func (it amazonItem) id() string {
	if it.ParentASIN != "" {
		return it.ParentASIN
	}
	key := it.Title + "\x00" + it.MainCategory + "\x00" + strings.Join(it.Description, "\n")
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}
