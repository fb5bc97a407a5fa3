package product

import "time"

// Product mirrors the upstream catalog record. Immutable from the
// storefront's point of view.
type Product struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	SellingPrice float64   `json:"sellingPrice"`
	Attachments  []string  `json:"attachments"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PageInfo carries the opaque pagination cursors of a product page.
type PageInfo struct {
	Previous    string `json:"previous"`
	Next        string `json:"next"`
	HasPrevious bool   `json:"hasPrevious"`
	HasNext     bool   `json:"hasNext"`
}

type Page struct {
	Data     []Product `json:"data"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// PageQuery selects a page by cursor. Empty cursors mean the first page.
type PageQuery struct {
	PreviousPage string
	NextPage     string
	Limit        int
}
