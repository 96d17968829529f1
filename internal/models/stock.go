package models

// StockEntry is one line of the in-memory stock list.
type StockEntry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
