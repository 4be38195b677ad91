package model

// Category is a named grouping for reported items.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
