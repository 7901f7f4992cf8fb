package model

import "strings"

// Dataset describes one queryable feature collection: where to query it,
// which fields it exposes, and the hints the translator feeds to the model.
// Instances come from the embedded catalog and are never mutated.
type Dataset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
	URL         string   `json:"url"`
	Fields      []string `json:"fields"`
	// KeyFields is a curated comma-joined subset of Fields used to bias the
	// model's field choices.
	KeyFields        string   `json:"keyFields"`
	ExampleQuestions []string `json:"exampleQuestions"`
	Icon             string   `json:"icon"`
	Color            string   `json:"color"`
}

// AllFields returns the full field list comma-joined for prompt embedding.
func (d *Dataset) AllFields() string {
	return strings.Join(d.Fields, ", ")
}
