// Package ner provides named-entity recognition collaborators used to find
// person mentions in candidate passages.
package ner

import "context"

// Entity is a recognized span with its model label.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Recognizer runs NER over a batch of texts. The result holds one entity
// list per input text, in input order.
type Recognizer interface {
	Recognize(ctx context.Context, texts []string) ([][]Entity, error)
}
