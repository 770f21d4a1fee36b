package model

import (
	"encoding/json"
	"time"

	"github.com/socialwall/interaction-service/internal/storage"
)

type Comment struct {
	ID                string    `json:"id"`
	AuthorID          string    `json:"author_id"`
	AuthorDisplayName string    `json:"author_display_name"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"created_at"`
}

func (c *Comment) Document() (storage.Document, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	var doc storage.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}
