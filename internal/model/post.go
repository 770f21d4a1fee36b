package model

import (
	"encoding/json"
	"time"

	"github.com/socialwall/interaction-service/internal/storage"
)

type Post struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	Likes          []string  `json:"likes"`
	LikesCount     int64     `json:"likes_count"`
	Comments       []Comment `json:"comments"`
	CommentsCount  int64     `json:"comments_count"`
	Shares         int64     `json:"shares"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasLiked reports whether userID is in the post's like set.
func (p *Post) HasLiked(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Document converts the post into its stored shape. The id stays out of the
// document body: storage assigns it and returns it separately.
func (p *Post) Document() (storage.Document, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	var doc storage.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "id")

	return doc, nil
}

// PostFromDocument decodes a stored document into a Post, defaulting every
// collection and counter field that storage legally omitted as zero-valued.
func PostFromDocument(id string, doc storage.Document) (*Post, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var post Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, err
	}

	post.ID = id
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []Comment{}
	}

	return &post, nil
}
