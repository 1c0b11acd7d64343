package models

import "time"

type Comment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Likes     LikeSet   `json:"likes"`
	IsPre     bool      `json:"is_pre"`
	IsViral   bool      `json:"is_viral"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        int64      `json:"id"`
	Author    string     `json:"author"`
	Text      string     `json:"text"`
	MediaURL  string     `json:"media_url"`
	Likes     LikeSet    `json:"likes"`
	Comments  []*Comment `json:"comments"`
	CreatedAt time.Time  `json:"created_at"`
}

func (c *Comment) clone() *Comment {
	cp := *c
	cp.Likes = c.Likes.clone()
	return &cp
}

func (p *Post) clone() *Post {
	cp := *p
	cp.Likes = p.Likes.clone()
	cp.Comments = make([]*Comment, len(p.Comments))
	for i, c := range p.Comments {
		cp.Comments[i] = c.clone()
	}
	return &cp
}
