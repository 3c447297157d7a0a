package models

import "time"

// Post is a blog/news entry shown on the public site.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Media     *Media    `json:"media,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slide is a homepage carousel entry.
type Slide struct {
	ID        string    `json:"id"`
	Caption   string    `json:"caption"`
	Media     *Media    `json:"media,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is one purchasable registration service with a display price.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AgentProfile is the single agency contact card shown on the site.
type AgentProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Bio       string    `json:"bio"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Photo     *Media    `json:"photo,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Media is the stored result of one upload: the original object URL plus
// any derived variants. Variants and the placeholder are optional; older
// records carry only the URL.
type Media struct {
	URL         string         `json:"url"`
	ContentType string         `json:"content_type,omitempty"`
	Variants    []MediaVariant `json:"variants,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
}

// MediaVariant is one resized rendition of an image upload.
type MediaVariant struct {
	Width   int    `json:"width"`
	JPEGURL string `json:"jpeg_url"`
	WebPURL string `json:"webp_url"`
}
