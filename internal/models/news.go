package models

import "time"

// Language codes handled by the bilingual content pipeline.
const (
	LangDanish  = "da"
	LangEnglish = "en"
)

// News represents a bilingual news item. Exactly one of the title/body pairs
// is the admin's original text (the one matching SourceLang); the other is
// always a machine translation and is never hand-edited.
type News struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	TitleTranslated string    `db:"title_translated" json:"title_translated"`
	Body            string    `db:"body" json:"body"`
	BodyTranslated  string    `db:"body_translated" json:"body_translated"`
	SourceLang      string    `db:"source_lang" json:"source_lang"`
	AuthorID        string    `db:"author_id" json:"author_id"`
	SocialPostLink  *string   `db:"social_post_link" json:"social_post_link,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	Images []NewsImage `db:"-" json:"images,omitempty"`
}

// NewsImage is one stored, normalized image owned by exactly one news item.
type NewsImage struct {
	ID          string    `db:"id" json:"id"`
	NewsID      string    `db:"news_id" json:"news_id"`
	StoragePath string    `db:"storage_path" json:"storage_path"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewsFilter captures listing criteria for news.
type NewsFilter struct {
	Page     int
	PageSize int
}
