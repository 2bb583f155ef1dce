package domain

import "time"

// Translation is a rendering of a word in another language.
type Translation struct {
	ID           string    `json:"id" bson:"id"`
	Text         string    `json:"text" bson:"text"`
	LanguageCode string    `json:"language_code" bson:"language_code"`
	AddedByID    string    `json:"added_by_id" bson:"added_by_id"`
	Verified     bool      `json:"verified" bson:"verified"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Word is a dictionary entry.
type Word struct {
	ID           string        `json:"id"`
	Original     string        `json:"original"`
	LanguageCode string        `json:"language_code"`
	Difficulty   int           `json:"difficulty"`
	Approved     bool          `json:"approved"`
	AddedByID    string        `json:"added_by_id"`
	Translations []Translation `json:"translations"`
	Tags         []string      `json:"tags"`
	Examples     []string      `json:"examples,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	// Version increases with every stored write.
	Version int64 `json:"-"`
}

// FindTranslation returns the translation with id, or nil.
func (w *Word) FindTranslation(id string) *Translation {
	for i := range w.Translations {
		if w.Translations[i].ID == id {
			return &w.Translations[i]
		}
	}
	return nil
}
