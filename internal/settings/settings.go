// Package settings stores the site-wide SEO record shown in every page head.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lightgray/lightgray/internal/database"
)

type Settings struct {
	HeadTitle       string    `json:"headTitle"`
	MetaDescription string    `json:"metaDescription"`
	MetaKeywords    string    `json:"metaKeywords"`
	MetaAuthor      string    `json:"metaAuthor"`
	WebTitle        string    `json:"webTitle"`
	WebSubtitle     string    `json:"webSubtitle"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

func Defaults() Settings {
	return Settings{
		HeadTitle:       "Courses LMS",
		MetaDescription: "Default description",
		MetaKeywords:    "Default,Keywords",
		MetaAuthor:      "Default Author",
		WebTitle:        "Courses LMS",
		WebSubtitle:     "Learning made easy",
	}
}

// withDefaults fills blank fields from Defaults.
func (s Settings) withDefaults() Settings {
	d := Defaults()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.HeadTitle, d.HeadTitle)
	fill(&s.MetaDescription, d.MetaDescription)
	fill(&s.MetaKeywords, d.MetaKeywords)
	fill(&s.MetaAuthor, d.MetaAuthor)
	fill(&s.WebTitle, d.WebTitle)
	fill(&s.WebSubtitle, d.WebSubtitle)
	return s
}

type Store struct {
	db database.DBTX
}

func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

// Get returns the stored record, or Defaults when none has been written.
func (s *Store) Get(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.db.QueryRow(ctx,
		`SELECT head_title, meta_description, meta_keywords, meta_author, web_title, web_subtitle, updated_at
		 FROM seo_settings WHERE id = 1`,
	).Scan(&out.HeadTitle, &out.MetaDescription, &out.MetaKeywords, &out.MetaAuthor, &out.WebTitle, &out.WebSubtitle, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load seo settings: %w", err)
	}
	return out.withDefaults(), nil
}

// Update replaces the record. Blank fields are stored as their defaults.
func (s *Store) Update(ctx context.Context, in Settings) (Settings, error) {
	in = in.withDefaults()
	err := s.db.QueryRow(ctx,
		`INSERT INTO seo_settings (id, head_title, meta_description, meta_keywords, meta_author, web_title, web_subtitle, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (id) DO UPDATE SET
		   head_title = EXCLUDED.head_title,
		   meta_description = EXCLUDED.meta_description,
		   meta_keywords = EXCLUDED.meta_keywords,
		   meta_author = EXCLUDED.meta_author,
		   web_title = EXCLUDED.web_title,
		   web_subtitle = EXCLUDED.web_subtitle,
		   updated_at = EXCLUDED.updated_at
		 RETURNING updated_at`,
		in.HeadTitle, in.MetaDescription, in.MetaKeywords, in.MetaAuthor, in.WebTitle, in.WebSubtitle,
	).Scan(&in.UpdatedAt)
	if err != nil {
		return Settings{}, fmt.Errorf("save seo settings: %w", err)
	}
	return in, nil
}

// Current never fails: a nil store or a database error yields Defaults.
func (s *Store) Current(ctx context.Context) Settings {
	if s == nil || s.db == nil {
		return Defaults()
	}
	out, err := s.Get(ctx)
	if err != nil {
		slog.Warn("settings: falling back to defaults", "error", err)
		return Defaults()
	}
	return out
}
