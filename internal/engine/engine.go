// Package engine holds the fit-gap core: classification, the requirement
// lifecycle, transcript extraction and the reporting views. External
// collaborators (store, completion provider) are injected; nothing here keeps
// mutable process-wide state beyond the immutable catalogue.
package engine

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"fitgap/internal/catalog"
	"fitgap/internal/events"
	"fitgap/internal/llm"
	"fitgap/internal/repo"
)

type Engine struct {
	Repo      repo.Repo
	Events    events.Writer
	Provider  llm.Provider
	Catalogue *catalog.Catalogue
	Log       *zap.Logger
	Now       func() time.Time
}

func New(db *sql.DB, cat *catalog.Catalogue, provider llm.Provider, log *zap.Logger) Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return Engine{
		Repo:      repo.Repo{DB: db},
		Events:    events.Writer{DB: db},
		Provider:  provider,
		Catalogue: cat,
		Log:       log,
		Now:       time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) nowRFC3339() string {
	return e.now().UTC().Format(time.RFC3339)
}
