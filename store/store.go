/*
Package store keeps fitted models under names together with their metadata
*/
package store

import (
	"context"
	"errors"
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/xerrors"
	"math"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("model not found")
	ErrNoStore  = errors.New("model store is not configured")
)

/*
Entry describes a stored model
*/
type Entry struct {
	Name      string             `json:"name"`
	Solver    string             `json:"solver"`
	Dim       int                `json:"dim"`
	Classes   []int              `json:"classes"`
	Meta      map[string]float64 `json:"meta,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

/*
ModelStore is a named registry of fitted models
*/
type ModelStore interface {
	// Save stores the model replacing the one with the same name
	Save(ctx context.Context, name string, m *model.Model, meta map[string]float64) error
	Load(ctx context.Context, name string) (*model.Model, error)
	// List returns entries sorted by name
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

func newEntry(name string, m *model.Model, meta map[string]float64) Entry {
	e := Entry{
		Name:      name,
		Solver:    m.Solver(),
		Dim:       m.Dim(),
		Classes:   m.Classes(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	for k, v := range meta {
		// JSON has no NaN or Inf
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if e.Meta == nil {
			e.Meta = make(map[string]float64, len(meta))
		}
		e.Meta[k] = v
	}
	return e
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return xerrors.Errorf("model name is empty")
	}
	return nil
}

/*
Config selects and configures the store
*/
type Config struct {
	Kind  string `mapstructure:"kind"` // sqlite, redis or empty
	Path  string `mapstructure:"path"` // sqlite database file, relative to the models cache dir
	Redis struct {
		Addr   string `mapstructure:"addr"`
		DB     int    `mapstructure:"db"`
		Prefix string `mapstructure:"prefix"`
	} `mapstructure:"redis"`
}

/*
Open connects the configured store
*/
func Open(ctx context.Context, c Config, solvers model.Table) (ModelStore, error) {
	switch strings.ToLower(strings.TrimSpace(c.Kind)) {
	case "", "none":
		return nil, ErrNoStore
	case "sqlite", "sqlite3":
		path := c.Path
		if path == "" {
			path = "models.db"
		}
		return OpenSQLite(path, solvers)
	case "redis":
		return DialRedis(ctx, c.Redis.Addr, c.Redis.DB, c.Redis.Prefix, solvers)
	}
	return nil, xerrors.Errorf("unknown store kind `%v`", c.Kind)
}
