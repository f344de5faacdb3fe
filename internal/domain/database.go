package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// SchemaVersionLegacy has no profiles and required config fields.
	SchemaVersionLegacy uint32 = 1
	// SchemaVersionCurrent adds profiles, default_browser_mode and the
	// profile-aware config.
	SchemaVersionCurrent uint32 = 2
)

// DatabaseMeta is the bookkeeping header of the persisted aggregate.
type DatabaseMeta struct {
	Version            uint32      `json:"version"`
	LastUpdatedID      uint64      `json:"last_updated_id"`
	LastUpdated        time.Time   `json:"last_updated"`
	MaxID              uint64      `json:"max_id"`
	RecordCount        int         `json:"record_count"`
	CreatedAt          time.Time   `json:"created_at"`
	DefaultBrowserMode BrowserMode `json:"default_browser_mode"`
}

// Database is the whole persisted aggregate, as exported and imported.
type Database struct {
	Meta     DatabaseMeta        `json:"meta"`
	Profiles []*BrowserProfile   `json:"profiles"`
	Data     []*CollectionRecord `json:"data"`
}

// NewDatabase returns an empty database at the current schema version.
func NewDatabase(now time.Time) *Database {
	return &Database{
		Meta: DatabaseMeta{
			Version:            SchemaVersionCurrent,
			LastUpdated:        now,
			CreatedAt:          now,
			DefaultBrowserMode: DefaultBrowserMode,
		},
		Profiles: []*BrowserProfile{},
		Data:     []*CollectionRecord{},
	}
}

// LoadReport tells how many items were dropped while decoding a database.
type LoadReport struct {
	SourceVersion   uint32
	SkippedProfiles int
	SkippedRecords  int
	UpgradedFromV1  bool
}

// rawDatabase defers decoding of items so each can be guarded on its own.
type rawDatabase struct {
	Meta struct {
		Version            uint32          `json:"version"`
		LastUpdatedID      uint64          `json:"last_updated_id"`
		LastUpdated        time.Time       `json:"last_updated"`
		MaxID              uint64          `json:"max_id"`
		RecordCount        int             `json:"record_count"`
		CreatedAt          time.Time       `json:"created_at"`
		DefaultBrowserMode json.RawMessage `json:"default_browser_mode"`
	} `json:"meta"`
	Profiles []json.RawMessage `json:"profiles"`
	Data     []json.RawMessage `json:"data"`
}

// DecodeDatabase reads a persisted database of any known version.
//
// A v1 database is upgraded once here: its records become v2 records with no
// profile reference, and the default mode is set to DefaultBrowserMode.
// Items that fail their guard are skipped and counted in the report; only a
// malformed envelope or an unknown version is an error.
func DecodeDatabase(data []byte) (*Database, LoadReport, error) {
	var raw rawDatabase
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, LoadReport{}, fmt.Errorf("%w: database envelope: %v", ErrInvalidShape, err)
	}

	version := raw.Meta.Version
	report := LoadReport{SourceVersion: version}

	decodeRecord := DecodeCollectionRecord
	switch version {
	case SchemaVersionLegacy:
		decodeRecord = DecodeLegacyCollectionRecord
		report.UpgradedFromV1 = true
	case SchemaVersionCurrent:
	default:
		return nil, report, fmt.Errorf("%w: unsupported schema version %d", ErrInvalidShape, version)
	}

	db := &Database{
		Meta: DatabaseMeta{
			Version:            SchemaVersionCurrent,
			LastUpdatedID:      raw.Meta.LastUpdatedID,
			LastUpdated:        raw.Meta.LastUpdated,
			MaxID:              raw.Meta.MaxID,
			CreatedAt:          raw.Meta.CreatedAt,
			DefaultBrowserMode: DefaultBrowserMode,
		},
		Profiles: []*BrowserProfile{},
		Data:     make([]*CollectionRecord, 0, len(raw.Data)),
	}

	if version == SchemaVersionCurrent {
		var mode BrowserMode
		if err := json.Unmarshal(raw.Meta.DefaultBrowserMode, &mode); err == nil {
			db.Meta.DefaultBrowserMode = mode
		}

		for _, item := range raw.Profiles {
			p, err := DecodeBrowserProfile(item)
			if err != nil {
				report.SkippedProfiles++
				continue
			}
			db.Profiles = append(db.Profiles, p)
		}
	}

	for _, item := range raw.Data {
		rec, err := decodeRecord(item)
		if err != nil {
			report.SkippedRecords++
			continue
		}
		db.Data = append(db.Data, rec)
		if rec.ID > db.Meta.MaxID {
			db.Meta.MaxID = rec.ID
		}
	}
	db.Meta.RecordCount = len(db.Data)

	return db, report, nil
}
