package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
)

func TestExport(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProfile(ctx, profile(t, "p1", true)))
	require.NoError(t, s.CreateCollection(ctx, record("One")))
	require.NoError(t, s.CreateCollection(ctx, record("Two")))
	require.NoError(t, s.SetDefaultMode(ctx, domain.ModeNormal))

	db, err := s.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SchemaVersionCurrent, db.Meta.Version)
	assert.Equal(t, uint64(2), db.Meta.MaxID)
	assert.Equal(t, 2, db.Meta.RecordCount)
	assert.Equal(t, domain.ModeNormal, db.Meta.DefaultBrowserMode)
	require.Len(t, db.Profiles, 1)
	require.Len(t, db.Data, 2)
	assert.Equal(t, "One", db.Data[0].Name)
}

func TestReplace(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCollection(ctx, record("Old")))
	require.NoError(t, s.CreateProfile(ctx, profile(t, "old", false)))
	require.NoError(t, s.IncrementRestores(ctx, 1))

	imported := record("Imported")
	imported.ID = 7
	first, second := profile(t, "x", true), profile(t, "y", true)
	db := &domain.Database{
		Meta: domain.DatabaseMeta{
			Version:            domain.SchemaVersionCurrent,
			MaxID:              3,
			DefaultBrowserMode: domain.ModePrivate,
		},
		Profiles: []*domain.BrowserProfile{first, second},
		Data:     []*domain.CollectionRecord{imported},
	}

	res, err := s.Replace(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Collections: 1, Profiles: 2}, res)

	all, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint64(7), all[0].ID)

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	y, err := s.GetProfile(ctx, "y")
	require.NoError(t, err)
	assert.False(t, y.IsDefault, "only the first default survives")

	_, err = s.GetProfile(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	counts, err := s.RestoreCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	meta, err := s.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), meta.MaxID, "max_id follows the highest imported id")
	assert.Equal(t, domain.ModePrivate, meta.DefaultBrowserMode)
	assert.True(t, meta.CreatedAt.Equal(testNow))

	next := record("Next")
	require.NoError(t, s.CreateCollection(ctx, next))
	assert.Equal(t, uint64(8), next.ID)
}

func TestReplaceWithInvalidModeUsesDefault(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, &domain.Database{Meta: domain.DatabaseMeta{DefaultBrowserMode: "Loud"}})
	require.NoError(t, err)

	mode, err := s.DefaultMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBrowserMode, mode)
}

func TestMerge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCollection(ctx, record("Work")))
	require.NoError(t, s.CreateProfile(ctx, profile(t, "p1", true)))

	dupName := record("work")
	dupName.ID = 1
	play := record("Play")
	play.ID = 1
	playAgain := record("PLAY")
	playAgain.ID = 2
	db := &domain.Database{
		Profiles: []*domain.BrowserProfile{profile(t, "p1", false), profile(t, "p2", true)},
		Data:     []*domain.CollectionRecord{dupName, play, playAgain},
	}

	res, err := s.Merge(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Collections: 1, Profiles: 1, SkippedCollections: 2, SkippedProfiles: 1}, res)

	all, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Play", all[1].Name)
	assert.Equal(t, uint64(2), all[1].ID, "merged records get fresh ids")
	assert.True(t, all[1].UpdatedAt.Equal(testNow))

	p2, err := s.GetProfile(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, p2.IsDefault, "existing default wins")
	p1, err := s.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p1.IsDefault)
}

func TestMergeEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	res, err := s.Merge(context.Background(), &domain.Database{})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{}, res)
}
