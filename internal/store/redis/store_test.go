package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/restore-sites/internal/domain"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/metrics"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewStore(client, logger.Nop(),
		WithClock(func() time.Time { return testNow }),
		WithMetrics(metrics.New()),
	)
	require.NoError(t, s.Init(context.Background()))
	return s, mr
}

func record(name string, sites ...domain.SiteEntry) *domain.CollectionRecord {
	if sites == nil {
		sites = []domain.SiteEntry{}
	}
	return &domain.CollectionRecord{
		Name:      name,
		Sites:     sites,
		Config:    domain.CollectionConfig{Mode: domain.Ptr(domain.ModeNormal)},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func profile(t *testing.T, id string, isDefault bool) *domain.BrowserProfile {
	t.Helper()
	p, err := domain.NewBrowserProfile(id, "Profile "+id, domain.Firefox(), domain.ModePrivate, testNow)
	require.NoError(t, err)
	p.IsDefault = isDefault
	return p
}

func TestInitKeepsExistingHeader(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	mr.HSet(KeyMeta, fieldMaxID, "41")
	require.NoError(t, s.Init(ctx))

	meta, err := s.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(41), meta.MaxID)
	assert.Equal(t, domain.SchemaVersionCurrent, meta.Version)
	assert.Equal(t, domain.DefaultBrowserMode, meta.DefaultBrowserMode)
	assert.True(t, meta.CreatedAt.Equal(testNow))
}

func TestCollectionsCRUD(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	morning := record("Morning News", domain.SiteEntry{Title: "HN", URL: "https://news.ycombinator.com"})
	work := record("Work")
	require.NoError(t, s.CreateCollection(ctx, morning))
	require.NoError(t, s.CreateCollection(ctx, work))
	assert.Equal(t, uint64(1), morning.ID)
	assert.Equal(t, uint64(2), work.ID)

	got, err := s.GetCollection(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Morning News", got.Name)
	require.Len(t, got.Sites, 1)
	assert.Equal(t, "https://news.ycombinator.com", got.Sites[0].URL)

	all, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint64(1), all[0].ID)
	assert.Equal(t, uint64(2), all[1].ID)

	found, err := s.SearchCollections(ctx, "NEWS")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, uint64(1), found[0].ID)

	work.Name = "Office"
	require.NoError(t, s.UpdateCollection(ctx, work))
	got, err = s.GetCollection(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Name)

	ghost := record("Ghost")
	ghost.ID = 99
	assert.ErrorIs(t, s.UpdateCollection(ctx, ghost), ErrNotFound)

	deleted, err := s.DeleteCollection(ctx, 1)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.DeleteCollection(ctx, 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.GetCollection(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	meta, err := s.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), meta.MaxID)
	assert.Equal(t, uint64(2), meta.LastUpdatedID)
	assert.Equal(t, 1, meta.RecordCount)
}

func TestCollectionIDsAreNotReused(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := record("First")
	require.NoError(t, s.CreateCollection(ctx, first))
	_, err := s.DeleteCollection(ctx, first.ID)
	require.NoError(t, err)

	second := record("Second")
	require.NoError(t, s.CreateCollection(ctx, second))
	assert.Equal(t, uint64(2), second.ID)
}

func TestListCollectionsSkipsUnreadable(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCollection(ctx, record("Good")))
	require.NoError(t, mr.Set(CollectionKey(9), `{"id":9,"name":"Bad","config":{"browser":"Lynx"}}`))
	_, err := mr.SAdd(KeyAllCollections, "9")
	require.NoError(t, err)
	_, err = mr.SAdd(KeyAllCollections, "10")
	require.NoError(t, err)

	all, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Good", all[0].Name)

	_, err = s.GetCollection(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrInvalidShape)
}

func TestProfiles(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateProfile(ctx, profile(t, "a", true)))
	assert.ErrorIs(t, s.CreateProfile(ctx, profile(t, "a", false)), ErrDuplicateProfile)

	b := profile(t, "b", true)
	require.NoError(t, s.CreateProfile(ctx, b))

	a, err := s.GetProfile(ctx, "a")
	require.NoError(t, err)
	assert.False(t, a.IsDefault, "creating a new default clears the old one")

	all, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	def, ok := domain.DefaultProfile(all)
	require.True(t, ok)
	assert.Equal(t, "b", def.ID)

	a.Name = "Renamed"
	require.NoError(t, s.UpdateProfile(ctx, a))
	a, err = s.GetProfile(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", a.Name)

	assert.ErrorIs(t, s.UpdateProfile(ctx, profile(t, "zz", false)), ErrNotFound)

	deleted, err := s.DeleteProfile(ctx, "b")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.DeleteProfile(ctx, "b")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.GetProfile(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProfileFailureLeavesNoBlob(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	mr.SetError("LOADING redis is loading")
	require.Error(t, s.CreateProfile(ctx, profile(t, "a", true)))
	mr.SetError("")

	assert.False(t, mr.Exists(ProfileKey("a")))
	require.NoError(t, s.CreateProfile(ctx, profile(t, "a", true)))

	all, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID)
}

func TestConcurrentDefaultsLeaveOne(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		require.NoError(t, s.CreateProfile(ctx, profile(t, id, false)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		p := profile(t, id, true)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.UpdateProfile(ctx, p)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, p := range all {
		if p.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestDefaultMode(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	mode, err := s.DefaultMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeIncognito, mode)

	require.NoError(t, s.SetDefaultMode(ctx, domain.ModePrivate))
	mode, err = s.DefaultMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ModePrivate, mode)

	assert.ErrorIs(t, s.SetDefaultMode(ctx, "Loud"), domain.ErrInvalidShape)

	mr.HSet(KeyMeta, fieldDefaultMode, "Loud")
	mode, err = s.DefaultMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBrowserMode, mode)

	mr.Del(KeyMeta)
	mode, err = s.DefaultMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBrowserMode, mode)
}

func TestRestoreCounts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.IncrementRestores(ctx, 3))
	require.NoError(t, s.IncrementRestores(ctx, 3))
	require.NoError(t, s.IncrementRestores(ctx, 4))

	counts, err := s.RestoreCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int64{3: 2, 4: 1}, counts)

	_, err = s.DeleteCollection(ctx, 3)
	require.NoError(t, err)
	counts, err = s.RestoreCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int64{4: 1}, counts)
}

func TestExtractCollectionID(t *testing.T) {
	id, err := ExtractCollectionID(CollectionKey(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, key := range []string{"", KeyPrefixCollection, "restore:profile:1", KeyPrefixCollection + "x"} {
		_, err := ExtractCollectionID(key)
		assert.Error(t, err, key)
	}
}

func TestPrune(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCollection(ctx, record("Kept")))
	require.NoError(t, s.CreateProfile(ctx, profile(t, "kept", false)))
	require.NoError(t, s.IncrementRestores(ctx, 1))
	require.NoError(t, s.IncrementRestores(ctx, 77))
	_, err := mr.SAdd(KeyAllCollections, "50", "51")
	require.NoError(t, err)
	_, err = mr.SAdd(KeyAllProfiles, "ghost")
	require.NoError(t, err)

	res, err := s.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Collections: 2, Profiles: 1, Counters: 1}, res)
	assert.Equal(t, 4, res.Total())

	members, err := mr.SMembers(KeyAllCollections)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, members)

	again, err := s.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Total())
}
