package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsRegistered(t *testing.T) {
	registered := GetMigrations()
	require.NotEmpty(t, registered)

	first := registered[0]
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "init_schema", first.Name)
	assert.Contains(t, first.UpScript, "post_likes")
	assert.Contains(t, first.DownScript, "DROP TABLE")
	assert.Equal(t, "000001_init_schema", first.String())

	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_add_index.up.sql":   {Data: []byte("CREATE INDEX x ON t (c);")},
		"migrations/000002_add_index.down.sql": {Data: []byte("DROP INDEX x;")},
		"migrations/000001_init.up.sql":        {Data: []byte("CREATE TABLE t (c INT);")},
		"migrations/000001_init.down.sql":      {Data: []byte("DROP TABLE t;")},
		"migrations/README.md":                 {Data: []byte("ignored")},
		"migrations/bogus.up.sql":              {Data: []byte("ignored")},
	}

	loaded, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 1, loaded[0].Version)
	assert.Equal(t, "init", loaded[0].Name)
	assert.Equal(t, 2, loaded[1].Version)
	assert.Equal(t, "DROP INDEX x;", loaded[1].DownScript)
}

func TestLoadMigrations_MissingDownScript(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000001_init.up.sql": {Data: []byte("CREATE TABLE t (c INT);")},
	}

	_, err := LoadMigrations(fsys)
	assert.ErrorContains(t, err, "down migration")
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"migrations/000001_a.down.sql": {Data: []byte("SELECT 1;")},
		"migrations/1_b.up.sql":        {Data: []byte("SELECT 1;")},
		"migrations/1_b.down.sql":      {Data: []byte("SELECT 1;")},
	}

	_, err := LoadMigrations(fsys)
	assert.ErrorContains(t, err, "duplicate migration version")
}

type fakeMigrationStore struct {
	applied  []int
	ran      []int
	reverted []int
	failOn   int
}

func (s *fakeMigrationStore) AppliedVersions(context.Context) ([]int, error) {
	return s.applied, nil
}

func (s *fakeMigrationStore) Apply(_ context.Context, m Migration) error {
	if m.Version == s.failOn {
		return errors.New("syntax error")
	}
	s.ran = append(s.ran, m.Version)
	s.applied = append(s.applied, m.Version)
	return nil
}

func (s *fakeMigrationStore) Revert(_ context.Context, m Migration) error {
	s.reverted = append(s.reverted, m.Version)
	return nil
}

func testMigrations(versions ...int) []Migration {
	out := make([]Migration, 0, len(versions))
	for _, v := range versions {
		out = append(out, Migration{Version: v, Name: "m", UpScript: "SELECT 1;", DownScript: "SELECT 1;"})
	}
	return out
}

func TestApplyPending(t *testing.T) {
	store := &fakeMigrationStore{applied: []int{1}}

	require.NoError(t, applyPending(context.Background(), store, testMigrations(1, 2, 3)))
	assert.Equal(t, []int{2, 3}, store.ran)
}

func TestApplyPending_StopsAtFailure(t *testing.T) {
	store := &fakeMigrationStore{failOn: 2}

	err := applyPending(context.Background(), store, testMigrations(1, 2, 3))
	assert.Error(t, err)
	assert.Equal(t, []int{1}, store.ran)
}

func TestApplyPending_UnknownAppliedVersion(t *testing.T) {
	store := &fakeMigrationStore{applied: []int{1, 7}}

	err := applyPending(context.Background(), store, testMigrations(1, 2))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "000007"))
	assert.Empty(t, store.ran)
}

func TestRollback(t *testing.T) {
	t.Run("applied migration", func(t *testing.T) {
		store := &fakeMigrationStore{applied: []int{1}}
		require.NoError(t, rollback(context.Background(), store, 1))
		assert.Equal(t, []int{1}, store.reverted)
	})

	t.Run("not applied", func(t *testing.T) {
		store := &fakeMigrationStore{}
		assert.ErrorContains(t, rollback(context.Background(), store, 1), "has not been applied")
	})

	t.Run("unknown version", func(t *testing.T) {
		store := &fakeMigrationStore{applied: []int{1}}
		assert.ErrorContains(t, rollback(context.Background(), store, 42), "not found")
	})
}

func TestMigrationStore_MissingTableReadsAsEmpty(t *testing.T) {
	store := NewMigrationStore(openSQLite(t))

	versions, err := store.AppliedVersions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestMigrationStore_ApplyAndRevert(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	store := NewMigrationStore(db)
	ctx := context.Background()

	m := Migration{
		Version:    5,
		Name:       "widgets",
		UpScript:   "CREATE TABLE widgets (id INTEGER PRIMARY KEY);",
		DownScript: "DROP TABLE widgets;",
	}

	require.NoError(t, store.Apply(ctx, m))
	versions, err := store.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, versions)
	assert.True(t, db.Migrator().HasTable("widgets"))

	require.NoError(t, store.Revert(ctx, m))
	versions, err = store.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)
	assert.False(t, db.Migrator().HasTable("widgets"))
}

func TestMigrationStore_FailedApplyIsNotRecorded(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	store := NewMigrationStore(db)
	ctx := context.Background()

	err := store.Apply(ctx, Migration{Version: 9, Name: "broken", UpScript: "CREATE TABLEZ nope;"})
	require.Error(t, err)

	versions, err := store.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, versions)
}
