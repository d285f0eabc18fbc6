package migrations

import (
	"testing"
	"testing/fstest"

	"astro-admin-go/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOrdersByVersionAndIsIdempotent(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	fsys := fstest.MapFS{
		"V10__later.sql":     {Data: []byte(`INSERT INTO items (name) VALUES ('ten');`)},
		"V2__create.sql":     {Data: []byte(`CREATE TABLE items (name TEXT);`)},
		"README.md":          {Data: []byte(`ignored`)},
		"zz_unversioned.sql": {Data: []byte(`INSERT INTO items (name) VALUES ('tail');`)},
	}

	require.NoError(t, Apply(database, fsys))
	require.NoError(t, Apply(database, fsys))

	names := []string{}
	require.NoError(t, database.Select(&names, `SELECT name FROM items ORDER BY rowid`))
	assert.Equal(t, []string{"ten", "tail"}, names)

	var count int
	require.NoError(t, database.Get(&count, `SELECT count(*) FROM schema_migrations`))
	assert.Equal(t, 3, count)
}

func TestApplyEmbeddedCreatesLocalStorage(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, ApplyEmbedded(database))

	_, err = database.Exec(`INSERT INTO local_storage (key, value) VALUES ('token', 'abc')`)
	assert.NoError(t, err)
}

func TestParseVersion(t *testing.T) {
	assert.Equal(t, "12", parseVersion("V12__thing.sql"))
	assert.Equal(t, "", parseVersion("V12.sql"))
	assert.Equal(t, "", parseVersion("thing.sql"))
}
