package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTempDB(t *testing.T) {
	db, dbName := CreateTempDB(t)
	require.NotNil(t, db)
	assert.True(t, isTempDB(dbName))

	exists, err := IsDatabaseExist(dbName)
	assert.Nil(t, err)
	assert.True(t, exists)

	for _, table := range []string{"posts", "profiles", "follows", "likes", "bookmarks", "comments", "categories", "tags"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	var triggers int64
	db.Raw("SELECT count(*) FROM pg_trigger WHERE tgname = 'rost_posts_changed_trigger'").Scan(&triggers)
	assert.Equal(t, int64(1), triggers)
}

func TestIsDatabaseExist(t *testing.T) {
	if !IsDBConfigured() {
		t.Skip("no database configured")
	}
	exists, err := IsDatabaseExist("postgres")
	assert.Nil(t, err)
	assert.True(t, exists)

	exists, err = IsDatabaseExist("DOES_NOT_EXIST")
	assert.Nil(t, err)
	assert.False(t, exists)
}

func TestRandomTestDBName(t *testing.T) {
	name := randomTestDBName()
	assert.True(t, isTempDB(name))
	assert.Len(t, name, len(TestDBPrefix)+TestDBNameCharLength)
	assert.False(t, isTempDB("rost"))
}
