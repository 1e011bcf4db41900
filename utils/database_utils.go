// database_utils should be the canonical place to put shared DB utils.
// It should not include:
// 1. Any util that doesn't manipulate DB
// 2. Any util that contains business logic
package utils

import (
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/rostsocial/rost/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestDBPrefix         = "testonlydb_"
	TestDBNameCharLength = 8

	// PostsChangedChannel is the Postgres NOTIFY channel fired by any write to
	// the posts table.
	PostsChangedChannel = "rost_posts_changed"
)

// notifyTriggerSQL installs a statement level trigger that notifies
// PostsChangedChannel with "<table>:<op>". Safe to run repeatedly.
var notifyTriggerSQL = []string{
	`CREATE OR REPLACE FUNCTION rost_notify_posts_changed() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('` + PostsChangedChannel + `', TG_TABLE_NAME || ':' || TG_OP);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS rost_posts_changed_trigger ON posts`,
	`CREATE TRIGGER rost_posts_changed_trigger
	AFTER INSERT OR UPDATE OR DELETE ON posts
	FOR EACH STATEMENT EXECUTE PROCEDURE rost_notify_posts_changed()`,
}

// GormTransaction is the callback function used during db.Transaction in Gorm.
type GormTransaction func(tx *gorm.DB) error

func isTempDB(dbName string) bool {
	return strings.HasPrefix(dbName, TestDBPrefix)
}

func randomTestDBName() string {
	return TestDBPrefix + RandomAlphabetString(TestDBNameCharLength)
}

// IsDBConfigured returns true when enough env is set to reach a database.
func IsDBConfigured() bool {
	return os.Getenv("DB_HOST") != "" && os.Getenv("DEFAULT_DB_NAME") != ""
}

// GetDBConnection get a connection to the database specified by env
func GetDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DB_NAME"))
}

// GetDefaultDBConnection connect to database "postgres" to manage all dbs
func GetDefaultDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DEFAULT_DB_NAME"))
}

// GetCustomizedConnection connect to any db
func GetCustomizedConnection(dbName string) (*gorm.DB, error) {
	return getDB(ConnectionString(dbName))
}

// ConnectionString builds the libpq style DSN for dbName. It's shared by gorm
// and the LISTEN connection which needs a raw lib/pq DSN.
func ConnectionString(dbName string) string {
	user, pass := os.Getenv("DB_USER"), os.Getenv("DB_PASS")
	if dbName == os.Getenv("DEFAULT_DB_NAME") {
		user, pass = os.Getenv("DEFAULT_DB_USER"), os.Getenv("DEFAULT_DB_PASS")
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", os.Getenv("DB_HOST"), user, pass, dbName, os.Getenv("DB_PORT"))
}

// Create a temp DB for testing, note that this function should only be called
// in a testing environment with test state manager testing.T
// It is guaranteed that this table will be dropped after each test case, user
// will not need to drop the database explicitly. The test is skipped when no
// database is configured.
//
// Note: There are 2 cases where database won't be cleaned up:
// 1. Test fail due to timeout
// 2. Exit with signal Ctrl+C
// In both cases you should log into the database and do a manual cleanup for
// databases with prefix "testonlydb_".
func CreateTempDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	if !IsDBConfigured() {
		t.Skip("no database configured")
	}
	db, err := GetDefaultDBConnection()
	if err != nil {
		log.Fatalln("cannot connect to DB")
	}
	dbName := randomTestDBName()
	err = db.Exec("CREATE DATABASE " + dbName).Error
	if err != nil {
		log.Fatalln("fail to create temp DB with name: ", dbName)
	}
	newDB, err := GetCustomizedConnection(dbName)
	if err != nil {
		log.Fatalln("fail to connect to newly created DB: ", dbName)
	}
	if err := DatabaseSetupAndMigration(newDB); err != nil {
		log.Fatalln("fail to migrate temp DB: ", dbName, err)
	}
	t.Cleanup(func() {
		dropTempDB(newDB, dbName)

		// Also proactively clean up the DB connections instead of deferring to GC.
		// Otherwise, we might exceed the DB max connection limit in test and
		// causing some tests to fail.
		conn, _ := db.DB()
		conn.Close()
		conn, _ = newDB.DB()
		conn.Close()
	})

	return newDB, dbName
}

// dropTempDB drops a temp db with given name. This will always be called after
// CreateTempDB. Abort program on any failure. This function can be called
// multiple times. It won't fail on deleting non-existing DB.
func dropTempDB(curDB *gorm.DB, dbName string) {
	if !isTempDB(dbName) {
		log.Fatalln("cannot delete a non-testing DB")
	}

	exists, err := IsDatabaseExist(dbName)
	if err != nil {
		log.Fatalln("cannot connect to DB")
	}

	if !exists {
		return
	}

	// We need to close the current DB connection first. Otherwise it's not
	// possible to drop it. However we don't check if sqlDB is closed successfully
	// because fail to close will still produce error when we try to drop it.
	sqlDB, err := curDB.DB()
	if err != nil {
		log.Fatalln("cannot get the current SQL DB")
	}
	if err := sqlDB.Close(); err != nil {
		log.Println("cannot close DB", err)
	}

	db, err := GetDefaultDBConnection()
	if err != nil {
		log.Fatalln("cannot connect to DB")
	}
	db.Exec("DROP DATABASE " + dbName)
}

func getDB(connectionString string) (db *gorm.DB, err error) {
	return gorm.Open(postgres.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// DatabaseSetupAndMigration creates all tables and installs the posts change
// trigger used by realtime listeners.
func DatabaseSetupAndMigration(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Profile{},
		&model.Post{},
		&model.Follow{},
		&model.Like{},
		&model.Bookmark{},
		&model.Comment{},
		&model.Category{},
		&model.Tag{},
	)
	if err != nil {
		return err
	}

	for _, stmt := range notifyTriggerSQL {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// IsDatabaseExist returns true on DB exist, returns false on not exist or error
func IsDatabaseExist(dbName string) (bool, error) {
	db, err := GetDefaultDBConnection()
	if err != nil {
		return false, err
	}

	var exists bool
	res := db.Raw("SELECT TRUE FROM pg_catalog.pg_database WHERE lower(datname) = lower(?) limit 1", dbName).Scan(&exists)
	if res.Error != nil {
		return false, res.Error
	}

	return exists, nil
}
