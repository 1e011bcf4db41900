package main

import (
	"context"
	"flag"
	"os"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rostsocial/rost/app_setting"
	"github.com/rostsocial/rost/model"
	"github.com/rostsocial/rost/realtime"
	"github.com/rostsocial/rost/server/resolver"
	. "github.com/rostsocial/rost/utils"
	Flag "github.com/rostsocial/rost/utils/flag"
	. "github.com/rostsocial/rost/utils/log"
)

var (
	categories = []string{"Culture", "Technology", "Travel", "Food"}
	tags       = []string{"calm", "curious", "hopeful", "playful", "reflective"}

	profiles = []model.Profile{
		{UserID: "seed-user-ada", Handle: "ada", DisplayName: "Ada"},
		{UserID: "seed-user-linus", Handle: "linus", DisplayName: "Linus"},
		{UserID: "seed-user-grace", Handle: "grace", DisplayName: "Grace"},
	}
)

type seedPost struct {
	author string
	input  model.NewPostInput
}

func strPtr(s string) *string { return &s }

var posts = []seedPost{
	{"seed-user-ada", model.NewPostInput{
		Title: "Slow mornings in Lisbon", Content: "Coffee, trams and the river.",
		Category: strPtr("Travel"), Tags: model.TagList{"calm", "reflective"},
	}},
	{"seed-user-linus", model.NewPostInput{
		Title: "Why I still write C", Content: "Some notes on staying close to the metal.",
		Category: strPtr("Technology"), Tags: model.TagList{"curious"},
	}},
	{"seed-user-grace", model.NewPostInput{
		Title: "A bread that forgives you", Content: "No-knead, overnight, hard to get wrong.",
		Category: strPtr("Food"), Tags: model.TagList{"playful", "hopeful"},
	}},
}

// Seed inserts the demo taxonomy, profiles and posts. Taxonomy and profiles
// are idempotent, posts are created on every run through the resolver so that
// live feeds are notified.
func Seed(ctx context.Context, db *gorm.DB, r *resolver.Resolver) error {
	for _, name := range categories {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Category{Name: name}).Error; err != nil {
			return errors.Wrap(err, "seed category "+name)
		}
	}
	for _, name := range tags {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Tag{Name: name}).Error; err != nil {
			return errors.Wrap(err, "seed tag "+name)
		}
	}
	for i := range profiles {
		p := profiles[i]
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
			return errors.Wrap(err, "seed profile "+p.Handle)
		}
	}
	for _, p := range posts {
		created, err := r.CreatePost(ctx, p.input, p.author)
		if err != nil {
			return err
		}
		Log.Infof("seeded post %s", created.Slug)
	}
	return nil
}

func main() {
	flag.Parse()
	if *Flag.ServiceName == Flag.APIServer {
		*Flag.ServiceName = Flag.Seeder
	}
	if err := InitLoggerFromEnvFiles(); err != nil {
		Log.Fatalf("fail to load env files: %v", err)
	}
	setting, err := app_setting.ParseRostAppSetting(*Flag.AppSettingPath)
	if err != nil {
		Log.Fatalf("invalid app setting: %v", err)
	}

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatalf("fail to connect to database: %v", err)
	}
	if err := DatabaseSetupAndMigration(db); err != nil {
		Log.Fatalf("fail to migrate database: %v", err)
	}

	ctx := context.Background()
	// Servers hear about the new posts through Postgres NOTIFY already, the
	// Redis fan-out covers instances that can't LISTEN.
	r := &resolver.Resolver{DB: db}
	if IsRedisConfigured() {
		client, err := GetRedisClient(ctx)
		if err != nil {
			Log.Fatalf("fail to connect to redis: %v", err)
		}
		defer client.Close()
		r.Notifier = realtime.NewNotifier(client, setting.REDIS_CHANNEL, nil)
	}

	if err := Seed(ctx, db, r); err != nil {
		Log.Errorf("seeding failed: %v", err)
		os.Exit(1)
	}
	Log.Info("seeding done")
}
