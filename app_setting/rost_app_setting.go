package app_setting

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/rostsocial/rost/feed"
)

// RostAppSetting tunes the api server. Every field has a default, so an empty
// or missing file is a valid setting.
type RostAppSetting struct {
	// Ranking weights. The defaults are tuning constants, not derived values.
	WEIGHTS feed.Weights `yaml:"WEIGHTS"`
	// Maximum number of posts fetched per feed refresh.
	FEED_LIMIT int `yaml:"FEED_LIMIT"`
	// Buffer of every subscriber channel on the in-process event bus.
	EVENT_BUS_BUFFER int64 `yaml:"EVENT_BUS_BUFFER"`
	// Postgres NOTIFY channel fired on post writes, LISTEN is disabled when
	// empty.
	PG_NOTIFY_CHANNEL string `yaml:"PG_NOTIFY_CHANNEL"`
	// Redis pub/sub channel used to fan post changes out to every instance.
	REDIS_CHANNEL string `yaml:"REDIS_CHANNEL"`
	// Address of the DogStatsD agent, metrics are not reported when empty.
	STATSD_ADDR string `yaml:"STATSD_ADDR"`
	// Address the http server binds to.
	LISTEN_ADDR string `yaml:"LISTEN_ADDR"`
}

func DefaultRostAppSetting() RostAppSetting {
	return RostAppSetting{
		WEIGHTS:           feed.DefaultWeights(),
		FEED_LIMIT:        feed.DefaultFeedLimit,
		EVENT_BUS_BUFFER:  100,
		PG_NOTIFY_CHANNEL: "rost_posts_changed",
		REDIS_CHANNEL:     "rost.posts.changed",
		STATSD_ADDR:       "127.0.0.1:8125",
		LISTEN_ADDR:       ":8080",
	}
}

// ParseRostAppSetting reads the yaml file at path on top of the defaults. A
// missing file yields the defaults, a malformed one is an error.
func ParseRostAppSetting(path string) (RostAppSetting, error) {
	c := DefaultRostAppSetting()
	yamlFile, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, errors.Wrap(err, "read app setting")
	}
	if err = yaml.Unmarshal(yamlFile, &c); err != nil {
		return c, errors.Wrap(err, "unmarshal app setting")
	}
	if c.FEED_LIMIT <= 0 {
		return c, errors.Errorf("FEED_LIMIT must be positive, got %d", c.FEED_LIMIT)
	}
	return c, nil
}
