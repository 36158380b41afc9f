package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/gradecast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Source, convey.ShouldEqual, config.SourceCSV)
			convey.So(cfg.Seed, convey.ShouldEqual, 42)
			convey.So(cfg.TestFraction, convey.ShouldEqual, 0.25)
			convey.So(cfg.CVFolds, convey.ShouldEqual, 5)
			convey.So(cfg.TopK, convey.ShouldEqual, 5)
			convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ForestTrees, convey.ShouldEqual, 100)
			convey.So(cfg.LogisticMaxIter, convey.ShouldEqual, 1000)
			convey.So(cfg.EngagementTokens, convey.ShouldResemble, []string{"activity", "engagement", "visit", "view", "attempt", "download"})
			convey.So(cfg.FrequencyExcludeTokens, convey.ShouldResemble, []string{"ratio", "consistency"})
			convey.So(cfg.RedisTTL(), convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out of range values", t, func() {
		cases := map[string]func(c *config.Config){
			"unknown source":       func(c *config.Config) { c.Source = "s3" },
			"missing events path":  func(c *config.Config) { c.EventsPath = "" },
			"postgres without dsn": func(c *config.Config) { c.Source = config.SourcePostgres },
			"unknown log format":   func(c *config.Config) { c.LogFormat = "xml" },
			"zero test fraction":   func(c *config.Config) { c.TestFraction = 0 },
			"whole test fraction":  func(c *config.Config) { c.TestFraction = 1 },
			"single fold":          func(c *config.Config) { c.CVFolds = 1 },
			"zero top k":           func(c *config.Config) { c.TopK = 0 },
			"zero workers":         func(c *config.Config) { c.Workers = 0 },
			"no trees":             func(c *config.Config) { c.ForestTrees = 0 },
			"negative logistic c":  func(c *config.Config) { c.LogisticC = -1 },
			"negative redis ttl":   func(c *config.Config) { c.RedisTTLSeconds = -1 },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" should be rejected", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then a postgres source with a dsn should pass", func() {
			cfg := config.New()
			cfg.Source = config.SourcePostgres
			cfg.PostgresDSN = "postgres://localhost/school"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
