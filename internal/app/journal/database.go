package journal

import (
	"fmt"
	"time"

	"satch-client/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultConnectionString = "satch_journal.db"
	DefaultSchedule         = "@every 1m"
	DefaultResolveAfter     = 2 * time.Minute
)

type JournalConfigJson struct {
	Driver             string `json:"driver"`
	ConnectionString   string `json:"connection_string"`
	ReconcileSchedule  string `json:"reconcile_schedule"`
	ResolveAfterSecond int    `json:"resolve_after_seconds"`
}

type JournalConfig struct {
	Driver            string
	ConnectionString  string
	ReconcileSchedule string
	// ResolveAfter is how long a missing target may still land before it counts as absent.
	ResolveAfter time.Duration
}

func (jcj JournalConfigJson) ConvertToDomain() JournalConfig {
	cfg := JournalConfig{
		Driver:            jcj.Driver,
		ConnectionString:  jcj.ConnectionString,
		ReconcileSchedule: jcj.ReconcileSchedule,
		ResolveAfter:      time.Duration(jcj.ResolveAfterSecond) * time.Second,
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSqlite
	}
	if cfg.ConnectionString == "" && cfg.Driver == DriverSqlite {
		cfg.ConnectionString = DefaultConnectionString
	}
	if cfg.ReconcileSchedule == "" {
		cfg.ReconcileSchedule = DefaultSchedule
	}
	if cfg.ResolveAfter <= 0 {
		cfg.ResolveAfter = DefaultResolveAfter
	}
	return cfg
}

// Open connects to the configured database and migrates the journal table.
func Open(cfg JournalConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSqlite:
		dialector = sqlite.Open(cfg.ConnectionString)
	case DriverPostgres:
		dialector = postgres.Open(cfg.ConnectionString)
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", cfg.Driver)
	}

	logger.Default().Infof("Establishing connection to %s journal database", cfg.Driver)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}
