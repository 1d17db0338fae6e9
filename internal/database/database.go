package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	Debug        bool
}

// Connect picks the gorm dialector from the DSN shape: postgres:// and
// mysql:// URLs go to their drivers, anything else is a sqlite file opened
// through the pure-Go modernc driver.
func Connect(dsn string, opts Options, log logrus.FieldLogger) (*gorm.DB, error) {
	dialector, name := dialectorFor(dsn)
	log.WithField("driver", name).Info("connecting to database")

	level := gormlogger.Warn
	if opts.Debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: name != "sqlite",
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName("rentaldesk"))); err != nil {
		return nil, fmt.Errorf("register tracing plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if name == "sqlite" {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), "postgres"
	case strings.HasPrefix(dsn, "mysql://"):
		return mysql.Open(mysqlDSN(strings.TrimPrefix(dsn, "mysql://"))), "mysql"
	default:
		return gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), "sqlite"
	}
}

// mysqlDSN turns user:pass@host:3306/db?x=y into the driver's
// user:pass@tcp(host:3306)/db form and forces parseTime.
func mysqlDSN(rest string) string {
	creds, hostPart := "", rest
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		creds, hostPart = rest[:at+1], rest[at+1:]
	}
	host, tail := hostPart, ""
	if slash := strings.Index(hostPart, "/"); slash >= 0 {
		host, tail = hostPart[:slash], hostPart[slash:]
	}
	if !strings.HasPrefix(host, "tcp(") {
		host = "tcp(" + host + ")"
	}
	dsn := creds + host + tail
	if !strings.Contains(dsn, "parseTime=") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}
	return dsn
}
