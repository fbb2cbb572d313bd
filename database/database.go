package database

import (
	"errors"
	"fmt"
	golog "log"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"video-optimizer/config"
)

// ErrBusy is surfaced after the retry budget for a locked database is spent.
var ErrBusy = errors.New("database busy")

var db *gorm.DB
var log *logrus.Logger

func Init(d *gorm.DB, logger *logrus.Logger) error {
	db = d
	log = logger.WithFields(logrus.Fields{
		"component": "database",
	}).Logger
	return nil
}

func Fini() {}

func Get() *gorm.DB {
	if db == nil {
		panic("didn't call database.Init(...)")
	}
	return db
}

// Open connects to the SQLite file at path with WAL journaling and a busy
// timeout, so independent role processes can share it.
func Open(path string) (*gorm.DB, error) {
	gormLogger := logger.New(
		golog.New(os.Stdout, "\r\n", golog.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	busyMs := config.GetBusyTimeout().Milliseconds()
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_txlock=immediate&_foreign_keys=on",
		path, busyMs)

	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// one writer per process; cross-process contention is handled by
	// the busy timeout and WithRetry
	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return d, nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// WithRetry runs fn, retrying lock-contention errors with exponential
// backoff up to the configured attempt budget, then reports ErrBusy.
// Any other error passes through unchanged.
func WithRetry(fn func() error) error {
	maxAttempts := config.GetMaxRetries()
	delay := config.GetRetryDelay()

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if !isBusy(err) {
			return err
		}
		log.Warnf("database locked, retrying (attempt %d/%d)", attempt+1, maxAttempts)
		time.Sleep(delay)
		delay *= 2
	}
	return fmt.Errorf("%w: %v", ErrBusy, err)
}
