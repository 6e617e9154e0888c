package data

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tauraamui/rppgtracker/pkg/database/dbconn"
	"github.com/tauraamui/rppgtracker/pkg/database/models"
	"github.com/tauraamui/rppgtracker/pkg/database/repos"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/xerror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	vendorName       = "tacusci"
	appName          = "rppgtracker"
	databaseFileName = "rppg.db"
)

var (
	ErrCreateDBFile    = xerror.New("unable to create database file")
	ErrDBAlreadyExists = xerror.New("database file already exists")
)

var uc = os.UserCacheDir
var fs = afero.NewOsFs()

func Setup() error {
	log.Info("Creating database file...") //nolint

	if err := createFile(); err != nil {
		return err
	}

	if _, err := Connect(); err != nil {
		return err
	}

	log.Info("Created session database") //nolint
	return nil
}

func Destroy() error {
	dbFilePath, err := resolveDBPath(uc)
	if err != nil {
		return xerror.Errorf("unable to delete database file: %w", err)
	}

	return fs.Remove(dbFilePath)
}

func Connect() (dbconn.GormWrapper, error) {
	dbPath, err := resolveDBPath(uc)
	if err != nil {
		return nil, err
	}

	log.Debug("Connecting to DB: %s", dbPath) //nolint
	db, err := openDBConnection(dbPath)
	if err != nil {
		return nil, xerror.Errorf("unable to open db connection: %w", err)
	}

	err = models.AutoMigrate(db)
	if err != nil {
		return nil, xerror.Errorf("unable to run automigrations: %w", err)
	}

	return db, nil
}

var openDBConnection = func(path string) (dbconn.GormWrapper, error) {
	logger := logger.New(nil, logger.Config{LogLevel: logger.Silent})
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger})
	if err != nil {
		return nil, err
	}
	return dbconn.Wrap(db), nil
}

// Record is everything stored about one finished session.
type Record struct {
	Session models.Session
	Results []models.StrategyResult
	// Series is only set when the session was captured for training.
	Series *models.Series
}

// Save writes a record, stamping every child row with the session's UUID.
func Save(db dbconn.GormWrapper, record *Record) error {
	sessions := repos.SessionRepository{DB: db}
	if err := sessions.Create(&record.Session); err != nil {
		return xerror.Errorf("unable to store session: %w", err)
	}

	results := repos.StrategyResultRepository{DB: db}
	for i := range record.Results {
		record.Results[i].SessionUUID = record.Session.UUID
		if err := results.Create(&record.Results[i]); err != nil {
			return xerror.Errorf("unable to store [%s] result: %w", record.Results[i].Strategy, err)
		}
	}

	if record.Series != nil {
		record.Series.SessionUUID = record.Session.UUID
		series := repos.SeriesRepository{DB: db}
		if err := series.Create(record.Series); err != nil {
			return xerror.Errorf("unable to store training series: %w", err)
		}
	}
	return nil
}

func resolveDBPath(uc func() (string, error)) (string, error) {
	databasePath := os.Getenv("RPPG_TRACKER_DB")
	if len(databasePath) > 0 {
		return databasePath, nil
	}

	databaseParentDir, err := uc()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s database file location: %w", databaseFileName, err)
	}

	return filepath.Join(
		databaseParentDir,
		vendorName,
		appName,
		databaseFileName), nil
}

func createFile() error {
	path, err := resolveDBPath(uc)
	if err != nil {
		return err
	}

	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		fs.MkdirAll(filepath.Dir(path), os.ModeDir|os.ModePerm) //nolint

		_, err := fs.Create(path)
		if err != nil {
			return xerror.Errorf("%v: %w", ErrCreateDBFile, err)
		}
		return nil
	}

	return xerror.Errorf("%w: %s", ErrDBAlreadyExists, path)
}
