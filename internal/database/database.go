package database

import (
	"fachschaft-protokolle/internal/config"
	"fachschaft-protokolle/internal/logging"
	"fachschaft-protokolle/internal/models"
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"net/url"
)

// ErrRecordNotFound is returned by finders when no row matches.
var ErrRecordNotFound = gorm.ErrRecordNotFound

func InitDatabase(c *config.Configuration, l logging.Logger) (*gorm.DB, error) {
	l.LogInfo(nil, "Initializing Database")

	dsn := url.URL{
		User:     url.UserPassword(c.Database.Username, c.Database.Password),
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.DatabaseName,
		RawQuery: (&url.Values{"sslmode": []string{"disable"}}).Encode(),
	}

	db, err := gorm.Open(
		postgres.Open(dsn.String()),
		&gorm.Config{Logger: logging.InitGormLogger(c)})

	if err != nil {
		l.LogErrorf(nil, "error initializing database: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.LogErrorf(nil, "error setting connection properties on db conn pool")
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.Database.ConnMaxLifetime.Duration)

	l.LogDebug(nil, "connected to Database")

	// order matters: referenced tables first
	toBeMigrated := []any{
		&models.User{},
		&models.MeetingType{},
		&models.Function{},
		&models.Meeting{},
		&models.MinuteTaker{},
		&models.Top{},
		&models.Attendee{},
		&models.Protokoll{},
		&models.Attachment{},
	}
	for _, m := range toBeMigrated {
		if err := db.AutoMigrate(m); err != nil {
			l.LogErrorf(nil, "error auto migrating %T: %v", m, err)
			return nil, err
		}
	}

	return db, nil
}
