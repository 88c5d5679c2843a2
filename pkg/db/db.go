package db

import (
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

var (
	instance *DB
	once     sync.Once
)

var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
}

// GetInstance opens the process-wide connection on first use and migrates the schema.
// Later calls return the same instance whatever dialector they pass.
func GetInstance(dialector gorm.Dialector) *DB {
	var logger = common.GetLogger()
	once.Do(func() {
		conn, err := gorm.Open(dialector, &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

		instance = &DB{Conn: conn}

		if dialector.Name() == "sqlite" {
			for _, pragma := range sqlitePragmas {
				if err := instance.Conn.Exec(pragma).Error; err != nil {
					log.Fatal("Failed to apply sqlite pragma "+pragma+":", err)
				}
			}
		}

		err = instance.Conn.AutoMigrate(
			&models.Station{},
			&models.WaterSample{},
			&models.AutoTestSettings{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}

		logger.Info("Database migration completed")
	})
	return instance
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(common.EnvKeyWQDbPath); !found {
		dbPath = "water_quality.db"
	}
	return sqlite.Open(dbPath + "?_foreign_keys=on")
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared&_foreign_keys=on")
}

// UsePostgresDialector reads the connection string from WQ_DB_DSN, e.g.
// "host=localhost user=wq password=wq dbname=water_quality port=5432 sslmode=disable".
func UsePostgresDialector() gorm.Dialector {
	dsn, found := os.LookupEnv(common.EnvKeyWQDbDSN)
	if !found || dsn == "" {
		log.Fatal("WQ_DB_DSN must be set when WQ_DB_TYPE=postgres")
	}
	return postgres.Open(dsn)
}
