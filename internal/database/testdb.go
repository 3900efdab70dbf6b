package database

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// InitTest swaps the package-level DB for a fresh in-memory SQLite database.
// Each call gets an isolated schema, so handler tests do not see each
// other's rows. Test use only.
func InitTest() *gorm.DB {
	dsn := fmt.Sprintf("file:taskify_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("test database open failed: %v", err))
	}

	if err := migrate(db); err != nil {
		panic(fmt.Sprintf("test database migration failed: %v", err))
	}

	DB = db
	return db
}
