// Package database opens the sqlite database behind the SQL speaker store.
//
// Open retries the connection, applies the busy timeout and journal mode
// pragmas and routes gorm's statement log through the service logger.
// FromDatabase maps driver errors onto the service error codes.
//
//	db, err := database.Open(ctx, database.Config{DSN: "speakers.db"}, log)
//	if err != nil { ... }
//	defer db.Close()
//	err = db.AutoMigrate(&sqlstore.EmbeddingRecord{})
package database
