// Package database provides SQLite connectivity for switchbotd.
//
// The database backs the default key/value store (credentials, preferences,
// display orders, night-light assignments). Schema changes ship as embedded
// migration files applied at startup:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS, migrations.Dir); err != nil {
//	    return err
//	}
package database
