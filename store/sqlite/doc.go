// Package sqlite provides a SQLite-backed walk history.
//
// Records live in a single table, "walks" unless SqliteOptions.TableName says
// otherwise, indexed by the normalized seed name. The path, graph snapshot and
// metadata are stored as JSON text. The schema is created on open.
//
//	s, err := sqlite.NewSqliteWalkStore(sqlite.SqliteOptions{Path: "./collabwalk.db"})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
// The driver is github.com/mattn/go-sqlite3, which requires cgo.
package sqlite
