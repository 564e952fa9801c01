// Package database provides SQLite-based storage for run history.
// Every completed pipeline run can be recorded with its full result and
// manifest, so past conversions stay queryable from the history command.
package database
