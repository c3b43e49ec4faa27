// Package database owns the warehouse connection.
//
// It wraps GORM to configure the connection from application settings. The
// connection is the single shared capability every other component builds
// on: the catalog inspector runs metadata queries through it, the snapshot
// reader runs unfiltered selects, and the reconciliation engine executes
// staging and merge statements.
//
// Two drivers are supported: mysql for real deployments and sqlite for
// local use and tests. The merge protocol itself targets a MERGE-capable
// warehouse; see the reconcile package.
//
// # Usage
//
//	db, err := database.Connect(cfg.Warehouse)
//	if err != nil {
//	    log.Fatal("warehouse connection failed", err)
//	}
package database
