package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tethysim/nodeid/instance"
	"github.com/tethysim/nodeid/persistence/boltpersistence"
	"github.com/tethysim/nodeid/persistence/sqlpersistence"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "modernc.org/sqlite"
)

// sqlDriverNames maps the --driver flag to the name of the database/sql driver
// that is registered for it.
var sqlDriverNames = map[string]string{
	"sqlite":   "sqlite",
	"mysql":    "mysql",
	"postgres": "pgx",
}

// openStore opens the store selected by the --driver and --dsn flags.
func openStore(
	ctx context.Context,
	driver, dsn string,
	createSchema bool,
) (instance.Store, io.Closer, error) {
	if driver == "bolt" {
		return &boltpersistence.FileStore{Path: dsn}, io.NopCloser(nil), nil
	}

	name, ok := sqlDriverNames[driver]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlpersistence.OpenDB(name, dsn)
	if err != nil {
		return nil, nil, err
	}

	if createSchema {
		if err := sqlpersistence.CreateSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("unable to create schema: %w", err)
		}
	}

	return &sqlpersistence.Store{DB: db}, db, nil
}
