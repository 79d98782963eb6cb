package main

import (
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	server.loadBaseContext()
	server.loadDatabase()
	server.migrateDB()

	return nil
}
