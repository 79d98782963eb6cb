package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "casino-backend"
	app.Usage = "transactional core of the chat casino"
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start the api service",
			Category:    "Api",
			Description: `The main service with all ledger, game, and promotion endpoints.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start the scheduler",
			Category:    "Worker",
			Description: `Runs lottery draws, duel timeouts, and flow sweeping on a schedule.`,
		},
		{
			Action:      server.startWorker,
			Name:        "worker",
			Usage:       "Start the outbox worker",
			Category:    "Worker",
			Description: `Flushes pending outbox events to the notification topic.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Database",
			Description: `Applies the current schema to the configured database.`,
		},
	}

	s.app = app
}
