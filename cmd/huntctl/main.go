package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	challengeservice "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/application"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/modules/ledger"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/clock"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/config"
	"github.com/Black-And-White-Club/flag-hunt/db/bundb"
	"github.com/urfave/cli/v2"
)

// env is the wiring shared by every subcommand.
type env struct {
	cfg   *config.Config
	obs   observability.Observability
	db    *bundb.DBService
	close func()
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	obs := observability.New(observability.Config{
		Environment: "development",
		LogLevel:    c.String("log-level"),
	})
	db, err := bundb.NewBunDBService(c.Context, cfg.Postgres, obs.Logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, obs: obs, db: db, close: func() { _ = db.Close() }}, nil
}

// challengeService skips the module constructor so no River client starts.
func (e *env) challengeService() *challengeservice.ChallengeService {
	repo := challengedb.NewRepository(e.db.GetDB())
	return challengeservice.NewChallengeService(repo, e.obs.Logger, e.obs.Metrics, e.obs.Tracer, e.db.GetDB(), clock.Real{})
}

func (e *env) ledgerModule(ctx context.Context) (*ledger.Module, error) {
	repo := challengedb.NewRepository(e.db.GetDB())
	return ledger.NewModule(ctx, e.cfg, e.obs, e.db.GetDB(), nil, nil, repo, nil, clock.Real{})
}

func main() {
	app := &cli.App{
		Name:  "huntctl",
		Usage: "flag hunt operator commands",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level"},
		},
		Commands: []*cli.Command{
			releaseCommand(),
			checkGraphCommand(),
			exportCommand(),
			standingsCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func releaseCommand() *cli.Command {
	return &cli.Command{
		Name:  "release",
		Usage: "release every challenge whose release time has passed",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "list due challenges without releasing them"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.challengeService().ReleaseDueChallenges(c.Context, c.Bool("dry-run"))
			if err != nil {
				return err
			}
			if res.Failure != nil {
				return *res.Failure
			}
			summary := *res.Success
			verb := "Released"
			if summary.DryRun {
				verb = "Would release"
			}
			if len(summary.Released) == 0 {
				fmt.Println("No challenges due for release")
				return nil
			}
			for _, ch := range summary.Released {
				fmt.Printf("%s %s (%s)\n", verb, ch.Name, ch.ID)
			}
			return nil
		},
	}
}

func checkGraphCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-graph",
		Usage: "verify the stored prerequisite graph has no cycles",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.challengeService().CheckGraph(c.Context); err != nil {
				return err
			}
			fmt.Println("Prerequisite graph is acyclic")
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write submissions, completions, audit log and standings to an xlsx workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "hunt-export.xlsx", Usage: "output path"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			m, err := e.ledgerModule(c.Context)
			if err != nil {
				return err
			}
			data, err := m.GetService().ExportWorkbook(c.Context)
			if err != nil {
				return err
			}
			if err := os.WriteFile(c.String("out"), data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", c.String("out"), len(data))
			return nil
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print cohort standings",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			m, err := e.ledgerModule(c.Context)
			if err != nil {
				return err
			}
			standings, err := m.GetService().CohortStandings(c.Context)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tCOHORT\tPOINTS\tSOLVES\tFIRST")
			for _, s := range standings {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", s.Rank, s.CohortName, s.Points, s.Completions, s.FirstSolves)
			}
			return w.Flush()
		},
	}
}
