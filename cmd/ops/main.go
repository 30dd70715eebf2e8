// Command ops is the operator sidecar: backup and restore of the data
// dir, a restore drill, and demo seeding for a fresh install.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/apexcoaching123/client-tracker/internal/ops"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	var (
		dataDir string
		out     string
		archive string
		target  string
	)

	app := &cli.Command{
		Name:  "ops",
		Usage: "operator tooling for the coaching dashboard data dir",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "data-dir",
				Value:       "data",
				Usage:       "path to the data directory",
				Destination: &dataDir,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "backup",
				Usage: "archive the data dir as a .tar.gz",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "out",
						Usage:       "output archive path (default backups/<timestamp>.tar.gz)",
						Destination: &out,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if out == "" {
						ts := time.Now().UTC().Format("20060102T150405Z")
						out = filepath.Join("backups", "client-tracker-"+ts+".tar.gz")
					}
					if err := ops.Backup(dataDir, out); err != nil {
						return err
					}
					fmt.Println(out)
					return nil
				},
			},
			{
				Name:  "restore",
				Usage: "unpack a backup archive into a target dir",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "archive",
						Usage:       "backup archive (.tar.gz)",
						Required:    true,
						Destination: &archive,
					},
					&cli.StringFlag{
						Name:        "target-dir",
						Value:       "data-restored",
						Usage:       "restore target directory",
						Destination: &target,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return ops.Restore(archive, target)
				},
			},
			{
				Name:  "drill",
				Usage: "backup, restore into a scratch dir, and verify checksums",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					scratch, err := os.MkdirTemp("", "ct-drill-*")
					if err != nil {
						return err
					}
					defer os.RemoveAll(scratch)

					archivePath := filepath.Join(scratch, "drill.tar.gz")
					if err := ops.Backup(dataDir, archivePath); err != nil {
						return err
					}
					if err := ops.Drill(dataDir, archivePath, filepath.Join(scratch, "restored")); err != nil {
						return err
					}
					log.Info().Str("data_dir", dataDir).Msg("drill ok, archive restores cleanly")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "fill an empty data dir with demo clients and history",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := ops.SeedDemo(dataDir); err != nil {
						return err
					}
					log.Info().Str("data_dir", dataDir).Msg("seeded demo data")
					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("ops command failed")
	}
}
