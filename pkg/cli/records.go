package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func recordsCommand() *cli.Command {
	var (
		cfg       config
		memoryID  string
		namespace string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "memory-id",
			Aliases:     []string{"m"},
			Usage:       "Memory ID to inspect",
			Sources:     cli.EnvVars("JENI_MEMORY_ID"),
			Destination: &memoryID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "namespace",
			Aliases:     []string{"n"},
			Usage:       "Namespace to list ('/' lists all records)",
			Value:       "/",
			Destination: &namespace,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "records",
		Usage: "List stored memory records",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogging(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}

			records, err := repo.ListRecords(ctx, memoryID, namespace)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Found %d records:\n", len(records))
			for _, rec := range records {
				fmt.Fprintf(c.Root().Writer, "  - %s %s = %q (extracted: %s)\n",
					rec.Namespace, rec.RecordID, rec.Content, rec.Metadata.ExtractedAt)
			}

			return nil
		},
	}
}
