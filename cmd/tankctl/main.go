package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/bootstrap"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/config"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/database"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	defer c.close()
	return newRootCmd(c).ExecuteContext(ctx)
}

// cli holds the app built before a subcommand runs. Cobra skips post-run
// hooks when RunE fails, so the caller closes it.
type cli struct {
	app *bootstrap.App
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "tankctl",
		Short:        "Operate the tank monitoring store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			cfg, err := config.Get()
			if err != nil {
				return err
			}
			observability.SetupLogger(cfg.LogLevel, cfg.LogFormat)
			c.app, err = bootstrap.Build(cmd.Context(), cfg, nil)
			return err
		},
	}

	deps := func() *bootstrap.App { return c.app }
	root.AddCommand(
		newMigrateCmd(deps),
		newPruneCmd(deps),
		newTanksCmd(deps),
		newArchivesCmd(deps),
	)
	return root
}

func newMigrateCmd(deps func() *bootstrap.App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := deps()
			if app.DB == nil {
				return errors.New("migrate needs STORAGE_DRIVER=postgres")
			}
			if err := database.Migrate(cmd.Context(), app.DB); err != nil {
				return err
			}
			log.Info().Msg("schema applied")
			return nil
		},
	}
}

func newPruneCmd(deps func() *bootstrap.App) *cobra.Command {
	var (
		tankID    int64
		olderThan time.Duration
	)
	cmd := &cobra.Command{
		Use:     "prune",
		Short:   "Delete a tank's readings older than a given age",
		Example: `  tankctl prune --tank 3 --older-than 720h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			cutoff := domain.Now().Add(-olderThan)
			n, err := deps().Services.Readings.Prune(cmd.Context(), tankID, cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d readings taken before %s\n", n, cutoff.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().Int64Var(&tankID, "tank", 0, "tank id")
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum reading age to delete")
	_ = cmd.MarkFlagRequired("tank")
	return cmd
}

func newTanksCmd(deps func() *bootstrap.App) *cobra.Command {
	tanks := &cobra.Command{Use: "tanks", Short: "Inspect tanks"}
	tanks.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every tank",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := deps().Services.Tanks.List(cmd.Context())
			if err != nil {
				return err
			}
			return printTanks(cmd.OutOrStdout(), items)
		},
	})
	return tanks
}

func newArchivesCmd(deps func() *bootstrap.App) *cobra.Command {
	var tankID int64
	archives := &cobra.Command{Use: "archives", Short: "Inspect readings archived before pruning"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List archive objects of a tank",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := deps().Archive
			if store == nil {
				return errors.New("archives need USE_CLOUD_SERVICES=true")
			}
			keys, err := store.ListArchives(cmd.Context(), tankID)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	list.Flags().Int64Var(&tankID, "tank", 0, "tank id")
	_ = list.MarkFlagRequired("tank")
	archives.AddCommand(list)
	return archives
}

func printTanks(w io.Writer, tanks []domain.Tank) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSERIAL\tNAME\tCAPACITY (L)\tHEIGHT (cm)\tDIAMETER (cm)\tACTIVE")
	for _, t := range tanks {
		diameter := "-"
		if t.Diameter != nil {
			diameter = fmt.Sprintf("%.1f", *t.Diameter)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%.1f\t%s\t%t\n",
			t.ID, t.SerialNumber, t.Name, t.Capacity, t.Height, diameter, t.Active)
	}
	return tw.Flush()
}
