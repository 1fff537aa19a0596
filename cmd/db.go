package cmd

import (
	"context"
	"time"

	"github.com/emrgen/linkgraph/internal/config"
	"github.com/emrgen/linkgraph/internal/jobs"
	"github.com/emrgen/linkgraph/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
	dbCmd.AddCommand(Purge())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			docStore, err := openStore(cfg)
			if err != nil {
				return err
			}

			return docStore.Migrate()
		},
	}

	return command
}

func Purge() *cobra.Command {
	var retention time.Duration

	command := &cobra.Command{
		Use:   "purge",
		Short: "Erase removed links older than the retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			docStore, err := openStore(cfg)
			if err != nil {
				return err
			}

			if !cmd.Flag("retention").Changed {
				retention = cfg.PurgeRetention
			}

			count, err := jobs.NewPurgeTask(docStore, "", retention).Purge(context.Background())
			if err != nil {
				return err
			}

			logrus.Infof("purged %d documents", count)
			return nil
		},
	}

	command.Flags().DurationVarP(&retention, "retention", "r", 0, "age of removed links to erase (default PURGE_RETENTION)")

	return command
}

func openStore(cfg *config.Config) (*store.GormStore, error) {
	db, err := config.GetDb(cfg)
	if err != nil {
		return nil, err
	}

	return store.NewGormStore(db), nil
}
