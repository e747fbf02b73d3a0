package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/flags"
)

// NewSweepCommand deletes expired change records once, for deployments that
// prefer a cron job over the in-process sweeper.
func NewSweepCommand() *cobra.Command {
	pf := flags.NewPostgresFlags()
	af := flags.NewAuditFlags()

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete change records older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := pf.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "could not connect to db")
			}
			defer dbc.Close()

			deleted, err := audit.NewSweeper(dbc.DB, af.SweeperOptions()...).Sweep(cmd.Context())
			if err != nil {
				return errors.WithMessage(err, "could not sweep change log")
			}

			log.WithFields(log.Fields{
				"deleted":   deleted,
				"retention": af.Retention,
			}).Info("swept change log")

			return nil
		},
	}

	pf.BindFlags(cmd.Flags())
	af.BindFlags(cmd.Flags())
	return cmd
}
