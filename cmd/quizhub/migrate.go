package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Alp4ka/quizhub/internal/flags"
	"github.com/Alp4ka/quizhub/internal/models"
)

func NewMigrateCommand() *cobra.Command {
	f := flags.NewPostgresFlags()

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates or initializes the PostgreSQL database to the latest schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbc, err := f.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "could not connect to db")
			}
			defer dbc.Close()

			if err = dbc.Migrate(cmd.Context()); err != nil {
				return errors.WithMessage(err, "could not migrate db")
			}

			registry, err := models.NewSearchRegistry()
			if err != nil {
				return errors.WithMessage(err, "invalid search documents")
			}

			return errors.WithMessage(dbc.Bootstrap(cmd.Context(), registry), "could not prepare db")
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
