package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/auth"
	"github.com/Alp4ka/quizhub/internal/flags"
	"github.com/Alp4ka/quizhub/internal/graphql"
	"github.com/Alp4ka/quizhub/internal/models"
	"github.com/Alp4ka/quizhub/internal/rest"
	"github.com/Alp4ka/quizhub/internal/server"
)

type ServeFlags struct {
	Postgres *flags.PostgresFlags
	Redis    *flags.RedisFlags
	Auth     *flags.AuthFlags
	Audit    *flags.AuditFlags
	Server   *flags.ServerFlags
}

func NewServeFlags() *ServeFlags {
	return &ServeFlags{
		Postgres: flags.NewPostgresFlags(),
		Redis:    flags.NewRedisFlags(),
		Auth:     flags.NewAuthFlags(),
		Audit:    flags.NewAuditFlags(),
		Server:   flags.NewServerFlags(),
	}
}

func (f *ServeFlags) BindFlags(fs *pflag.FlagSet) {
	f.Postgres.BindFlags(fs)
	f.Redis.BindFlags(fs)
	f.Auth.BindFlags(fs)
	f.Audit.BindFlags(fs)
	f.Server.BindFlags(fs)
}

func (f *ServeFlags) Validate() error {
	return f.Auth.Validate()
}

func NewServeCommand() *cobra.Command {
	f := NewServeFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.Validate(); err != nil {
				return errors.WithMessage(err, "error validating options")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dbc, err := f.Postgres.GetDBClient()
			if err != nil {
				return errors.WithMessage(err, "couldn't get DB client")
			}
			defer dbc.Close()

			if f.Server.Migrate {
				if err = dbc.Migrate(ctx); err != nil {
					return errors.WithMessage(err, "could not migrate db")
				}
			}

			registry, err := models.NewSearchRegistry()
			if err != nil {
				return errors.WithMessage(err, "invalid search documents")
			}
			if err = dbc.Bootstrap(ctx, registry); err != nil {
				return errors.WithMessage(err, "could not prepare db")
			}

			var (
				broker audit.Broker
				relay  server.Relay
			)
			redisBroker, err := f.Redis.GetRedisBroker()
			if err != nil {
				return errors.WithMessage(err, "couldn't get redis client")
			}
			if redisBroker != nil {
				defer redisBroker.Close()
				broker, relay = redisBroker, redisBroker
			} else {
				memoryBroker := audit.NewMemoryBroker(f.Redis.SubscriberBuffer)
				defer memoryBroker.Close()
				broker = memoryBroker
			}

			recorder := audit.NewRecorder(broker, models.AuditPolicy(), audit.WithIDGenerator(models.NewChangeID))

			throttle, err := auth.NewThrottle()
			if err != nil {
				return errors.WithMessage(err, "couldn't create login throttle")
			}
			defer throttle.Close()

			signer := auth.NewSigner([]byte(f.Auth.JWTSecret), f.Auth.TokenValidity)
			authService := auth.NewService(dbc.DB, recorder, signer, throttle, f.Auth.DefaultUserRoles())

			schema, err := graphql.NewSchema(graphql.NewResolver(dbc.DB, registry, recorder, broker, authService))
			if err != nil {
				return err
			}

			srv := server.New(server.Options{
				ListenAddr:  f.Server.ListenAddr,
				MetricsAddr: f.Server.MetricsAddr,
				Schema:      schema,
				Signer:      signer,
				REST:        rest.NewHandler(dbc.DB, recorder),
				Sweeper:     audit.NewSweeper(dbc.DB, f.Audit.SweeperOptions()...),
				Relay:       relay,
			})

			return srv.Run(ctx)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
