package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/bootstrap"
	"github.com/deskline/support-portal/internal/config"
	"github.com/deskline/support-portal/internal/observability"
	"github.com/deskline/support-portal/internal/persistence"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Operate the support portal",
	Long: `portalctl runs maintenance tasks against the support portal database:
schema migrations, user role changes, spreadsheet exports and a live board.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfgFile != "" {
			if err := config.LoadFile(cfgFile, cfg); err != nil {
				return err
			}
		}
		if cfg.Logger.Format == "" {
			cfg.Logger.Format = "console"
		}
		logger, err = observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "portalctl %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file overlaid on the environment")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func Root() *cobra.Command {
	return rootCmd
}

// session holds the connections opened for one command.
type session struct {
	pg       *persistence.Postgres
	redis    *persistence.Redis
	services *bootstrap.Services
}

// openSession connects to the stores. Redis is only dialled when
// withRealtime is set.
func openSession(ctx context.Context, withRealtime bool) (*session, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if pg.PoolHandle() == nil {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	s := &session{pg: pg}
	if withRealtime {
		s.redis = persistence.NewRedis(cfg.Redis, logger)
		s.services = bootstrap.Build(cfg, pg.PoolHandle(), s.redis.Client, logger, nil)
	} else {
		s.services = bootstrap.Build(cfg, pg.PoolHandle(), nil, logger, nil)
	}
	return s, nil
}

func (s *session) Close() {
	_ = s.services.Close()
	s.redis.Close()
	s.pg.Close()
}
