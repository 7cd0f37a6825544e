package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/cihui/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trainer as a JSON HTTP API",
	Long: `Run the HTTP API. Each client keeps its own quiz state, selected with the
X-Session-ID header. States are kept in memory, or in Redis when redis.addr
is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openServices(cmd, serviceOptions{logToStdout: true})
		if err != nil {
			return err
		}
		defer rt.Close()

		cfg := rt.cfg.Serve
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps := api.Deps{
			Dataset:  rt.dataset,
			Speech:   rt.synth,
			Notes:    rt.notes,
			Events:   rt.store.EventRepo(),
			Practice: rt.cfg.Practice.Normalize(),
			Log:      rt.log,
		}

		if rt.cfg.Redis.Addr != "" {
			client, err := api.NewRedisClient(ctx, rt.cfg.Redis)
			if err != nil {
				return fmt.Errorf("connect to redis: %w", err)
			}
			defer client.Close()
			deps.Sessions = api.NewRedisSessionStore(client, rt.cfg.Redis.TTL)
			rt.log.Info("using redis session store", zap.String("addr", rt.cfg.Redis.Addr))
		}

		return api.New(deps, cfg).Run(ctx, cfg.Addr, cfg.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}

