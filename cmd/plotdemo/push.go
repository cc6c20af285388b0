package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roffe/plotcanvas/pkg/feed"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Draw the demo figures on a remote canvas",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return push(ctx)
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:9000", "Feed server address")
	cmd.Flags().Uint("attempts", 4, "Connection attempts, 0 retries forever")
	cmd.Flags().Duration("retry-delay", 1500*time.Millisecond, "Pause between connection attempts")
	cmd.Flags().String("prefix", "", "Prefix for the figure names")
	cmd.Flags().Bool("animate", true, "Keep redrawing a live figure until interrupted")
	return cmd
}

func push(ctx context.Context) error {
	cl, err := feed.Dial(ctx, viper.GetString("addr"),
		feed.WithAttempts(viper.GetUint("attempts")),
		feed.WithRetryDelay(viper.GetDuration("retry-delay")),
	)
	if err != nil {
		return err
	}
	defer cl.Close()
	log.WithFields(log.Fields{"session": cl.Session(), "canvas": cl.Canvas()}).Info("connected")

	prefix := viper.GetString("prefix")
	t := remoteTarget{cl}
	if err := populate(t, prefix); err != nil {
		return err
	}
	if !viper.GetBool("animate") {
		return nil
	}
	return animate(ctx, t, prefix+"live", 2, 3, 20*time.Millisecond)
}
