package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2/app"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roffe/plotcanvas/pkg/feed"
	"github.com/roffe/plotcanvas/pkg/headless"
	"github.com/roffe/plotcanvas/pkg/window"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Open a canvas and let remote producers draw into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
	cmd.Flags().String("listen", "127.0.0.1:9000", "Feed listen address")
	cmd.Flags().Bool("headless", false, "Render without a window")
	cmd.Flags().Float64("fps", 60, "Frame rate cap")
	cmd.Flags().Int("max-rows", feed.DefaultMaxRows, "Largest row count a producer may request")
	cmd.Flags().Int("max-cols", feed.DefaultMaxCols, "Largest column count a producer may request")
	cmd.Flags().String("out", "", "Headless: write the last frame as PNGs into this directory on exit")
	return cmd
}

func serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", viper.GetString("listen"))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if viper.GetBool("headless") {
		drv := headless.New(headless.WithFrameRate(viper.GetFloat64("fps")))
		c := newCanvas(drv)
		srvErr := feed.NewServer(c, feed.WithMaxShape(viper.GetInt("max-rows"), viper.GetInt("max-cols"))).Serve(ctx, ln)
		if out := viper.GetString("out"); out != "" {
			if _, err := drv.SavePNGs(out); err != nil {
				log.Error(err)
			}
		}
		drv.Close()
		return errors.Join(srvErr, c.Wait())
	}

	a := app.NewWithID("com.roffe.plotdemo")
	drv := window.New(a, window.WithTitle("plotdemo feed "+ln.Addr().String()), window.WithFrameRate(viper.GetFloat64("fps")))
	c := newCanvas(drv)
	srvErr := make(chan error, 1)
	go func() {
		err := feed.NewServer(c, feed.WithMaxShape(viper.GetInt("max-rows"), viper.GetInt("max-cols"))).Serve(ctx, ln)
		if err != nil {
			log.Error(err)
		}
		drv.Close()
		srvErr <- err
	}()
	drv.ShowAndRun()
	cancel()
	return errors.Join(<-srvErr, c.Wait())
}
