package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roffe/plotcanvas/pkg/canvas"
	"github.com/roffe/plotcanvas/pkg/headless"
	"github.com/roffe/plotcanvas/pkg/window"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a canvas and draw the demo figures into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if viper.GetBool("headless") {
				return runHeadless(ctx)
			}
			return runWindow(ctx)
		},
	}
	cmd.Flags().Bool("headless", false, "Render without a window")
	cmd.Flags().Float64("fps", 60, "Frame rate cap")
	cmd.Flags().Int("width", 640, "Headless figure width in pixels")
	cmd.Flags().Int("height", 480, "Headless figure height in pixels")
	cmd.Flags().String("out", "", "Headless: write the last frame as PNGs into this directory")
	cmd.Flags().Duration("duration", 2*time.Second, "Headless: how long to run")
	cmd.Flags().Bool("animate", true, "Add a figure that is redrawn continuously")
	return cmd
}

func newCanvas(drv canvas.Driver) *canvas.Canvas {
	c := canvas.New(drv, canvas.WithName("plotdemo"))
	c.Events().SubscribeFunc(canvas.TopicFPS, func(fps float64) {
		log.WithField("canvas", c.Name()).Tracef("%.1f fps", fps)
	})
	return c
}

// produce draws the static figures and, if enabled, animates until ctx is
// done.
func produce(ctx context.Context, t target) error {
	if err := populate(t, ""); err != nil {
		return err
	}
	if !viper.GetBool("animate") {
		return nil
	}
	return animate(ctx, t, "live", 2, 3, 20*time.Millisecond)
}

func runHeadless(ctx context.Context) error {
	drv := headless.New(
		headless.WithFrameRate(viper.GetFloat64("fps")),
		headless.WithSize(viper.GetInt("width"), viper.GetInt("height")),
	)
	c := newCanvas(drv)

	ctx, cancel := context.WithTimeout(ctx, viper.GetDuration("duration"))
	defer cancel()
	prodErr := produce(ctx, localTarget{c})
	<-ctx.Done()

	if out := viper.GetString("out"); out != "" {
		paths, err := drv.SavePNGs(out)
		if err != nil {
			return err
		}
		for _, p := range paths {
			log.WithField("path", p).Info("wrote figure")
		}
	}
	log.Infof("rendered %d frames", drv.Frames())
	drv.Close()
	return errors.Join(prodErr, c.Wait())
}

func runWindow(ctx context.Context) error {
	a := app.NewWithID("com.roffe.plotdemo")
	drv := window.New(a, window.WithFrameRate(viper.GetFloat64("fps")))
	c := newCanvas(drv)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		drv.Close()
	}()
	prodErr := make(chan error, 1)
	go func() {
		err := produce(ctx, localTarget{c})
		if err != nil {
			log.Error(err)
		}
		prodErr <- err
	}()

	drv.ShowAndRun()
	cancel()
	return errors.Join(<-prodErr, c.Wait())
}
