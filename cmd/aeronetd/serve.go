package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sjanel/aeronet-go"
	"github.com/sjanel/aeronet-go/config"
	"github.com/sjanel/aeronet-go/ioutils/fileDescriptor"
	"github.com/sjanel/aeronet-go/router"
	"github.com/sjanel/aeronet-go/static"
)

// instanceID identifies this process in log lines, so multiple aeronetd
// instances behind a load balancer can be told apart without relying on
// PID, which a container runtime may reuse across restarts.
var instanceID = uuid.NewString()

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve static-root over the configured listener until interrupted",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	if want := viper.GetInt("max_fds"); want > 0 {
		if cur, max, err := fileDescriptor.SystemFileDescriptor(want); err != nil {
			log.Printf("aeronetd: raising file descriptor limit to %d: %v", want, err)
		} else {
			log.Printf("aeronetd: file descriptor limit is %d (hard max %d)", cur, max)
		}
	}

	cfg := config.DefaultListenerConfig()
	if err := viper.UnmarshalKey("listener", &cfg); err != nil {
		return fmt.Errorf("aeronetd: decoding listener config: %w", err)
	}

	staticCfg := static.DefaultConfig()
	staticCfg.DefaultIndex = viper.GetString("static_index")
	staticCfg.EnableDirectoryIndex = true

	handler, err := static.New(viper.GetString("static_root"), staticCfg)
	if err != nil {
		return fmt.Errorf("aeronetd: building static handler: %w", err)
	}

	rt := router.New(cfg.SlashPolicy)
	rt.SetDefault(handler.AsHandler())

	logFunc := aeronet.NewLogrusLogFunc(logrus.WithField("instance", instanceID))

	srv, err := aeronet.NewServer(aeronet.Listener{
		Config: cfg,
		Router: rt,
		Log: func(level, msg string) {
			logFunc(level, msg)
		},
	})
	if err != nil {
		return fmt.Errorf("aeronetd: building server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("aeronetd: serving %s on %s", viper.GetString("static_root"), cfg.Listen)
	return srv.Run(ctx)
}
