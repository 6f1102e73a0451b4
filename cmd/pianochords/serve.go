package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/pianochords/internal/audio"
	"github.com/satindergrewal/pianochords/internal/session"
	"github.com/satindergrewal/pianochords/internal/stream"
	"github.com/satindergrewal/pianochords/internal/synth"
	"github.com/satindergrewal/pianochords/internal/web"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI with live audio streaming",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Audio clock: renders the synthesis graph into 20ms frames
	engine := audio.NewContext(logger.WithPrefix("audio"))
	engine.SetVolume(cfg.Volume)
	go engine.Run(ctx)

	// Broadcaster: fan-out PCM frames to all listeners
	broadcaster := stream.NewBroadcaster(logger.WithPrefix("stream"))
	go broadcaster.Run(ctx, engine.Frames())

	sy := synth.New(func() (audio.Graph, error) {
		return engine, nil
	}, synth.WithLogger(logger.WithPrefix("synth")))

	sess, err := session.New(sy, session.WithLogger(logger.WithPrefix("session")))
	if err != nil {
		return err
	}
	if err := sess.SelectCategory(cfg.Category); err != nil {
		return err
	}
	if err := sess.SelectRoot(cfg.Root); err != nil {
		return err
	}

	webrtcHandler := stream.NewWebRTCHandler(broadcaster, cfg.OpusBitrate, logger.WithPrefix("webrtc"))
	srv := web.NewServer(sess, web.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		PushDebounce:   cfg.PushDebounce(),
		Stream:         stream.NewHTTPHandler(broadcaster, logger.WithPrefix("stream")),
		Offer:          webrtcHandler,
		Listeners: func() any {
			infos := broadcaster.Listeners()
			byKind := make(map[string]int)
			for _, l := range infos {
				byKind[l.Kind]++
			}
			return map[string]any{
				"counts":       byKind,
				"webrtc_peers": webrtcHandler.PeerCount(),
				"detail":       infos,
			}
		},
		Logger: logger.WithPrefix("web"),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: srv.Handler()}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		server.Close()
	}()

	v := sess.View()
	logger.Info("pianochords live", "addr", addr, "chord", v.Symbol, "root", v.Root)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
