package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ruslanjabari/video-to-ascii/config"
	"github.com/ruslanjabari/video-to-ascii/player"
	"github.com/ruslanjabari/video-to-ascii/preview"
	"github.com/ruslanjabari/video-to-ascii/render"
	"github.com/ruslanjabari/video-to-ascii/sshd"
	"github.com/ruslanjabari/video-to-ascii/video"
)

func main() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server {
		runServer(ctx, cfg)
		return
	}

	if cfg.Shm != "" {
		src, err := video.NewSharedMemorySource(cfg.Shm)
		if err != nil {
			log.Fatal(err)
		}
		go src.Watch()
		if err := player.PlayFrom(ctx, src, src.Fps(), cfg.Kind); err != nil {
			log.Fatal(err)
		}
		return
	}

	if cfg.Output != "" {
		if err := player.Export(ctx, cfg.File, cfg.Kind, cfg.Output); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := player.Play(ctx, cfg.File, cfg.Kind); err != nil {
		log.Fatal(err)
	}
}

func runServer(ctx context.Context, cfg *config.Config) {
	server, err := sshd.NewServer(sshd.Config{
		Addr:      cfg.Addr(),
		VideoPath: cfg.File,
		Kind:      cfg.Kind,
	})
	if err != nil {
		log.Fatal(err)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	if cfg.PreviewPort != 0 {
		previewServer := preview.NewServer(cfg.PreviewAddr())
		group.Go(func() error {
			return previewServer.Run(ctx)
		})
		group.Go(func() error {
			previewServer.RunLoop(ctx, cfg.File, render.PlainASCII)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		log.Fatal(err)
	}
}
