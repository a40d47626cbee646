package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/bagtoad/slidegen/internal/api"
	"github.com/bagtoad/slidegen/internal/compositor"
	"github.com/bagtoad/slidegen/internal/content"
	"github.com/bagtoad/slidegen/internal/sampler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCmd(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered slides over HTTP for previewing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, src, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			seed := cfg.Seed
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed))
			rc := content.NewRandom(rng)
			rc.Numbered = cfg.NumberedTables

			pools, err := cfg.Pools()
			if err != nil {
				return err
			}
			var sopts []sampler.Option
			if cfg.ForceDifference {
				sopts = append(sopts, sampler.WithForceDifference())
			}
			s, err := sampler.New(pools, rng, rc, sopts...)
			if err != nil {
				return err
			}
			copts, err := cfg.CompositorOptions()
			if err != nil {
				return err
			}

			r := gin.Default()
			api.RegisterRoutes(r, api.Deps{Drawer: compositor.New(copts), Sampler: s})

			srv := &http.Server{Addr: addr, Handler: r}
			fmt.Printf("Using configuration from %s\n", src)
			fmt.Printf("Serving slide previews on %s (try /api/sample?mode=pair&slide=1)\n", addr)
			return serve(cmd.Context(), srv)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Shutting down preview server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
