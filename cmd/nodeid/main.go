// Package main acquires a FID from a shared store, mints a few IDs with it and
// keeps it held until the process is interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tethysim/nodeid"
	"github.com/tethysim/nodeid/flake"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func rootCmd() *cobra.Command {
	var (
		driver       string
		dsn          string
		createSchema bool
		appName      string
		appVersion   string
		ntpHost      string
		count        int
		debug        bool
	)

	cmd := &cobra.Command{
		Use:           "nodeid",
		Short:         "Acquire a node ID and hold it until interrupted",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, err := newZapLogger(debug)
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, closer, err := openStore(ctx, driver, dsn, createSchema)
			if err != nil {
				return err
			}
			defer closer.Close()

			opts := []nodeid.Option{
				nodeid.WithOptionsFromEnvironment(),
				nodeid.WithApplicationName(appName),
				nodeid.WithVersion(appVersion),
				nodeid.WithLogger(logger),
			}

			if ntpHost != "" {
				opts = append(opts, nodeid.WithClockCheck(ntpHost, 0))
			}

			id, err := nodeid.New(ctx, store, opts...)
			if err != nil {
				return err
			}

			return run(nodeid.NewContext(ctx, id), count)
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "sqlite", "Store driver (sqlite, mysql, postgres or bolt)")
	cmd.Flags().StringVar(&dsn, "dsn", "file:nodeid.sqlite?mode=rwc", "Data source name, or the file path for bolt")
	cmd.Flags().BoolVar(&createSchema, "create-schema", false, "Create the SQL schema if it does not exist")
	cmd.Flags().StringVar(&appName, "app-name", "", "Application name recorded with the FID")
	cmd.Flags().StringVar(&appVersion, "app-version", "", "Semantic version of the application")
	cmd.Flags().StringVar(&ntpHost, "ntp", "", "NTP server used to check the local clock before allocating")
	cmd.Flags().IntVar(&count, "count", 3, "Number of IDs to mint after the FID is acquired")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

// run mints count IDs and then holds the FID until ctx is canceled.
func run(ctx context.Context, count int) error {
	id, _ := nodeid.FromContext(ctx)

	gen, err := flake.NewGenerator(id.ID())
	if err != nil {
		id.Close()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for i := 0; i < count; i++ {
			v, err := gen.NextID()
			if err != nil {
				return err
			}

			c, err := flake.Decompose(v)
			if err != nil {
				return err
			}

			fmt.Printf(
				"%d\tfid=%d seq=%d elapsed=%s\n",
				v,
				c.FID,
				c.Sequence,
				c.Elapsed().Truncate(time.Millisecond),
			)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return id.Close()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}
