// Command resolve looks up locations against a Nominatim-compatible search
// API and prints the result as JSON.
//
// Usage:
//
//	resolve "New York"
//	printf 'Berlin\nParis\n' | resolve
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/couchcryptid/geocoding-service/internal/adapter/nominatim"
	"github.com/couchcryptid/geocoding-service/internal/config"
	"github.com/couchcryptid/geocoding-service/internal/domain"
	"github.com/couchcryptid/geocoding-service/internal/observability"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type options struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	logLevel  string
}

// metrics registers once per process so the root command can run repeatedly.
var metrics = sync.OnceValue(observability.NewMetrics)

func main() {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "resolve [flags] [location...]",
		Short: "Resolve a location name to coordinates",
		Long: `resolve joins its arguments into one location, looks it up, and prints the
first match as JSON.

With no arguments it reads one location per line from stdin and prints each
location followed by its result or error:

$ printf 'Berlin\n' | resolve
Berlin	{"name":"Berlin","latitude":52.5170365,"longitude":13.3888599}
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			geocoder, err := newGeocoder(cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return resolveLines(cmd.Context(), geocoder, opts.timeout, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return resolveOne(cmd.Context(), geocoder, opts.timeout, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.baseURL, "base-url",
		sharedcfg.EnvOrDefault("GEOCODER_BASE_URL", config.DefaultGeocoderBaseURL), "search endpoint of the geocoding service")
	flags.StringVar(&opts.userAgent, "user-agent",
		sharedcfg.EnvOrDefault("GEOCODER_USER_AGENT", config.DefaultGeocoderUserAgent), "User-Agent header sent with each request")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "deadline for each lookup (0 disables)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	return cmd
}

func newGeocoder(logOut io.Writer, opts *options) (domain.Geocoder, error) {
	logger := observability.NewLoggerTo(logOut, opts.logLevel, "text")
	return nominatim.NewClient(opts.baseURL, opts.userAgent, metrics(), logger)
}

func resolveOne(ctx context.Context, geocoder domain.Geocoder, timeout time.Duration, location string, out io.Writer) error {
	geocode, err := lookup(ctx, geocoder, timeout, location)
	if err != nil {
		return err
	}
	return json.NewEncoder(out).Encode(geocode)
}

func resolveLines(ctx context.Context, geocoder domain.Geocoder, timeout time.Duration, in io.Reader, out io.Writer) error {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(os.Stderr, "Enter locations to resolve, one per line...")
	}

	var failed int
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		location := strings.TrimSpace(scanner.Text())
		if location == "" {
			continue
		}
		geocode, err := lookup(ctx, geocoder, timeout, location)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			fmt.Fprintf(out, "%s\t%q\n", location, err)
			continue
		}
		data, err := json.Marshal(geocode)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\n", location, data)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d location(s) could not be resolved", failed)
	}
	return nil
}

func lookup(ctx context.Context, geocoder domain.Geocoder, timeout time.Duration, location string) (domain.Geocode, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return geocoder.Resolve(ctx, location)
}
