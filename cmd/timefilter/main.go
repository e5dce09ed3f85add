// Package main runs a single fast time filter query and prints the response.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/randytsao24/traveltime"
	"github.com/randytsao24/traveltime/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "timefilter:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("timefilter", flag.ContinueOnError)
	country := fs.String("country", "uk", "country code of the fast endpoint")
	origin := fs.String("origin", "", "anchor location as lat,lng")
	dests := fs.String("dest", "", "other locations as lat,lng;lat,lng;...")
	transport := fs.String("transport", "pt", `mode name, or JSON such as {"type":"pt","walking_time_to_station":600}`)
	budget := fs.Uint("time", 1800, "travel time budget in seconds")
	manyToOne := fs.Bool("many-to-one", false, "treat origin as the arrival location")
	distance := fs.Bool("distance", false, "request distances (v3)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	q, err := buildQuery(*origin, *dests, *transport, *budget, *manyToOne, *distance)
	if err != nil {
		return err
	}

	var opts []traveltime.Option
	if cfg.EnableLogging {
		opts = append(opts, traveltime.WithLogger(logger))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, traveltime.WithRateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst))
	}
	client, err := traveltime.New(traveltime.Config{
		ApplicationID:      cfg.AppID,
		APIKey:             cfg.APIKey,
		Timeout:            cfg.HTTPTimeout,
		EnableLogging:      cfg.EnableLogging,
		EnableTracing:      cfg.EnableTracing,
		RaiseOnFailure:     cfg.RaiseOnFailure,
		DecodeBinaryErrors: cfg.DecodeBinaryErrors,
	}, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Debug("sending fast query",
		zap.String("country", *country),
		zap.Stringer("transport", q.Transport),
		zap.Stringer("direction", q.Direction),
		zap.Int("locations", len(q.Others)),
	)

	resp, err := client.TimeFilterFastProto(ctx, *country, q)
	if err != nil {
		var apiErr *traveltime.Error
		if errors.As(err, &apiErr) && apiErr.Response != nil {
			logger.Error("request rejected", zap.Int("status", apiErr.Response.Status), zap.Stringer("kind", apiErr.Kind))
		}
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildQuery(origin, dests, transport string, budget uint, manyToOne, distance bool) (traveltime.FastQuery, error) {
	var q traveltime.FastQuery

	anchor, err := parsePoint(origin)
	if err != nil {
		return q, fmt.Errorf("parsing -origin: %w", err)
	}
	var others []traveltime.GeoPoint
	for _, s := range strings.Split(dests, ";") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		p, err := parsePoint(s)
		if err != nil {
			return q, fmt.Errorf("parsing -dest: %w", err)
		}
		others = append(others, p)
	}

	t, err := parseTransport(transport)
	if err != nil {
		return q, err
	}

	q = traveltime.FastQuery{
		Transport:    t,
		Anchor:       anchor,
		Others:       others,
		TravelTime:   uint32(min(budget, 1<<31-1)),
		WantDistance: distance,
	}
	if manyToOne {
		q.Direction = traveltime.ManyToOne
	}
	return q, nil
}

func parseTransport(s string) (traveltime.Transport, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "{") {
		return traveltime.DecodeTransport([]byte(s))
	}
	return traveltime.NewTransport(s)
}

func parsePoint(s string) (traveltime.GeoPoint, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return traveltime.GeoPoint{}, fmt.Errorf("%q is not lat,lng", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return traveltime.GeoPoint{}, err
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return traveltime.GeoPoint{}, err
	}
	return traveltime.GeoPoint{Lat: la, Lng: ln}, nil
}
