package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/i474232898/weather-station-grabber/internal/app"
	"github.com/i474232898/weather-station-grabber/internal/config"
	"github.com/i474232898/weather-station-grabber/internal/logging"
	"github.com/i474232898/weather-station-grabber/internal/weather"
)

const (
	appName = "wea"
	version = "0.2.0"

	grabTimeout = time.Minute
)

func main() {
	lat := flag.Float64("lat", math.NaN(), "latitude of a coordinate query")
	lon := flag.Float64("lon", math.NaN(), "longitude of a coordinate query")
	n := flag.Int("n", 1, "number of stations to report (1-5)")
	raw := flag.Bool("raw", false, "print records as JSON")
	sep := flag.String("sep", weather.DefaultSeparator, "separator between fields")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [site ...]\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Grabs observed weather of the named sites (default 臺北) or of the stations nearest to -lat/-lon.")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg, version, appName)
	service := app.NewService(cfg, log)

	buildCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	service.Refresh(buildCtx, true)
	cancel()

	if !math.IsNaN(*lat) || !math.IsNaN(*lon) {
		q, err := weather.NewCoordinateQuery(*lat, *lon)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid coordinate: %v\n", err)
			os.Exit(2)
		}
		report(fmt.Sprintf("%.4f,%.4f", *lat, *lon), grab(service, q, *n), *raw, *sep)
		return
	}

	sites := flag.Args()
	if len(sites) == 0 {
		sites = []string{"臺北"}
	}
	for _, site := range sites {
		q, err := weather.NewNameQuery(site)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%q: %v\n", site, err)
			continue
		}
		report(site, grab(service, q, *n), *raw, *sep)
	}
}

// grab runs one query under its own deadline.
func grab(service *weather.Service, q weather.Query, n int) weather.Result {
	ctx, cancel := context.WithTimeout(context.Background(), grabTimeout)
	defer cancel()
	return service.Grab(ctx, q, n)
}

func report(label string, res weather.Result, raw bool, sep string) {
	if raw {
		b, err := json.Marshal(res)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", label, err)
			return
		}
		fmt.Println(string(b))
		return
	}

	records := res.Records
	if len(records) == 0 {
		records = []weather.ObservationRecord{{}}
	}
	for i := range records {
		fmt.Printf("%s %s\n", label, weather.Stringify(&records[i], sep))
	}
}
