// Command replay feeds a recorded session document and telemetry ticks
// through the analytics engine and prints one of its views.
//
//	replay -session session.yaml -telemetry ticks.json -view relative
//
// Defaults for -config and the log level can come from OVERLAY_TUNING_CONFIG
// and OVERLAY_LOG_LEVEL, read from the environment or a .env file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/banshee-data/overlay.report/internal/config"
	"github.com/banshee-data/overlay.report/internal/engine"
	"github.com/banshee-data/overlay.report/internal/monitoring"
	"github.com/banshee-data/overlay.report/internal/session"
	"github.com/banshee-data/overlay.report/internal/standings"
	"github.com/banshee-data/overlay.report/internal/telemetry"
	"github.com/banshee-data/overlay.report/internal/units"
	"github.com/banshee-data/overlay.report/internal/version"
)

const (
	envTuningConfig = "OVERLAY_TUNING_CONFIG"
	envLogLevel     = "OVERLAY_LOG_LEVEL"
)

var views = []string{"standings", "relative", "speeds", "ratings"}

type options struct {
	sessionPath   string
	telemetryPath string
	configPath    string
	view          string
	logLevel      string
	speedUnits    string
	showVersion   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var verbose bool

	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.sessionPath, "session", "", "session document (YAML or JSON)")
	fs.StringVar(&opts.telemetryPath, "telemetry", "", "telemetry ticks (JSON array)")
	fs.StringVar(&opts.configPath, "config", os.Getenv(envTuningConfig), "tuning config JSON (defaults to config/tuning.defaults.json)")
	fs.StringVar(&opts.view, "view", "standings", "view to print: "+strings.Join(views, ", "))
	fs.StringVar(&opts.speedUnits, "speed-units", units.KMPH, "speed units for the speeds view: "+strings.Join(units.ValidUnits, ", "))
	fs.StringVar(&opts.logLevel, "log-level", os.Getenv(envLogLevel), "log level: off, ops, diag or trace")
	fs.BoolVar(&verbose, "verbose", false, "enable every log stream")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if verbose {
		opts.logLevel = "trace"
	}
	if opts.showVersion {
		return opts, nil
	}
	if opts.sessionPath == "" || opts.telemetryPath == "" {
		return opts, errors.New("-session and -telemetry are required")
	}
	if !units.IsValid(opts.speedUnits) {
		return opts, fmt.Errorf("unknown speed units %q", opts.speedUnits)
	}
	for _, v := range views {
		if v == opts.view {
			return opts, nil
		}
	}
	return opts, fmt.Errorf("unknown view %q", opts.view)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		monitoring.Logf("Warning: failed to load .env file: %v", err)
	}

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("replay: %v", err)
	}

	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("replay: %v", err)
	}
}

func run(opts options, stdout, stderr io.Writer) error {
	if opts.showVersion {
		fmt.Fprintf(stdout, "replay %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return nil
	}

	writers, err := monitoring.WritersForLevel(opts.logLevel, stderr)
	if err != nil {
		return err
	}
	monitoring.SetLogWriters(writers)
	defer monitoring.SetLogWriters(monitoring.LogWriters{})

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	doc, err := loadSession(opts.sessionPath)
	if err != nil {
		return err
	}
	ticks, err := loadTelemetry(opts.telemetryPath)
	if err != nil {
		return err
	}

	e := engine.New(cfg)
	e.PushSession(doc)
	for _, snap := range ticks {
		e.PushTelemetry(snap)
	}
	monitoring.Opsf("replayed %d ticks for run %s", len(ticks), e.RunID())

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	switch opts.view {
	case "relative":
		printRelative(tw, e)
	case "speeds":
		err = printSpeeds(tw, e, opts.speedUnits)
	case "ratings":
		err = printRatings(tw, e)
	default:
		err = printStandings(tw, e)
	}
	if err != nil {
		return err
	}
	return tw.Flush()
}

func loadConfig(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	cfg, err := config.LoadTuningConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tuning config: %w", err)
	}
	return cfg, nil
}

func loadSession(path string) (*session.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer f.Close()
	return session.Decode(f)
}

func loadTelemetry(path string) ([]*telemetry.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry: %w", err)
	}
	defer f.Close()
	return telemetry.DecodeAll(f)
}

func printStandings(w io.Writer, e *engine.Engine) error {
	groups, err := e.ClassStandings()
	if err != nil {
		return err
	}
	stats := make(map[int]standings.ClassStats)
	for _, s := range e.ClassStats() {
		stats[s.ClassID] = s
	}

	printHeader(w, e)
	for _, g := range groups {
		st := stats[g.ClassID]
		fmt.Fprintf(w, "%s\t%d cars\tSOF %.0f\t\t\t\t\n", className(st), st.Total, st.SOF)
		fmt.Fprintln(w, "POS\tCAR\tDRIVER\tLIC\tIR\tGAP\tIR+/-")
		for _, s := range g.Standings {
			marker := ""
			if s.IsPlayer {
				marker = " *"
			}
			fmt.Fprintf(w, "%d\t#%s\t%s%s\t%s\t%d\t%s\t%s\n",
				s.ClassPosition, s.Driver.CarNum, s.Driver.Name, marker, s.Driver.License,
				s.Driver.Rating, optional(s.Delta, "%.3f"), optional(s.RatingChange, "%+.0f"))
		}
		fmt.Fprintln(w, "\t\t\t\t\t\t")
	}
	return nil
}

func printHeader(w io.Writer, e *engine.Engine) {
	if p, ok := e.Player(); ok {
		fmt.Fprintf(w, "viewer\t#%s %s\t\t\t\t\t\n", p.CarNumber, p.UserName)
	}
	laps := e.SessionLapCount()
	fmt.Fprintf(w, "laps\t%d / %s\t\t\t\t\t\n", laps.Current, laps.Total)
	inc := e.PlayerIncidents()
	fmt.Fprintf(w, "incidents\t%d / %s\t\t\t\t\t\n", inc.Count, inc.Limit)
	fmt.Fprintln(w, "\t\t\t\t\t\t")
}

func printRelative(w io.Writer, e *engine.Engine) {
	fmt.Fprintln(w, "POS\tCAR\tDRIVER\tCLASS\tDELTA")
	for _, r := range e.Relatives() {
		marker := ""
		if r.IsPlayer {
			marker = " *"
		}
		fmt.Fprintf(w, "%d\t#%s\t%s%s\t%s\t%+.1f\n",
			r.Position, r.Driver.CarNum, r.Driver.Name, marker, r.CarClass.Name, r.Delta)
	}
}

func printSpeeds(w io.Writer, e *engine.Engine, unit string) error {
	speeds, err := e.CarSpeedsIn(unit)
	if err != nil {
		return err
	}
	paces := e.LapPaces()
	avg := e.AverageLapTimes()

	fmt.Fprintf(w, "IDX\tDRIVER\t%s\tPACE\tAVG LAP\n", strings.ToUpper(unit))
	for _, s := range e.Standings() {
		speed, pace, lap := "-", "-", "-"
		if s.CarIdx < len(speeds) {
			speed = fmt.Sprintf("%.0f", speeds[s.CarIdx])
		}
		if s.CarIdx < len(paces) && paces[s.CarIdx] > 0 {
			pace = fmt.Sprintf("%.3f", paces[s.CarIdx])
		}
		if s.CarIdx < len(avg) && avg[s.CarIdx] > 0 {
			lap = fmt.Sprintf("%.3f", avg[s.CarIdx])
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.CarIdx, s.Driver.Name, speed, pace, lap)
	}
	return nil
}

func printRatings(w io.Writer, e *engine.Engine) error {
	results, err := e.EstimateRatings()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "POS\tDRIVER\tIR\tCHANGE\tNEW")
	for _, r := range results {
		d := r.RaceResult.Driver
		fmt.Fprintf(w, "%d\t%s\t%d\t%+.1f\t%d\n",
			r.RaceResult.FinishRank, d.Driver.Name, r.RaceResult.StartRating, r.RatingChange, r.NewRating)
	}
	return nil
}

func className(s standings.ClassStats) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("class %d", s.ClassID)
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
