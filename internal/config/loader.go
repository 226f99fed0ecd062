// Package config centralizes the planner's settings into one record, built
// from CLI flags instead of environment variables: the external interface
// is a one-shot "plan" command (spec §6), not a long-lived service, so flags
// are the natural source (spec §9 Design Note: "Implicit global
// configuration").
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

// InfeasiblePolicy controls how a structurally infeasible session (empty
// eligibility set) is handled once materialized.
type InfeasiblePolicy string

const (
	// PolicySkip leaves the session unassigned in the output (default).
	PolicySkip InfeasiblePolicy = "skip"
	// PolicyFail aborts the run when any session is structurally
	// infeasible.
	PolicyFail InfeasiblePolicy = "fail"
)

// Config is the planner's single configuration record (spec §9 Design
// Note's recognized options).
type Config struct {
	TimeBudget              time.Duration
	WorkerCount             int
	RandomSeed              int64
	DefaultPreferenceScore  int
	InfeasibleSessionPolicy InfeasiblePolicy

	DoctorsPath         string
	LocationsPath       string
	RoomsPath           string
	SessionsPath        string
	PreferencesPath     string
	TravelTimesPath     string
	DoctorWorkdaysPath  string
	DoctorWeekRulesPath string
	ExcelInputPath      string

	OutputPath  string
	ExcelOutput bool

	HistoryDBPath string
}

// Parse builds a Config from args (typically the arguments after the "plan"
// subcommand), applying
// defaults, then accumulating missing/invalid fields into one descriptive
// error.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		TimeBudget:              30 * time.Second,
		WorkerCount:             1,
		RandomSeed:              1,
		DefaultPreferenceScore:  0,
		InfeasibleSessionPolicy: PolicySkip,
	}

	var policyRaw string
	fs.DurationVar(&cfg.TimeBudget, "time-budget", cfg.TimeBudget, "solver wall-clock time budget")
	fs.IntVar(&cfg.WorkerCount, "workers", cfg.WorkerCount, "solver worker count")
	fs.Int64Var(&cfg.RandomSeed, "seed", cfg.RandomSeed, "solver random seed")
	fs.IntVar(&cfg.DefaultPreferenceScore, "default-preference-score", cfg.DefaultPreferenceScore, "score used when no preference row exists")
	fs.StringVar(&policyRaw, "infeasible-policy", string(cfg.InfeasibleSessionPolicy), "skip|fail: how to handle structurally infeasible sessions")

	fs.StringVar(&cfg.DoctorsPath, "doctors", "", "path to doctors.csv")
	fs.StringVar(&cfg.LocationsPath, "locations", "", "path to locations.csv")
	fs.StringVar(&cfg.RoomsPath, "rooms", "", "path to rooms.csv (optional)")
	fs.StringVar(&cfg.SessionsPath, "sessions", "", "path to sessions.csv")
	fs.StringVar(&cfg.PreferencesPath, "preferences", "", "path to preferences.csv (optional)")
	fs.StringVar(&cfg.TravelTimesPath, "travel-times", "", "path to travel_times.csv (optional)")
	fs.StringVar(&cfg.DoctorWorkdaysPath, "doctor-workdays", "", "path to doctor_workdays.csv (optional)")
	fs.StringVar(&cfg.DoctorWeekRulesPath, "doctor-week-rules", "", "path to doctor_week_rules.csv (optional)")
	fs.StringVar(&cfg.ExcelInputPath, "excel-input", "", "path to a single workbook with all input tabs, instead of CSVs")

	fs.StringVar(&cfg.OutputPath, "output", "", "path to write the materialized schedule")
	fs.BoolVar(&cfg.ExcelOutput, "excel-output", false, "write the schedule as an .xlsx workbook instead of CSV")

	fs.StringVar(&cfg.HistoryDBPath, "history-db", "", "optional SQLite database path to record a planning_runs audit row")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var missing []string
	var invalid []string

	usingExcel := cfg.ExcelInputPath != ""
	if !usingExcel {
		if cfg.DoctorsPath == "" {
			missing = append(missing, "-doctors")
		}
		if cfg.LocationsPath == "" {
			missing = append(missing, "-locations")
		}
		if cfg.SessionsPath == "" {
			missing = append(missing, "-sessions")
		}
	}
	if cfg.OutputPath == "" {
		missing = append(missing, "-output")
	}

	switch InfeasiblePolicy(policyRaw) {
	case PolicySkip, PolicyFail:
		cfg.InfeasibleSessionPolicy = InfeasiblePolicy(policyRaw)
	default:
		invalid = append(invalid, "-infeasible-policy")
	}

	if cfg.TimeBudget <= 0 {
		invalid = append(invalid, "-time-budget")
	}
	if cfg.WorkerCount < 1 {
		invalid = append(invalid, "-workers")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid flag values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
