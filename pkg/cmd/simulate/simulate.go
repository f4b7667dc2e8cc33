package simulate

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/catalog"
	"github.com/mlutzke/raceday/pkg/config"
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/processing"
	"github.com/mlutzke/raceday/pkg/processing/car"
	"github.com/mlutzke/raceday/pkg/processing/race"
	"github.com/mlutzke/raceday/pkg/settings"
	"github.com/mlutzke/raceday/pkg/sim"
)

var (
	playerCar string
	carNames  []string
)

//nolint:funlen // by design
func NewSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "runs a single race offline and prints the classification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation()
		},
	}
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format")
	cmd.Flags().StringVar(&config.CatalogFile,
		"catalog",
		"catalog.yml",
		"file containing the car and track definitions")
	cmd.Flags().StringVar(&config.TrackName,
		"track",
		"",
		"name of the track to race on")
	cmd.Flags().Float64Var(&config.CountdownSec,
		"countdown",
		3,
		"countdown in seconds before the first car is released")
	cmd.Flags().Float64Var(&config.StaleTimeoutSec,
		"stale-timeout",
		0,
		"abort the race when no car makes progress for this many seconds (0 disables)")
	cmd.Flags().Float64Var(&config.TickRate,
		"tick-rate",
		60,
		"simulation steps per second")
	cmd.Flags().BoolVar(&config.RealTime,
		"real-time",
		false,
		"pace the simulation with the wall clock")
	cmd.Flags().StringVar(&playerCar,
		"player",
		"",
		"name of the player car (optional)")
	cmd.Flags().StringSliceVar(&carNames,
		"cars",
		nil,
		"cars on the grid (default: all catalog cars)")
	cmd.Flags().IntVar(&config.PlayerStartPos,
		"start-pos",
		0,
		"grid slot of the player car, 1-based (0 = use stored preference)")
	if err := cmd.MarkFlagRequired("track"); err != nil {
		log.Error("marking flag required", log.ErrorField(err))
	}
	return cmd
}

//nolint:funlen // by design
func runSimulation() error {
	setupLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cat, err := catalog.LoadFile(config.CatalogFile)
	if err != nil {
		return err
	}
	trackSpec, err := cat.Track(config.TrackName)
	if err != nil {
		return err
	}

	store := settings.NewMemoryStore()
	if config.PlayerStartPos > 0 {
		if err := store.SetPreferredStartPos(ctx, config.PlayerStartPos); err != nil {
			return err
		}
	}
	entries := buildGrid(ctx, cat, store)

	cp := car.NewCarProcessor(car.WithTotalLaps(trackSpec.Laps))
	rpOpts := []race.RaceProcessorOption{
		race.WithCarProcessor(cp),
		race.WithCountdown(config.CountdownSec),
	}
	if config.StaleTimeoutSec > 0 {
		rpOpts = append(rpOpts, race.WithStaleTimeout(config.StaleTimeoutSec))
	}
	proc := processing.NewProcessor(
		processing.WithRaceProcessor(race.NewRaceProcessor(rpOpts...)))

	engine, err := sim.NewFromTrack(trackSpec,
		sim.WithProcessor(proc),
		sim.WithTickRate(config.TickRate),
		sim.WithRealTime(config.RealTime))
	if err != nil {
		return err
	}
	engine.RegisterCars(entries)

	go func() {
		for ev := range engine.Events() {
			switch ev.Type {
			case race.EventPhaseChanged:
				log.Info("phase", log.String("phase", string(ev.Phase)))
			case race.EventCarReleased:
				log.Info("released", log.String("car", ev.CarName))
			case race.EventLapCompleted:
				log.Info("lap",
					log.String("car", ev.CarName),
					log.Int("lapNo", ev.Lap.LapNo),
					log.Float64("lapTime", ev.Lap.LapTime))
			case race.EventCarFinished:
				log.Info("finished", log.String("car", ev.CarName))
			}
		}
	}()

	results, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	printStandings(config.TrackName, results)
	return nil
}

func setupLogger() {
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	var logger *log.Logger
	if config.LogFormat == "json" {
		logger = log.New(os.Stderr, level)
	} else {
		logger = log.DevLogger(os.Stderr, level)
	}
	log.ResetDefault(logger)
}

// buildGrid resolves the grid from catalog specs. The player car keeps
// its stored start position; the remaining cars fill up in roster order.
func buildGrid(ctx context.Context, cat *catalog.Catalog, store settings.Store) []model.CarEntry {
	names := carNames
	if len(names) == 0 {
		for i := range cat.Cars {
			names = append(names, cat.Cars[i].Name)
		}
	}
	playerPos := 0
	if playerCar != "" {
		if pos, err := store.PreferredStartPos(ctx); err == nil {
			playerPos = pos
		}
	}

	ret := make([]model.CarEntry, 0, len(names))
	slot := 1
	for _, name := range names {
		spec := cat.Car(name)
		if name == playerCar {
			spec.IsPlayer = true
			if playerPos > 0 {
				ret = append(ret, model.CarEntry{Spec: spec, StartPos: playerPos})
				continue
			}
		}
		if playerPos > 0 && slot == playerPos {
			slot++
		}
		ret = append(ret, model.CarEntry{Spec: spec, StartPos: slot})
		slot++
	}
	return ret
}

func printStandings(trackName string, results []model.RaceResult) {
	fmt.Printf("Race classification for %s\n", trackName)
	fmt.Printf("%-4s %-20s %5s %10s %10s\n", "Pos", "Car", "Laps", "Best", "Total")
	for _, res := range results {
		fmt.Printf("%-4d %-20s %5d %10.3f %10.3f\n",
			res.FinalPosition, res.CarName,
			res.CompletedLaps(), res.BestLapTime, res.TotalRaceTime)
	}
}
