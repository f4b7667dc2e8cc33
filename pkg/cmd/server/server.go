package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/catalog"
	"github.com/mlutzke/raceday/pkg/config"
	"github.com/mlutzke/raceday/pkg/db/postgres"
	"github.com/mlutzke/raceday/pkg/live"
	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/service"
	"github.com/mlutzke/raceday/pkg/settings"
	"github.com/mlutzke/raceday/pkg/utils"
)

//nolint:funlen // by design
func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the race hosting server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"debug",
		"controls the log level for sql methods")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"json",
		"controls the log output format")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().StringVar(&config.CatalogFile,
		"catalog",
		"catalog.yml",
		"file containing the car and track definitions")
	cmd.Flags().Float64Var(&config.CountdownSec,
		"countdown",
		3,
		"countdown in seconds before the first car is released")
	cmd.Flags().Float64Var(&config.StaleTimeoutSec,
		"stale-timeout",
		0,
		"abort a race when no car makes progress for this many seconds (0 disables)")
	cmd.Flags().Float64Var(&config.TickRate,
		"tick-rate",
		60,
		"simulation steps per second")
	cmd.Flags().BoolVar(&config.RealTime,
		"real-time",
		true,
		"pace hosted races with the wall clock")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

//nolint:funlen,cyclop // by design
func startServer() error {
	var logger *log.Logger
	var sqlLogger *log.Logger
	var telemetry *config.Telemetry
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))

	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))

		sqlLogger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}

	log.ResetDefault(logger)

	log.Debug("Config:",
		log.String("db", config.DB),
		log.String("natsUrl", config.NatsURL),
		log.String("catalog", config.CatalogFile),
	)

	// the server receives host requests via NATS, nothing works without it
	if config.NatsURL == "" {
		return errors.New("nats-url is required for the server")
	}

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	waitForRequiredServices()

	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(context.Background()); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	log.Info("Starting server")
	pool := postgres.InitWithURL(
		config.DB,
		postgres.WithTracer(sqlLogger, log.DebugLevel),
	)
	defer pool.Close()

	nc, err := nats.Connect(config.NatsURL)
	if err != nil {
		log.Error("could not connect to NATS", log.ErrorField(err))
		return err
	}
	defer nc.Close()

	cat, err := catalog.LoadFile(config.CatalogFile)
	if err != nil {
		log.Error("could not load catalog", log.ErrorField(err))
		return err
	}

	var store settings.Store
	if js, jsErr := jetstream.New(nc); jsErr == nil {
		kv, kvErr := settings.NewKVStore(context.Background(), js)
		if kvErr != nil {
			log.Warn("settings store unavailable", log.ErrorField(kvErr))
		} else {
			store = kv
		}
	} else {
		log.Warn("jetstream unavailable", log.ErrorField(jsErr))
	}

	raceService := service.NewRaceService(
		service.WithPool(pool),
		service.WithNats(nc),
		service.WithCatalog(cat),
		service.WithCountdown(config.CountdownSec),
		service.WithStaleTimeout(config.StaleTimeoutSec),
		service.WithTickRate(config.TickRate),
		service.WithRealTime(config.RealTime))

	sub, err := nc.Subscribe(live.SubjectHostRequest, func(msg *nats.Msg) {
		go handleHostRequest(raceService, store, msg)
	})
	if err != nil {
		log.Error("could not subscribe for host requests", log.ErrorField(err))
		return err
	}
	//nolint:errcheck // shutdown path
	defer sub.Unsubscribe()

	log.Info("Server started", log.String("subject", live.SubjectHostRequest))
	setupGoRoutinesDump()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	v := <-sigChan
	log.Debug("Got signal ", log.Any("signal", v))
	if telemetry != nil {
		telemetry.Shutdown()
	}

	log.Info("Server terminated")
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func handleHostRequest(
	raceService *service.RaceService,
	store settings.Store,
	msg *nats.Msg,
) {
	var req live.HostRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Warn("invalid host request", log.ErrorField(err))
		respond(msg, live.HostResponse{Error: "invalid request"})
		return
	}
	entries := applyPreferredStartPos(store, req.Cars)
	replied := false
	_, err := raceService.HostRace(context.Background(), req.TrackName, entries,
		service.OnStart(func(key string) {
			replied = true
			respond(msg, live.HostResponse{RaceKey: key})
		}))
	if err != nil {
		log.Error("hosting race failed",
			log.String("track", req.TrackName), log.ErrorField(err))
		if !replied {
			respond(msg, live.HostResponse{Error: err.Error()})
		}
	}
}

func respond(msg *nats.Msg, resp live.HostResponse) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error("marshaling host response", log.ErrorField(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		log.Warn("sending host response", log.ErrorField(err))
	}
}

// applyPreferredStartPos moves the player car to the stored grid slot.
// Without a store or stored value the request order stays untouched.
func applyPreferredStartPos(store settings.Store, cars []model.CarEntry) []model.CarEntry {
	if store == nil {
		return cars
	}
	pos, err := store.PreferredStartPos(context.Background())
	if err != nil {
		return cars
	}
	ret := make([]model.CarEntry, len(cars))
	copy(ret, cars)
	for i := range ret {
		if ret[i].Spec.IsPlayer {
			ret[i].StartPos = pos
		} else if ret[i].StartPos >= pos {
			ret[i].StartPos++
		}
	}
	return ret
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func waitForRequiredServices() {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}

	wg := sync.WaitGroup{}
	checkTCP := func(addr string) {
		if err := utils.WaitForTCP(addr, timeout); err != nil {
			log.Fatal("required services not ready", log.ErrorField(err))
		}
		wg.Done()
	}

	if postgresAddr := utils.ExtractFromDBURL(config.DB); postgresAddr != "" {
		wg.Add(1)
		go checkTCP(postgresAddr)
	}
	if natsAddr := utils.ExtractFromNatsURL(config.NatsURL); natsAddr != "" {
		wg.Add(1)
		go checkTCP(natsAddr)
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	log.Debug("Required services are available")
}
