package main

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/cep_core/internal/pkg/archive/mongodb"
	"github.com/ohowland/cep_core/internal/pkg/datastreams/pgstream"
	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/input/csvdir"
	"github.com/ohowland/cep_core/internal/pkg/msg"
	"github.com/ohowland/cep_core/internal/pkg/results"
	"github.com/ohowland/cep_core/internal/pkg/solve"
	"github.com/ohowland/cep_core/internal/pkg/system"
	"github.com/ohowland/cep_core/internal/pkg/webservice"
)

type config struct {
	CaseDir        string    `json:"CaseDir"`
	CaseName       string    `json:"CaseName"`
	Hours          int       `json:"Hours"`
	GenMixTargets  []float64 `json:"GenMixTargets"`
	TimeLimitSec   int       `json:"TimeLimitSec"`
	MIPRelGap      float64   `json:"MIPRelGap"`
	Verbose        bool      `json:"Verbose"`
	MongoConfig    string    `json:"MongoConfig"`
	PostgresConfig string    `json:"PostgresConfig"`
	ListenAddr     string    `json:"ListenAddr"`
}

func main() {
	log.Println("[Main] Starting CEP_Core v0.0.1")
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Loading Case", cfg.CaseDir)
	bundle, err := csvdir.Load(cfg.CaseDir)
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Building Run Publisher")
	pid, err := uuid.NewUUID()
	if err != nil {
		panic(err)
	}
	pubsub := msg.NewPublisher(pid)
	defer pubsub.Close()

	ws, err := linkHandlers(cfg, pubsub)
	if err != nil {
		panic(err)
	}

	targets := cfg.GenMixTargets
	if len(targets) == 0 {
		targets = []float64{bundle.Scalars.GenMixTarget}
	}

	log.Println("[Main] Starting scenario runs")
	for _, target := range targets {
		if err := runScenario(cfg, bundle, target, pubsub); err != nil {
			log.Println("[Main] scenario failed:", err)
		}
	}

	if ws != nil {
		log.Println("[Main] Runs complete, serving results on", cfg.ListenAddr)
		go func() {
			if err := ws.ListenAndServe(cfg.ListenAddr); err != nil {
				log.Println("[Main]", err)
			}
		}()
		<-sigs
	}
	log.Println("[Main] Stopping system")
}

func runScenario(cfg config, bundle *input.Bundle, target float64, pubsub *msg.PubSub) error {
	log.Printf("[Main] Building system for genmix target %.2f", target)
	pubsub.Publish(msg.Status, "building")

	sys, err := system.Build(bundle, system.Options{Hours: cfg.Hours, GenMixTarget: target})
	if err != nil {
		return err
	}

	log.Println("[Main] Solving")
	pubsub.Publish(msg.Status, "solving")
	outcome, err := solve.NewHiGHS().Solve(sys.Model, solve.Options{
		TimeLimit: time.Duration(cfg.TimeLimitSec) * time.Second,
		MIPRelGap: cfg.MIPRelGap,
		Verbose:   cfg.Verbose,
	})
	if err != nil {
		return err
	}

	log.Println("[Main] Collecting results")
	r, err := results.Collect(sys, cfg.CaseName, outcome)
	if err != nil {
		return err
	}

	log.Printf("[Main] run %s: objective %.2f, solar %.1f MW, wind %.1f MW, thermal %.1f MW",
		r.RunID, r.Objective, r.SolarMW, r.WindMW, r.ThermalMW)
	pubsub.Publish(msg.Result, r)
	return nil
}

func loadConfig() (config, error) {
	path := "./config/cep.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return config{}, err
	}
	cfg := config{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func linkHandlers(cfg config, pubsub *msg.PubSub) (*webservice.Server, error) {
	if cfg.MongoConfig != "" {
		log.Println("[Main] Connecting MongoDB Archive")
		archiveHandler, err := mongodb.New(cfg.MongoConfig, pubsub)
		if err != nil {
			return nil, err
		}
		go archiveHandler.Process()
	}

	if cfg.PostgresConfig != "" {
		log.Println("[Main] Connecting Postgres Stream")
		streamHandler, err := pgstream.New(cfg.PostgresConfig, pubsub)
		if err != nil {
			return nil, err
		}
		go streamHandler.Process()
	}

	if cfg.ListenAddr == "" {
		return nil, nil
	}
	log.Println("[Main] Building Webservice")
	return webservice.New(pubsub)
}
