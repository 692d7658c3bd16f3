// Package pgstream writes the hourly dispatch schedule of each
// completed run into PostgreSQL, one row per hour, for downstream
// analysis tooling.
package pgstream

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/cep_core/internal/pkg/msg"
	"github.com/ohowland/cep_core/internal/pkg/results"

	_ "github.com/lib/pq"
)

// Handler consumes run results and streams dispatch rows to Postgres.
type Handler struct {
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server   string `json:"Server"`
	Port     int    `json:"Port"`
	Username string `json:"Username"`
	Password string `json:"Password"`
	Database string `json:"Database"`
}

// New builds a handler from a JSON config file and subscribes it to
// the pipeline's Result topic.
func New(configPath string, pipeline msg.Publisher) (Handler, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Handler{}, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Handler{}, err
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return Handler{}, err
	}

	return Handler{
		inbox:  pipeline.Subscribe(pid, msg.Result),
		pid:    pid,
		config: cfg,
		stop:   make(chan bool),
	}, nil
}

// PID returns the handler's subscription identity.
func (h Handler) PID() uuid.UUID {
	return h.pid
}

// Stop ends the Process loop.
func (h *Handler) Stop() {
	h.stop <- true
}

// DB opens the configured Postgres connection.
func (h Handler) DB() (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=disable",
		h.config.Username, h.config.Password, h.config.Server, h.config.Port, h.config.Database)
	return sql.Open("postgres", dsn)
}

// Process consumes results until stopped.
func (h Handler) Process() {
	db, err := h.DB()
	if err != nil {
		log.Println("[Stream]", err)
		return
	}
	defer db.Close()

	if err := initDBTables(db); err != nil {
		log.Println("[Stream]", err)
		return
	}

loop:
	for {
		select {
		case m := <-h.inbox:
			r, ok := m.Payload().(*results.Results)
			if !ok {
				log.Println("[Stream] dropped non-result payload")
				continue
			}
			if err := insertDispatch(db, r); err != nil {
				log.Printf("[Stream] error %s writing dispatch", err)
				continue
			}
			log.Printf("[Stream] run %s: %d dispatch rows written", r.RunID, len(r.Dispatch))
		case <-h.stop:
			break loop
		}
	}
	log.Println("[Stream] Process Shutdown")
}

func initDBTables(db *sql.DB) error {
	sqlStatement := `CREATE TABLE IF NOT EXISTS dispatch(
		run_id VARCHAR(36) NOT NULL,
		hour INT NOT NULL,
		demand DOUBLE PRECISION,
		solar DOUBLE PRECISION,
		wind DOUBLE PRECISION,
		thermal DOUBLE PRECISION,
		hydro DOUBLE PRECISION,
		nuclear DOUBLE PRECISION,
		other_renewables DOUBLE PRECISION,
		charge DOUBLE PRECISION,
		discharge DOUBLE PRECISION,
		imports DOUBLE PRECISION,
		exports DOUBLE PRECISION,
		curtailment DOUBLE PRECISION,
		shed DOUBLE PRECISION,
		PRIMARY KEY (run_id, hour))`
	_, err := db.Exec(sqlStatement)
	return err
}

func insertDispatch(db *sql.DB, r *results.Results) error {
	sqlStatement := `INSERT INTO dispatch VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (run_id, hour) DO NOTHING`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, d := range r.Dispatch {
		_, err := db.ExecContext(ctx, sqlStatement,
			r.RunID.String(), d.Hour, d.Demand, d.Solar, d.Wind, d.Thermal,
			d.Hydro, d.Nuclear, d.OtherRenewables, d.Charge, d.Discharge,
			d.Imports, d.Exports, d.Curtailment, d.Shed)
		if err != nil {
			return err
		}
	}
	return nil
}
