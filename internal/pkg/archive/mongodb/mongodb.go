// Package mongodb archives run results. The handler subscribes to the
// pipeline's Result topic and upserts each completed run's summary
// keyed by run PID.
package mongodb

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"log"

	"github.com/google/uuid"
	"github.com/ohowland/cep_core/internal/pkg/msg"
	"github.com/ohowland/cep_core/internal/pkg/results"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const runCollection = "runSummary"

// Handler consumes run results and writes them to MongoDB.
type Handler struct {
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	URI      string `json:"URI"`
	Database string `json:"Database"`
	Port     string `json:"Port"`
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

// StopProcess ends the Process loop.
func (h *Handler) StopProcess() {
	h.stop <- true
}

// Process consumes results until stopped.
func (h Handler) Process() {
	client, err := mongo.NewClient(options.Client().ApplyURI(h.config.URI + ":" + h.config.Port))
	if err != nil {
		log.Println("[Archive]", err)
		return
	}

	ctx := context.TODO()
	if err := client.Connect(ctx); err != nil {
		log.Println("[Archive]", err)
		return
	}
	defer client.Disconnect(ctx)

	collection := client.Database(h.config.Database).Collection(runCollection)
loop:
	for {
		select {
		case m := <-h.inbox:
			r, ok := m.Payload().(*results.Results)
			if !ok {
				log.Println("[Archive] dropped non-result payload")
				continue
			}
			opts := options.Update().SetUpsert(true)
			_, err := collection.UpdateOne(
				ctx,
				bson.M{"run_id": r.RunID.String()},
				runToBSON(r),
				opts,
			)
			if err != nil {
				log.Println("[Archive]", err)
				continue
			}
			log.Printf("[Archive] run %s archived (objective %.2f)", r.RunID, r.Objective)
		case <-h.stop:
			break loop
		}
	}
	log.Println("[Archive] Process Shutdown")
}

func runToBSON(r *results.Results) bson.D {
	return bson.D{
		{Key: "$set", Value: bson.M{
			"run_id":  r.RunID.String(),
			"summary": r,
		}},
	}
}
