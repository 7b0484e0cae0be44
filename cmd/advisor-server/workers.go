// cmd/advisor-server/workers.go
package main

import (
	"context"
	"time"

	"github.com/Kathan1010/LoanAdviser/internal/api/handlers"
	"github.com/Kathan1010/LoanAdviser/internal/common/camunda"
	"github.com/Kathan1010/LoanAdviser/internal/common/config"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	processturn "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/process-turn"
	checkeligibility "github.com/Kathan1010/LoanAdviser/internal/workers/loan/check-eligibility"
	extractfields "github.com/Kathan1010/LoanAdviser/internal/workers/loan/extract-fields"
	sequencequestions "github.com/Kathan1010/LoanAdviser/internal/workers/loan/sequence-questions"
)

type runningWorkers struct {
	client  *camunda.Client
	workers []*camunda.CamundaWorker
	logger  logger.Logger
}

// stop closes the job streams before the shared client.
func (r *runningWorkers) stop(ctx context.Context) {
	if r == nil || r.client == nil {
		return
	}
	for _, w := range r.workers {
		w.Stop(ctx)
	}
	if err := r.client.Close(); err != nil {
		r.logger.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
	}
}

func startWorkers(
	ctx context.Context,
	cfg *config.Config,
	orchestrator *processturn.Orchestrator,
	b *backends,
	log logger.Logger,
) (*runningWorkers, error) {
	running := &runningWorkers{logger: log}
	if !cfg.Camunda.Enabled {
		log.Info("camunda disabled, job workers not started", nil)
		return running, nil
	}

	var client *camunda.Client
	err := connect(ctx, "zeebe", func(context.Context) error {
		var err error
		client, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, log)
	if err != nil {
		return nil, err
	}
	running.client = client
	b.components["zeebe"] = handlers.PingFunc(client.HealthCheck)

	registrations := []struct {
		taskType string
		handler  func(timeout time.Duration) camunda.JobHandler
	}{
		{extractfields.TaskType, func(timeout time.Duration) camunda.JobHandler {
			c := extractfields.LoadConfig()
			c.Timeout = timeout
			return extractfields.NewHandler(c, log)
		}},
		{checkeligibility.TaskType, func(timeout time.Duration) camunda.JobHandler {
			return checkeligibility.NewHandler(&checkeligibility.Config{Timeout: timeout}, log)
		}},
		{sequencequestions.TaskType, func(time.Duration) camunda.JobHandler {
			return sequencequestions.NewHandler(log)
		}},
		{processturn.TaskType, func(time.Duration) camunda.JobHandler {
			return processturn.NewHandler(orchestrator, log)
		}},
	}

	for _, r := range registrations {
		wcfg := config.GetWorkerConfig(cfg, r.taskType)
		if !wcfg.Enabled {
			log.Info("worker disabled", map[string]interface{}{"taskType": r.taskType})
			continue
		}
		timeout := config.GetDuration(wcfg.Timeout)
		w := camunda.NewWorker(client.GetClient(), r.taskType, wcfg.MaxJobsActive, timeout, r.handler(timeout), log)
		w.Start()
		running.workers = append(running.workers, w)
	}

	log.Info("job workers registered", map[string]interface{}{"count": len(running.workers)})
	return running, nil
}
