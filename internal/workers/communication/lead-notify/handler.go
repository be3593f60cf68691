package leadnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"harvin-platform/internal/common/config"
	"harvin-platform/internal/common/errors"
	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/common/metrics"
	"harvin-platform/internal/common/observability"
	"harvin-platform/internal/common/validation"
	"harvin-platform/internal/leads"
	"harvin-platform/internal/mail"
)

const TaskType = "lead.notify.send"

type Handler struct {
	config       *Config
	logger       logger.Logger
	service      ServiceInterface
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Transport     mail.Transport
	Recorder      leads.Recorder
	Observability *observability.Observability
	Service       ServiceInterface
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := opts.CustomConfig
	if workerConfig == nil {
		if opts.AppConfig == nil {
			return nil, fmt.Errorf("lead-notify: app config or custom config is required")
		}
		workerConfig = ConfigFromApp(opts.AppConfig)
	}
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for lead-notify: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	service := opts.Service
	if service == nil {
		service = NewService(ServiceDependencies{
			Transport: opts.Transport,
			Recorder:  opts.Recorder,
			Logger:    log,
		}, workerConfig, opts.Observability)
	}

	return &Handler{
		config:       workerConfig,
		logger:       log,
		service:      service,
		errorHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing lead notification", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	if !h.config.Enabled {
		h.completeJob(ctx, client, job, &Output{OK: true, Skipped: true})
		return
	}

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			h.completeJob(ctx, client, job, output)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
			return
		}
	}

	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingError(err)
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewValidationError(
			"Input validation failed",
			fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()),
		)
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"notificationSent":    output.OK && !output.Skipped,
		"notificationSkipped": output.Skipped,
	}
	if output.LeadID != "" {
		variables["leadId"] = output.LeadID
	}
	if output.SentAt != "" {
		variables["notificationSentAt"] = output.SentAt
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Completed lead notification", map[string]interface{}{
		"jobKey":  job.GetKey(),
		"skipped": output.Skipped,
		"leadId":  output.LeadID,
	})
}
