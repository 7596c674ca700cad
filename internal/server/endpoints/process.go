package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/elcomtarif/elcomtarif/internal/api"
)

// ProcessRequest is the body for POST /api/process.
type ProcessRequest struct {
	OperatorID int `json:"operator_id"`
}

// ProcessResponse acknowledges a submitted pipeline run.
type ProcessResponse struct {
	JobID      string `json:"job_id"`
	OperatorID int    `json:"operator_id"`
	Status     string `json:"status"`
}

// ProcessEndpoint handles POST /api/process. The pipeline run is
// submitted as a background job; the response carries the job id so
// callers can poll for the outcome.
type ProcessEndpoint struct {
	Cfg Config
}

func (e *ProcessEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/process", e.handler
}

func (e *ProcessEndpoint) RequiresInit() bool { return true }

func (e *ProcessEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.OperatorID <= 0 {
		writeError(w, http.StatusBadRequest, "operator_id must be a positive integer")
		return
	}

	job := e.Cfg.Jobs.Submit(req.OperatorID, func(ctx context.Context) error {
		return e.Cfg.Runner.RunOperator(ctx, req.OperatorID)
	})

	writeJSON(w, http.StatusAccepted, ProcessResponse{
		JobID:      job.ID,
		OperatorID: job.OperatorID,
		Status:     string(job.Status),
	})
}

func (e *ProcessEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "process <operator-id>",
		Short: "Trigger the extraction pipeline for an operator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			operatorID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid operator id %q: %w", args[0], err)
			}

			client := api.NewClient(getServerURL())
			var resp ProcessResponse
			err = client.Post(cmd.Context(), "/api/process", ProcessRequest{OperatorID: operatorID}, &resp)
			if err != nil {
				return err
			}
			fmt.Printf("Job:      %s\n", resp.JobID)
			fmt.Printf("Operator: %d\n", resp.OperatorID)
			fmt.Printf("Status:   %s\n", resp.Status)
			return nil
		},
	}
}
