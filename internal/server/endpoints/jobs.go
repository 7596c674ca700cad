package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/elcomtarif/elcomtarif/internal/api"
	"github.com/elcomtarif/elcomtarif/internal/jobs"
)

// JobGetEndpoint handles GET /api/jobs/{id}.
type JobGetEndpoint struct {
	Cfg Config
}

func (e *JobGetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/jobs/{id}", e.handler
}

func (e *JobGetEndpoint) RequiresInit() bool { return true }

func (e *JobGetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := e.Cfg.Jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (e *JobGetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "job <id>",
		Short: "Get a submitted pipeline job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var job jobs.Job
			if err := client.Get(cmd.Context(), "/api/jobs/"+args[0], &job); err != nil {
				return err
			}
			printJob(&job)
			return nil
		},
	}
}

// JobListEndpoint handles GET /api/jobs.
type JobListEndpoint struct {
	Cfg Config
}

func (e *JobListEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/jobs", e.handler
}

func (e *JobListEndpoint) RequiresInit() bool { return true }

func (e *JobListEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, e.Cfg.Jobs.List())
}

func (e *JobListEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List submitted pipeline jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var list []jobs.Job
			if err := client.Get(cmd.Context(), "/api/jobs", &list); err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No jobs submitted")
				return nil
			}
			for i := range list {
				printJob(&list[i])
				fmt.Println()
			}
			return nil
		},
	}
}

func printJob(job *jobs.Job) {
	fmt.Printf("Job:      %s\n", job.ID)
	fmt.Printf("Operator: %d\n", job.OperatorID)
	fmt.Printf("Status:   %s\n", job.Status)
	if job.Error != "" {
		fmt.Printf("Error:    %s\n", job.Error)
	}
}
