package jobs

import (
	"github.com/getevo/evo/v2"

	"github.com/Wakar473/Timechamp/apps/database"
	"github.com/Wakar473/Timechamp/lib/identity"
	"github.com/Wakar473/Timechamp/lib/response"
)

// GetJobs lists the registered job definitions
func GetJobs(request *evo.Request) any {
	if _, err := identity.FromRequest(request); err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	s := GetScheduler()
	if s == nil {
		return response.OK([]any{})
	}

	type jobInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Schedule    string `json:"schedule"`
	}
	var result []jobInfo
	for _, job := range s.Jobs() {
		result = append(result, jobInfo{
			Name:        job.Name,
			Description: job.Description,
			Schedule:    job.Schedule,
		})
	}
	return response.OK(result)
}

// GetJobExecutions lists recent job execution records
func GetJobExecutions(request *evo.Request) any {
	if _, err := identity.FromRequest(request); err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	var executions []JobExecution
	query := database.DB.Order("started_at DESC").Limit(100)
	if name := request.Query("job").String(); name != "" {
		query = query.Where("job_name = ?", name)
	}
	if err := query.Find(&executions).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.OKWithMeta(executions, &response.Meta{Count: len(executions)})
}

// RunJob triggers immediate execution of a registered job
func RunJob(request *evo.Request) any {
	if _, err := identity.FromRequest(request); err != nil {
		return response.Error(response.ErrUnauthorized)
	}

	s := GetScheduler()
	if s == nil {
		return response.Error(response.ErrNotFound)
	}

	name := request.Param("name").String()
	if err := s.RunNow(name); err != nil {
		return response.Error(response.ErrNotFound)
	}
	return response.OKWithMessage(nil, "job triggered")
}
