package domain

// Result is the durable record written once per successfully processed
// Job. The existence of its file is the completion marker used for
// dedup at seeding time and by workers mid-run; the content is only
// consumed by downstream analysis.
type Result struct {
	ID             string `json:"image_id"`
	ImagePath      string `json:"image_path"`
	PrimaryLabel   string `json:"image_primary_label"`
	SecondaryLabel string `json:"image_secondary_label"`
	APIResponse    string `json:"api_response"`
	Prompt         string `json:"prompt"`
	ModelName      string `json:"model_name"`
}

// NewResult builds the Result for a processed job.
func NewResult(job *Job, apiResponse, modelName string) *Result {
	return &Result{
		ID:             job.ID,
		ImagePath:      job.ImagePath,
		PrimaryLabel:   job.PrimaryLabel,
		SecondaryLabel: job.SecondaryLabel,
		APIResponse:    apiResponse,
		Prompt:         job.Prompt,
		ModelName:      modelName,
	}
}
