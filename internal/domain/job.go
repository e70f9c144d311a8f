package domain

// Job is one unit of work: an image plus a prompt to send to the
// generative API. Jobs are produced externally by the request generator
// and are never mutated; a retry re-enqueues the identical value.
type Job struct {
	ID             string `json:"image_id"`
	ImagePath      string `json:"image_path"`
	Prompt         string `json:"prompt"`
	PrimaryLabel   string `json:"image_primary_label"`
	SecondaryLabel string `json:"image_secondary_label"`
}
