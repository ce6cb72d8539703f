package dto

type IngestResult struct {
	Files    int `json:"files" yaml:"files"`
	Ingested int `json:"ingested" yaml:"ingested"`
	Failed   int `json:"failed" yaml:"failed"`
	Batches  int `json:"batches" yaml:"batches"`

	WriteFailures int `json:"write_failures" yaml:"write_failures"`
}
