package model

// CaseRecord is one ingested document, stored as a (:Case) node.
type CaseRecord struct {
	ID        string
	Text      string
	Embedding []float32
}

// ToParams converts the record into the map shape bound to $batch.
func (c CaseRecord) ToParams() map[string]any {
	emb := make([]any, len(c.Embedding))
	for i, v := range c.Embedding {
		emb[i] = float64(v)
	}
	return map[string]any{
		"id":        c.ID,
		"text":      c.Text,
		"embedding": emb,
	}
}
