package entities

// DocumentSegment is a bounded window of corpus text produced by the
// chunker. Segments are immutable once created; after ingestion they live
// only inside the vector index and come back as retrieval sources.
type DocumentSegment struct {
	Text   string `json:"text" bson:"text"`
	Source string `json:"source" bson:"source"`
	Index  int    `json:"index" bson:"index"`
}

// RetrievalResult is the outcome of one answered query: the synthesized
// answer plus the supporting segments in retrieval order.
type RetrievalResult struct {
	Answer  string            `json:"answer"`
	Sources []DocumentSegment `json:"sources"`
}
