package domain

// DefaultCheckpointName is used when a store holds a single extractor's watermark.
const DefaultCheckpointName = "default"
