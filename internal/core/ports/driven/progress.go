package driven

// ProgressSink receives push-based indexing progress. Notifications are
// fire-and-forget: a failing or panicking sink must never abort indexing.
type ProgressSink interface {
	// OnProgress is called after each chunk is embedded, with the number of
	// chunks done so far and the total.
	OnProgress(current, total int)

	// OnComplete is called once all chunks have been processed.
	OnComplete()
}
