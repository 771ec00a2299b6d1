// Package identify matches anonymous voice embeddings against the durable
// identities of a speakerdb.Searcher.
//
// Every embedding of a diarization label queries the searcher for its best
// candidates. Candidates are grouped by identity and each identity is scored
// by the mean similarity over the embeddings that returned it. The best mean
// wins; on a tie the identity seen first is kept.
package identify
