package identify

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/speakerdb"
)

const (
	// DefaultThreshold is the minimum similarity a candidate needs to count.
	DefaultThreshold = 0.7
	// DefaultTopK is the number of candidates requested per embedding.
	DefaultTopK = 3

	// MinIdentifyDuration is the shortest segment, in seconds, embedded for
	// identification.
	MinIdentifyDuration = 0.5
	// MinEnrollDuration is the shortest segment, in seconds, embedded when
	// registering a speaker from extracted segments.
	MinEnrollDuration = 1.0
)

// Config tunes the voter. A nil Threshold uses DefaultThreshold; 0 is a
// valid threshold that admits every candidate.
type Config struct {
	Threshold *float64 `yaml:"threshold" mapstructure:"threshold"`
	TopK      int      `yaml:"top_k" mapstructure:"top_k"`
}

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.Threshold == nil {
		t := DefaultThreshold
		c.Threshold = &t
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Threshold == nil {
		return nil
	}
	return ValidateThreshold(*c.Threshold)
}

// ValidateThreshold rejects similarity thresholds outside [0, 1].
func ValidateThreshold(t float64) error {
	if t < 0 || t > 1 {
		return errors.InvalidInput("threshold", fmt.Sprintf("must be between 0 and 1, got %g", t))
	}
	return nil
}

// Match is the winning identity of a vote.
type Match struct {
	Identity speakerdb.Speaker `json:"identity"`
	// Score is the mean similarity over the embeddings that returned Identity.
	Score float64 `json:"score"`
	// MatchCount is the number of embeddings that returned Identity.
	MatchCount int `json:"match_count"`
}

// Voter runs identification votes against a searcher.
type Voter struct {
	searcher speakerdb.Searcher
	cfg      Config
	log      *logger.Logger
}

// NewVoter creates a Voter.
func NewVoter(searcher speakerdb.Searcher, cfg Config, log *logger.Logger) (*Voter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := *cfg.Threshold
	cfg.Threshold = &t
	if log == nil {
		log = logger.NewNop()
	}
	return &Voter{searcher: searcher, cfg: cfg, log: log.WithComponent("voter")}, nil
}

// Threshold returns the configured default threshold.
func (v *Voter) Threshold() float64 { return *v.cfg.Threshold }

// tally accumulates the votes of one identity.
type tally struct {
	speaker speakerdb.Speaker
	sum     float64
	count   int
}

// IdentifyByVoting returns the identity whose mean similarity across
// embeddings is highest, or nil when no embedding found a candidate at or
// above the threshold. A nil threshold uses the configured default.
//
// Searcher failures are returned unchanged and abort the vote.
func (v *Voter) IdentifyByVoting(ctx context.Context, embeddings []embedding.Vector, threshold *float64) (*Match, error) {
	t := *v.cfg.Threshold
	if threshold != nil {
		if err := ValidateThreshold(*threshold); err != nil {
			return nil, err
		}
		t = *threshold
	}
	if len(embeddings) == 0 {
		return nil, nil
	}

	start := time.Now()
	var order []string
	tallies := make(map[string]*tally)

	for _, e := range embeddings {
		candidates, err := v.searcher.Search(ctx, e, v.cfg.TopK, t)
		if err != nil {
			return nil, err
		}

		// An identity counts once per embedding, with its best score.
		best := make(map[string]float64, len(candidates))
		var seen []string
		for _, c := range candidates {
			prev, ok := best[c.SpeakerID]
			if !ok {
				seen = append(seen, c.SpeakerID)
			}
			if !ok || c.Score > prev {
				best[c.SpeakerID] = c.Score
			}

			tl, ok := tallies[c.SpeakerID]
			if !ok {
				tl = &tally{speaker: speakerdb.Speaker{ID: c.SpeakerID, Name: c.SpeakerName, CreatedAt: c.CreatedAt}}
				tallies[c.SpeakerID] = tl
				order = append(order, c.SpeakerID)
			}
			if !c.CreatedAt.IsZero() && (tl.speaker.CreatedAt.IsZero() || c.CreatedAt.Before(tl.speaker.CreatedAt)) {
				tl.speaker.CreatedAt = c.CreatedAt
			}
		}
		for _, id := range seen {
			tallies[id].sum += best[id]
			tallies[id].count++
		}
	}

	var winner *Match
	for _, id := range order {
		tl := tallies[id]
		mean := tl.sum / float64(tl.count)
		if winner == nil || mean > winner.Score {
			winner = &Match{Identity: tl.speaker, Score: mean, MatchCount: tl.count}
		}
	}

	fields := map[string]interface{}{
		"embeddings":        len(embeddings),
		"identities":        len(order),
		"threshold":         t,
		logger.FieldDuration: time.Since(start).Milliseconds(),
	}
	if winner != nil {
		fields["speaker_id"] = winner.Identity.ID
		fields["score"] = winner.Score
	}
	v.log.WithContext(ctx).Debug("vote complete", fields)
	return winner, nil
}
