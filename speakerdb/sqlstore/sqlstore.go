// Package sqlstore is a speakerdb.Store on a relational database through
// gorm. Vectors are stored as JSON text and Search is a brute-force cosine
// scan, which is adequate for registries of a few thousand embeddings.
package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbukum/speakerkit/database"
	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/speakerdb"
)

// BackendName is the registry name of this backend.
const BackendName = "sql"

// EmbeddingRecord is one stored embedding.
type EmbeddingRecord struct {
	ID          string           `gorm:"primaryKey;size:36"`
	SpeakerID   string           `gorm:"size:36;not null;index"`
	SpeakerName string           `gorm:"not null;index"`
	AudioSource string           `gorm:"size:512"`
	Vector      embedding.Vector `gorm:"serializer:json;type:text;not null"`
	CreatedAt   time.Time        `gorm:"not null;index"`
}

// TableName pins the table name.
func (EmbeddingRecord) TableName() string { return "speaker_embeddings" }

// BeforeCreate generates a UUID if not already set.
func (r *EmbeddingRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r EmbeddingRecord) point() speakerdb.Point {
	return speakerdb.Point{
		SpeakerID:   r.SpeakerID,
		SpeakerName: r.SpeakerName,
		AudioSource: r.AudioSource,
		CreatedAt:   r.CreatedAt,
		Vector:      r.Vector,
	}
}

// Store implements speakerdb.Store.
type Store struct {
	db  *database.DB
	now func() time.Time
}

var _ speakerdb.Store = (*Store)(nil)

// New creates a store on db. Init migrates the schema.
func New(db *database.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Init creates or updates the embeddings table.
func (s *Store) Init(_ context.Context) error {
	return s.db.AutoMigrate(&EmbeddingRecord{})
}

// Name returns the backend name.
func (s *Store) Name() string { return BackendName }

// IsAvailable reports whether the database answers.
func (s *Store) IsAvailable(ctx context.Context) bool { return s.Ping(ctx) == nil }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return database.FromDatabase(err, "speaker store", "")
	}
	return nil
}

// Search ranks every stored embedding against vector.
func (s *Store) Search(ctx context.Context, vector embedding.Vector, topK int, threshold float64) ([]speakerdb.Candidate, error) {
	points, err := s.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	return speakerdb.Rank(vector, points, topK, threshold), nil
}

// Append inserts the vectors in one transaction.
func (s *Store) Append(ctx context.Context, req speakerdb.AppendRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	id, name := req.SpeakerID, req.Name
	created := s.now().UTC()

	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if id == "" {
			id = uuid.NewString()
		} else {
			var existing EmbeddingRecord
			if err := tx.Where("speaker_id = ?", id).Take(&existing).Error; err != nil {
				return database.FromDatabase(err, "speaker", id)
			}
			name = existing.SpeakerName
		}

		records := make([]EmbeddingRecord, len(req.Vectors))
		for i, v := range req.Vectors {
			records[i] = EmbeddingRecord{
				SpeakerID:   id,
				SpeakerName: name,
				AudioSource: req.AudioSource,
				Vector:      v,
				CreatedAt:   created,
			}
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return "", database.FromDatabase(err, "speaker", id)
	}
	return id, nil
}

// List returns every identity ordered by registration.
func (s *Store) List(ctx context.Context) ([]speakerdb.Speaker, error) {
	points, err := s.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	speakers := speakerdb.Summarize(points)
	if speakers == nil {
		speakers = []speakerdb.Speaker{}
	}
	return speakers, nil
}

// Get returns one identity.
func (s *Store) Get(ctx context.Context, id string) (*speakerdb.Speaker, error) {
	points, err := s.load(ctx, func(q *gorm.DB) *gorm.DB { return q.Where("speaker_id = ?", id) })
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, speakerdb.NotFound(id)
	}
	sp := speakerdb.Summarize(points)[0]
	return &sp, nil
}

// Delete removes every embedding of the identity.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("speaker_id = ?", id).Delete(&EmbeddingRecord{})
	if res.Error != nil {
		return database.FromDatabase(res.Error, "speaker", id)
	}
	if res.RowsAffected == 0 {
		return speakerdb.NotFound(id)
	}
	return nil
}

// Stats counts rows and distinct identities.
func (s *Store) Stats(ctx context.Context) (*speakerdb.Stats, error) {
	var points, speakers int64
	q := s.db.WithContext(ctx).Model(&EmbeddingRecord{})
	if err := q.Count(&points).Error; err != nil {
		return nil, database.FromDatabase(err, "speaker store", "")
	}
	if err := s.db.WithContext(ctx).Model(&EmbeddingRecord{}).Distinct("speaker_id").Count(&speakers).Error; err != nil {
		return nil, database.FromDatabase(err, "speaker store", "")
	}
	return &speakerdb.Stats{
		Backend:    BackendName,
		Collection: EmbeddingRecord{}.TableName(),
		Points:     int(points),
		Speakers:   int(speakers),
		Status:     "green",
	}, nil
}

func (s *Store) load(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]speakerdb.Point, error) {
	q := s.db.WithContext(ctx).Order("created_at ASC").Order("rowid ASC")
	if scope != nil {
		q = scope(q)
	}
	var records []EmbeddingRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, database.FromDatabase(err, "speaker store", "")
	}
	points := make([]speakerdb.Point, len(records))
	for i, r := range records {
		points[i] = r.point()
	}
	return points, nil
}
