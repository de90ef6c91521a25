package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repos interface for driver operations
type Repos interface {
	Facts() FactRepo
}

// FactRepo persists the whole fact collection at once.
type FactRepo interface {
	// LoadAll returns every stored record ordered by Position.
	LoadAll(ctx context.Context) ([]FactRecord, error)

	// ReplaceAll swaps the stored collection for records. A failed call
	// leaves the previous collection in place.
	ReplaceAll(ctx context.Context, records []FactRecord) error
}

// FactRecord is the persisted form of one fact. Instants are kept as Unix
// nanoseconds so every backend round-trips them exactly.
type FactRecord struct {
	UUID         string `json:"uuid" bson:"uuid"`
	Position     int    `json:"position" bson:"position"`
	Term         string `json:"term" bson:"term"`
	Definition   string `json:"definition" bson:"definition"`
	Streak       int    `json:"streak" bson:"streak"`
	Penalties    int    `json:"penalties" bson:"penalties"`
	Reviews      int    `json:"reviews" bson:"reviews"`
	DueNS        *int64 `json:"due_ns,omitempty" bson:"due_ns,omitempty"`
	LastReviewNS *int64 `json:"last_review_ns,omitempty" bson:"last_review_ns,omitempty"`
	CreatedNS    int64  `json:"created_ns" bson:"created_ns"`
}

// EncodeTime maps an instant to nanoseconds; the zero instant maps to nil.
func EncodeTime(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	n := t.UnixNano()
	return &n
}

// DecodeTime is the inverse of EncodeTime. Instants come back in UTC.
func DecodeTime(n *int64) time.Time {
	if n == nil {
		return time.Time{}
	}
	return time.Unix(0, *n).UTC()
}

func cloneRecords(in []FactRecord) []FactRecord {
	out := make([]FactRecord, len(in))
	for i, r := range in {
		out[i] = r
		if r.DueNS != nil {
			v := *r.DueNS
			out[i].DueNS = &v
		}
		if r.LastReviewNS != nil {
			v := *r.LastReviewNS
			out[i].LastReviewNS = &v
		}
	}
	return out
}

// SQL repos implementation
type sqlFactRepo struct {
	d *SQLDriver
}

func (d *SQLDriver) Facts() FactRepo {
	return &sqlFactRepo{d: d}
}

func (r *sqlFactRepo) LoadAll(ctx context.Context) ([]FactRecord, error) {
	rows, err := r.d.db().QueryContext(ctx, `SELECT uuid, position, term, definition, streak, penalties, reviews,
		due_ns, last_review_ns, created_ns FROM flashgo_fact ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: load facts: %w", r.d.dialect, err)
	}
	defer rows.Close()

	var out []FactRecord
	for rows.Next() {
		var rec FactRecord
		var due, last sql.NullInt64
		if err := rows.Scan(&rec.UUID, &rec.Position, &rec.Term, &rec.Definition,
			&rec.Streak, &rec.Penalties, &rec.Reviews, &due, &last, &rec.CreatedNS); err != nil {
			return nil, fmt.Errorf("%s: scan fact: %w", r.d.dialect, err)
		}
		if due.Valid {
			rec.DueNS = &due.Int64
		}
		if last.Valid {
			rec.LastReviewNS = &last.Int64
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: load facts: %w", r.d.dialect, err)
	}
	return out, nil
}

func (r *sqlFactRepo) ReplaceAll(ctx context.Context, records []FactRecord) error {
	tx, err := r.d.db().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", r.d.dialect, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM flashgo_fact"); err != nil {
		return fmt.Errorf("%s: clear facts: %w", r.d.dialect, err)
	}

	query := fmt.Sprintf(`INSERT INTO flashgo_fact (uuid, position, term, definition, streak, penalties, reviews,
		due_ns, last_review_ns, created_ns) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		r.d.placeholder(1), r.d.placeholder(2), r.d.placeholder(3), r.d.placeholder(4), r.d.placeholder(5),
		r.d.placeholder(6), r.d.placeholder(7), r.d.placeholder(8), r.d.placeholder(9), r.d.placeholder(10))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: prepare insert: %w", r.d.dialect, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.UUID, rec.Position, rec.Term, rec.Definition,
			rec.Streak, rec.Penalties, rec.Reviews, nullInt64(rec.DueNS), nullInt64(rec.LastReviewNS),
			rec.CreatedNS); err != nil {
			return fmt.Errorf("%s: insert fact %s: %w", r.d.dialect, rec.UUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", r.d.dialect, err)
	}
	return nil
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

// MongoDB repos
//
// Each ReplaceAll writes a complete new generation of documents, then flips
// the pointer in flashgo_meta, then drops older generations. Readers follow
// the pointer, so a failure part way leaves the previous generation visible.

type mongoFactRepo struct {
	db *mongo.Database
}

type mongoFactDoc struct {
	FactRecord `bson:",inline"`
	Generation int64 `bson:"generation"`
}

const mongoMetaID = "facts"

func (d *MongoDriver) Facts() FactRepo {
	return &mongoFactRepo{db: d.db()}
}

func (r *mongoFactRepo) currentGeneration(ctx context.Context) (int64, bool, error) {
	var meta struct {
		Generation int64 `bson:"generation"`
	}
	err := r.db.Collection("flashgo_meta").FindOne(ctx, bson.M{"_id": mongoMetaID}).Decode(&meta)
	if err == mongo.ErrNoDocuments {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return meta.Generation, true, nil
}

func (r *mongoFactRepo) LoadAll(ctx context.Context) ([]FactRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	gen, ok, err := r.currentGeneration(ctx)
	if err != nil {
		return nil, fmt.Errorf("mongodb: read generation: %w", err)
	}
	if !ok {
		return nil, nil
	}

	cur, err := r.db.Collection("flashgo_fact").Find(
		ctx,
		bson.M{"generation": gen},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("mongodb: load facts: %w", err)
	}
	defer cur.Close(ctx)

	var out []FactRecord
	for cur.Next(ctx) {
		var doc mongoFactDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongodb: decode fact: %w", err)
		}
		out = append(out, doc.FactRecord)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongodb: load facts: %w", err)
	}
	return out, nil
}

func (r *mongoFactRepo) ReplaceAll(ctx context.Context, records []FactRecord) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	gen, err := nextSeq(ctx, r.db, "flashgo_fact_generation")
	if err != nil {
		return fmt.Errorf("mongodb: next generation: %w", err)
	}

	coll := r.db.Collection("flashgo_fact")
	if len(records) > 0 {
		docs := make([]any, len(records))
		for i, rec := range records {
			docs[i] = mongoFactDoc{FactRecord: rec, Generation: gen}
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			r.dropGeneration(ctx, gen)
			return fmt.Errorf("mongodb: insert facts: %w", err)
		}
	}

	_, err = r.db.Collection("flashgo_meta").UpdateOne(
		ctx,
		bson.M{"_id": mongoMetaID},
		bson.M{"$set": bson.M{"generation": gen, "date_updated": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.dropGeneration(ctx, gen)
		return fmt.Errorf("mongodb: publish generation: %w", err)
	}

	// Stale generations are invisible to readers; a failed cleanup is
	// retried by the next ReplaceAll.
	_, _ = coll.DeleteMany(ctx, bson.M{"generation": bson.M{"$ne": gen}})
	return nil
}

// dropGeneration removes an unpublished generation. It runs on its own
// deadline so a write that failed by timing out still gets cleaned up.
func (r *mongoFactRepo) dropGeneration(ctx context.Context, gen int64) {
	cctx, cancel := cleanupContext(ctx)
	defer cancel()
	_, _ = r.db.Collection("flashgo_fact").DeleteMany(cctx, bson.M{"generation": gen})
}

// cleanupContext keeps the values of ctx but not its deadline or
// cancellation, and allows mongoCleanupTimeout.
func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), mongoCleanupTimeout)
}

// sequence helper for Mongo collections

func nextSeq(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	coll := db.Collection("flashgo_counters")
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
