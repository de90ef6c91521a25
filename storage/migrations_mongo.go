package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoMigrateTimeout = 30 * time.Second
	mongoOpTimeout      = 10 * time.Second
	mongoCleanupTimeout = 5 * time.Second
	mongoSchemaVersion  = 1
)

type mongoMigrationOp struct {
	Collection string
	Index      mongo.IndexModel
}

var mongoMigrations = map[int][]mongoMigrationOp{
	1: {
		{"flashgo_schema_version", mongo.IndexModel{
			Keys:    bson.D{{Key: "num", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"flashgo_fact", mongo.IndexModel{
			Keys:    bson.D{{Key: "generation", Value: 1}, {Key: "uuid", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"flashgo_fact", mongo.IndexModel{
			Keys:    bson.D{{Key: "generation", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetName("idx_flashgo_fact_generation_position"),
		}},
	},
}

func (d *MongoDriver) migrateMongo(ctx context.Context) error {
	currentVersion := d.getSchemaVersion(ctx)
	if currentVersion >= mongoSchemaVersion {
		return nil
	}

	for v := currentVersion + 1; v <= mongoSchemaVersion; v++ {
		ops, ok := mongoMigrations[v]
		if !ok {
			continue
		}

		for _, op := range ops {
			coll := d.db().Collection(op.Collection)
			_, err := coll.Indexes().CreateOne(ctx, op.Index)
			if err != nil {
				// Ignore duplicate index errors
				if !mongo.IsDuplicateKeyError(err) {
					return err
				}
			}
		}

		svColl := d.db().Collection("flashgo_schema_version")
		_, err := svColl.ReplaceOne(
			ctx,
			bson.M{"num": currentVersion},
			bson.M{"num": v},
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return err
		}
		currentVersion = v
	}

	return nil
}

func (d *MongoDriver) getSchemaVersion(ctx context.Context) int {
	svColl := d.db().Collection("flashgo_schema_version")
	var doc struct {
		Num int `bson:"num"`
	}
	err := svColl.FindOne(ctx, bson.M{}).Decode(&doc)
	if err != nil {
		return 0
	}
	return doc.Num
}
