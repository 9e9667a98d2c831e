package repository

import (
	"context"
	"time"

	"memberportal/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubmissionRepo handles MongoDB operations for stored submissions
type SubmissionRepo interface {
	Create(ctx context.Context, sub *model.Submission) (string, error)
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	ListBySurvey(ctx context.Context, surveyID string, limit int64) ([]*model.Submission, error)
	CountBySurvey(ctx context.Context) ([]model.SurveyCount, error)
}

type submissionRepo struct {
	collection *mongo.Collection
}

// NewSubmissionRepo creates a new submission repository
func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{
		collection: db.Collection("submissions"),
	}
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.Submission) (string, error) {
	sub.ReceivedAt = time.Now()
	if sub.ID == "" {
		sub.ID = primitive.NewObjectID().Hex()
	}
	result, err := r.collection.InsertOne(ctx, sub)
	if err != nil {
		return "", err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return sub.ID, nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ListBySurvey(ctx context.Context, surveyID string, limit int64) ([]*model.Submission, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"surveyId": surveyID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []*model.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// CountBySurvey aggregates submission counts per survey for the admin
// dashboard.
func (r *submissionRepo) CountBySurvey(ctx context.Context) ([]model.SurveyCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$surveyId"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []model.SurveyCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
