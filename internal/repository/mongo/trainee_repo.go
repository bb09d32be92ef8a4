package mongo

import (
	"context"
	"errors"
	"time"

	"masar/driving-school/internal/domain"
	"masar/driving-school/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const traineeCollectionName = "trainees"

// mongoTraineeRepository implements repository.TraineeRepository using MongoDB.
type mongoTraineeRepository struct {
	collection *mongo.Collection
}

// NewMongoTraineeRepository creates a new instance of mongoTraineeRepository.
func NewMongoTraineeRepository(db *mongo.Database) repository.TraineeRepository {
	return &mongoTraineeRepository{
		collection: db.Collection(traineeCollectionName),
	}
}

// Create inserts a new trainee profile.
func (r *mongoTraineeRepository) Create(ctx context.Context, trainee *domain.Trainee) (primitive.ObjectID, error) {
	if trainee.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("trainee user reference is required")
	}

	trainee.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	trainee.CreatedAt = now
	trainee.UpdatedAt = now
	if trainee.ActivePlans == nil {
		trainee.ActivePlans = []domain.PlanProgress{}
	}
	if trainee.PreviousTrainers == nil {
		trainee.PreviousTrainers = []domain.TrainerHistoryEntry{}
	}
	if trainee.PreferredLanguage == "" {
		trainee.PreferredLanguage = domain.LanguageEnglish
	}

	result, err := r.collection.InsertOne(ctx, trainee)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a trainee profile by its ObjectID.
func (r *mongoTraineeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainee, error) {
	var trainee domain.Trainee
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trainee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainee, nil
}

// GetByUserID retrieves the trainee profile owned by a user account.
func (r *mongoTraineeRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainee, error) {
	var trainee domain.Trainee
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&trainee)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainee, nil
}

// ListByIDs returns the trainees whose IDs are in the given set.
func (r *mongoTraineeRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Trainee, error) {
	if len(ids) == 0 {
		return []domain.Trainee{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trainees []domain.Trainee
	if err = cursor.All(ctx, &trainees); err != nil {
		return nil, err
	}
	return trainees, nil
}

// Update replaces the mutable fields of a trainee document, including the
// activePlans progress ledger and trainer history.
func (r *mongoTraineeRepository) Update(ctx context.Context, trainee *domain.Trainee) error {
	trainee.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": trainee.ID}
	update := bson.M{"$set": bson.M{
		"assignedTrainer":   trainee.AssignedTrainerID,
		"activePlans":       trainee.ActivePlans,
		"previousTrainers":  trainee.PreviousTrainers,
		"preferredLanguage": trainee.PreferredLanguage,
		"notes":             trainee.Notes,
		"updatedAt":         trainee.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByUserID removes the trainee profile owned by the given user.
// A missing profile reports ErrNotFound.
func (r *mongoTraineeRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTraineeIndexes creates necessary indexes for the trainees collection.
func EnsureTraineeIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "assignedTrainer", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal for startup
	}
}
