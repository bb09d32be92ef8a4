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

const trainerCollectionName = "trainers"

// mongoTrainerRepository implements repository.TrainerRepository using MongoDB.
type mongoTrainerRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainerRepository creates a new instance of mongoTrainerRepository.
func NewMongoTrainerRepository(db *mongo.Database) repository.TrainerRepository {
	return &mongoTrainerRepository{
		collection: db.Collection(trainerCollectionName),
	}
}

// Create inserts a new trainer profile.
func (r *mongoTrainerRepository) Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	if trainer.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("trainer user reference is required")
	}

	trainer.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	trainer.CreatedAt = now
	trainer.UpdatedAt = now
	if trainer.Status == "" {
		trainer.Status = domain.TrainerPending
	}
	if trainer.AssignedTrainees == nil {
		trainer.AssignedTrainees = []primitive.ObjectID{}
	}
	if trainer.Availability == nil {
		trainer.Availability = []domain.DayAvailability{}
	}

	result, err := r.collection.InsertOne(ctx, trainer)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a trainer profile by its ObjectID.
func (r *mongoTrainerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	var trainer domain.Trainer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

// GetByUserID retrieves the trainer profile owned by a user account.
func (r *mongoTrainerRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error) {
	var trainer domain.Trainer
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

// List returns trainer profiles, optionally filtered by lifecycle status.
func (r *mongoTrainerRepository) List(ctx context.Context, status *domain.TrainerStatus) ([]domain.Trainer, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trainers []domain.Trainer
	if err = cursor.All(ctx, &trainers); err != nil {
		return nil, err
	}
	return trainers, nil
}

// Update replaces the mutable fields of a trainer document.
func (r *mongoTrainerRepository) Update(ctx context.Context, trainer *domain.Trainer) error {
	trainer.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": trainer.ID}
	update := bson.M{"$set": bson.M{
		"status":          trainer.Status,
		"hasVehicle":      trainer.HasVehicle,
		"vehicleType":     trainer.VehicleType,
		"vehicleModel":    trainer.VehicleModel,
		"vehicleYear":     trainer.VehicleYear,
		"rating":          trainer.Rating,
		"totalReviews":    trainer.TotalReviews,
		"specializations": trainer.Specializations,
		"availability":    trainer.Availability,
		"profileImage":    trainer.ProfileImage,
		"vehicleImage":    trainer.VehicleImage,
		"updatedAt":       trainer.UpdatedAt,
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

// AddAssignedTrainee adds a trainee's ID to the trainer's assignedTrainees
// array. $addToSet prevents duplicates.
func (r *mongoTrainerRepository) AddAssignedTrainee(ctx context.Context, trainerID, traineeID primitive.ObjectID) error {
	filter := bson.M{"_id": trainerID}
	update := bson.M{
		"$addToSet": bson.M{"assignedTrainees": traineeID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	// ModifiedCount may be 0 when the trainee was already in the set; fine.
	return nil
}

// RemoveAssignedTrainee pulls a trainee's ID from the trainer's
// assignedTrainees array.
func (r *mongoTrainerRepository) RemoveAssignedTrainee(ctx context.Context, trainerID, traineeID primitive.ObjectID) error {
	filter := bson.M{"_id": trainerID}
	update := bson.M{
		"$pull": bson.M{"assignedTrainees": traineeID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByUserID removes the trainer profile owned by the given user.
// A missing profile reports ErrNotFound.
func (r *mongoTrainerRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTrainerIndexes creates necessary indexes for the trainers collection.
func EnsureTrainerIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal for startup
	}
}
