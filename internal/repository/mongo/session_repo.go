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

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository using MongoDB.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new instance of mongoSessionRepository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.BookingID == primitive.NilObjectID || session.TraineeID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session booking and trainee references are required")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = domain.SessionScheduled
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a session by its ObjectID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListByBooking returns every session generated for a booking, in
// sessionOrder.
func (r *mongoSessionRepository) ListByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]domain.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sessionOrder", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"booking": bookingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// List returns sessions matching the filter, ordered by scheduled date
// then start time.
func (r *mongoSessionRepository) List(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error) {
	query := bson.M{}
	if filter.TrainerID != nil {
		query["trainer"] = *filter.TrainerID
	}
	if filter.TraineeID != nil {
		query["trainee"] = *filter.TraineeID
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Date != nil {
		day := filter.Date.UTC().Truncate(24 * time.Hour)
		query["scheduledDate"] = bson.M{
			"$gte": day,
			"$lt":  day.Add(24 * time.Hour),
		}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "scheduledDate", Value: 1},
		{Key: "startTime", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update replaces the mutable fields of a session document.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	session.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": session.ID}
	update := bson.M{"$set": bson.M{
		"trainer":          session.TrainerID,
		"scheduledDate":    session.ScheduledDate,
		"startTime":        session.StartTime,
		"endTime":          session.EndTime,
		"status":           session.Status,
		"actualStartTime":  session.ActualStartTime,
		"actualEndTime":    session.ActualEndTime,
		"notes":            session.Notes,
		"feedback":         session.Feedback,
		"isRescheduled":    session.IsRescheduled,
		"previousSchedule": session.PreviousSchedule,
		"updatedAt":        session.UpdatedAt,
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

// Delete physically removes a session document.
func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateStatusByBooking force-transitions every session on the booking
// currently in one of the from statuses. Used by the booking
// cancellation cascade.
func (r *mongoSessionRepository) UpdateStatusByBooking(ctx context.Context, bookingID primitive.ObjectID, from []domain.SessionStatus, to domain.SessionStatus) error {
	filter := bson.M{
		"booking": bookingID,
		"status":  bson.M{"$in": from},
	}
	update := bson.M{"$set": bson.M{
		"status":    to,
		"updatedAt": time.Now().UTC(),
	}}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// ReassignTrainerByBooking retargets every session on the booking in one
// of the given statuses to a new trainer. Used by approved
// trainer-change requests.
func (r *mongoSessionRepository) ReassignTrainerByBooking(ctx context.Context, bookingID primitive.ObjectID, statuses []domain.SessionStatus, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"booking": bookingID,
		"status":  bson.M{"$in": statuses},
	}
	update := bson.M{"$set": bson.M{
		"trainer":   trainerID,
		"updatedAt": time.Now().UTC(),
	}}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "booking", Value: 1}, {Key: "sessionOrder", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainer", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainee", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal for startup
	}
}
