package mongo

import (
	"context"

	"masar/driving-school/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// mongoUnitOfWork implements repository.UnitOfWork over MongoDB sessions.
// Repositories pick up the transaction automatically because collection
// operations read it off the session context passed to fn.
type mongoUnitOfWork struct {
	client *mongo.Client
}

// NewMongoUnitOfWork creates a UnitOfWork backed by client-side sessions.
// Requires the deployment to be a replica set or sharded cluster;
// standalone MongoDB does not support transactions.
func NewMongoUnitOfWork(client *mongo.Client) repository.UnitOfWork {
	return &mongoUnitOfWork{client: client}
}

// WithinTransaction runs fn inside a single MongoDB transaction. Any
// error from fn aborts the transaction and is returned as-is, so
// service-level sentinel errors survive the round trip.
func (u *mongoUnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := u.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
