// Package store provides the MongoDB document-store boundary for regwatchd.
//
// Two databases back the service: the regwatch store holds regulations and
// pre-assessments, the ecosystem store holds company records. Consumers
// depend on the Collection interface, not on the driver, so tests can run
// against hand-written fakes.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a filter matches no document.
var ErrNotFound = errors.New("store: document not found")

// Collection is the read/insert surface the services use.
//
// Implementations must be safe for concurrent use by multiple in-flight
// requests.
type Collection interface {
	// FindOne returns the first document matching filter, or ErrNotFound.
	FindOne(ctx context.Context, filter any) (Document, error)
	// Find returns all documents matching filter in store order.
	Find(ctx context.Context, filter any) ([]Document, error)
	// InsertOne inserts doc and returns the inserted id in textual form.
	InsertOne(ctx context.Context, doc any) (string, error)
}

// Config holds connection settings for both stores.
type Config struct {
	RegwatchURI       string
	EcosystemURI      string
	RegwatchDatabase  string
	EcosystemDatabase string
}

// Collection names, fixed by the upstream data platform.
const (
	companiesCollection      = "ecosystemcompanies"
	regulationsCollection    = "regulation_v3"
	preAssessmentsCollection = "pre-assessments"
)

// Store owns the MongoDB clients for the regwatch and ecosystem databases.
type Store struct {
	regwatch    *mongo.Client
	ecosystem   *mongo.Client
	regwatchDB  *mongo.Database
	ecosystemDB *mongo.Database
}

// Connect establishes and pings both database connections.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)

	regwatch, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.RegwatchURI).
		SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("connecting to regwatch store: %w", err)
	}

	ecosystem, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.EcosystemURI).
		SetServerAPIOptions(serverAPI))
	if err != nil {
		_ = regwatch.Disconnect(ctx)
		return nil, fmt.Errorf("connecting to ecosystem store: %w", err)
	}

	if err := regwatch.Ping(ctx, nil); err != nil {
		_ = regwatch.Disconnect(ctx)
		_ = ecosystem.Disconnect(ctx)
		return nil, fmt.Errorf("pinging regwatch store: %w", err)
	}
	if err := ecosystem.Ping(ctx, nil); err != nil {
		_ = regwatch.Disconnect(ctx)
		_ = ecosystem.Disconnect(ctx)
		return nil, fmt.Errorf("pinging ecosystem store: %w", err)
	}

	return &Store{
		regwatch:    regwatch,
		ecosystem:   ecosystem,
		regwatchDB:  regwatch.Database(cfg.RegwatchDatabase),
		ecosystemDB: ecosystem.Database(cfg.EcosystemDatabase),
	}, nil
}

// Close disconnects both clients.
func (s *Store) Close(ctx context.Context) error {
	var errs []error
	if err := s.regwatch.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("disconnecting regwatch store: %w", err))
	}
	if err := s.ecosystem.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("disconnecting ecosystem store: %w", err))
	}
	return errors.Join(errs...)
}

// Companies returns the ecosystem companies collection.
func (s *Store) Companies() Collection {
	return mongoCollection{s.ecosystemDB.Collection(companiesCollection)}
}

// Regulations returns the regulation collection.
func (s *Store) Regulations() Collection {
	return mongoCollection{s.regwatchDB.Collection(regulationsCollection)}
}

// PreAssessments returns the pre-assessments collection.
func (s *Store) PreAssessments() Collection {
	return mongoCollection{s.regwatchDB.Collection(preAssessmentsCollection)}
}

// mongoCollection adapts *mongo.Collection to the Collection interface.
type mongoCollection struct {
	coll *mongo.Collection
}

func (c mongoCollection) FindOne(ctx context.Context, filter any) (Document, error) {
	var doc Document
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", c.coll.Name(), err)
	}
	return doc, nil
}

func (c mongoCollection) Find(ctx context.Context, filter any) ([]Document, error) {
	cursor, err := c.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}
	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding results from %s: %w", c.coll.Name(), err)
	}
	return docs, nil
}

func (c mongoCollection) InsertOne(ctx context.Context, doc any) (string, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}
