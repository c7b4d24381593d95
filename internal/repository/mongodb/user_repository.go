package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"users-service/internal/domain"
	"users-service/internal/repository"
)

// userDocument decodes an ObjectId _id as its hex string.
type userDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type UserRepository struct {
	client *mongo.Client
	users  *mongo.Collection
}

func NewUserRepository(client *mongo.Client, database string) repository.UserRepository {
	return &UserRepository{
		client: client,
		users:  client.Database(database).Collection(repository.UsersCollection),
	}
}

// Init verifies the deployment is reachable. Collections are created lazily by MongoDB.
func (r *UserRepository) Init(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, bool, error) {
	return r.findOne(ctx, idFilter(id))
}

func (r *UserRepository) FindByName(ctx context.Context, name string) (*domain.User, bool, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, len(docs))
	for i := range docs {
		users[i] = docs[i].toDomain()
	}
	return users, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := userDocument{ID: user.ID, Name: user.Name}
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
		if _, err := r.users.InsertOne(ctx, doc); err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}
	} else if err := r.replace(ctx, doc); err != nil {
		return nil, err
	}

	saved := doc.toDomain()
	return &saved, nil
}

func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	if _, err := r.users.DeleteOne(ctx, idFilter(user.ID)); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// replace overwrites the document with doc.ID, inserting it when absent. A document
// stored under an ObjectId keeps that _id.
func (r *UserRepository) replace(ctx context.Context, doc userDocument) error {
	if _, err := primitive.ObjectIDFromHex(doc.ID); err != nil {
		opts := options.Replace().SetUpsert(true)
		if _, err := r.users.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
			return fmt.Errorf("replace user: %w", err)
		}
		return nil
	}

	res, err := r.users.ReplaceOne(ctx, idFilter(doc.ID), bson.M{"name": doc.Name})
	if err != nil {
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.users.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
	}
	return nil
}

// idFilter matches id stored either as a string or, for hex ids, as an ObjectId.
func idFilter(id string) bson.M {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.M{"_id": id}
	}
	return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, bool, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	user := doc.toDomain()
	return &user, true, nil
}

func (d userDocument) toDomain() domain.User {
	return domain.User{ID: d.ID, Name: d.Name}
}
