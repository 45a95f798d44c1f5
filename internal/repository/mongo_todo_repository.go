package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yukikurage/todo-tracker/internal/models"
)

// todoDocument is the stored BSON shape of a todo. Identifiers are ObjectIDs
// in the collection and their hex form everywhere else.
type todoDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	Priority  string             `bson:"priority"`
	DueDate   *time.Time         `bson:"dueDate"`
	Category  string             `bson:"category"`
}

func (d todoDocument) toModel() models.Todo {
	return models.Todo{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		Completed: d.Completed,
		Priority:  models.Priority(d.Priority),
		DueDate:   d.DueDate,
		Category:  d.Category,
		CreatedAt: d.ID.Timestamp(),
	}
}

func newTodoDocument(id primitive.ObjectID, todo *models.Todo) todoDocument {
	return todoDocument{
		ID:        id,
		Text:      todo.Text,
		Completed: todo.Completed,
		Priority:  string(todo.Priority),
		DueDate:   todo.DueDate,
		Category:  todo.Category,
	}
}

// MongoTodoRepository stores todos in a MongoDB collection
type MongoTodoRepository struct {
	coll *mongo.Collection
}

// NewMongoTodoRepository creates a new TodoRepository backed by a collection
func NewMongoTodoRepository(coll *mongo.Collection) TodoRepository {
	return &MongoTodoRepository{coll: coll}
}

// List retrieves all todos in natural collection order
func (r *MongoTodoRepository) List(ctx context.Context) ([]models.Todo, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var docs []todoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	todos := make([]models.Todo, 0, len(docs))
	for _, doc := range docs {
		todos = append(todos, doc.toModel())
	}
	return todos, nil
}

// FindByID finds a todo by its hex identifier
func (r *MongoTodoRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc todoDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	todo := doc.toModel()
	return &todo, nil
}

// Create inserts a new document with a fresh ObjectID
func (r *MongoTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	if err := todo.Validate(); err != nil {
		return err
	}

	oid := primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, newTodoDocument(oid, todo)); err != nil {
		return err
	}

	todo.ID = oid.Hex()
	todo.CreatedAt = oid.Timestamp()
	return nil
}

// Update applies a $set of the patched fields and returns the document as
// stored afterwards
func (r *MongoTodoRepository) Update(ctx context.Context, id string, patch TodoPatch) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.D{{Key: "$set", Value: patchFields(patch)}}

	var doc todoDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	todo := doc.toModel()
	return &todo, nil
}

func patchFields(patch TodoPatch) bson.D {
	var set bson.D
	if patch.Text != nil {
		set = append(set, bson.E{Key: "text", Value: *patch.Text})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}
	if patch.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: string(*patch.Priority)})
	}
	if patch.ClearDueDate {
		set = append(set, bson.E{Key: "dueDate", Value: nil})
	} else if patch.DueDate != nil {
		set = append(set, bson.E{Key: "dueDate", Value: *patch.DueDate})
	}
	if patch.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *patch.Category})
	}
	return set
}

// Delete removes the document with the given identifier
func (r *MongoTodoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
