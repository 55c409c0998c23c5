package db

import (
	"context"
	"errors"
	"time"

	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/domain"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *taskDocument) toDomain() domain.Task {
	return domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.Status(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type mongoTaskRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
	log     *logger.Logger
}

// NewMongoTaskRepository returns a document task store. IDs are 24-character
// hex ObjectIDs.
func NewMongoTaskRepository(coll *mongo.Collection, timeout time.Duration, log *logger.Logger) ports.TaskRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &mongoTaskRepository{coll: coll, timeout: timeout, log: log}
}

// EnsureIndexes creates the listing index. It is safe to call repeatedly.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("status_createdAt"),
	})
	return err
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidTaskID
	}
	return oid, nil
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.Errorw("task_repo_create_failed", "title", task.Title, "error", err)
		return err
	}
	task.ID = doc.ID.Hex()
	r.log.Infow("task_repo_create_ok", "id", task.ID)
	return nil
}

func (r *mongoTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		r.log.Errorw("task_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	task := doc.toDomain()
	return &task, nil
}

func (r *mongoTaskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		r.log.Errorw("task_repo_list_failed", "status", filter.Status, "error", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.log.Errorw("task_repo_list_decode_failed", "error", err)
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

func (r *mongoTaskRepository) Update(ctx context.Context, id string, changes domain.TaskChanges) (*domain.Task, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Status != nil {
		set["status"] = string(*changes.Status)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		r.log.Errorw("task_repo_update_failed", "id", id, "error", err)
		return nil, err
	}
	r.log.Infow("task_repo_update_ok", "id", id, "fields", len(set))
	task := doc.toDomain()
	return &task, nil
}

func (r *mongoTaskRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Errorw("task_repo_delete_failed", "id", id, "error", err)
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	r.log.Infow("task_repo_delete_ok", "id", id)
	return nil
}
