package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quillpost/blog/internal/core/domain"
)

type PostRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{db: db, col: db.Collection(postsCollection)}
}

type postDoc struct {
	ID       int64     `bson:"_id"`
	Title    string    `bson:"title"`
	Body     string    `bson:"body"`
	AuthorID int64     `bson:"author_id"`
	Created  time.Time `bson:"created"`
}

// postView is a post joined with its author by the List pipeline.
type postView struct {
	postDoc `bson:",inline"`
	Author  struct {
		Username string `bson:"username"`
	} `bson:"author"`
}

func (d postDoc) toDomain() *domain.Post {
	return &domain.Post{
		ID:       d.ID,
		Title:    d.Title,
		Body:     d.Body,
		AuthorID: d.AuthorID,
		Created:  d.Created.UTC(),
	}
}

// listPipeline sorts newest first and joins the author's username.
// $unwind drops posts whose author is missing, matching an inner join.
func listPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "author_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: "$author"}},
	}
}

func (r *PostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, listPipeline())
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var views []postView
	if err := cur.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]*domain.Post, 0, len(views))
	for _, v := range views {
		p := v.postDoc.toDomain()
		p.AuthorUsername = v.Author.Username
		posts = append(posts, p)
	}
	return posts, nil
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, postsCollection)
	if err != nil {
		return 0, err
	}
	_, err = r.col.InsertOne(ctx, postDoc{
		ID:       id,
		Title:    p.Title,
		Body:     p.Body,
		AuthorID: p.AuthorID,
		Created:  p.Created,
	})
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d postDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return d.toDomain(), nil
}

func (r *PostRepository) Update(ctx context.Context, id int64, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"title": title, "body": body}})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
