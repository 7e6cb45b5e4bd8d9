package sqldb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quillpost/blog/internal/core/domain"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []postRow
	err := r.db.WithContext(ctx).
		Table("posts AS p").
		Select("p.id, p.title, p.body, p.author_id, p.created, u.username AS author_username").
		Joins("JOIN users u ON u.id = p.author_id").
		Order("p.created DESC, p.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]*domain.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toDomain())
	}
	return posts, nil
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec := postRecord{
		Title:    p.Title,
		Body:     p.Body,
		AuthorID: p.AuthorID,
		Created:  p.Created,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return rec.ID, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec postRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &domain.Post{
		ID:       rec.ID,
		Title:    rec.Title,
		Body:     rec.Body,
		AuthorID: rec.AuthorID,
		Created:  rec.Created.UTC(),
	}, nil
}

func (r *PostRepository) Update(ctx context.Context, id int64, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&postRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": title, "body": body})
	if res.Error != nil {
		return fmt.Errorf("update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(&postRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
