// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the publication and contact-intake workflows that
// sit between the HTTP handlers and the stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/olegiv/campusvoice/internal/cache"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/richtext"
	"github.com/olegiv/campusvoice/internal/util"
)

// ExcerptMaxLength is the longest excerpt accepted, in runes.
const ExcerptMaxLength = 500

// Cache keys for public reads.
const (
	postCachePrefix     = "posts:"
	publishedListKey    = postCachePrefix + "published"
	publishedSlugKey    = postCachePrefix + "slug:"
	confirmKindPost     = "post"
	defaultPostCacheTTL = 5 * time.Minute
)

// PostStore persists posts.
type PostStore interface {
	Create(ctx context.Context, w model.PostWrite) (model.Post, error)
	Update(ctx context.Context, id string, w model.PostWrite) (model.Post, error)
	SetPublication(ctx context.Context, id string, p model.Publication) (model.Post, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.Post, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (model.Post, error)
	List(ctx context.Context, publishedOnly bool) ([]model.Post, error)
}

// PostService drives posts between draft and published, and serves the
// cached public reads.
type PostService struct {
	store     PostStore
	list      *cache.TypedCache[[]model.Post]
	bySlug    *cache.TypedCache[model.Post]
	confirmer *Confirmer
	logger    *slog.Logger
	now       func() time.Time
}

// PostServiceOptions configures a PostService.
type PostServiceOptions struct {
	Cache    cache.Cache
	CacheTTL time.Duration
	// Confirmations holds delete tokens. It must not evict live entries,
	// so it defaults to its own unbounded memory cache.
	Confirmations cache.Cache
	Logger        *slog.Logger
}

// NewPostService returns a PostService over store.
func NewPostService(store PostStore, opts PostServiceOptions) *PostService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultPostCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: opts.CacheTTL})
	}
	if opts.Confirmations == nil {
		opts.Confirmations = NewConfirmationCache()
	}
	return &PostService{
		store:     store,
		list:      cache.NewTypedCache[[]model.Post](opts.Cache, opts.CacheTTL),
		bySlug:    cache.NewTypedCache[model.Post](opts.Cache, opts.CacheTTL),
		confirmer: NewConfirmer(opts.Confirmations),
		logger:    opts.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Save writes the author's fields without changing the post's visibility.
// An empty ID creates a draft.
func (s *PostService) Save(ctx context.Context, author model.User, f model.PostFields) (model.Post, error) {
	return s.write(ctx, author, f, nil)
}

// Publish writes the fields and marks the post published now, in one
// statement. Publishing an already published post refreshes PublishedAt.
func (s *PostService) Publish(ctx context.Context, author model.User, f model.PostFields) (model.Post, error) {
	return s.write(ctx, author, f, model.PublishedAt(s.now()))
}

// PublishByID publishes an existing post without touching its fields.
func (s *PostService) PublishByID(ctx context.Context, id string) (model.Post, error) {
	return s.setPublication(ctx, id, *model.PublishedAt(s.now()))
}

// Unpublish returns a post to draft. All other fields stay as they are.
func (s *PostService) Unpublish(ctx context.Context, id string) (model.Post, error) {
	return s.setPublication(ctx, id, *model.Unpublished())
}

// RequestDelete issues the confirmation token required by Delete.
func (s *PostService) RequestDelete(ctx context.Context, id string) (Confirmation, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return Confirmation{}, err
	}
	return s.confirmer.Issue(ctx, confirmKindPost, id)
}

// Delete removes a post. token must come from RequestDelete for the same
// post and is consumed by the attempt.
func (s *PostService) Delete(ctx context.Context, id, token string) error {
	if err := s.confirmer.Redeem(ctx, confirmKindPost, id, token); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", "category", model.EventCategoryPost, "post_id", id)
	s.invalidate(ctx)
	return nil
}

// Get returns any post, draft or published.
func (s *PostService) Get(ctx context.Context, id string) (model.Post, error) {
	return s.store.Get(ctx, id)
}

// ListAll returns every post, newest first.
func (s *PostService) ListAll(ctx context.Context) ([]model.Post, error) {
	return s.store.List(ctx, false)
}

// ListPublished returns published posts, most recently published first.
func (s *PostService) ListPublished(ctx context.Context) ([]model.Post, error) {
	posts, err := s.list.Load(ctx, publishedListKey, func() ([]model.Post, error) {
		return s.store.List(ctx, true)
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetPublished returns the published post with slug, or ErrNotFound for
// drafts and unknown slugs.
func (s *PostService) GetPublished(ctx context.Context, slug string) (model.Post, error) {
	slug = util.Slugify(slug)
	if slug == "" {
		return model.Post{}, model.ErrNotFound
	}

	key := publishedSlugKey + slug
	if p, ok := s.bySlug.Get(ctx, key); ok && p.Published {
		return p, nil
	}

	p, err := s.store.GetBySlug(ctx, slug, true)
	if err != nil {
		return model.Post{}, err
	}
	if !p.Published {
		return model.Post{}, model.ErrNotFound
	}
	if err := s.bySlug.Set(ctx, key, p); err != nil {
		s.logger.Warn("caching post failed", "category", model.EventCategoryCache, "slug", slug, "error", err)
	}
	return p, nil
}

func (s *PostService) write(ctx context.Context, author model.User, f model.PostFields, pub *model.Publication) (model.Post, error) {
	f = normalizeFields(f)
	if err := validateFields(f); err != nil {
		return model.Post{}, err
	}

	if existing, err := s.store.GetBySlug(ctx, f.Slug, false); err == nil {
		if existing.ID != f.ID {
			return model.Post{}, model.ErrSlugConflict
		}
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Post{}, err
	}

	w := model.PostWrite{
		Title:           f.Title,
		Slug:            f.Slug,
		Excerpt:         f.Excerpt,
		CoverImage:      f.CoverImage,
		Content:         f.Content,
		AuthorID:        author.ID,
		Publication:     pub,
		ExpectedVersion: f.ExpectedVersion,
	}

	var (
		post model.Post
		err  error
	)
	if f.IsNew() {
		post, err = s.store.Create(ctx, w)
	} else {
		post, err = s.store.Update(ctx, f.ID, w)
	}
	if err != nil {
		return model.Post{}, err
	}

	s.logger.Info("post saved",
		"category", model.EventCategoryPost,
		"post_id", post.ID,
		"slug", post.Slug,
		"published", post.Published,
		"version", post.Version)
	s.invalidate(ctx)
	return post, nil
}

func (s *PostService) setPublication(ctx context.Context, id string, p model.Publication) (model.Post, error) {
	post, err := s.store.SetPublication(ctx, id, p)
	if err != nil {
		return model.Post{}, err
	}
	s.logger.Info("post visibility changed",
		"category", model.EventCategoryPost,
		"post_id", id,
		"published", post.Published)
	s.invalidate(ctx)
	return post, nil
}

func (s *PostService) invalidate(ctx context.Context) {
	if err := s.list.DeleteByPrefix(ctx, postCachePrefix); err != nil {
		s.logger.Warn("invalidating post cache failed", "category", model.EventCategoryCache, "error", err)
	}
}

// normalizeFields trims the fields, normalizes the slug (deriving it from
// the title for new posts), and sanitizes the content.
func normalizeFields(f model.PostFields) model.PostFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Excerpt = strings.TrimSpace(f.Excerpt)
	f.CoverImage = strings.TrimSpace(f.CoverImage)
	f.Slug = util.Slugify(f.Slug)
	if f.Slug == "" && f.IsNew() {
		f.Slug = util.Slugify(f.Title)
	}
	f.Content = richtext.Normalize(f.Content)
	return f
}

func validateFields(f model.PostFields) error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required.Error("Please enter a title")),
		validation.Field(&f.Slug,
			validation.Required.Error("Please enter a URL slug"),
			validation.By(func(value any) error {
				if s, _ := value.(string); s != "" && !util.IsValidSlug(s) {
					return validation.NewError("validation_slug_invalid", "URL slug may only contain lowercase letters, digits, and hyphens")
				}
				return nil
			}),
		),
		validation.Field(&f.Excerpt,
			validation.RuneLength(0, ExcerptMaxLength).Error(fmt.Sprintf("Excerpt must be at most %d characters", ExcerptMaxLength)),
		),
		validation.Field(&f.CoverImage, validation.By(func(value any) error {
			if s, _ := value.(string); s != "" && !richtext.ValidImageSrc(s) {
				return validation.NewError("validation_cover_image_invalid", "Cover image must be an http(s), relative, or image data URL")
			}
			return nil
		})),
	)
}
