// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/olegiv/campusvoice/internal/cache"
	"github.com/olegiv/campusvoice/internal/model"
	"github.com/olegiv/campusvoice/internal/richtext"
	"github.com/olegiv/campusvoice/internal/service"
	"github.com/olegiv/campusvoice/internal/store"
)

func newPostsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List and import articles",
	}
	cmd.AddCommand(newPostsListCmd(root), newPostsImportCmd(root))
	return cmd
}

func newPostsListCmd(root *rootOptions) *cobra.Command {
	var published bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(root.dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			posts, err := store.NewPostRepository(db).List(cmd.Context(), published)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tSLUG\tSTATUS\tTITLE")
			for _, p := range posts {
				status := "draft"
				if p.Published {
					status = "published"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Slug, status, p.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&published, "published", false, "Only list published articles")
	return cmd
}

type importOptions struct {
	title       string
	slug        string
	excerpt     string
	publish     bool
	authorEmail string
	redisURL    string
	cachePrefix string
}

// staleCacheNote is printed when an import cannot reach the server's cache.
const staleCacheNote = "note: no shared cache configured (--redis-url / CV_REDIS_URL); " +
	"a running server may show its cached article list for up to CV_CACHE_TTL seconds\n"

// importCache returns the server's Redis cache so the import invalidates
// the public reads it holds. Without Redis the server's cache lives in its
// own process and nil is returned.
func importCache(cmd *cobra.Command, opts importOptions) (cache.Cache, error) {
	if opts.redisURL == "" {
		if opts.publish {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), staleCacheNote)
		}
		return nil, nil
	}
	c, err := cache.New(cmd.Context(), cache.Config{RedisURL: opts.redisURL, Prefix: opts.cachePrefix})
	if err != nil {
		return nil, fmt.Errorf("connecting to cache %s: %w", cache.SanitizeRedisURL(opts.redisURL), err)
	}
	return c, nil
}

func newPostsImportCmd(root *rootOptions) *cobra.Command {
	opts := importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file.md>",
		Short: "Import a Markdown file as an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.authorEmail == "" {
				return errors.New("--author-email is required")
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			doc, err := richtext.FromMarkdown(src)
			if err != nil {
				return err
			}

			db, err := openDB(root.dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			row, err := store.New(db).GetUserByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(opts.authorEmail)))
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("no user with email %s", opts.authorEmail)
			}
			if err != nil {
				return err
			}
			author := store.UserModel(row)

			shared, err := importCache(cmd, opts)
			if err != nil {
				return err
			}
			if shared != nil {
				defer func() { _ = shared.Close() }()
			}
			posts := service.NewPostService(store.NewPostRepository(db), service.PostServiceOptions{Cache: shared})
			fields := model.PostFields{
				Title:   opts.title,
				Slug:    opts.slug,
				Excerpt: opts.excerpt,
				Content: richtext.Serialize(doc),
			}

			var post model.Post
			if opts.publish {
				post, err = posts.Publish(cmd.Context(), author, fields)
			} else {
				post, err = posts.Save(cmd.Context(), author, fields)
			}
			if err != nil {
				return err
			}

			status := "draft"
			if post.Published {
				status = "published"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %q as /posts/%s (%s)\n", post.Title, post.Slug, status)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.title, "title", "", "Article title (required)")
	cmd.Flags().StringVar(&opts.slug, "slug", "", "URL slug, derived from the title when empty")
	cmd.Flags().StringVar(&opts.excerpt, "excerpt", "", "Short summary shown on the home page")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Publish immediately")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", os.Getenv("CV_REDIS_URL"), "Server cache to invalidate (CV_REDIS_URL)")
	cmd.Flags().StringVar(&opts.cachePrefix, "cache-prefix", envOr("CV_CACHE_PREFIX", "campusvoice:"), "Server cache key prefix (CV_CACHE_PREFIX)")
	cmd.Flags().StringVar(&opts.authorEmail, "author-email", "", "Email of the authoring admin (required)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
