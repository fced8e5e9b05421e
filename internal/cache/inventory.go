package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	recentPostsPrefix  = "posts:recent:%d"
	popularPostsPrefix = "posts:popular:%d"
	categoriesKeyName  = "categories:all"
	tagsKeyName        = "tags:all"
)

const (
	PostListTTL = 1 * time.Minute
	TaxonomyTTL = 10 * time.Minute
)

func RecentPostsKey(limit int) string {
	return fmt.Sprintf(recentPostsPrefix, limit)
}

func PopularPostsKey(limit int) string {
	return fmt.Sprintf(popularPostsPrefix, limit)
}

func CategoriesKey() string {
	return categoriesKeyName
}

func TagsKey() string {
	return tagsKeyName
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePostLists drops the recent/popular listings after any post
// mutation. Keys are bounded by the handler's limit cap.
func InvalidatePostLists(ctx context.Context) {
	if client == nil {
		return
	}
	keys := make([]string, 0, 40)
	for limit := 1; limit <= 20; limit++ {
		keys = append(keys, RecentPostsKey(limit), PopularPostsKey(limit))
	}
	client.Del(ctx, keys...)
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesKey())
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagsKey())
}
