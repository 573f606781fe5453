package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/contriblens/contriblens/pkg/cache"
)

type searchReposResponse struct {
	TotalCount int    `json:"total_count"`
	Items      []Repo `json:"items"`
}

// SearchRepos searches repositories by query, most-starred first.
// Results are cached so repeated searches don't burn quota.
func (c *Client) SearchRepos(ctx context.Context, query string, perPage int) ([]Repo, error) {
	if perPage <= 0 {
		perPage = 10
	}
	key := cache.Key("search", query, perPage)

	var result searchReposResponse
	err := c.cached(ctx, key, cache.SearchTTL, &result, func() error {
		path := fmt.Sprintf("/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
			url.QueryEscape(query), perPage)
		return c.get(ctx, path, &result)
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}
