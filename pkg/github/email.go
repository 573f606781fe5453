package github

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// patchFromPattern extracts the address from the "From:" header of a raw
// commit patch.
var patchFromPattern = regexp.MustCompile(`(?m)^From:.*<([^>]+)>`)

// isValidEmail reports whether s looks like a real, usable address: has an
// "@", is at least 5 characters, and is not a GitHub-generated placeholder.
func isValidEmail(s string) bool {
	if len(s) < 5 || !strings.Contains(s, "@") {
		return false
	}
	if strings.Contains(s, "noreply") || strings.HasSuffix(s, "@users.noreply.github.com") {
		return false
	}
	return true
}

// FindEmail tries an ordered sequence of heuristics to recover a real email
// address for login, stopping at the first candidate that passes validation:
//
//  1. public profile email
//  2. recent commits in repoHint (author then committer attribution),
//     structured emails first, then the raw patch text
//  3. global commit search scoped to author:<login>
//  4. the public event feed's push-event commit authors
//  5. the user's own repositories (sources before forks), scanned like 2
//
// Individual strategy failures are swallowed; exhausting every strategy
// returns ("", nil), a normal outcome. Only a failure of the opening profile
// call (quota guard, cancellation) surfaces as an error, so callers can keep
// "not found" and "error" apart.
func (c *Client) FindEmail(ctx context.Context, login, repoHint string) (string, error) {
	// Strategy 1: profile.
	profile, err := c.User(ctx, login)
	switch {
	case err == nil:
		if isValidEmail(profile.Email) {
			return profile.Email, nil
		}
	case IsGuard(err) || ctx.Err() != nil:
		return "", err
	}

	// Strategy 2: the repository they contributed to.
	if repoHint != "" {
		if email := c.scanRepoCommits(ctx, repoHint, login); email != "" {
			return email, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Strategy 3: global commit search.
	if email := c.searchCommitEmail(ctx, login); email != "" {
		return email, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Strategy 4: public event feed.
	if email := c.eventsEmail(ctx, login); email != "" {
		return email, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Strategy 5: their own repositories.
	if email := c.ownReposEmail(ctx, login); email != "" {
		return email, nil
	}
	return "", ctx.Err()
}

type commitRecord struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Email string `json:"email"`
		} `json:"author"`
		Committer struct {
			Email string `json:"email"`
		} `json:"committer"`
	} `json:"commit"`
}

// scanRepoCommits inspects a repository's most recent commits attributed to
// login, in both attribution roles, checking structured emails before
// falling back to the raw patch text.
func (c *Client) scanRepoCommits(ctx context.Context, repoFullName, login string) string {
	for _, role := range []string{"author", "committer"} {
		path := fmt.Sprintf("/repos/%s/commits?%s=%s&per_page=5",
			repoFullName, role, url.QueryEscape(login))

		var commits []commitRecord
		if err := c.get(ctx, path, &commits); err != nil {
			continue
		}

		for _, commit := range commits {
			if email := commit.Commit.Author.Email; isValidEmail(email) {
				return email
			}
			if email := commit.Commit.Committer.Email; isValidEmail(email) {
				return email
			}
			if email := c.patchEmail(ctx, repoFullName, commit.SHA); email != "" {
				return email
			}
		}
	}
	return ""
}

// patchEmail fetches a commit's raw patch and extracts the From: address.
func (c *Client) patchEmail(ctx context.Context, repoFullName, sha string) string {
	text, err := c.RawText(ctx, fmt.Sprintf("/%s/commit/%s.patch", repoFullName, sha))
	if err != nil {
		return ""
	}
	if m := patchFromPattern.FindStringSubmatch(text); m != nil && isValidEmail(m[1]) {
		return m[1]
	}
	return ""
}

// searchCommitEmail runs a commit search scoped to the login as author and
// inspects the structured emails of each hit.
func (c *Client) searchCommitEmail(ctx context.Context, login string) string {
	path := "/search/commits?q=" + url.QueryEscape("author:"+login) + "&per_page=5"

	var result struct {
		Items []commitRecord `json:"items"`
	}
	if err := c.get(ctx, path, &result); err != nil {
		return ""
	}

	for _, item := range result.Items {
		if email := item.Commit.Author.Email; isValidEmail(email) {
			return email
		}
		if email := item.Commit.Committer.Email; isValidEmail(email) {
			return email
		}
	}
	return ""
}

// eventsEmail scans the user's public push events for embedded commit
// author emails.
func (c *Client) eventsEmail(ctx context.Context, login string) string {
	path := "/users/" + url.QueryEscape(login) + "/events/public?per_page=30"

	var events []struct {
		Type    string `json:"type"`
		Payload struct {
			Commits []struct {
				Author struct {
					Email string `json:"email"`
				} `json:"author"`
			} `json:"commits"`
		} `json:"payload"`
	}
	if err := c.get(ctx, path, &events); err != nil {
		return ""
	}

	for _, event := range events {
		if event.Type != "PushEvent" {
			continue
		}
		for _, commit := range event.Payload.Commits {
			if isValidEmail(commit.Author.Email) {
				return commit.Author.Email
			}
		}
	}
	return ""
}

// ownReposEmail scans the user's own repositories, sources before forks,
// applying the same per-repository commit scan.
func (c *Client) ownReposEmail(ctx context.Context, login string) string {
	path := "/users/" + url.QueryEscape(login) + "/repos?sort=updated&per_page=5"

	var repos []struct {
		FullName string `json:"full_name"`
		Fork     bool   `json:"fork"`
	}
	if err := c.get(ctx, path, &repos); err != nil {
		return ""
	}

	// Forks carry upstream history, so original repos go first.
	sort.SliceStable(repos, func(i, j int) bool {
		return !repos[i].Fork && repos[j].Fork
	})

	for _, repo := range repos {
		if email := c.scanRepoCommits(ctx, repo.FullName, login); email != "" {
			return email
		}
	}
	return ""
}
