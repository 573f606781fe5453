package github

import "time"

// Owner is the owning account of a repository.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Repo represents a repository as returned by the search endpoint.
// Identity is the numeric ID; all other fields are a snapshot at fetch time.
type Repo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Owner       Owner     `json:"owner"`
	Description string    `json:"description"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Language    string    `json:"language"`
	HTMLURL     string    `json:"html_url"`
	Fork        bool      `json:"fork"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EmailStatus tags the outcome of an email lookup for a contributor.
// "Not found" and "error" are distinct outcomes: the first means every
// strategy ran and nothing passed validation, the second means the lookup
// itself failed.
type EmailStatus string

const (
	EmailUnknown  EmailStatus = ""
	EmailFound    EmailStatus = "found"
	EmailNotFound EmailStatus = "not_found"
	EmailError    EmailStatus = "error"
)

// SocialAccount is one entry of a user's linked social accounts.
type SocialAccount struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// Contributor is one entry of a repository's contributor list, optionally
// augmented with profile fields by the enrichment pipeline.
//
// Records the API returns without a login are anonymous aggregates; they are
// normalized to Login "anonymous" with IsAnonymous set and never enriched.
type Contributor struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	HTMLURL       string `json:"html_url,omitempty"`
	Contributions int    `json:"contributions"`
	Type          string `json:"type,omitempty"`
	IsAnonymous   bool   `json:"is_anonymous,omitempty"`

	// Enrichment fields, zero until the pipeline fills them.
	Name            string          `json:"name,omitempty"`
	Bio             string          `json:"bio,omitempty"`
	Company         string          `json:"company,omitempty"`
	Blog            string          `json:"blog,omitempty"`
	TwitterUsername string          `json:"twitter_username,omitempty"`
	SocialAccounts  []SocialAccount `json:"social_accounts,omitempty"`
	Location        string          `json:"location,omitempty"`
	Email           string          `json:"email,omitempty"`
	Enriched        bool            `json:"enriched"`
	EmailStatus     EmailStatus     `json:"email_status,omitempty"`
}

// Profile is a user's public profile as returned by the users endpoint.
type Profile struct {
	Login           string          `json:"login"`
	Name            string          `json:"name"`
	Bio             string          `json:"bio"`
	Company         string          `json:"company"`
	Blog            string          `json:"blog"`
	TwitterUsername string          `json:"twitter_username"`
	SocialAccounts  []SocialAccount `json:"social_accounts"`
	Location        string          `json:"location"`
	Email           string          `json:"email"`
	HTMLURL         string          `json:"html_url"`
	AvatarURL       string          `json:"avatar_url"`
}

// OAuthToken is an OAuth access token response.
type OAuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}
