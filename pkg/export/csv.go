// Package export turns extraction results into downloadable formats.
package export

import (
	"strconv"
	"strings"

	"github.com/contriblens/contriblens/pkg/github"
)

// csvHeader is the fixed column order of contributor exports.
const csvHeader = "Repository,Username,Full Name,Email,Profile URL,Contributions,Type,Company,Twitter,Blog,Location,Bio"

// ContributorsCSV renders contributors as CSV, one row per contributor.
// Every field except Contributions is quoted unconditionally with embedded
// quotes doubled, so the output is stable regardless of field content.
//
// The stdlib csv writer quotes only when needed; the unconditional quoting
// here is the documented export format, hence the hand-rolled rows.
func ContributorsCSV(contributors []github.Contributor, repoFullName string) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')

	for i, c := range contributors {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeRow(&b, c, repoFullName)
	}
	return b.String()
}

func writeRow(b *strings.Builder, c github.Contributor, repoFullName string) {
	accountType := "User"
	if c.IsAnonymous {
		accountType = "Anonymous"
	}

	fields := []string{
		quote(repoFullName),
		quote(c.Login),
		quote(c.Name),
		quote(emailCell(c)),
		quote(c.HTMLURL),
		strconv.Itoa(c.Contributions),
		quote(accountType),
		quote(c.Company),
		quote(twitterCell(c)),
		quote(c.Blog),
		quote(c.Location),
		quote(c.Bio),
	}
	b.WriteString(strings.Join(fields, ","))
}

// emailCell maps the four email states to their export representation:
// unknown is blank, a found address is printed verbatim, and the two
// attempted-but-empty outcomes stay distinguishable.
func emailCell(c github.Contributor) string {
	switch {
	case c.Email != "":
		return c.Email
	case c.EmailStatus == github.EmailNotFound:
		return "not found"
	case c.EmailStatus == github.EmailError:
		return "error"
	default:
		return ""
	}
}

// twitterCell prefers the legacy twitter_username field, falling back to the
// first linked social account.
func twitterCell(c github.Contributor) string {
	if c.TwitterUsername != "" {
		return "https://twitter.com/" + c.TwitterUsername
	}
	if len(c.SocialAccounts) > 0 {
		return c.SocialAccounts[0].URL
	}
	return ""
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
