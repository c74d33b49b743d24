package arcablock

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/nokduro/arcablock/utils"
)

// BlockedUser is one entry of a channel's blocked-user listing.
// Exactly one of IsArticle and IsComment is true. Records are immutable once
// parsed.
type BlockedUser struct {
	Username   string         // Username of the blocked account.
	Reason     string         // Reason as originally recorded.
	IsArticle  bool           // The block targets an article.
	IsComment  bool           // The block targets a comment.
	ArticleURL string         // Site-relative path to the blocked content.
	UnblockURL string         // Site-relative path that lifts the block.
	StartDate  time.Time      // Block start, site-local zone.
	EndDate    time.Time      // Scheduled block end, site-local zone.
	Diff       utils.DateDiff // Calendar-unit breakdown of EndDate - StartDate.
}

// PageParser turns one listing page into records plus the next-page cursor.
// Isolating the page structure here keeps the paginator testable without a
// live site.
type PageParser interface {
	Parse(r io.Reader) (users []BlockedUser, next string, err error)
}

// BlockedPageParser parses the channel's blocked-user listing HTML.
type BlockedPageParser struct {
	Location *time.Location // Location interprets the page's timestamps.
}

// NewBlockedPageParser returns a parser using the site's local timezone.
func NewBlockedPageParser() *BlockedPageParser {
	return &BlockedPageParser{Location: SiteLocation()}
}

// Parse extracts every listing item and the footer's next-page cursor.
// A malformed item is logged and skipped; the rest of the page still parses.
func (p *BlockedPageParser) Parse(r io.Reader) ([]BlockedUser, string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, "", err
	}

	var users []BlockedUser
	doc.Find(".blocked-item").Each(func(i int, sel *goquery.Selection) {
		user, err := p.parseItem(sel)
		if err != nil {
			log.Warn().Err(err).Int("Index", i).Msg("Skipping malformed blocked item.")
			return
		}
		users = append(users, user)
	})

	next := doc.Find(".pr-3 > .btn").AttrOr("href", "")

	return users, next, nil
}

func (p *BlockedPageParser) parseItem(sel *goquery.Selection) (BlockedUser, error) {
	var user BlockedUser

	// The display name is redacted for some accounts; the user-info link still
	// carries it in a data attribute.
	user.Username = strings.TrimSpace(sel.Find(".target:not(:has(.user-info))").Text())
	if user.Username == "" {
		user.Username = sel.Find(".user-info a").AttrOr("data-filter", "")
	}
	if user.Username == "" {
		return user, fmt.Errorf("username not found")
	}

	anchor := sel.Find("main > a").First()
	user.Reason = strings.TrimSpace(anchor.Text())

	href, ok := anchor.Attr("href")
	if !ok {
		return user, fmt.Errorf("target link not found")
	}
	user.ArticleURL = strings.TrimPrefix(strings.TrimSpace(href), "/")

	target, err := url.Parse(user.ArticleURL)
	if err != nil {
		return user, fmt.Errorf("bad target link %q: %v", user.ArticleURL, err)
	}
	user.IsComment = strings.HasPrefix(target.Fragment, "c_")
	user.IsArticle = !user.IsComment

	unblock, ok := sel.Find(".right > a").Attr("href")
	if !ok {
		return user, fmt.Errorf("unblock link not found")
	}
	user.UnblockURL = strings.TrimPrefix(unblock, "/")

	user.StartDate, err = p.parseTime(sel, 1)
	if err != nil {
		return user, err
	}
	user.EndDate, err = p.parseTime(sel, 2)
	if err != nil {
		return user, err
	}
	user.Diff = utils.CalendarDiff(user.StartDate, user.EndDate)

	return user, nil
}

func (p *BlockedPageParser) parseTime(sel *goquery.Selection, position int) (time.Time, error) {
	selector := fmt.Sprintf(".extendableDatetime:nth-child(%d) > time", position)
	raw, ok := sel.Find(selector).Attr("datetime")
	if !ok {
		return time.Time{}, fmt.Errorf("time element %d not found", position)
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.ParseInLocation("2006-01-02T15:04:05", raw, p.Location)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("bad datetime %q: %v", raw, err)
	}

	return parsed.In(p.Location), nil
}

// ListBlockedUsers fetches the channel's blocked-user listing across all
// pages, preserving page order. A visited-cursor set guards against
// self-referential or looping next links, including one on the very first
// page.
func ListBlockedUsers(s *Session, parser PageParser, slug string) ([]BlockedUser, error) {
	var (
		users   []BlockedUser
		cursor  string
		visited = make(map[string]bool)
	)

	path := fmt.Sprintf("b/%s/blocked", slug)

	for {
		visited[cursor] = true

		reqPath := path
		if cursor != "" {
			reqPath += "?before=" + url.QueryEscape(cursor)
		}
		log.Info().Str("Slug", slug).Str("Before", cursor).Msg("Fetching blocked user listing.")

		res, err := s.Get(reqPath)
		if err != nil {
			return users, err
		}
		page, next, err := parser.Parse(res.Body)
		res.Body.Close()
		if err != nil {
			return users, err
		}

		users = append(users, page...)

		if next == "" {
			break
		}
		if visited[next] || (cursor != "" && strings.HasSuffix(next, cursor)) {
			log.Warn().Str("Next", next).Msg("Pagination cursor repeats, stopping.")
			break
		}
		cursor = next
	}

	log.Info().Str("Slug", slug).Int("Count", len(users)).Msg("Blocked user listing fetched.")
	return users, nil
}
