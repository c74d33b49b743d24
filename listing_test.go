package arcablock

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func listingItem(username, articleHref, unblockHref, start, end string) string {
	return fmt.Sprintf(`
		<div class="blocked-item">
			<div class="target">%s</div>
			<main><a href="%s">spam reason</a></main>
			<div class="right"><a href="%s">unblock</a></div>
			<div>
				<span class="extendableDatetime"><time datetime="%s"></time></span>
				<span class="extendableDatetime"><time datetime="%s"></time></span>
			</div>
		</div>`, username, articleHref, unblockHref, start, end)
}

func listingPage(items string, next string) string {
	footer := ""
	if next != "" {
		footer = fmt.Sprintf(`<div class="pr-3"><a class="btn" href="%s">next</a></div>`, next)
	}
	return "<html><body>" + items + footer + "</body></html>"
}

func newTestSession(t *testing.T, baseURL string) *Session {
	t.Helper()
	session, err := NewSession(baseURL, filepath.Join(t.TempDir(), "cookies.json"))
	assert.NoError(t, err, "creating a session should not fail")
	return session
}

func TestBlockedPageParserParse(t *testing.T) {
	page := listingPage(
		listingItem("articleuser", "/b/testch/12345", "/b/testch/block/del/1",
			"2023-01-01T00:00:00+09:00", "2024-01-01T00:00:00+09:00")+
			listingItem("commentuser", "/b/testch/67890#c_111", "/b/testch/block/del/2",
				"2023-01-01T00:00:00+09:00", "2023-07-01T00:00:00+09:00"),
		"",
	)

	users, next, err := NewBlockedPageParser().Parse(strings.NewReader(page))
	assert.NoError(t, err, "parsing a well-formed page should not fail")
	assert.Empty(t, next, "a page without a footer button has no cursor")
	assert.Len(t, users, 2, "both items should parse")

	article := users[0]
	assert.Equal(t, "articleuser", article.Username, "username should come from the target node")
	assert.Equal(t, "spam reason", article.Reason, "reason should come from the main anchor")
	assert.Equal(t, "b/testch/12345", article.ArticleURL, "the leading slash should be stripped")
	assert.Equal(t, "b/testch/block/del/1", article.UnblockURL, "the unblock link should be relative")
	assert.True(t, article.IsArticle, "a fragment-less target is an article block")
	assert.Equal(t, 1, article.Diff.Years, "the span should be one year")

	comment := users[1]
	assert.True(t, comment.IsComment, "a c_ fragment marks a comment block")

	for _, user := range users {
		assert.NotEqual(t, user.IsArticle, user.IsComment, "exactly one type flag should be set")
		assert.True(t, user.EndDate.After(user.StartDate), "the end date should be after the start date")
	}
}

func TestBlockedPageParserRedactedUsername(t *testing.T) {
	item := `
		<div class="blocked-item">
			<div class="target"><span class="user-info"><a data-filter="hiddenuser" href="#">redacted</a></span></div>
			<main><a href="/b/testch/555">reason</a></main>
			<div class="right"><a href="/b/testch/block/del/5">unblock</a></div>
			<div>
				<span class="extendableDatetime"><time datetime="2023-01-01T00:00:00+09:00"></time></span>
				<span class="extendableDatetime"><time datetime="2023-02-01T00:00:00+09:00"></time></span>
			</div>
		</div>`

	users, _, err := NewBlockedPageParser().Parse(strings.NewReader(listingPage(item, "")))
	assert.NoError(t, err, "parsing should not fail")
	assert.Len(t, users, 1, "the redacted item should parse")
	assert.Equal(t, "hiddenuser", users[0].Username, "the username should fall back to the data attribute")
}

func TestBlockedPageParserSkipsMalformedItem(t *testing.T) {
	// The second item has no time elements and must not poison the page.
	broken := `
		<div class="blocked-item">
			<div class="target">brokenuser</div>
			<main><a href="/b/testch/666">reason</a></main>
			<div class="right"><a href="/b/testch/block/del/6">unblock</a></div>
		</div>`
	good := listingItem("gooduser", "/b/testch/777", "/b/testch/block/del/7",
		"2023-01-01T00:00:00+09:00", "2023-02-01T00:00:00+09:00")

	users, _, err := NewBlockedPageParser().Parse(strings.NewReader(listingPage(good+broken, "")))
	assert.NoError(t, err, "a malformed item should not fail the page")
	assert.Len(t, users, 1, "only the well-formed item should survive")
	assert.Equal(t, "gooduser", users[0].Username, "the surviving item should be the well-formed one")
}

func TestListBlockedUsersPagination(t *testing.T) {
	pages := map[string]string{
		"": listingPage(listingItem("u1", "/b/testch/1", "/b/testch/block/del/1",
			"2023-01-01T00:00:00+09:00", "2023-02-01T00:00:00+09:00")+
			listingItem("u2", "/b/testch/2", "/b/testch/block/del/2",
				"2023-01-01T00:00:00+09:00", "2023-02-01T00:00:00+09:00"), "c2"),
		"c2": listingPage(listingItem("u3", "/b/testch/3", "/b/testch/block/del/3",
			"2023-01-01T00:00:00+09:00", "2023-02-01T00:00:00+09:00"), "c3"),
		"c3": listingPage(listingItem("u4", "/b/testch/4", "/b/testch/block/del/4",
			"2023-01-01T00:00:00+09:00", "2023-02-01T00:00:00+09:00"), ""),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/b/testch/blocked", r.URL.Path, "only the listing path should be fetched")
		page, ok := pages[r.URL.Query().Get("before")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	session := newTestSession(t, server.URL)
	users, err := ListBlockedUsers(session, NewBlockedPageParser(), "testch")
	assert.NoError(t, err, "pagination should complete")

	var names []string
	for _, user := range users {
		names = append(names, user.Username)
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, names, "pages should concatenate in fetch order")
}

func TestListBlockedUsersCycleGuard(t *testing.T) {
	var requests int

	item := listingItem("loopuser", "/b/testch/9", "/b/testch/block/del/9",
		"2023-01-01T00:00:00+09:00", "2023-02-01T00:00:00+09:00")

	// Every page, including the first, points at the same cursor.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, listingPage(item, "loop"))
	}))
	defer server.Close()

	session := newTestSession(t, server.URL)
	users, err := ListBlockedUsers(session, NewBlockedPageParser(), "testch")
	assert.NoError(t, err, "a self-referential cursor should terminate cleanly")
	assert.Equal(t, 2, requests, "the repeated cursor should be fetched once, then stop")
	assert.Len(t, users, 2, "both fetched pages should contribute their items")
}

func TestListBlockedUsersCursorSuffixGuard(t *testing.T) {
	var requests int

	item := listingItem("suffixuser", "/b/testch/8", "/b/testch/block/del/8",
		"2023-01-01T00:00:00+09:00", "2023-02-01T00:00:00+09:00")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch r.URL.Query().Get("before") {
		case "":
			fmt.Fprint(w, listingPage(item, "c5"))
		case "c5":
			// A next link ending in the current cursor must stop pagination.
			fmt.Fprint(w, listingPage(item, "blocked?before=c5"))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("before"))
		}
	}))
	defer server.Close()

	session := newTestSession(t, server.URL)
	_, err := ListBlockedUsers(session, NewBlockedPageParser(), "testch")
	assert.NoError(t, err, "a suffix-repeating cursor should terminate cleanly")
	assert.Equal(t, 2, requests, "pagination should stop after the repeating cursor")
}
