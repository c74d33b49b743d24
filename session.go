package arcablock

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	cookiejar "github.com/juju/persistent-cookiejar"
)

// Transport is a custom RoundTripper implementation.
type Transport struct {
	Transport http.RoundTripper // Transport is the underlying RoundTripper.
	Headers   map[string]string // Headers contains custom headers to be added to the requests.
}

// RoundTrip executes a single HTTP request and returns its response.
// It adds custom headers to the request before performing the request using the underlying Transport.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	for key, value := range t.Headers {
		req.Header.Set(key, value)
	}

	return t.Transport.RoundTrip(req)
}

// StatusError is returned for responses with a 4xx or 5xx status, so callers
// can classify 404, 405 and 429 distinctly.
type StatusError struct {
	Code int    // Code is the HTTP status code.
	URL  string // URL is the requested URL.
}

// Error returns the error message.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.URL, e.Code)
}

// Session is an HTTP client bound to the site origin. It injects browser-like
// headers on every request and carries a file-backed cookie jar for the
// process lifetime.
type Session struct {
	BaseURL string

	client *http.Client
	jar    *cookiejar.Jar
}

// NewSession creates a Session rooted at baseURL with cookies persisted to
// cookieFile.
func NewSession(baseURL, cookieFile string) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{Filename: cookieFile})
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie jar: %v", err)
	}

	transport := &Transport{
		Transport: http.DefaultTransport,
		Headers: map[string]string{
			"User-Agent": USER_AGENT,
			"Origin":     ORIGIN,
		},
	}

	return &Session{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   HTTP_TIMEOUT,
			Jar:       jar,
		},
		jar: jar,
	}, nil
}

// SaveCookies flushes the cookie jar to disk.
func (s *Session) SaveCookies() error {
	return s.jar.Save()
}

func (s *Session) absolute(path string) string {
	return s.BaseURL + "/" + strings.TrimPrefix(path, "/")
}

func (s *Session) do(req *http.Request, followRedirect bool) (*http.Response, error) {
	client := s.client
	if !followRedirect {
		clone := *s.client
		clone.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client = &clone
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		res.Body.Close()
		return nil, &StatusError{Code: res.StatusCode, URL: req.URL.String()}
	}

	return res, nil
}

// Get performs a GET request against a site-relative path.
// The caller is responsible for closing the response body.
func (s *Session) Get(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, s.absolute(path), nil)
	if err != nil {
		return nil, err
	}

	return s.do(req, true)
}

// GetDocument fetches a site-relative path and parses the body as HTML.
func (s *Session) GetDocument(path string) (*goquery.Document, error) {
	res, err := s.Get(path)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return goquery.NewDocumentFromReader(res.Body)
}

// PostForm submits a form to a site-relative path.
// The caller is responsible for closing the response body.
func (s *Session) PostForm(path string, data url.Values) (*http.Response, error) {
	return s.postForm(path, data, true)
}

// PostFormNoRedirect submits a form without following redirects. The site
// answers a successful login with a redirect, which must not be chased.
func (s *Session) PostFormNoRedirect(path string, data url.Values) (*http.Response, error) {
	return s.postForm(path, data, false)
}

func (s *Session) postForm(path string, data url.Values, followRedirect bool) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, s.absolute(path), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.do(req, followRedirect)
}

// csrfToken extracts the hidden anti-forgery token from a form page.
func csrfToken(doc *goquery.Document) (string, error) {
	token, ok := doc.Find("input[name=_csrf]").Attr("value")
	if !ok || token == "" {
		return "", ErrNoCSRFToken
	}

	return token, nil
}
