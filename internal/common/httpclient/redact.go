package httpclient

import (
	"errors"
	"net/url"
)

// RedactError replaces the full request URL inside a *url.Error with its
// scheme and host, so tokens embedded in the path never reach logs.
func RedactError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	redacted := urlErr.URL
	if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
		redacted = u.Scheme + "://" + u.Host
	}
	return &url.Error{Op: urlErr.Op, URL: redacted, Err: urlErr.Err}
}
