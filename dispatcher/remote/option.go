package remote

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Option customises the remote dispatcher.
type Option func(s *Service)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.client = client }
}

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.timeout = timeout }
}

// WithBasicAuth sets plain credentials.
func WithBasicAuth(username, password string) Option {
	return func(s *Service) {
		s.credentials = &Credentials{Username: username, Password: password}
	}
}

// WithSecret sets a scy secret URL holding basic credentials, revealed
// lazily with key (for example blowfish://default).
func WithSecret(URL, key string) Option {
	return func(s *Service) {
		s.secretURL = URL
		s.secretKey = key
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = logger }
}
