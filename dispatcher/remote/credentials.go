package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/scy"
	"github.com/viant/scy/cred"
	"github.com/viant/toolbox"
)

// Credentials are basic auth credentials.
type Credentials struct {
	Username string
	Password string
}

// loadCredentials reveals the secret on first use. Only a successful reveal
// is kept, a failed one is retried by the next request.
func (s *Service) loadCredentials(ctx context.Context) (*Credentials, error) {
	s.credentialsMux.Lock()
	defer s.credentialsMux.Unlock()
	if s.credentials != nil || s.secretURL == "" {
		return s.credentials, nil
	}
	reveal := s.reveal
	if reveal == nil {
		reveal = func(ctx context.Context) (*Credentials, error) {
			return revealBasic(ctx, s.secrets, s.secretURL, s.secretKey)
		}
	}
	credentials, err := reveal(ctx)
	if err != nil {
		return nil, err
	}
	s.credentials = credentials
	return credentials, nil
}

func revealBasic(ctx context.Context, secrets *scy.Service, URL, key string) (*Credentials, error) {
	targetType, err := cred.TargetType("basic")
	if err != nil {
		return nil, err
	}
	resource := scy.NewResource(targetType, URL, key)
	secret, err := secrets.Load(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials from %s: %w", URL, err)
	}
	if secret.IsPlain || secret.Target == nil {
		username, password, ok := strings.Cut(strings.TrimSpace(secret.String()), ":")
		if !ok {
			return nil, fmt.Errorf("invalid plain credentials in %s", URL)
		}
		return &Credentials{Username: username, Password: password}, nil
	}
	aMap := map[string]interface{}{}
	if err = toolbox.DefaultConverter.AssignConverted(&aMap, secret.Target); err != nil {
		return nil, fmt.Errorf("failed to convert credentials: %w", err)
	}
	return &Credentials{
		Username: firstString(aMap, "Username", "username"),
		Password: firstString(aMap, "Password", "password"),
	}, nil
}

func firstString(aMap map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := aMap[key]; ok && value != nil {
			return toolbox.AsString(value)
		}
	}
	return ""
}
