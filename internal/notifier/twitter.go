package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/vipteryx/centretracker/internal/schedule"
)

// DefaultPostDelay spaces consecutive posts to stay under the rate limit
const DefaultPostDelay = 2 * time.Second

// ErrMissingCredentials is returned when a Twitter credential variable is unset
var ErrMissingCredentials = errors.New("missing required Twitter credentials in environment variables")

type statusUpdater interface {
	Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, *http.Response, error)
}

// TwitterNotifier posts new sessions to Twitter
type TwitterNotifier struct {
	statuses statusUpdater
	delay    time.Duration
}

// NewTwitterNotifier creates a Twitter notifier using environment variables.
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, ErrMissingCredentials
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	client := twitter.NewClient(config.Client(oauth1.NoContext, token))

	return &TwitterNotifier{statuses: client.Statuses, delay: DefaultPostDelay}, nil
}

// Notify posts one status per added session
func (n *TwitterNotifier) Notify(ctx context.Context, site string, changes []*schedule.SessionChange) error {
	for i, c := range changes {
		if _, _, err := n.statuses.Update(FormatMessage(site, c), nil); err != nil {
			return fmt.Errorf("failed to post session %s: %w", c.Key, err)
		}

		if i < len(changes)-1 && n.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.delay):
			}
		}
	}
	return nil
}
