package trigger

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/devfolio/portfolio-api/pkg/httpclient"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"go.uber.org/zap"
)

const callTimeout = 10 * time.Second

// CallAsync fires a GET to triggerURL with submission_id=<id> appended to its query.
// Used to notify downstream automation (CMS ingestion, chat hooks) after a
// submission is accepted. Failures are logged and never reach the caller.
// The returned channel is closed once the call finishes; callers may ignore it.
func CallAsync(triggerURL, submissionID string, httpClient httpclient.Client) <-chan struct{} {
	done := make(chan struct{})
	if triggerURL == "" {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		target, err := buildURL(triggerURL, submissionID)
		if err != nil {
			logger.Error("Invalid trigger URL", zap.Error(err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			logger.Error("Failed to build trigger request", zap.Error(err))
			return
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("submission_id", submissionID))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Trigger URL called successfully",
				zap.String("submission_id", submissionID),
				zap.Int("status_code", resp.StatusCode))
		} else {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("submission_id", submissionID),
				zap.Int("status_code", resp.StatusCode))
		}
	}()

	return done
}

func buildURL(triggerURL, submissionID string) (string, error) {
	u, err := url.Parse(triggerURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("submission_id", submissionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
