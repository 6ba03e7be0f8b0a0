package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"

	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/types"
)

// poll queries the progress endpoint until a terminal status. Checks are
// sequential: the next one is only scheduled once the previous answer (or
// failure) is in, and the limiter keeps at most one check per interval.
func (s *Session) poll(parent context.Context) error {
	ctx := parent
	if s.opts.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.opts.MaxDuration)
		defer cancel()
	}

	limiter := rate.NewLimiter(rate.Every(s.opts.Interval), 1)
	// the first check goes out one interval after the acknowledgement
	limiter.Allow()

	failures := 0
	for {
		if err := waitTurn(ctx, limiter); err != nil {
			return s.stopped(parent)
		}

		answer, err := s.queryProgress(ctx)
		polls := s.countPoll()
		if err != nil {
			if ctx.Err() != nil {
				return s.stopped(parent)
			}
			failures++
			if failures > s.opts.TransientRetries {
				return s.fail(newSessionError(KindTransportError, err.Error(), err), fmt.Sprintf(textCheckingFmt, err.Error()), false)
			}
			tool.DefaultLogger.Warnf("[Poll] session %s: check %d failed (%d/%d tolerated): %v", s.id, polls, failures, s.opts.TransientRetries, err)
		} else {
			failures = 0
			value := s.advance(answer.Progress)
			s.presenter.SetValue(value)

			switch answer.Status {
			case remoteStatusDone:
				return s.complete()
			case remoteStatusFailed:
				return s.fail(newSessionError(KindServerReportedError, answer.Error, nil), fmt.Sprintf(textErrorFmt, answer.Error), false)
			default:
				s.presenter.SetText(fmt.Sprintf(textUploadingFmt, roundPercent(value)))
				tool.DefaultLogger.Debugf("[Poll] session %s: check %d, %s %.2f%%", s.id, polls, answer.Status, value)
			}
		}

		if s.opts.MaxAttempts > 0 && polls >= s.opts.MaxAttempts {
			return s.timeout(polls)
		}
	}
}

// waitTurn blocks until the limiter grants the next check. Unlike
// Limiter.Wait it only gives up once ctx is actually done, so a deadline
// is never reported before it passes.
func waitTurn(ctx context.Context, limiter *rate.Limiter) error {
	r := limiter.Reserve()
	delay := r.Delay()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// stopped resolves a loop exit caused by the context: the caller's
// cancellation wins over the session's own deadline.
func (s *Session) stopped(parent context.Context) error {
	if parent.Err() != nil {
		return s.fail(newSessionError(KindCancelled, textCancelled, parent.Err()), fmt.Sprintf(textErrorFmt, textCancelled), false)
	}
	return s.timeout(s.Snapshot().Polls)
}

func (s *Session) timeout(polls int) error {
	msg := fmt.Sprintf(textTimeoutFmt, polls)
	return s.fail(newSessionError(KindTimeout, msg, nil), fmt.Sprintf(textErrorFmt, msg), false)
}

func (s *Session) queryProgress(ctx context.Context) (*types.UploadProgressResponse, error) {
	url, err := tool.BuildProgressURL(s.endpoints.BaseURL, s.endpoints.ProgressPath, s.UploadId())
	if err != nil {
		return nil, fmt.Errorf("failed to build progress URL: %v", err)
	}
	req, err := tool.NewHTTPReqWithApplication(http.NewRequestWithContext(ctx, http.MethodGet, url, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create progress request: %v", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send progress request: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read progress response: %v", err)
	}

	var answer types.UploadProgressResponse
	if err := sonic.Unmarshal(body, &answer); err != nil {
		return nil, fmt.Errorf("failed to parse progress response (%s): %v", resp.Status, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// an explicit job failure is still an answer, whatever the status code
		if answer.Status == remoteStatusFailed {
			return &answer, nil
		}
		return nil, fmt.Errorf("progress request failed: %s", resp.Status)
	}
	return &answer, nil
}
