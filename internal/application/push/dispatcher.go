package push

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/madadgarapp/listings-api/internal/domain"
	"github.com/madadgarapp/listings-api/internal/pkg/id"
)

// tokenPrefixLen bounds how much of a device token is persisted in the
// send log. Responses to the caller carry the full token; stored rows
// carry only this prefix.
const tokenPrefixLen = 20

// Message is the platform-agnostic push payload handed to a Gateway.
type Message struct {
	Title     string
	Body      string
	ChannelID string
	Sound     string
	Priority  string
	Data      map[string]string
}

// Gateway delivers one message to one device token. Implementations wrap
// a concrete provider (FCM legacy HTTP, SNS platform endpoints).
type Gateway interface {
	Send(ctx context.Context, token string, msg Message) error
}

// DispatchRequest describes one fan-out run.
type DispatchRequest struct {
	UserIDs []string          `json:"userIds"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Type    string            `json:"type,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// TokenResult reports the outcome for a single device token. Unlike the
// persisted send log, it carries the full token so callers can prune
// endpoints that failed.
type TokenResult struct {
	Token   string `json:"token"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DispatchResult aggregates one run.
type DispatchResult struct {
	Message     string        `json:"message"`
	SentCount   int           `json:"sentCount"`
	FailedCount int           `json:"failedCount"`
	Details     []TokenResult `json:"details,omitempty"`
}

type tokenStore interface {
	ListActiveByUsers(ctx context.Context, userIDs []string) ([]domain.DeviceToken, error)
}

type logStore interface {
	Put(ctx context.Context, l *domain.SendLog) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error)
}

type dispatcher struct {
	tokens    tokenStore
	logs      logStore
	gateway   Gateway
	channelID string
	logger    *slog.Logger
}

type Deps struct {
	TokenRepo tokenStore
	LogRepo   logStore
	Gateway   Gateway
	ChannelID string
	Logger    *slog.Logger
}

func NewDispatcher(deps Deps) Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &dispatcher{
		tokens:    deps.TokenRepo,
		logs:      deps.LogRepo,
		gateway:   deps.Gateway,
		channelID: deps.ChannelID,
		logger:    logger,
	}
}

// Dispatch fans req out to every active token of every requested user,
// sequentially, and never aborts the run on a per-token failure. The send
// log write at the end is best-effort.
func (d *dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	if len(req.UserIDs) == 0 || req.Title == "" || req.Body == "" {
		return nil, fmt.Errorf("missing required fields: userIds, title, body: %w", domain.ErrBadRequest)
	}

	tokens, err := d.tokens.ListActiveByUsers(ctx, req.UserIDs)
	if err != nil {
		// A failed lookup degrades to "nobody to notify" rather than
		// failing the run; records and callers upstream are unaffected.
		d.logger.Warn("device token lookup failed", "error", err)
		tokens = nil
	}
	if len(tokens) == 0 {
		return &DispatchResult{Message: "No active device tokens found"}, nil
	}

	msg := Message{
		Title:     req.Title,
		Body:      req.Body,
		ChannelID: d.channelID,
		Sound:     "default",
		Priority:  "high",
		Data:      d.buildData(req),
	}

	details := make([]TokenResult, 0, len(tokens))
	sent, failed := 0, 0
	for _, t := range tokens {
		// Each row knows its owner, so the data section can carry the
		// recipient identifier per token.
		perToken := msg
		perToken.Data = withUserID(msg.Data, t.UserID)

		if err := d.gateway.Send(ctx, t.DeviceToken, perToken); err != nil {
			failed++
			details = append(details, TokenResult{Token: t.DeviceToken, Error: err.Error()})
			continue
		}
		sent++
		details = append(details, TokenResult{Token: t.DeviceToken, Success: true})
	}

	d.writeLog(ctx, req, sent, failed, details)

	return &DispatchResult{
		Message:     fmt.Sprintf("Push notifications processed: %d sent, %d failed", sent, failed),
		SentCount:   sent,
		FailedCount: failed,
		Details:     details,
	}, nil
}

func (d *dispatcher) buildData(req DispatchRequest) map[string]string {
	data := make(map[string]string, len(req.Data)+2)
	for k, v := range req.Data {
		data[k] = v
	}
	if req.Type != "" {
		data["type"] = req.Type
	}
	return data
}

func withUserID(data map[string]string, userID string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["user_id"] = userID
	return out
}

// writeLog persists an audit row for the run. Failures are logged and
// swallowed: the dispatch outcome already happened and must be reported
// to the caller regardless.
func (d *dispatcher) writeLog(ctx context.Context, req DispatchRequest, sent, failed int, details []TokenResult) {
	if d.logs == nil {
		return
	}
	results := make([]domain.SendResult, 0, len(details))
	for _, r := range details {
		results = append(results, domain.SendResult{
			Token:   tokenPrefix(r.Token),
			Success: r.Success,
			Error:   r.Error,
		})
	}
	l := &domain.SendLog{
		LogID:        id.New(),
		UserIDs:      req.UserIDs,
		Title:        req.Title,
		Body:         req.Body,
		Type:         req.Type,
		SuccessCount: sent,
		FailureCount: failed,
		Results:      results,
		SentAt:       time.Now().UTC(),
	}
	if err := d.logs.Put(ctx, l); err != nil {
		d.logger.Warn("send log write failed", "error", err)
	}
}

func tokenPrefix(token string) string {
	if len(token) > tokenPrefixLen {
		return token[:tokenPrefixLen]
	}
	return token
}
