package domain

import "time"

// SendResult is the outcome of one delivery attempt. Token holds a short
// prefix of the device token, never the full value.
type SendResult struct {
	Token   string `json:"token" dynamodbav:"token"`
	Success bool   `json:"success" dynamodbav:"success"`
	Error   string `json:"error,omitempty" dynamodbav:"error"`
}

// SendLog summarizes one push dispatch run. Append-only; writing it is
// best-effort and never fails the dispatch that produced it.
type SendLog struct {
	LogID        string       `json:"id" dynamodbav:"log_id"`
	UserIDs      []string     `json:"user_ids" dynamodbav:"user_ids"`
	Title        string       `json:"title" dynamodbav:"title"`
	Body         string       `json:"body" dynamodbav:"body"`
	Type         string       `json:"type" dynamodbav:"type"`
	SuccessCount int          `json:"success_count" dynamodbav:"success_count"`
	FailureCount int          `json:"failure_count" dynamodbav:"failure_count"`
	Results      []SendResult `json:"results" dynamodbav:"results"`
	SentAt       time.Time    `json:"sent_at" dynamodbav:"sent_at"`
}
