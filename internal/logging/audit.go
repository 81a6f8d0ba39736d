package logging

import (
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// AUDIT EVENTS
// =============================================================================
// Audit events are structured entries on the audit category. They share a
// fixed field layout (event, session, success, dur_ms) so the log file can be
// filtered with jq or similar without parsing messages.

// AuditEventType names an audit event.
type AuditEventType string

const (
	AuditClientInit   AuditEventType = "client_init"
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"
	AuditTurnStart    AuditEventType = "turn_start"
	AuditTurnEnd      AuditEventType = "turn_end"
	AuditLLMCall      AuditEventType = "llm_call"
)

// AuditLogger writes audit events for one conversation session.
type AuditLogger struct {
	sessionID string
}

// Audit returns an audit logger without session correlation.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithSession returns an audit logger bound to a session ID.
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

func (a *AuditLogger) log(event AuditEventType, success bool, dur time.Duration, msg string, fields ...zap.Field) {
	l := Get(CategoryAudit).Zap()
	all := make([]zap.Field, 0, len(fields)+4)
	all = append(all,
		zap.String("event", string(event)),
		zap.Bool("success", success),
	)
	if a.sessionID != "" {
		all = append(all, zap.String("session", a.sessionID))
	}
	if dur > 0 {
		all = append(all, zap.Int64("dur_ms", dur.Milliseconds()))
	}
	all = append(all, fields...)
	if success {
		l.Info(msg, all...)
	} else {
		l.Warn(msg, all...)
	}
}

// ClientInit logs the outcome of provider client construction.
func (a *AuditLogger) ClientInit(clientID string, err error) {
	if err != nil {
		a.log(AuditClientInit, false, 0, "client initialization failed", zap.Error(err))
		return
	}
	a.log(AuditClientInit, true, 0, "client initialized", zap.String("client", clientID))
}

// SessionStart logs session creation
func (a *AuditLogger) SessionStart(model string) {
	a.log(AuditSessionStart, true, 0, "session started", zap.String("model", model))
}

// SessionEnd logs session end
func (a *AuditLogger) SessionEnd(turnCount int, dur time.Duration) {
	a.log(AuditSessionEnd, true, dur, "session ended", zap.Int("turn_count", turnCount))
}

// TurnStart logs turn start
func (a *AuditLogger) TurnStart(turnNum int, inputLen int) {
	a.log(AuditTurnStart, true, 0, "turn started", zap.Int("turn", turnNum), zap.Int("input_len", inputLen))
}

// TurnEnd logs turn end
func (a *AuditLogger) TurnEnd(turnNum int, dur time.Duration, success bool) {
	a.log(AuditTurnEnd, success, dur, "turn ended", zap.Int("turn", turnNum))
}

// LLMCall logs a remote model call
func (a *AuditLogger) LLMCall(model string, dur time.Duration, err error) {
	if err != nil {
		a.log(AuditLLMCall, false, dur, "llm call failed", zap.String("model", model), zap.Error(err))
		return
	}
	a.log(AuditLLMCall, true, dur, "llm call", zap.String("model", model))
}
