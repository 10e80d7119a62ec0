package geotab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fleetsync/server/internal/observability"
)

// Diagnostic channel IDs for the readings this engine consumes. Engine
// hours has a fallback channel because not every device reports on the
// adjustment diagnostic.
const (
	DiagnosticOdometer            = "DiagnosticOdometerId"
	DiagnosticEngineHours         = "DiagnosticEngineHoursAdjustmentId"
	DiagnosticEngineHoursFallback = "DiagnosticEngineHoursId"
)

// Credentials identifies an account on a MyGeotab server.
type Credentials struct {
	Username string
	Password string
	Database string
	Server   string
}

// Session is the authenticated handle passed into every subsequent call.
// It is an explicit value, never package state.
type Session struct {
	SessionID string
	Username  string
	Database  string
	Server    string
}

// DeviceRecord is the fixed shape a provider device is mapped into at
// this boundary. Nothing downstream sees the raw payload.
type DeviceRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serialNumber"`
}

// Reading is a single StatusData sample.
type Reading struct {
	Value     float64
	Timestamp time.Time
}

// Client talks to the MyGeotab JSON-RPC endpoint over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given per-call timeout. A stalled
// provider call must not hang a sync cycle, so zero falls back to 30s.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Authenticate performs the credential handshake and returns a session.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	ctx, span := observability.StartProviderSpan(ctx, "Authenticate")
	defer span.End()

	server := creds.Server
	if server == "" {
		server = "my.geotab.com"
	}

	params := map[string]interface{}{
		"userName": creds.Username,
		"password": creds.Password,
		"database": creds.Database,
	}

	var result struct {
		Credentials struct {
			SessionID string `json:"sessionId"`
			UserName  string `json:"userName"`
			Database  string `json:"database"`
		} `json:"credentials"`
		Path string `json:"path"`
	}

	if err := c.call(ctx, server, "Authenticate", params, &result); err != nil {
		authErr := &AuthError{Reason: "handshake", Err: err}
		observability.RecordError(span, authErr)
		return nil, authErr
	}
	if result.Credentials.SessionID == "" {
		authErr := &AuthError{Reason: "credentials rejected"}
		observability.RecordError(span, authErr)
		return nil, authErr
	}

	// The provider may redirect the account to a different server.
	if result.Path != "" && result.Path != "ThisServer" {
		server = result.Path
	}

	return &Session{
		SessionID: result.Credentials.SessionID,
		Username:  result.Credentials.UserName,
		Database:  result.Credentials.Database,
		Server:    server,
	}, nil
}

// ListDevices returns every device visible under the account's company group.
func (c *Client) ListDevices(ctx context.Context, session *Session) ([]DeviceRecord, error) {
	ctx, span := observability.StartProviderSpan(ctx, "ListDevices")
	defer span.End()

	params := map[string]interface{}{
		"typeName": "Device",
		"search": map[string]interface{}{
			"groups": []map[string]string{{"id": "GroupCompanyId"}},
		},
		"credentials": session.rpcCredentials(),
	}

	var devices []DeviceRecord
	if err := c.call(ctx, session.Server, "Get", params, &devices); err != nil {
		wrapped := wrapCallError("ListDevices", err)
		observability.RecordError(span, wrapped)
		return nil, wrapped
	}
	return devices, nil
}

// LatestReading returns the first sample for the diagnostic on the
// device with a timestamp at or after windowStart, or nil if the window
// is empty.
func (c *Client) LatestReading(ctx context.Context, session *Session, deviceID, diagnosticID string, windowStart time.Time) (*Reading, error) {
	ctx, span := observability.StartProviderSpan(ctx, "LatestReading")
	defer span.End()

	params := map[string]interface{}{
		"typeName": "StatusData",
		"search": map[string]interface{}{
			"deviceSearch":     map[string]string{"id": deviceID},
			"diagnosticSearch": map[string]string{"id": diagnosticID},
			"fromDate":         windowStart.UTC().Format(time.RFC3339),
		},
		"resultsLimit": 1,
		"credentials":  session.rpcCredentials(),
	}

	var samples []struct {
		Data     float64   `json:"data"`
		DateTime time.Time `json:"dateTime"`
	}
	if err := c.call(ctx, session.Server, "Get", params, &samples); err != nil {
		wrapped := wrapCallError("LatestReading "+diagnosticID, err)
		observability.RecordError(span, wrapped)
		return nil, wrapped
	}
	if len(samples) == 0 {
		return nil, nil
	}

	return &Reading{Value: samples[0].Data, Timestamp: samples[0].DateTime}, nil
}

func (s *Session) rpcCredentials() map[string]string {
	return map[string]string{
		"userName":  s.Username,
		"sessionId": s.SessionID,
		"database":  s.Database,
	}
}

type rpcErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type rpcError struct {
	Message string           `json:"message"`
	Errors  []rpcErrorDetail `json:"errors"`
}

func (e *rpcError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %s", e.Errors[0].Name, e.Errors[0].Message)
	}
	return e.Message
}

// isAuthRejection reports whether the provider rejected the session
// itself rather than the request.
func (e *rpcError) isAuthRejection() bool {
	for _, detail := range e.Errors {
		switch detail.Name {
		case "InvalidUserException", "ExpiredPasswordException", "AuthenticationException":
			return true
		}
	}
	return false
}

// wrapCallError classifies a failed provider call: session rejections
// become AuthError so callers re-authenticate, everything else is a
// TransportError.
func wrapCallError(op string, err error) error {
	var rpcErr *rpcError
	if errors.As(err, &rpcErr) && rpcErr.isAuthRejection() {
		return &AuthError{Reason: "session rejected", Err: err}
	}
	return &TransportError{Op: op, Err: err}
}

// call posts a JSON-RPC request to the server's apiv1 endpoint and
// decodes the result envelope into out.
func (c *Client) call(ctx context.Context, server, method string, params interface{}, out interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"method": method,
		"params": params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(server), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}

func endpointURL(server string) string {
	if strings.Contains(server, "://") {
		return strings.TrimSuffix(server, "/") + "/apiv1"
	}
	return "https://" + server + "/apiv1"
}
