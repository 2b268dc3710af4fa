package switchbot

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.switch-bot.com/v1.1"

// Logger is the logging interface used by Client.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Logger     Logger
}

// envelope wraps every API response body.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Body       json.RawMessage `json:"body"`
}

// Client is the signed HTTP implementation of Bridge.
type Client struct {
	http   *resty.Client
	logger Logger

	mu     sync.RWMutex
	token  string
	secret string

	now   func() time.Time
	nonce func() (string, error)
}

// NewClient creates a Client. Credentials are set separately with
// SetCredentials; requests fail with ErrMissingCredentials until then.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		logger: logger,
		now:    time.Now,
		nonce:  randomNonce,
	}
}

// SetCredentials implements Bridge.
func (c *Client) SetCredentials(token, secret string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.secret = secret
}

// GetDevices implements Bridge.
func (c *Client) GetDevices(ctx context.Context) (DeviceList, error) {
	var list DeviceList
	if err := c.do(ctx, "GET", "/devices", nil, nil, false, &list); err != nil {
		return DeviceList{}, err
	}
	return list, nil
}

// GetDeviceStatus implements Bridge.
func (c *Client) GetDeviceStatus(ctx context.Context, deviceID string) (Status, error) {
	var status Status
	err := c.do(ctx, "GET", "/devices/{deviceId}/status",
		map[string]string{"deviceId": deviceID}, nil, false, &status)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// SendCommand implements Bridge. An empty CommandType is sent as "command"
// and a nil Parameter as "default".
func (c *Client) SendCommand(ctx context.Context, deviceID string, cmd Command) error {
	return c.do(ctx, "POST", "/devices/{deviceId}/commands",
		map[string]string{"deviceId": deviceID}, cmd.withDefaults(), true, nil)
}

// GetScenes implements Bridge.
func (c *Client) GetScenes(ctx context.Context) ([]Scene, error) {
	var scenes []Scene
	if err := c.do(ctx, "GET", "/scenes", nil, nil, false, &scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// ExecuteScene implements Bridge.
func (c *Client) ExecuteScene(ctx context.Context, sceneID string) error {
	return c.do(ctx, "POST", "/scenes/{sceneId}/execute",
		map[string]string{"sceneId": sceneID}, struct{}{}, false, nil)
}

// do signs and sends one request, checks the envelope and decodes its body
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, pathParams map[string]string, body any, command bool, out any) error {
	headers, err := c.headers()
	if err != nil {
		return err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeaders(headers)
	if pathParams != nil {
		req.SetPathParams(pathParams)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("switchbot request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}

	var env envelope
	if decodeErr := json.Unmarshal(resp.Body(), &env); decodeErr != nil || (env.StatusCode == 0 && env.Message == "") {
		if resp.IsError() {
			return fmt.Errorf("%w: %s %s: request failed with status code %d", ErrTransport, method, path, resp.StatusCode())
		}
		return fmt.Errorf("%w: %s %s: invalid response body", ErrTransport, method, path)
	}

	if env.StatusCode != StatusOK {
		c.logger.Debug("switchbot api error", "path", path, "status_code", env.StatusCode, "message", env.Message)
		return &APIError{StatusCode: env.StatusCode, Message: env.Message, Command: command}
	}

	if out == nil || len(env.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Body, out); err != nil {
		return fmt.Errorf("%w: %s %s: decoding body: %w", ErrTransport, method, path, err)
	}
	return nil
}

// headers builds the signed header set for one request.
func (c *Client) headers() (map[string]string, error) {
	c.mu.RLock()
	token, secret := c.token, c.secret
	c.mu.RUnlock()

	if token == "" || secret == "" {
		return nil, ErrMissingCredentials
	}

	nonce, err := c.nonce()
	if err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	t := strconv.FormatInt(c.now().UnixMilli(), 10)

	return map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json; charset=utf8",
		"t":             t,
		"sign":          Sign(token, secret, t, nonce),
		"nonce":         nonce,
	}, nil
}

// Sign returns base64(HMAC-SHA256(secret, token+t+nonce)).
func Sign(token, secret, t, nonce string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token + t + nonce))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func randomNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var _ Bridge = (*Client)(nil)
