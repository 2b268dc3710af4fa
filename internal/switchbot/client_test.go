package switchbot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// fakeCloud is an httptest server answering with a fixed envelope per path.
type fakeCloud struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]string
	httpCode  int
}

func newFakeCloud(t *testing.T) (*fakeCloud, *httptest.Server) {
	t.Helper()
	fc := &fakeCloud{responses: make(map[string]string), httpCode: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fc.mu.Lock()
		fc.requests = append(fc.requests, recordedRequest{
			Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: string(body),
		})
		resp, ok := fc.responses[r.Method+" "+r.URL.Path]
		code := fc.httpCode
		fc.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return fc, srv
}

func (fc *fakeCloud) last(t *testing.T) recordedRequest {
	t.Helper()
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return fc.requests[len(fc.requests)-1]
}

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	c.nonce = func() (string, error) { return "00112233445566778899aabbccddeeff", nil }
	c.SetCredentials("tok", "sec")
	return c
}

// ─── Signing ────────────────────────────────────────────────────────

func TestSign(t *testing.T) {
	const want = "3R5gsDnbUFG1rRB/ofC0qpyT3wNsXyn7Iw15X/x0XzQ="
	if got := Sign("tok", "sec", "1700000000000", "n"); got != want {
		t.Fatalf("Sign() = %q, want %q", got, want)
	}
	if Sign("tok", "other", "1700000000000", "n") == want {
		t.Error("Sign() ignores the secret")
	}
}

func TestClient_SignedHeaders(t *testing.T) {
	fc, srv := newFakeCloud(t)
	fc.responses["GET /devices"] = `{"statusCode":100,"message":"success","body":{"deviceList":[],"infraredRemoteList":[]}}`
	c := newTestClient(srv)

	if _, err := c.GetDevices(context.Background()); err != nil {
		t.Fatalf("GetDevices() error = %v", err)
	}

	h := fc.last(t).Header
	if got := h.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("Authorization = %q", got)
	}
	if got := h.Get("t"); got != "1700000000000" {
		t.Errorf("t = %q", got)
	}
	if got := h.Get("nonce"); got != "00112233445566778899aabbccddeeff" {
		t.Errorf("nonce = %q", got)
	}
	want := Sign("tok", "sec", "1700000000000", "00112233445566778899aabbccddeeff")
	if got := h.Get("sign"); got != want {
		t.Errorf("sign = %q, want %q", got, want)
	}
}

func TestClient_MissingCredentials(t *testing.T) {
	fc, srv := newFakeCloud(t)
	c := NewClient(Options{BaseURL: srv.URL})

	_, err := c.GetDevices(context.Background())
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("error = %v, want ErrMissingCredentials", err)
	}
	if err.Error() != "API token and secret not set." {
		t.Errorf("message = %q", err.Error())
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if len(fc.requests) != 0 {
		t.Errorf("requests = %d, want none", len(fc.requests))
	}
}

func TestRandomNonce(t *testing.T) {
	a, err := randomNonce()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := randomNonce()
	if len(a) != 32 || a == b {
		t.Errorf("randomNonce() = %q, %q", a, b)
	}
}

// ─── Operations ─────────────────────────────────────────────────────

func TestClient_GetDevices(t *testing.T) {
	fc, srv := newFakeCloud(t)
	fc.responses["GET /devices"] = `{"statusCode":100,"message":"success","body":{
		"deviceList":[{"deviceId":"A1","deviceName":"Bot","deviceType":"Bot","hubDeviceId":"H","enableCloudService":true}],
		"infraredRemoteList":[{"deviceId":"IR1","deviceName":"TV","remoteType":"TV","hubDeviceId":"H"}]}}`
	c := newTestClient(srv)

	list, err := c.GetDevices(context.Background())
	if err != nil {
		t.Fatalf("GetDevices() error = %v", err)
	}
	if len(list.Devices) != 1 || list.Devices[0].ID != "A1" {
		t.Errorf("Devices = %+v", list.Devices)
	}
	if len(list.InfraredRemotes) != 1 || list.InfraredRemotes[0].RemoteType != "TV" {
		t.Errorf("InfraredRemotes = %+v", list.InfraredRemotes)
	}
}

func TestClient_GetDeviceStatus(t *testing.T) {
	fc, srv := newFakeCloud(t)
	fc.responses["GET /devices/M1/status"] = `{"statusCode":100,"message":"success","body":{"deviceId":"M1","temperature":21.5}}`
	c := newTestClient(srv)

	status, err := c.GetDeviceStatus(context.Background(), "M1")
	if err != nil {
		t.Fatalf("GetDeviceStatus() error = %v", err)
	}
	if status["temperature"] != 21.5 {
		t.Errorf("temperature = %v", status["temperature"])
	}
}

func TestClient_SendCommandBody(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want map[string]any
	}{
		{
			name: "defaults filled",
			cmd:  Command{Command: "turnOn"},
			want: map[string]any{"commandType": "command", "command": "turnOn", "parameter": "default"},
		},
		{
			name: "explicit values kept",
			cmd:  Command{CommandType: "customize", Command: "Boost", Parameter: 40.0},
			want: map[string]any{"commandType": "customize", "command": "Boost", "parameter": 40.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, srv := newFakeCloud(t)
			fc.responses["POST /devices/D1/commands"] = `{"statusCode":100,"message":"success","body":{}}`
			c := newTestClient(srv)

			if err := c.SendCommand(context.Background(), "D1", tt.cmd); err != nil {
				t.Fatalf("SendCommand() error = %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal([]byte(fc.last(t).Body), &got); err != nil {
				t.Fatalf("body not JSON: %v", err)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("body[%s] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestClient_Scenes(t *testing.T) {
	fc, srv := newFakeCloud(t)
	fc.responses["GET /scenes"] = `{"statusCode":100,"message":"success","body":[{"sceneId":"s1","sceneName":"Relax"}]}`
	fc.responses["POST /scenes/s1/execute"] = `{"statusCode":100,"message":"success","body":{}}`
	c := newTestClient(srv)

	scenes, err := c.GetScenes(context.Background())
	if err != nil {
		t.Fatalf("GetScenes() error = %v", err)
	}
	if len(scenes) != 1 || scenes[0].Name != "Relax" {
		t.Errorf("scenes = %+v", scenes)
	}
	if err := c.ExecuteScene(context.Background(), "s1"); err != nil {
		t.Fatalf("ExecuteScene() error = %v", err)
	}
	if body := strings.TrimSpace(fc.last(t).Body); body != "{}" {
		t.Errorf("execute body = %q, want {}", body)
	}
}

// ─── Error envelopes ────────────────────────────────────────────────

func TestClient_EnvelopeErrors(t *testing.T) {
	fc, srv := newFakeCloud(t)
	fc.responses["GET /devices"] = `{"statusCode":190,"message":"device internal error","body":{}}`
	fc.responses["POST /devices/D1/commands"] = `{"statusCode":161,"message":"device offline","body":{}}`
	c := newTestClient(srv)

	_, err := c.GetDevices(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetDevices() error = %v, want *APIError", err)
	}
	if err.Error() != "API Error: device internal error (Status Code: 190)" {
		t.Errorf("message = %q", err.Error())
	}

	err = c.SendCommand(context.Background(), "D1", Command{Command: "turnOn"})
	if err == nil || err.Error() != "API Command Error: device offline (Status Code: 161)" {
		t.Errorf("SendCommand() error = %v", err)
	}
}

func TestClient_HTTPErrorWithEnvelope(t *testing.T) {
	fc, srv := newFakeCloud(t)
	fc.httpCode = http.StatusUnauthorized
	fc.responses["GET /devices"] = `{"statusCode":401,"message":"Unauthorized"}`
	c := newTestClient(srv)

	_, err := c.GetDevices(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Unauthorized" {
		t.Fatalf("error = %v, want APIError Unauthorized", err)
	}
}

func TestClient_HTTPErrorWithoutEnvelope(t *testing.T) {
	_, srv := newFakeCloud(t)
	c := newTestClient(srv)

	_, err := c.GetScenes(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
	if !strings.Contains(err.Error(), "status code 404") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	_, srv := newFakeCloud(t)
	c := newTestClient(srv)
	srv.Close()

	_, err := c.GetDeviceStatus(context.Background(), "X")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}

// ─── DeviceList ─────────────────────────────────────────────────────

func TestDeviceList_Merged(t *testing.T) {
	list := DeviceList{
		Devices: []Device{{ID: "a", DeviceType: "Bot"}, {ID: "b", DeviceType: "Meter"}},
		InfraredRemotes: []Device{
			{ID: "ir1", RemoteType: "TV"},
			{ID: "ir2", RemoteType: "Light", DeviceType: "DIY Light"},
		},
	}

	merged := list.Merged()
	ids := make([]string, len(merged))
	for i, d := range merged {
		ids[i] = d.ID
	}
	if strings.Join(ids, ",") != "a,b,ir1,ir2" {
		t.Fatalf("order = %v", ids)
	}
	if merged[0].IsInfraredRemote || merged[1].IsInfraredRemote {
		t.Error("physical device tagged as remote")
	}
	if !merged[2].IsInfraredRemote || merged[2].DeviceType != "TV" || !merged[2].EnableCloudService {
		t.Errorf("ir1 = %+v", merged[2])
	}
	if merged[3].DeviceType != "DIY Light" {
		t.Errorf("ir2 DeviceType = %q, want own type kept", merged[3].DeviceType)
	}
	if list.InfraredRemotes[0].IsInfraredRemote {
		t.Error("Merged mutated the source list")
	}
}
