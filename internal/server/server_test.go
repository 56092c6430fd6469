package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	sketch "github.com/gogpu/sketch"
	"github.com/gogpu/sketch/glyph"
	"github.com/gogpu/sketch/grid"
	"github.com/gogpu/sketch/prototype"
)

var testPlan = prototype.Plan{
	Families: []string{"pattern"},
	Sizes:    []float64{20},
	Offsets:  []image.Point{{}},
}

var (
	pipelineOnce sync.Once
	pipeline     *sketch.Pipeline
	pipelineErr  error
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	pipelineOnce.Do(func() {
		pipeline, pipelineErr = sketch.New(
			sketch.WithRenderer(glyph.NewPatternRenderer()),
			sketch.WithPlan(testPlan))
	})
	if pipelineErr != nil {
		t.Fatal(pipelineErr)
	}
	opts = append([]Option{WithFrame(time.Millisecond)}, opts...)
	ts := httptest.NewServer(New(pipeline, opts...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func digitPNG(t *testing.T, label rune) []byte {
	t.Helper()
	b, err := glyph.NewPatternRenderer().Render(label, testPlan.Variants()[0])
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.ToImage()); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeResponse(t *testing.T, resp *http.Response) PredictResponse {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q, want *", got)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["status"] != "healthy" {
		t.Errorf("body = %v (%v), want status healthy", body, err)
	}
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/predict", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestPredict(t *testing.T) {
	ts := newTestServer(t)
	target := pipeline.Bank().Prototypes('6')[0].Grid

	body, _ := json.Marshal(PredictRequest{Image: target.Values()})
	resp, err := http.Post(ts.URL+"/predict", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	out := decodeResponse(t, resp)
	if out.Label != "6" {
		t.Errorf("label = %q, want 6", out.Label)
	}
	if len(out.Predictions) != 10 {
		t.Errorf("len(predictions) = %d, want 10", len(out.Predictions))
	}
	if out.Box == nil || out.Empty {
		t.Errorf("box = %v empty = %v, want a box", out.Box, out.Empty)
	}
}

func TestPredictErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"bad json", http.MethodPost, "{", http.StatusBadRequest},
		{"wrong size", http.MethodPost, `{"image":[0,1,0]}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+"/predict", strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "digit.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestPredictImage(t *testing.T) {
	ts := newTestServer(t)

	body, ctype := multipartBody(t, "image", digitPNG(t, '3'))
	resp, err := http.Post(ts.URL+"/predict/image", ctype, body)
	if err != nil {
		t.Fatal(err)
	}
	out := decodeResponse(t, resp)
	if out.Label != "3" {
		t.Errorf("label = %q, want 3", out.Label)
	}
	if out.Nearest != "pattern/20px+0+0" {
		t.Errorf("nearest = %q", out.Nearest)
	}
}

func TestPredictImageErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name  string
		field string
		data  []byte
	}{
		{"wrong field", "file", digitPNG(t, '1')},
		{"not an image", "image", []byte("hello")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ctype := multipartBody(t, tt.field, tt.data)
			resp, err := http.Post(ts.URL+"/predict/image", ctype, body)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var e ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
				t.Errorf("error body = %+v (%v)", e, err)
			}
		})
	}
}

// blankPNG encodes a white w×h image.
func blankPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, grid.NewCanvas(w, h).ToImage()); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPredictImageTooLarge(t *testing.T) {
	ts := newTestServer(t, WithMaxPixels(64*64))

	tests := []struct {
		name       string
		data       []byte
		wantStatus int
	}{
		{"within limit", blankPNG(t, 64, 64), http.StatusOK},
		{"too wide", blankPNG(t, 65, 64), http.StatusBadRequest},
		{"too many pixels", blankPNG(t, 200, 200), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ctype := multipartBody(t, "image", tt.data)
			resp, err := http.Post(ts.URL+"/predict/image", ctype, body)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestDecodeRejectsBeforeDecoding(t *testing.T) {
	s := New(nil, WithMaxPixels(100))
	_, _, err := s.decode(blankPNG(t, 11, 10))
	if !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("decode(11x10) error = %v, want ErrImageTooLarge", err)
	}
	img, format, err := s.decode(blankPNG(t, 10, 10))
	if err != nil || format != "png" || img.Bounds().Dx() != 10 {
		t.Errorf("decode(10x10) = %v, %q, %v", img.Bounds(), format, err)
	}
}

func TestLiveSessionLimits(t *testing.T) {
	ts := newTestServer(t, WithMaxPixels(64*64), WithMaxUpload(4<<10))
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteMessage(websocket.BinaryMessage, blankPNG(t, 100, 100)); err != nil {
		t.Fatal(err)
	}
	var e ErrorResponse
	if err := conn.ReadJSON(&e); err != nil || !strings.Contains(e.Error, "too large") {
		t.Fatalf("oversized frame reply = %+v (%v), want a size error", e, err)
	}

	// A frame above the byte limit closes the session.
	if err := conn.WriteMessage(websocket.BinaryMessage, make([]byte, 8<<10)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("ReadMessage after an oversized frame succeeded, want the connection closed")
	}
}

func TestLiveSession(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hi")); err != nil {
		t.Fatal(err)
	}
	var e ErrorResponse
	if err := conn.ReadJSON(&e); err != nil || e.Error == "" {
		t.Fatalf("text frame reply = %+v (%v), want an error", e, err)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, digitPNG(t, '9')); err != nil {
		t.Fatal(err)
	}
	var out PredictResponse
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatal(err)
	}
	if out.Label != "9" || out.Seq != 1 {
		t.Errorf("live result label %q seq %d, want 9 seq 1", out.Label, out.Seq)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("junk")); err != nil {
		t.Fatal(err)
	}
	e = ErrorResponse{}
	if err := conn.ReadJSON(&e); err != nil || e.Error == "" {
		t.Errorf("junk frame reply = %+v (%v), want an error", e, err)
	}
}

func TestNewPredictResponseEmpty(t *testing.T) {
	newTestServer(t)
	res, err := pipeline.Run(grid.NewCanvas(32, 32))
	if err != nil {
		t.Fatal(err)
	}
	out := newPredictResponse(res)
	if !out.Empty || out.Box != nil || out.Nearest != "" || out.Confident {
		t.Errorf("empty response = %+v", out)
	}
	if len(out.Predictions) != 10 {
		t.Errorf("len(predictions) = %d, want 10", len(out.Predictions))
	}
}
