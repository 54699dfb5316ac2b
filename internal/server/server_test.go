package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/layerdeck/pkg/observability"
	"github.com/matzehuels/layerdeck/pkg/observability/prom"
	"github.com/matzehuels/layerdeck/pkg/scene"
)

func heroScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New()
	hero := &scene.Node{Name: "Hero", Actor: &scene.Actor{Composition: "Body"}}
	body := &scene.Node{Name: "Body"}
	steps := []struct{ parent, n *scene.Node }{
		{nil, hero},
		{hero, body},
		{body, &scene.Node{Name: "L1", Renderer: scene.NewRenderer(true)}},
		{body, &scene.Node{Name: "L2", Renderer: scene.NewRenderer(true)}},
		{hero, &scene.Node{Name: "Cam", Camera: true}},
		{nil, &scene.Node{Name: "Lamp", Renderer: scene.NewRenderer(true)}},
	}
	for _, st := range steps {
		if err := s.Add(st.parent, st.n); err != nil {
			t.Fatalf("add %s: %v", st.n.Name, err)
		}
	}
	return s
}

func newTestServer(t *testing.T, s *scene.Scene, opts Options) http.Handler {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}
	return New(s, opts).Handler()
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func rowsByPath(t *testing.T, body []byte) map[string]RowView {
	t.Helper()
	var resp struct {
		Rows []RowView `json:"rows"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode rows: %v\n%s", err, body)
	}
	out := map[string]RowView{}
	for _, r := range resp.Rows {
		out[r.Path] = r
	}
	return out
}

func iconState(row RowView, icon string) string {
	for _, ic := range row.Icons {
		if ic.Icon == icon {
			return ic.State
		}
	}
	return ""
}

func TestGetHealth(t *testing.T) {
	h := newTestServer(t, heroScene(t), Options{})
	rr := do(t, h, http.MethodGet, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp["status"] != "ok" {
		t.Errorf("body = %s", rr.Body)
	}
}

func TestGetRows(t *testing.T) {
	h := newTestServer(t, heroScene(t), Options{IconWidth: 16, RowWidth: 200})
	rr := do(t, h, http.MethodGet, "/api/rows")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	rows := rowsByPath(t, rr.Body.Bytes())
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(rows))
	}

	tests := []struct {
		path    string
		kind    string
		managed bool
		icons   int
	}{
		{"Hero", "root", true, 4},
		{"Hero/Body", "group", true, 4},
		{"Hero/Body/L1", "layer", true, 4},
		{"Hero/Cam", "camera", true, 1},
		{"Lamp", "layer", false, 0},
	}
	for _, tt := range tests {
		r, ok := rows[tt.path]
		if !ok {
			t.Errorf("missing row %s", tt.path)
			continue
		}
		if r.Kind != tt.kind || r.Managed != tt.managed || len(r.Icons) != tt.icons {
			t.Errorf("%s = kind %s managed %v icons %d, want %s %v %d",
				tt.path, r.Kind, r.Managed, len(r.Icons), tt.kind, tt.managed, tt.icons)
		}
	}

	minus := rows["Hero/Body/L1"].Icons[3]
	if minus.Icon != "minus" || minus.Slot != 3 || minus.Rect.X != 200-16 || minus.Rect.W != 16 {
		t.Errorf("L1 minus icon = %+v", minus)
	}
}

func TestPostAction(t *testing.T) {
	s := heroScene(t)
	l1, _ := s.Find("Hero/Body/L1")
	l2, _ := s.Find("Hero/Body/L2")
	saves := 0
	h := newTestServer(t, s, Options{Save: func(*scene.Scene) error { saves++; return nil }})

	rr := do(t, h, http.MethodPost, "/api/nodes/"+l1.ID.String()+"/next")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body)
	}
	if !l1.Renderer.Enabled() || l2.Renderer.Enabled() {
		t.Errorf("after next: L1=%v L2=%v", l1.Renderer.Enabled(), l2.Renderer.Enabled())
	}
	if saves != 1 {
		t.Errorf("saves = %d, want 1", saves)
	}

	var resp ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Icon != "next" || resp.Node.Path != "Hero/Body/L1" {
		t.Errorf("resp = %+v", resp)
	}
	if got := iconState(resp.Node, "next"); got != "highlighted" {
		t.Errorf("L1 next state = %q, want highlighted", got)
	}
}

func TestPostComposition(t *testing.T) {
	s := heroScene(t)
	hero, _ := s.Find("Hero")
	h := newTestServer(t, s, Options{})

	rr := do(t, h, http.MethodPost, "/api/nodes/"+hero.ID.String()+"/composition")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body)
	}
	var resp ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Composition == nil || resp.Composition.Key != "NewCompositionMap1" {
		t.Errorf("composition = %+v", resp.Composition)
	}
}

func TestPostActionErrors(t *testing.T) {
	s := heroScene(t)
	hero, _ := s.Find("Hero")
	cam, _ := s.Find("Hero/Cam")
	lamp, _ := s.Find("Lamp")
	h := newTestServer(t, s, Options{})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"bad id", "/api/nodes/not-a-uuid/plus", http.StatusBadRequest},
		{"bad action", "/api/nodes/" + hero.ID.String() + "/toggle", http.StatusBadRequest},
		{"unknown node", "/api/nodes/" + scene.NewID().String() + "/plus", http.StatusNotFound},
		{"next on root", "/api/nodes/" + hero.ID.String() + "/next", http.StatusConflict},
		{"camera", "/api/nodes/" + cam.ID.String() + "/minus", http.StatusConflict},
		{"unmanaged", "/api/nodes/" + lamp.ID.String() + "/minus", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, tt.path)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body)
			}
		})
	}
	if !lamp.Renderer.Enabled() {
		t.Error("unmanaged renderer was toggled")
	}
}

func TestPostActionSaveFailure(t *testing.T) {
	s := heroScene(t)
	body, _ := s.Find("Hero/Body")
	h := newTestServer(t, s, Options{Save: func(*scene.Scene) error { return errors.New("disk full") }})

	rr := do(t, h, http.MethodPost, "/api/nodes/"+body.ID.String()+"/minus")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestGetScene(t *testing.T) {
	h := newTestServer(t, heroScene(t), Options{})
	rr := do(t, h, http.MethodGet, "/api/scene")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	s, err := scene.Read(rr.Body, scene.FormatJSON)
	if err != nil {
		t.Fatalf("decode scene: %v", err)
	}
	if s.Len() != 6 {
		t.Errorf("nodes = %d, want 6", s.Len())
	}
}

func TestGetDiagram(t *testing.T) {
	h := newTestServer(t, heroScene(t), Options{})
	rr := do(t, h, http.MethodGet, "/api/diagram?detailed=true")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Body.String(), "digraph G {") {
		t.Errorf("body = %s", rr.Body)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks, err := prom.New(reg)
	if err != nil {
		t.Fatal(err)
	}
	observability.SetControllerHooks(hooks)
	observability.SetPanelHooks(hooks)
	defer observability.Reset()

	s := heroScene(t)
	body, _ := s.Find("Hero/Body")
	h := newTestServer(t, s, Options{Gatherer: reg})
	do(t, h, http.MethodPost, "/api/nodes/"+body.ID.String()+"/plus")

	rr := do(t, h, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	for _, want := range []string{
		`layerdeck_activations_total{action="plus",kind="group"} 1`,
		"layerdeck_draw_passes_total",
	} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
