package explorer

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

type capturingRenderer struct {
	name  string
	data  map[string]any
	calls int
}

func (r *capturingRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.name = name
	r.data, _ = data.(map[string]any)
	r.calls++
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("ok"))
	}
	return "ok", nil
}

func newTestController(t *testing.T) (*Controller, *Service, *capturingRenderer) {
	t.Helper()
	service := NewService(Options{})
	renderer := &capturingRenderer{}
	controller, err := NewController(ControllerOptions{Service: service, Renderer: renderer})
	if err != nil {
		t.Fatalf("NewController returned error: %v", err)
	}
	return controller, service, renderer
}

func TestPagePayloadWithoutDataset(t *testing.T) {
	controller, _, _ := newTestController(t)

	payload, err := controller.PagePayload(context.Background(), PageState{})
	if err != nil {
		t.Fatalf("PagePayload returned error: %v", err)
	}
	if payload["has_dataset"] != false {
		t.Fatalf("expected has_dataset false, got %v", payload["has_dataset"])
	}
	if payload["base_path"] != "/explore" {
		t.Fatalf("unexpected base path: %v", payload["base_path"])
	}
	if _, ok := payload["overview"]; ok {
		t.Fatalf("overview must not be present without a dataset")
	}
}

func TestPagePayloadCarriesUploadError(t *testing.T) {
	controller, _, _ := newTestController(t)

	payload, err := controller.PagePayload(context.Background(), PageState{UploadError: "boom"})
	if err != nil {
		t.Fatalf("PagePayload returned error: %v", err)
	}
	if payload["upload_error"] != "boom" {
		t.Fatalf("expected upload error surfaced, got %v", payload["upload_error"])
	}
}

func TestPagePayloadWithDataset(t *testing.T) {
	controller, service, _ := newTestController(t)
	ctx := context.Background()
	if _, err := service.Upload(ctx, "viz.csv", strings.NewReader(vizCSV)); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	payload, err := controller.PagePayload(ctx, PageState{})
	if err != nil {
		t.Fatalf("PagePayload returned error: %v", err)
	}
	if payload["has_dataset"] != true {
		t.Fatalf("expected has_dataset true")
	}
	for _, key := range []string{"dataset", "overview", "schema", "numeric", "categorical", "preview", "selection", "columns", "viz"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing payload key %q", key)
		}
	}

	viz := payload["viz"].(map[string]any)
	// Both axes default to the first column, so aggregation is forced raw.
	if viz["x"] != "city" || viz["y"] != "city" {
		t.Fatalf("unexpected default axes: %v", viz)
	}
	if viz["forced_raw"] != true || viz["aggregate"] != "raw" {
		t.Fatalf("expected forced raw aggregation, got %v", viz)
	}
	if _, ok := payload["chart"]; ok {
		t.Fatalf("no chart must render without an explicit trigger")
	}
}

func TestPagePayloadRendersRequestedChart(t *testing.T) {
	controller, service, _ := newTestController(t)
	ctx := context.Background()
	if _, err := service.Upload(ctx, "viz.csv", strings.NewReader(vizCSV)); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	payload, err := controller.PagePayload(ctx, PageState{
		XAxis:     "city",
		YAxis:     "sales",
		Aggregate: AggregationSum,
		ChartKind: ChartBar,
	})
	if err != nil {
		t.Fatalf("PagePayload returned error: %v", err)
	}
	chart, ok := payload["chart"].(map[string]any)
	if !ok {
		t.Fatalf("expected chart in payload, got %v", payload["chart_error"])
	}
	if chart["title"] != "Bar Chart: city vs sales (Sum)" {
		t.Fatalf("unexpected chart title: %v", chart["title"])
	}
	if !strings.Contains(chart["html"].(string), "echarts") {
		t.Fatalf("expected chart markup")
	}
}

func TestPagePayloadSurfacesChartError(t *testing.T) {
	controller, service, _ := newTestController(t)
	ctx := context.Background()
	if _, err := service.Upload(ctx, "viz.csv", strings.NewReader(vizCSV)); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	payload, err := controller.PagePayload(ctx, PageState{
		XAxis:     "missing",
		YAxis:     "sales",
		ChartKind: ChartLine,
	})
	if err != nil {
		t.Fatalf("PagePayload returned error: %v", err)
	}
	if _, ok := payload["chart"]; ok {
		t.Fatalf("chart must not render for a broken request")
	}
	if payload["chart_error"] == nil || payload["chart_error"] == "" {
		t.Fatalf("expected chart_error in payload")
	}
}

func TestRenderPageInvokesRenderer(t *testing.T) {
	controller, _, renderer := newTestController(t)

	var buf bytes.Buffer
	if err := controller.RenderPage(context.Background(), PageState{}, &buf); err != nil {
		t.Fatalf("RenderPage returned error: %v", err)
	}
	if renderer.calls != 1 || renderer.name != "explorer" {
		t.Fatalf("renderer not invoked as expected: %+v", renderer)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected response body")
	}
}
