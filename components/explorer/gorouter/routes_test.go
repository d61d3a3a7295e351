package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"testing"

	router "github.com/goliatone/go-router"

	explorer "github.com/goliatone/go-datascope/components/explorer"
	"github.com/goliatone/go-datascope/components/explorer/commands"
	"github.com/goliatone/go-datascope/components/explorer/httpapi"
	"github.com/goliatone/go-datascope/components/explorer/queries"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
	if err := Register(Config[struct{}]{Router: newMockRouter()}); err == nil {
		t.Fatalf("expected error when controller missing")
	}
}

func newTestConfig(t *testing.T) (Config[struct{}], *mockRouter, *explorer.Service, *capturingRenderer) {
	t.Helper()
	mock := newMockRouter()
	service := explorer.NewService(explorer.Options{})
	renderer := &capturingRenderer{}
	controller, err := explorer.NewController(explorer.ControllerOptions{
		Service:  service,
		Renderer: renderer,
	})
	if err != nil {
		t.Fatalf("NewController returned error: %v", err)
	}
	executor := &httpapi.CommandExecutor{
		UploadCommander: commands.NewUploadDatasetCommand(service, nil),
		ClearCommander:  commands.NewClearDatasetCommand(service, nil),
		ChartQuerier:    queries.NewChartQuery(service),
		ReportQuerier:   queries.NewReportQuery(service),
	}
	return Config[struct{}]{
		Router:     mock,
		Controller: controller,
		API:        executor,
	}, mock, service, renderer
}

func TestRegisterPageRoute(t *testing.T) {
	cfg, mock, _, renderer := newTestConfig(t)
	if err := Register(cfg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	h, ok := mock.routes["GET:/explore/"]
	if !ok {
		t.Fatalf("expected page route, got %v", mock.registered())
	}
	ctx := newMockContext()
	ctx.query["x"] = "city"
	ctx.query["cols"] = "city, sales"
	ctx.query["rows"] = "7"
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if renderer.calls != 1 {
		t.Fatalf("renderer not invoked")
	}
	if len(ctx.body) == 0 {
		t.Fatalf("expected response body")
	}
	if ctx.headers["Content-Type"] != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", ctx.headers["Content-Type"])
	}
}

func TestPageStateFromQuery(t *testing.T) {
	ctx := newMockContext()
	ctx.query["x"] = "city"
	ctx.query["y"] = "sales"
	ctx.query["agg"] = "sum"
	ctx.query["all"] = "true"
	ctx.query["chart"] = "bar"
	ctx.query["cols"] = "city, sales,"
	ctx.query["rows"] = "25"

	state := pageStateFromQuery(ctx)
	if state.XAxis != "city" || state.YAxis != "sales" {
		t.Fatalf("unexpected axes: %+v", state)
	}
	if state.Aggregate != explorer.AggregationSum || state.ChartKind != explorer.ChartBar {
		t.Fatalf("unexpected chart state: %+v", state)
	}
	if !state.AllRows || state.RowCount != 25 {
		t.Fatalf("unexpected toggles: %+v", state)
	}
	if len(state.SelectedColumns) != 2 || state.SelectedColumns[1] != "sales" {
		t.Fatalf("unexpected columns: %v", state.SelectedColumns)
	}
}

func multipartBody(t *testing.T, fileName, content string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile returned error: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing part failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer failed: %v", err)
	}
	return buf.Bytes(), writer.FormDataContentType()
}

func TestUploadRouteReplacesDataset(t *testing.T) {
	cfg, mock, service, _ := newTestConfig(t)
	if err := Register(cfg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	body, contentType := multipartBody(t, "sample.csv", "city,sales\nA,10\nB,20\n")
	ctx := newMockContext()
	ctx.body = body
	ctx.reqHeaders["Content-Type"] = contentType

	h := mock.routes["POST:/explore/upload"]
	if h == nil {
		t.Fatalf("expected upload route, got %v", mock.registered())
	}
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	ds, err := service.Current(context.Background())
	if err != nil {
		t.Fatalf("expected dataset loaded: %v", err)
	}
	if ds.FileName != "sample.csv" {
		t.Fatalf("unexpected dataset: %+v", ds)
	}
}

func TestUploadRouteShowsParseErrorOnPage(t *testing.T) {
	cfg, mock, service, renderer := newTestConfig(t)
	if err := Register(cfg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	body, contentType := multipartBody(t, "broken.csv", "a,b\n1,2,3\n")
	ctx := newMockContext()
	ctx.body = body
	ctx.reqHeaders["Content-Type"] = contentType

	if err := mock.routes["POST:/explore/upload"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if _, err := service.Current(context.Background()); !errors.Is(err, explorer.ErrNoDataset) {
		t.Fatalf("failed upload must not load a dataset, got %v", err)
	}
	if renderer.calls != 1 {
		t.Fatalf("expected page render after failed upload")
	}
	if msg, _ := renderer.data["upload_error"].(string); msg == "" {
		t.Fatalf("expected upload_error in page payload, got %v", renderer.data)
	}
}

func TestUploadRouteRejectsNonMultipart(t *testing.T) {
	cfg, mock, _, _ := newTestConfig(t)
	if err := Register(cfg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	ctx := newMockContext()
	ctx.body = []byte("plain text")
	ctx.reqHeaders["Content-Type"] = "text/plain"

	if err := mock.routes["POST:/explore/upload"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", ctx.status)
	}
}

func TestChartRouteWithoutDataset(t *testing.T) {
	cfg, mock, _, _ := newTestConfig(t)
	if err := Register(cfg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	ctx := newMockContext()
	ctx.body = []byte(`{"x_axis":"city","y_axis":"sales","kind":"line"}`)

	if err := mock.routes["POST:/explore/chart"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", ctx.status)
	}
}

func TestChartRouteRendersChart(t *testing.T) {
	cfg, mock, service, _ := newTestConfig(t)
	if err := Register(cfg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := service.Upload(context.Background(), "viz.csv", strings.NewReader("city,sales\nA,10\nB,20\nA,30\n")); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	ctx := newMockContext()
	ctx.body = []byte(`{"x_axis":"city","y_axis":"sales","aggregate":"sum","kind":"bar"}`)

	if err := mock.routes["POST:/explore/chart"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if ctx.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.status, ctx.body)
	}
	var result explorer.ChartResult
	if err := json.Unmarshal(ctx.body, &result); err != nil {
		t.Fatalf("decoding result failed: %v", err)
	}
	if result.Title != "Bar Chart: city vs sales (Sum)" {
		t.Fatalf("unexpected title: %q", result.Title)
	}
}

func TestReportAndDatasetRoutes(t *testing.T) {
	cfg, mock, service, _ := newTestConfig(t)
	if err := Register(cfg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := service.Upload(context.Background(), "viz.csv", strings.NewReader("city,sales\nA,10\n")); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	ctx := newMockContext()
	if err := mock.routes["GET:/explore/_report"](ctx); err != nil {
		t.Fatalf("report handler returned error: %v", err)
	}
	if ctx.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.status)
	}
	var report explorer.Report
	if err := json.Unmarshal(ctx.body, &report); err != nil {
		t.Fatalf("decoding report failed: %v", err)
	}
	if report.Overview.Rows != 1 {
		t.Fatalf("unexpected overview: %+v", report.Overview)
	}

	ctx = newMockContext()
	if err := mock.routes["DELETE:/explore/dataset"](ctx); err != nil {
		t.Fatalf("delete handler returned error: %v", err)
	}
	if _, err := service.Current(context.Background()); !errors.Is(err, explorer.ErrNoDataset) {
		t.Fatalf("expected dataset cleared, got %v", err)
	}
}

// --- Test helpers ---

type mockRouter struct {
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) registered() []string {
	var keys []string
	for key := range m.routes {
		keys = append(keys, key)
	}
	return keys
}

func (m *mockRouter) Group(prefix string) router.Router[struct{}] {
	return &mockRouter{
		prefix: m.prefix + prefix,
		routes: m.routes,
		ws:     m.ws,
	}
}

func (m *mockRouter) record(method, path string, handler router.HandlerFunc) {
	full := m.prefix + path
	m.routes[method+":"+full] = handler
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.GET), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.POST), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.DELETE), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	m.ws[m.prefix+path] = handler
	return mockRouteInfo{}
}

func (m *mockRouter) Handle(method router.HTTPMethod, path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(method), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Mount(prefix string) router.Router[struct{}] { return m.Group(prefix) }

func (m *mockRouter) WithGroup(path string, cb func(r router.Router[struct{}])) router.Router[struct{}] {
	cb(m.Group(path))
	return m
}

func (m *mockRouter) Use(mw ...router.MiddlewareFunc) router.Router[struct{}] { return m }

func (m *mockRouter) Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.PUT), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.PATCH), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Head(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.HEAD), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Static(prefix, root string, config ...router.Static) router.Router[struct{}] {
	return m
}

func (m *mockRouter) Routes() []router.RouteDefinition { return nil }

func (m *mockRouter) ValidateRoutes() []error { return nil }

func (m *mockRouter) PrintRoutes() {}

func (m *mockRouter) WithLogger(logger router.Logger) router.Router[struct{}] { return m }

type mockRouteInfo struct{}

func (mockRouteInfo) SetName(string) router.RouteInfo        { return mockRouteInfo{} }
func (mockRouteInfo) SetDescription(string) router.RouteInfo { return mockRouteInfo{} }
func (mockRouteInfo) SetSummary(string) router.RouteInfo     { return mockRouteInfo{} }
func (mockRouteInfo) AddTags(...string) router.RouteInfo     { return mockRouteInfo{} }
func (mockRouteInfo) AddParameter(name, in string, required bool, schema map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}
func (mockRouteInfo) SetRequestBody(desc string, required bool, content map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}
func (mockRouteInfo) AddResponse(code int, desc string, content map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}

type mockContext struct {
	ctx        context.Context
	headers    map[string]string
	reqHeaders map[string]string
	query      map[string]string
	body       []byte
	locals     map[any]any
	params     map[string]string
	status     int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:        context.Background(),
		headers:    map[string]string{},
		reqHeaders: map[string]string{},
		query:      map[string]string{},
		locals:     map[any]any{},
		params:     map[string]string{},
	}
}

func (m *mockContext) Context() context.Context {
	return m.ctx
}

func (m *mockContext) SetHeader(k, v string) router.Context {
	m.headers[k] = v
	return m
}

func (m *mockContext) Header(name string) string {
	return m.reqHeaders[name]
}

func (m *mockContext) Query(name string, defaultValue ...string) string {
	if v, ok := m.query[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Send(b []byte) error {
	m.body = append([]byte{}, b...)
	return nil
}

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Body() []byte { return m.body }

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}

func (m *mockContext) Method() string { return "" }

func (m *mockContext) Path() string { return "" }

func (m *mockContext) ParamsInt(key string, defaultValue int) int {
	if v, ok := m.params[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func (m *mockContext) QueryValues(name string) []string {
	if v, ok := m.query[name]; ok {
		return []string{v}
	}
	return nil
}

func (m *mockContext) QueryInt(name string, defaultValue int) int {
	if v, ok := m.query[name]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func (m *mockContext) Queries() map[string]string { return m.query }

func (m *mockContext) LocalsMerge(key any, value map[string]any) map[string]any { return value }

func (m *mockContext) Render(name string, bind any, layouts ...string) error { return nil }

func (m *mockContext) Cookie(cookie *router.Cookie) {}

func (m *mockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) CookieParser(out any) error { return nil }

func (m *mockContext) Redirect(location string, status ...int) error { return nil }

func (m *mockContext) RedirectToRoute(routeName string, params router.ViewContext, status ...int) error {
	return nil
}

func (m *mockContext) RedirectBack(fallback string, status ...int) error { return nil }

func (m *mockContext) Referer() string { return "" }

func (m *mockContext) OriginalURL() string { return "" }

func (m *mockContext) FormFile(key string) (*multipart.FileHeader, error) {
	return nil, errors.New("not implemented")
}

func (m *mockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) IP() string { return "" }

func (m *mockContext) Status(code int) router.Context {
	m.status = code
	return m
}

func (m *mockContext) SendString(body string) error { return m.Send([]byte(body)) }

func (m *mockContext) SendStatus(code int) error {
	m.status = code
	return nil
}

func (m *mockContext) SendStream(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return m.Send(data)
}

func (m *mockContext) NoContent(code int) error {
	m.status = code
	return nil
}

func (m *mockContext) Set(key string, value any) { m.locals[key] = value }

func (m *mockContext) Get(key string, def any) any {
	if v, ok := m.locals[key]; ok {
		return v
	}
	return def
}

func (m *mockContext) GetString(key string, def string) string {
	if v, ok := m.locals[key].(string); ok {
		return v
	}
	return def
}

func (m *mockContext) GetInt(key string, def int) int {
	if v, ok := m.locals[key].(int); ok {
		return v
	}
	return def
}

func (m *mockContext) GetBool(key string, def bool) bool {
	if v, ok := m.locals[key].(bool); ok {
		return v
	}
	return def
}

func (m *mockContext) Bind(v any) error { return json.Unmarshal(m.body, v) }

func (m *mockContext) SetContext(ctx context.Context) { m.ctx = ctx }

func (m *mockContext) Next() error { return nil }

func (m *mockContext) RouteName() string { return "" }

func (m *mockContext) RouteParams() map[string]string { return m.params }

type capturingRenderer struct {
	data  map[string]any
	calls int
}

func (r *capturingRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.calls++
	r.data, _ = data.(map[string]any)
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("rendered"))
	}
	return "rendered", nil
}
