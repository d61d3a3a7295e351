package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	explorer "github.com/goliatone/go-datascope/components/explorer"
	"github.com/goliatone/go-datascope/components/explorer/commands"
	"github.com/goliatone/go-datascope/components/explorer/httpapi"
)

// Config wires go-router with the explorer controller and API.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *explorer.Controller
	API            httpapi.Executor
	BasePath       string
	Routes         RouteConfig
	MaxUploadBytes int64
}

// RouteConfig customizes the relative paths used for explorer endpoints.
type RouteConfig struct {
	Page    string
	Upload  string
	Chart   string
	Report  string
	Dataset string
}

// Register mounts the explorer routes (HTML page, upload, chart, JSON
// report) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/explore"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.Page, router.WrapHandler(func(ctx router.Context) error {
		return renderPage(ctx, cfg.Controller, pageStateFromQuery(ctx))
	}))

	group.Post(routes.Upload, router.WrapHandler(func(ctx router.Context) error {
		input, err := parseMultipartUpload(ctx, cfg.MaxUploadBytes)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		state := explorer.PageState{}
		if err := cfg.API.Upload(ctx.Context(), input); err != nil {
			// Fail-stop: show the parse error, keep whatever dataset
			// was loaded before.
			state.UploadError = err.Error()
		}
		return renderPage(ctx, cfg.Controller, state)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Chart, router.WrapHandler(func(ctx router.Context) error {
		var req explorer.ChartRequest
		if err := json.Unmarshal(ctx.Body(), &req); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		result, err := api.Chart(ctx.Context(), req)
		if err != nil {
			if errors.Is(err, explorer.ErrNoDataset) {
				return respondError(ctx, http.StatusConflict, err)
			}
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, result)
	}))

	r.Get(routes.Report, router.WrapHandler(func(ctx router.Context) error {
		report, err := api.Report(ctx.Context())
		if err != nil {
			if errors.Is(err, explorer.ErrNoDataset) {
				return respondError(ctx, http.StatusNotFound, err)
			}
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, report)
	}))

	r.Delete(routes.Dataset, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Clear(ctx.Context(), commands.ClearDatasetInput{}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "cleared"})
	}))
}

func renderPage(ctx router.Context, controller *explorer.Controller, state explorer.PageState) error {
	var buf bytes.Buffer
	if err := controller.RenderPage(ctx.Context(), state, &buf); err != nil {
		return respondError(ctx, http.StatusInternalServerError, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

// pageStateFromQuery decodes the widget values carried by the page URL.
func pageStateFromQuery(ctx router.Context) explorer.PageState {
	state := explorer.PageState{
		XAxis:     ctx.Query("x"),
		YAxis:     ctx.Query("y"),
		Aggregate: explorer.AggregationMode(ctx.Query("agg")),
		AllRows:   strings.EqualFold(ctx.Query("all"), "true"),
		ChartKind: explorer.ChartKind(ctx.Query("chart")),
	}
	if cols := strings.TrimSpace(ctx.Query("cols")); cols != "" {
		for _, col := range strings.Split(cols, ",") {
			if col = strings.TrimSpace(col); col != "" {
				state.SelectedColumns = append(state.SelectedColumns, col)
			}
		}
	}
	if rows := ctx.Query("rows"); rows != "" {
		if n, err := strconv.Atoi(rows); err == nil {
			state.RowCount = n
		}
	}
	return state
}

// parseMultipartUpload extracts the "file" part from a multipart body.
func parseMultipartUpload(ctx router.Context, maxBytes int64) (commands.UploadDatasetInput, error) {
	mediaType, params, err := mime.ParseMediaType(ctx.Header("Content-Type"))
	if err != nil {
		return commands.UploadDatasetInput{}, err
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return commands.UploadDatasetInput{}, errors.New("gorouter: multipart form expected")
	}
	reader := multipart.NewReader(bytes.NewReader(ctx.Body()), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return commands.UploadDatasetInput{}, err
		}
		if part.FormName() != "file" {
			continue
		}
		var src io.Reader = part
		if maxBytes > 0 {
			src = io.LimitReader(part, maxBytes)
		}
		content, err := io.ReadAll(src)
		if err != nil {
			return commands.UploadDatasetInput{}, err
		}
		return commands.UploadDatasetInput{
			FileName: part.FileName(),
			Content:  content,
		}, nil
	}
	return commands.UploadDatasetInput{}, errors.New("gorouter: missing file field")
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Page == "" {
		routes.Page = "/"
	}
	if routes.Upload == "" {
		routes.Upload = "/upload"
	}
	if routes.Chart == "" {
		routes.Chart = "/chart"
	}
	if routes.Report == "" {
		routes.Report = "/_report"
	}
	if routes.Dataset == "" {
		routes.Dataset = "/dataset"
	}
	return routes
}
