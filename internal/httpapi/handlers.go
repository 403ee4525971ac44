package httpapi

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sync"

	"github.com/nlquery/corecube/internal/config"
	"github.com/nlquery/corecube/internal/connector"
	"github.com/nlquery/corecube/internal/dataset"
	"github.com/nlquery/corecube/internal/dialect"
	"github.com/nlquery/corecube/internal/engine"
	"github.com/nlquery/corecube/internal/feedback"
	"github.com/nlquery/corecube/internal/llmgateway"
	"github.com/nlquery/corecube/internal/response"
	"github.com/nlquery/corecube/internal/session"
)

// maxTransportRows caps the rows a table response carries over the
// wire, per spec.md §6 ("≤ 25 rows; total_records carries the
// untruncated count").
const maxTransportRows = 25

// Handlers implements every operation spec.md §6's HTTP table names,
// taking and returning the DTOs in dto.go instead of
// http.ResponseWriter/http.Request, so an external router (the pack
// shows go-chi/chi) supplies the transport.
//
// Each Session gets its own Analysis Engine, because its Gateway's
// fallback skeleton (llmgateway.FallbackSkeleton) is bound to one
// Session's Dataset at construction time; a single process-wide
// Engine would leak one file's schema into another's fallback code.
// The Feedback Store stays process-wide, matching spec.md §3's "share
// no mutable state beyond the Feedback Store".
type Handlers struct {
	Files    *FileStore
	Sessions *session.Registry
	Config   *config.Config
	Feedback *feedback.Store

	mu      sync.Mutex
	engines map[string]*engine.Engine
}

// NewHandlers wires a Handlers over shared configuration, a file
// store, and a session registry; each Session's Engine is built lazily
// as its file is loaded.
func NewHandlers(cfg *config.Config, store *feedback.Store, files *FileStore, sessions *session.Registry) *Handlers {
	return &Handlers{
		Files:    files,
		Sessions: sessions,
		Config:   cfg,
		Feedback: store,
		engines:  make(map[string]*engine.Engine),
	}
}

func (h *Handlers) engineFor(sessionID string) (*engine.Engine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	eng, ok := h.engines[sessionID]
	if !ok {
		return nil, fmt.Errorf("httpapi: no engine loaded for session %q", sessionID)
	}
	return eng, nil
}

// Upload implements POST /upload/: persist the file, load it through
// the connector for its extension, infer its Dataset, register it
// into a fresh dialect Engine, and create a Session keyed by the same
// id the FileStore assigned.
func (h *Handlers) Upload(ctx context.Context, filename, description string, content io.Reader) (UploadResponse, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	info, err := h.Files.Save(filename, description, contentType, content)
	if err != nil {
		return UploadResponse{}, err
	}

	if _, err := h.loadSession(ctx, info); err != nil {
		return UploadResponse{}, err
	}

	return UploadResponse{FileID: info.FileID, Filename: info.Filename, Status: "uploaded"}, nil
}

// Load implements POST /files/{id}/load: (re)build the Session for an
// already-uploaded file, for example after a process restart dropped
// the in-memory Session registry.
func (h *Handlers) Load(ctx context.Context, fileID string) (LoadResponse, error) {
	info, err := h.Files.Get(fileID)
	if err != nil {
		return LoadResponse{}, err
	}
	if _, err := h.loadSession(ctx, info); err != nil {
		return LoadResponse{}, err
	}
	return LoadResponse{Status: "loaded", Message: fmt.Sprintf("%s is ready to query", info.Filename), FileID: fileID}, nil
}

func (h *Handlers) loadSession(ctx context.Context, info FileInfo) (*session.Session, error) {
	conn, err := connector.ForPath(info.Path)
	if err != nil {
		return nil, err
	}
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("httpapi: connect %s: %w", info.Filename, err)
	}
	defer conn.Close()

	loaded, err := conn.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("httpapi: load %s: %w", info.Filename, err)
	}

	eng, err := dialect.NewEngine(ctx, "")
	if err != nil {
		return nil, err
	}
	if err := eng.RegisterTable(ctx, loaded.TableName, loaded.ColumnOrder, loaded.Rows); err != nil {
		eng.Close()
		return nil, err
	}

	ds := dataset.Build(loaded.TableName, info.Description, loaded.ColumnOrder, loaded.Rows)
	registry := dataset.NewRegistry(ds)

	sess := session.New(registry, eng)
	sess.ID = info.FileID
	h.Sessions.Add(sess)

	gw, err := llmgateway.Build(h.Config, registry.All())
	if err != nil {
		return nil, err
	}
	sessionEngine := engine.New(gw, h.Feedback)

	h.mu.Lock()
	h.engines[sess.ID] = sessionEngine
	h.mu.Unlock()

	return sess, nil
}

// Query implements POST /query/.
func (h *Handlers) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	sess, err := h.Sessions.Get(req.FileID)
	if err != nil {
		return QueryResponse{}, err
	}
	eng, err := h.engineFor(req.FileID)
	if err != nil {
		return QueryResponse{}, err
	}
	resp := eng.Execute(ctx, sess, req.Query)
	return toQueryResponse(req.Query, sess.LastCode, resp), nil
}

// Visualization implements POST /visualization/: it phrases a
// chart-oriented question from the structured request fields and
// reuses the Analysis Engine rather than special-casing chart
// generation, so the same validation, retry, and feedback-store
// behavior apply.
func (h *Handlers) Visualization(ctx context.Context, req VisualizationRequest) (VisualizationResponse, error) {
	sess, err := h.Sessions.Get(req.FileID)
	if err != nil {
		return VisualizationResponse{}, err
	}
	eng, err := h.engineFor(req.FileID)
	if err != nil {
		return VisualizationResponse{}, err
	}

	question := visualizationQuestion(req)
	resp := eng.Execute(ctx, sess, question)
	if resp.Tag != response.TagChart {
		return VisualizationResponse{}, fmt.Errorf("httpapi: visualization request did not produce a chart (got %s)", resp.Tag)
	}

	return VisualizationResponse{
		Chart:       chartPayload(resp.Chart),
		Type:        string(response.TagChart),
		ChartType:   resp.Chart.ChartType,
		XColumn:     req.XColumn,
		YColumn:     req.YColumn,
		Query:       question,
		Description: req.Title,
	}, nil
}

func visualizationQuestion(req VisualizationRequest) string {
	q := "visualize the data as a chart"
	if req.ChartType != "" {
		q += fmt.Sprintf(" using a %s chart", req.ChartType)
	}
	if req.XColumn != "" {
		q += fmt.Sprintf(" with %s on the x axis", req.XColumn)
	}
	if req.YColumn != "" {
		q += fmt.Sprintf(" and %s on the y axis", req.YColumn)
	}
	if req.Title != "" {
		q += fmt.Sprintf(" titled %q", req.Title)
	}
	return q
}

// ListFiles implements GET /files/.
func (h *Handlers) ListFiles(ctx context.Context) (FilesListResponse, error) {
	infos, err := h.Files.List()
	if err != nil {
		return FilesListResponse{}, err
	}
	return FilesListResponse{Files: infos}, nil
}

// FileDetail implements GET /files/{id}.
func (h *Handlers) FileDetail(ctx context.Context, fileID string) (FileDetailResponse, error) {
	info, err := h.Files.Get(fileID)
	if err != nil {
		return FileDetailResponse{}, err
	}
	_, engineLoaded := h.Sessions.Get(fileID)
	return FileDetailResponse{FileInfo: info, EngineLoaded: engineLoaded == nil}, nil
}

// CloseSession implements DELETE /session/{id}.
func (h *Handlers) CloseSession(ctx context.Context, sessionID string, deleteFile bool) (SessionCloseResponse, error) {
	if err := h.Sessions.Remove(sessionID); err != nil {
		return SessionCloseResponse{}, err
	}
	h.mu.Lock()
	delete(h.engines, sessionID)
	h.mu.Unlock()

	if deleteFile {
		if err := h.Files.Delete(sessionID); err != nil {
			return SessionCloseResponse{}, err
		}
	}
	return SessionCloseResponse{Status: "closed", Message: "session closed"}, nil
}

func toQueryResponse(query, sqlQuery string, resp response.Response) QueryResponse {
	out := QueryResponse{Type: string(resp.Tag), Query: query, SQLQuery: sqlQuery}

	switch resp.Tag {
	case response.TagScalar:
		out.Type = "number"
		out.Data = resp.Number
	case response.TagText:
		out.Type = "string"
		out.Data = resp.Message
		out.Analysis = resp.Message
	case response.TagTable:
		out.Type = "dataframe"
		rows := resp.Table.Rows
		out.TotalRecords = resp.Table.TotalRecords
		if len(rows) > maxTransportRows {
			rows = rows[:maxTransportRows]
			out.ResultsLimited = true
		}
		out.Data = rows
	case response.TagChart:
		out.Type = "chart"
		out.Chart = chartPayload(resp.Chart)
		out.ChartType = resp.Chart.ChartType
	case response.TagError:
		out.Type = "string"
		out.Analysis = resp.Err.Message
		out.Data = resp.Err.Message
	}
	return out
}

func chartPayload(c *response.ChartValue) any {
	if c == nil {
		return nil
	}
	if c.Format == response.ChartFormatApex {
		return c.Config
	}
	return c.Path
}
