package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/api/http/handlers"
	"github.com/deskline/support-portal/internal/auth"
	"github.com/deskline/support-portal/internal/config"
	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/events"
	"github.com/deskline/support-portal/internal/observability"
	"github.com/deskline/support-portal/internal/repository/repotest"
	"github.com/deskline/support-portal/internal/service"
	"github.com/deskline/support-portal/internal/storage"
)

type pinger struct{ err error }

func (p pinger) Ping(_ context.Context) error { return p.err }

type testServer struct {
	app           *fiber.App
	tokens        *auth.TokenManager
	audit         *repotest.AuditLog
	notifications *repotest.Notifications
	metrics       *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	profiles := repotest.NewProfiles(
		domain.Profile{ID: "admin-1", Name: "Ana Admin", Email: "ana@example.com", Role: domain.RoleAdmin, IsActive: true},
	)
	ticketRepo := repotest.NewTickets()
	audit := &repotest.AuditLog{}
	notifications := &repotest.Notifications{}
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	notificationSvc := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notifications,
		ProfileRepo:      profiles,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	ticketSvc := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		AuditRepo:     audit,
		Notifications: notificationSvc,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
		Policy:        config.Defaults().Tickets,
	})
	commentSvc := service.NewCommentService(service.CommentDependencies{
		CommentRepo:   &repotest.Comments{},
		Tickets:       ticketSvc,
		Notifications: notificationSvc,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})
	profileSvc := service.NewProfileService(profiles, logger)
	filesDir := t.TempDir()
	attachmentSvc := service.NewAttachmentService(storage.NewDiskStore(filesDir, "http://files.test"), 1<<20, logger)

	tokens := auth.NewTokenManager("test-secret", "", "", time.Hour)
	loc := time.FixedZone("BRT", -3*60*60)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("support-portal", "test", pinger{}, pinger{err: errors.New("redis down")}, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketSvc, loc),
		Comments:       handlers.NewCommentsHandler(commentSvc),
		Attachments:    handlers.NewAttachmentsHandler(attachmentSvc),
		Dashboard:      handlers.NewDashboardHandler(ticketSvc, loc),
		Notifications:  handlers.NewNotificationsHandler(notificationSvc),
		Users:          handlers.NewUsersHandler(profileSvc),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, profileSvc),
		FilesDir:       filesDir,
	})
	return &testServer{app: app, tokens: tokens, audit: audit, notifications: notifications, metrics: metrics}
}

func (s *testServer) token(t *testing.T, sub, email, name string) string {
	t.Helper()
	raw, _, err := s.tokens.GenerateToken(sub, email, name)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

type envelope struct {
	Data     json.RawMessage `json:"data"`
	Warnings []string        `json:"warnings"`
	Error    *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, raw []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return env
}

func createTicket(t *testing.T, s *testServer, token, title string, priority domain.TicketPriority) map[string]any {
	t.Helper()
	resp, raw := s.do(t, nethttp.MethodPost, "/tickets", token, map[string]any{
		"title": title, "description": "detalhes", "priority": priority, "category": "Acessos",
	})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, raw)
	}
	var ticket map[string]any
	if err := json.Unmarshal(decode(t, raw).Data, &ticket); err != nil {
		t.Fatal(err)
	}
	return ticket
}

func TestUnauthenticatedRequestsGetErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	resp, raw := s.do(t, nethttp.MethodGet, "/tickets", "", nil)
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if env := decode(t, raw); env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Errorf("body = %s", raw)
	}
	if s.metrics.Snapshot().Errors["/tickets|GET|UNAUTHORIZED"] != 1 {
		t.Errorf("errors = %v", s.metrics.Snapshot().Errors)
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"unknown path", nethttp.MethodGet, "/nowhere"},
		{"missing stored file", nethttp.MethodGet, "/files/user-1/absent.png"},
		{"unknown method on known prefix", nethttp.MethodPost, "/dashboard/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := s.do(t, tt.method, tt.path, "", nil)
			if resp.StatusCode != nethttp.StatusNotFound {
				t.Errorf("status = %d: %s", resp.StatusCode, raw)
			}
			if env := decode(t, raw); env.Error == nil || env.Error.Code != "NOT_FOUND" {
				t.Errorf("body = %s", raw)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	if resp, _ := s.do(t, nethttp.MethodGet, "/health/live", "", nil); resp.StatusCode != nethttp.StatusOK {
		t.Errorf("live = %d", resp.StatusCode)
	}
	resp, raw := s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	if resp.StatusCode != nethttp.StatusServiceUnavailable || !strings.Contains(string(raw), "redis down") {
		t.Errorf("ready = %d %s", resp.StatusCode, raw)
	}
}

func TestTicketLifecycle(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "user-1", "caio@example.com", "Caio")
	admin := s.token(t, "admin-1", "ana@example.com", "Ana Admin")

	vpn := createTicket(t, s, user, "VPN caiu", domain.TicketPriorityCritical)
	createTicket(t, s, user, "Impressora", domain.TicketPriorityLow)
	id := vpn["id"].(string)

	resp, raw := s.do(t, nethttp.MethodGet, "/tickets?q=vpn", user, nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("list = %d %s", resp.StatusCode, raw)
	}
	var list struct {
		Tickets    []map[string]any `json:"tickets"`
		Total      int              `json:"total"`
		Categories []string         `json:"categories"`
	}
	if err := json.Unmarshal(decode(t, raw).Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Tickets) != 1 || list.Total != 2 || list.Tickets[0]["id"] != id {
		t.Errorf("list = %+v", list)
	}

	if resp, _ := s.do(t, nethttp.MethodPatch, "/tickets/"+id+"/status", user, map[string]string{"status": "RESOLVED"}); resp.StatusCode != nethttp.StatusForbidden {
		t.Errorf("user status change = %d, want 403", resp.StatusCode)
	}
	resp, raw = s.do(t, nethttp.MethodPatch, "/tickets/"+id+"/status", admin, map[string]string{"status": "RESOLVED"})
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("admin status change = %d %s", resp.StatusCode, raw)
	}
	var updated map[string]any
	_ = json.Unmarshal(decode(t, raw).Data, &updated)
	if updated["status"] != "RESOLVED" || updated["resolved_at"] == nil {
		t.Errorf("updated = %v", updated)
	}

	resp, raw = s.do(t, nethttp.MethodGet, "/tickets/"+id+"/audit", user, nil)
	if resp.StatusCode != nethttp.StatusOK || !strings.Contains(string(raw), "Status alterado para RESOLVED") {
		t.Errorf("audit = %d %s", resp.StatusCode, raw)
	}

	resp, raw = s.do(t, nethttp.MethodGet, "/notifications", user, nil)
	var inbox struct {
		Notifications []map[string]any `json:"notifications"`
		Unread        int              `json:"unread"`
	}
	_ = json.Unmarshal(decode(t, raw).Data, &inbox)
	if resp.StatusCode != nethttp.StatusOK || inbox.Unread != 1 {
		t.Fatalf("inbox = %d %s", resp.StatusCode, raw)
	}
	nid := inbox.Notifications[0]["id"].(string)
	if resp, _ := s.do(t, nethttp.MethodPost, "/notifications/"+nid+"/read", user, nil); resp.StatusCode != nethttp.StatusNoContent {
		t.Errorf("mark read = %d", resp.StatusCode)
	}
	if resp, _ := s.do(t, nethttp.MethodDelete, "/notifications/"+nid, user, nil); resp.StatusCode != nethttp.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}
	if resp, _ := s.do(t, nethttp.MethodDelete, "/notifications/"+nid, user, nil); resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("stale delete = %d, want 404", resp.StatusCode)
	}
}

func TestBoardAndMove(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "user-1", "caio@example.com", "Caio")
	admin := s.token(t, "admin-1", "ana@example.com", "Ana Admin")
	id := createTicket(t, s, user, "ERP", domain.TicketPriorityHigh)["id"].(string)

	resp, raw := s.do(t, nethttp.MethodPost, "/tickets/board/move", admin, map[string]string{"ticket_id": id, "from": "OPEN", "to": "OPEN"})
	if resp.StatusCode != nethttp.StatusOK || !strings.Contains(string(raw), `"moved":false`) {
		t.Errorf("same-lane move = %d %s", resp.StatusCode, raw)
	}
	resp, raw = s.do(t, nethttp.MethodPost, "/tickets/board/move", admin, map[string]string{"ticket_id": id, "from": "OPEN", "to": "IN_PROGRESS"})
	if resp.StatusCode != nethttp.StatusOK || !strings.Contains(string(raw), `"moved":true`) {
		t.Fatalf("move = %d %s", resp.StatusCode, raw)
	}

	resp, raw = s.do(t, nethttp.MethodGet, "/tickets/board", admin, nil)
	var lanes []struct {
		Status  string           `json:"status"`
		Label   string           `json:"label"`
		Tickets []map[string]any `json:"tickets"`
	}
	if err := json.Unmarshal(decode(t, raw).Data, &lanes); err != nil || resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("board = %d %s", resp.StatusCode, raw)
	}
	if len(lanes) != 3 || lanes[1].Label != "Em Progresso" || len(lanes[1].Tickets) != 1 {
		t.Errorf("lanes = %+v", lanes)
	}
}

func TestPartialFailureIsReportedAsWarning(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "user-1", "caio@example.com", "Caio")
	admin := s.token(t, "admin-1", "ana@example.com", "Ana Admin")
	id := createTicket(t, s, user, "ERP", domain.TicketPriorityHigh)["id"].(string)

	s.audit.Fail = true
	resp, raw := s.do(t, nethttp.MethodPatch, "/tickets/"+id+"/status", admin, map[string]string{"status": "IN_PROGRESS"})
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status = %d %s", resp.StatusCode, raw)
	}
	env := decode(t, raw)
	if len(env.Warnings) != 1 || env.Warnings[0] != "audit" {
		t.Errorf("warnings = %v", env.Warnings)
	}
	if !strings.Contains(string(env.Data), `"IN_PROGRESS"`) {
		t.Errorf("data = %s", env.Data)
	}
}

func TestQueryValidation(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "user-1", "caio@example.com", "Caio")
	for _, path := range []string{
		"/tickets?sort=color",
		"/tickets?dir=sideways",
		"/tickets?date=15/03/2024",
		"/tickets?date_field=closed",
		"/tickets?tz=Mars/Olympus",
		"/dashboard?range=DECADE",
	} {
		resp, raw := s.do(t, nethttp.MethodGet, path, user, nil)
		if resp.StatusCode != nethttp.StatusBadRequest {
			t.Errorf("%s = %d %s, want 400", path, resp.StatusCode, raw)
		}
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "user-1", "caio@example.com", "Caio")
	createTicket(t, s, user, "VPN", domain.TicketPriorityLow)

	resp, raw := s.do(t, nethttp.MethodGet, "/tickets/export.xlsx", user, nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("export = %d %s", resp.StatusCode, raw)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "chamados_export_") {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(raw, []byte("PK")) {
		t.Error("body is not a zip container")
	}

	resp, raw = s.do(t, nethttp.MethodGet, "/tickets/export.xlsx?q=nada", user, nil)
	env := decode(t, raw)
	if resp.StatusCode != nethttp.StatusUnprocessableEntity || env.Error == nil || env.Error.Message != "Não há chamados para exportar com os filtros atuais." {
		t.Errorf("empty export = %d %s", resp.StatusCode, raw)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "user-1", "caio@example.com", "Caio")
	createTicket(t, s, user, "VPN", domain.TicketPriorityCritical)

	resp, raw := s.do(t, nethttp.MethodGet, "/dashboard?range=month", user, nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("dashboard = %d %s", resp.StatusCode, raw)
	}
	var body struct {
		Range   string           `json:"range"`
		Summary map[string]int   `json:"summary"`
		Chart   []map[string]any `json:"chart"`
	}
	if err := json.Unmarshal(decode(t, raw).Data, &body); err != nil {
		t.Fatal(err)
	}
	if body.Range != "MONTH" || len(body.Chart) != 30 || body.Summary["critical_active"] != 1 {
		t.Errorf("dashboard = %+v", body)
	}
}

func TestCommentsAndUsers(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "user-1", "caio@example.com", "Caio")
	admin := s.token(t, "admin-1", "ana@example.com", "Ana Admin")
	id := createTicket(t, s, user, "VPN", domain.TicketPriorityLow)["id"].(string)

	resp, raw := s.do(t, nethttp.MethodPost, "/tickets/"+id+"/comments", admin, map[string]string{"content": "Verificando"})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("comment = %d %s", resp.StatusCode, raw)
	}
	resp, raw = s.do(t, nethttp.MethodGet, "/tickets/"+id+"/comments", user, nil)
	if resp.StatusCode != nethttp.StatusOK || !strings.Contains(string(raw), `"author_role":"ADMIN"`) {
		t.Errorf("comments = %d %s", resp.StatusCode, raw)
	}

	if resp, _ := s.do(t, nethttp.MethodGet, "/users", user, nil); resp.StatusCode != nethttp.StatusForbidden {
		t.Errorf("user listing users = %d", resp.StatusCode)
	}
	resp, raw = s.do(t, nethttp.MethodPut, "/users/admin-1", admin, map[string]any{"is_active": false})
	if resp.StatusCode != nethttp.StatusConflict {
		t.Errorf("self deactivate = %d %s", resp.StatusCode, raw)
	}
	resp, raw = s.do(t, nethttp.MethodPut, "/users/user-1", admin, map[string]any{"role": "ADMIN"})
	if resp.StatusCode != nethttp.StatusOK || !strings.Contains(string(raw), `"role":"ADMIN"`) {
		t.Errorf("promote = %d %s", resp.StatusCode, raw)
	}
	resp, raw = s.do(t, nethttp.MethodGet, "/me", user, nil)
	if resp.StatusCode != nethttp.StatusOK || !strings.Contains(string(raw), `"role":"ADMIN"`) {
		t.Errorf("me = %d %s", resp.StatusCode, raw)
	}
}

func TestAttachmentUpload(t *testing.T) {
	s := newTestServer(t)
	user := s.token(t, "user-1", "caio@example.com", "Caio")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "print.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake png bytes"))
	form.Close()

	req := httptest.NewRequest(nethttp.MethodPost, "/attachments", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+user)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("upload = %d %s", resp.StatusCode, raw)
	}
	var att struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(decode(t, raw).Data, &att)
	if !strings.HasPrefix(att.URL, "http://files.test/user-1/") || !strings.HasSuffix(att.URL, ".png") {
		t.Errorf("url = %q", att.URL)
	}

	path := strings.TrimPrefix(att.URL, "http://files.test")
	resp, fileBody := s.do(t, nethttp.MethodGet, "/files"+path, "", nil)
	if resp.StatusCode != nethttp.StatusOK || string(fileBody) != "fake png bytes" {
		t.Errorf("static file = %d %q", resp.StatusCode, fileBody)
	}

	resp, _ = s.do(t, nethttp.MethodPost, "/attachments", user, nil)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("upload without file = %d", resp.StatusCode)
	}
}

func TestRequestIDIsEchoedOrMinted(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("X-Request-ID"); got != "req-42" {
		t.Errorf("echoed id = %q", got)
	}

	resp, _ = s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	if got := resp.Header.Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("minted id = %q, want a uuid", got)
	}
}
