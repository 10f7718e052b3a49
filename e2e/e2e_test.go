//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"bookclub-go/internal/config"
	"bookclub-go/internal/db"
	clubdomain "bookclub-go/internal/domain/club"
	notificationdomain "bookclub-go/internal/domain/notification"
	readerdomain "bookclub-go/internal/domain/reader"
	clubrepo "bookclub-go/internal/repository/postgres/club"
	notificationrepo "bookclub-go/internal/repository/postgres/notification"
	readerrepo "bookclub-go/internal/repository/postgres/reader"
	"bookclub-go/internal/transport/httpserver"
	"bookclub-go/internal/transport/httpserver/handler"
	"bookclub-go/pkg/logger"
	"bookclub-go/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.New(io.Discard, slog.LevelError, "json")

	dbConn, err := db.NewPostgres(config.DBConfig{DSN: dsn}, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	notificationRepo := notificationrepo.NewPostgres(dbConn)
	notificationService := notificationdomain.NewService(notificationRepo)
	readerRepo := readerrepo.NewPostgres(dbConn)
	readerService := readerdomain.NewService(readerRepo, notificationService, bcrypt.MinCost)
	clubRepo := clubrepo.NewPostgres(dbConn)
	clubService := clubdomain.NewService(clubRepo, notificationService)

	tokens := token.NewManager("e2e-access-secret", "e2e-refresh-secret", time.Minute, time.Hour)
	handlers := handler.New(readerService, clubService, notificationService, tokens, log)

	router := httpserver.NewRouter(handlers, tokens)
	server := httptest.NewServer(router)

	return &testEnv{server: server, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE notification_receipts, notifications, membership_requests, memberships, clubs, readers RESTART IDENTITY CASCADE",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, accessToken string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type readerResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	GivenName string    `json:"given_name"`
	Surname   string    `json:"surname"`
	JoinedAt  time.Time `json:"joined_at"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type clubResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Visibility  string    `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
}

type clubViewResponse struct {
	Club           clubResponse `json:"club"`
	Role           string       `json:"role"`
	RequestPending bool         `json:"request_pending"`
}

type clubListResponse struct {
	Clubs []clubResponse `json:"clubs"`
}

type requestItemResponse struct {
	ID          string     `json:"id"`
	ReaderID    string     `json:"reader_id"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	EvaluatorID *string    `json:"evaluator_id"`
	EvaluatedAt *time.Time `json:"evaluated_at"`
}

type requestListResponse struct {
	Requests []requestItemResponse `json:"requests"`
}

type memberItemResponse struct {
	ReaderID  string    `json:"reader_id"`
	Role      string    `json:"role"`
	IsCreator bool      `json:"is_creator"`
	JoinedAt  time.Time `json:"joined_at"`
}

type memberListResponse struct {
	Members []memberItemResponse `json:"members"`
}

type notificationItemResponse struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	SourceReaderID string    `json:"source_reader_id"`
	TargetReaderID *string   `json:"target_reader_id"`
	ClubID         *string   `json:"club_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	Viewed         bool      `json:"viewed"`
}

type notificationListResponse struct {
	Notifications []notificationItemResponse `json:"notifications"`
}

func registerAndLogin(t *testing.T, client *http.Client, baseURL, username string) (string, string) {
	t.Helper()

	resp, body := requestJSON(t, client, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "correct horse",
		"password_confirm": "correct horse",
		"given_name":       "Test",
		"surname":          "Reader",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, resp.StatusCode, string(body))
	}
	var created readerResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode reader: %v", err)
	}

	resp, body = requestJSON(t, client, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"login":    username,
		"password": "correct horse",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, resp.StatusCode, string(body))
	}
	var pair tokenPairResponse
	if err := json.Unmarshal(body, &pair); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}

	return created.ID, pair.AccessToken
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.StatusCode, string(body))
	}
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %q", errResp.Error.Code)
	}

	readerID, access := registerAndLogin(t, client, env.server.URL, "agatha")

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", access, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var me readerResponse
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != readerID || me.Username != "agatha" {
		t.Fatalf("unexpected me response: %+v", me)
	}

	// A fresh reader gets a welcome notification.
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/notifications", access, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var feed notificationListResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(feed.Notifications) != 1 || feed.Notifications[0].Type != "registered" {
		t.Fatalf("expected a single registered notification, got %+v", feed.Notifications)
	}

	// Duplicate registration is rejected.
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/auth/register", "", map[string]string{
		"username":         "agatha",
		"email":            "other@example.com",
		"password":         "correct horse",
		"password_confirm": "correct horse",
		"given_name":       "Test",
		"surname":          "Reader",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EMembershipWorkflow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	adminID, adminToken := registerAndLogin(t, client, env.server.URL, "organizer")
	requesterID, requesterToken := registerAndLogin(t, client, env.server.URL, "newcomer")

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/clubs", adminToken, map[string]string{
		"name":       "Mystery Lovers",
		"visibility": "public",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}
	var created clubResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode club: %v", err)
	}
	if created.Slug != "mystery-lovers" {
		t.Fatalf("expected slug mystery-lovers, got %q", created.Slug)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/search?q=myst", requesterToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var found clubListResponse
	if err := json.Unmarshal(body, &found); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(found.Clubs) != 1 || found.Clubs[0].Slug != "mystery-lovers" {
		t.Fatalf("expected the club in search results, got %+v", found.Clubs)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/clubs/mystery-lovers/requests", requesterToken, map[string]string{
		"message": "I love whodunits",
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/mystery-lovers", requesterToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var view clubViewResponse
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if !view.RequestPending || view.Role != "" {
		t.Fatalf("expected pending request without role, got %+v", view)
	}

	// The admin sees the request in their feed via club fan-out.
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/notifications", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var adminFeed notificationListResponse
	if err := json.Unmarshal(body, &adminFeed); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	requestedID := ""
	for _, n := range adminFeed.Notifications {
		if n.Type == "membership_requested" && n.SourceReaderID == requesterID {
			requestedID = n.ID
		}
	}
	if requestedID == "" {
		t.Fatalf("expected membership_requested in admin feed, got %+v", adminFeed.Notifications)
	}

	// The requester, not an admin, must not see the fan-out.
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/notifications", requesterToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var requesterFeed notificationListResponse
	if err := json.Unmarshal(body, &requesterFeed); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	for _, n := range requesterFeed.Notifications {
		if n.Type == "membership_requested" {
			t.Fatalf("requester must not see the club fan-out")
		}
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/mystery-lovers/admin/requests", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var requests requestListResponse
	if err := json.Unmarshal(body, &requests); err != nil {
		t.Fatalf("decode requests: %v", err)
	}
	if len(requests.Requests) != 1 || requests.Requests[0].Status != "open" {
		t.Fatalf("expected one open request, got %+v", requests.Requests)
	}
	requestID := requests.Requests[0].ID

	// Non-admins hit the unified gate.
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/mystery-lovers/admin/requests", requesterToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, string(body))
	}

	approveURL := fmt.Sprintf("%s/api/clubs/mystery-lovers/admin/requests/%s/approve", env.server.URL, requestID)
	resp, body = requestJSON(t, client, http.MethodPost, approveURL, adminToken, map[string]string{"role": "participant"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", resp.StatusCode, string(body))
	}

	// A second approval finds the request already settled.
	resp, body = requestJSON(t, client, http.MethodPost, approveURL, adminToken, map[string]string{"role": "reader"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/mystery-lovers", requesterToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Role != "participant" {
		t.Fatalf("expected participant role, got %q", view.Role)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/mystery-lovers/admin/members", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var members memberListResponse
	if err := json.Unmarshal(body, &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members.Members))
	}
	for _, m := range members.Members {
		if m.ReaderID == adminID && !m.IsCreator {
			t.Fatalf("expected creator flag on the organizer")
		}
		if m.ReaderID == requesterID && m.Role != "participant" {
			t.Fatalf("expected participant role, got %q", m.Role)
		}
	}

	// Toggle a notification and verify the read state sticks.
	toggleURL := fmt.Sprintf("%s/api/notifications/%s/toggle-viewed", env.server.URL, requestedID)
	resp, body = requestJSON(t, client, http.MethodPost, toggleURL, adminToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", resp.StatusCode, string(body))
	}
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/notifications", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &adminFeed); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	for _, n := range adminFeed.Notifications {
		if n.ID == requestedID && !n.Viewed {
			t.Fatalf("expected notification marked viewed")
		}
	}

	// The member leaves; the creator cannot.
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/clubs/mystery-lovers/leave", requesterToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", resp.StatusCode, string(body))
	}
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/clubs/mystery-lovers/leave", adminToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, string(body))
	}

	// Disband hides the club from everyone.
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/clubs/mystery-lovers/admin/disband", adminToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", resp.StatusCode, string(body))
	}
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/mystery-lovers", adminToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2EPrivateClubLooksMissing(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	_, ownerToken := registerAndLogin(t, client, env.server.URL, "keeper")
	_, strangerToken := registerAndLogin(t, client, env.server.URL, "wanderer")

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/clubs", ownerToken, map[string]string{
		"name":       "Locked Vault",
		"visibility": "private",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/locked-vault", strangerToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/clubs/locked-vault/requests", strangerToken, map[string]string{})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/search?q=vault", strangerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var found clubListResponse
	if err := json.Unmarshal(body, &found); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(found.Clubs) != 0 {
		t.Fatalf("private club must not appear in search, got %+v", found.Clubs)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/clubs/locked-vault", ownerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected owner to see the club, got %d: %s", resp.StatusCode, string(body))
	}
}
