package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kaspertech/crowdguard-console/config"
	"github.com/kaspertech/crowdguard-console/models"
)

// UpstreamError carries the backend's status code so handlers can surface
// CRUD failures with the original status.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
}

// UpstreamService is the typed client for the admin backend. The backend
// owns all persistence; the gateway only forwards requests, attaching the
// operator's bearer token.
type UpstreamService struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client
}

func NewUpstreamService(cfg config.UpstreamConfig) *UpstreamService {
	return &UpstreamService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// List endpoints wrap their results one level deeper than entity
// endpoints: { data: { data: [...], metadata: {...} } }.
type listBody struct {
	Data struct {
		Data     json.RawMessage     `json:"data"`
		Metadata models.ListMetadata `json:"metadata"`
	} `json:"data"`
}

type entityBody struct {
	Data json.RawMessage `json:"data"`
}

func (s *UpstreamService) do(ctx context.Context, method, path, token string, query url.Values, body interface{}, out interface{}) error {
	endpoint := s.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(resp.Body)
		message := strings.TrimSpace(string(data))
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil {
			if apiErr.Error != "" {
				message = apiErr.Error
			} else if apiErr.Message != "" {
				message = apiErr.Message
			}
		}
		return &UpstreamError{Status: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

func (s *UpstreamService) list(ctx context.Context, path, token string, query url.Values, out interface{}) (models.ListMetadata, error) {
	var body listBody
	if err := s.do(ctx, http.MethodGet, path, token, query, nil, &body); err != nil {
		return models.ListMetadata{}, err
	}
	if len(body.Data.Data) > 0 {
		if err := json.Unmarshal(body.Data.Data, out); err != nil {
			return models.ListMetadata{}, fmt.Errorf("failed to decode %s list: %w", path, err)
		}
	}
	return body.Data.Metadata, nil
}

func (s *UpstreamService) entity(ctx context.Context, method, path, token string, payload interface{}, out interface{}) error {
	var body entityBody
	if err := s.do(ctx, method, path, token, nil, payload, &body); err != nil {
		return err
	}
	if out != nil && len(body.Data) > 0 {
		if err := json.Unmarshal(body.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

func pageQuery(page, limit int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	return query
}

// Auth

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *UpstreamService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	creds := map[string]string{"email": email, "password": password}
	var result LoginResult
	if err := s.entity(ctx, http.MethodPost, "/admin/auth/login", "", creds, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// Cameras

type CameraFilters struct {
	Location   string
	EntranceID string
	IsActive   string
}

func (s *UpstreamService) ListCameras(ctx context.Context, token string, page, limit int, filters CameraFilters) ([]models.Camera, models.ListMetadata, error) {
	query := pageQuery(page, limit)
	query.Set("location", filters.Location)
	query.Set("entranceId", filters.EntranceID)
	query.Set("isActive", filters.IsActive)

	var cameras []models.Camera
	metadata, err := s.list(ctx, "/admin/camera", token, query, &cameras)
	return cameras, metadata, err
}

func (s *UpstreamService) GetCamera(ctx context.Context, token, id string) (models.Camera, error) {
	var camera models.Camera
	err := s.entity(ctx, http.MethodGet, "/admin/camera/"+id, token, nil, &camera)
	return camera, err
}

func (s *UpstreamService) CreateCamera(ctx context.Context, token string, camera models.Camera) (models.Camera, error) {
	var created models.Camera
	err := s.entity(ctx, http.MethodPost, "/admin/camera", token, camera, &created)
	return created, err
}

func (s *UpstreamService) UpdateCamera(ctx context.Context, token, id string, camera models.Camera) (models.Camera, error) {
	var updated models.Camera
	err := s.entity(ctx, http.MethodPut, "/admin/camera/"+id, token, camera, &updated)
	return updated, err
}

func (s *UpstreamService) DeleteCamera(ctx context.Context, token, id string) error {
	return s.entity(ctx, http.MethodDelete, "/admin/camera/"+id, token, nil, nil)
}

func (s *UpstreamService) RestoreCamera(ctx context.Context, token, id string) (models.Camera, error) {
	var restored models.Camera
	err := s.entity(ctx, http.MethodPut, "/admin/camera/"+id+"/restore", token, nil, &restored)
	return restored, err
}

func (s *UpstreamService) StartCamera(ctx context.Context, token, id string) error {
	return s.entity(ctx, http.MethodPost, "/admin/camera/"+id+"/start", token, nil, nil)
}

func (s *UpstreamService) StopCamera(ctx context.Context, token, id string) error {
	return s.entity(ctx, http.MethodPost, "/admin/camera/"+id+"/stop", token, nil, nil)
}

// FeedURL templates the live video feed URL for a camera. The player is a
// black box driven by this URL; nothing is decoded here.
func (s *UpstreamService) FeedURL(cameraID string) string {
	return fmt.Sprintf(s.cfg.FeedURLTemplate, cameraID)
}

func (s *UpstreamService) HeatmapURL(cameraID string) string {
	return fmt.Sprintf(s.cfg.HeatmapURLTemplate, cameraID)
}

// Entrances

type EntranceFilters struct {
	IsDeleted string
}

func (s *UpstreamService) ListEntrances(ctx context.Context, token string, page, limit int, filters EntranceFilters) ([]models.Entrance, models.ListMetadata, error) {
	query := pageQuery(page, limit)
	query.Set("isDeleted", filters.IsDeleted)

	var entrances []models.Entrance
	metadata, err := s.list(ctx, "/admin/entrance", token, query, &entrances)
	return entrances, metadata, err
}

func (s *UpstreamService) GetEntrance(ctx context.Context, token, id string) (models.Entrance, error) {
	var entrance models.Entrance
	err := s.entity(ctx, http.MethodGet, "/admin/entrance/"+id, token, nil, &entrance)
	return entrance, err
}

func (s *UpstreamService) CreateEntrance(ctx context.Context, token string, entrance models.Entrance) (models.Entrance, error) {
	var created models.Entrance
	err := s.entity(ctx, http.MethodPost, "/admin/entrance", token, entrance, &created)
	return created, err
}

func (s *UpstreamService) UpdateEntrance(ctx context.Context, token, id string, entrance models.Entrance) (models.Entrance, error) {
	var updated models.Entrance
	err := s.entity(ctx, http.MethodPut, "/admin/entrance/"+id, token, entrance, &updated)
	return updated, err
}

func (s *UpstreamService) DeleteEntrance(ctx context.Context, token, id string) error {
	return s.entity(ctx, http.MethodDelete, "/admin/entrance/"+id, token, nil, nil)
}

func (s *UpstreamService) RestoreEntrance(ctx context.Context, token, id string) (models.Entrance, error) {
	var restored models.Entrance
	err := s.entity(ctx, http.MethodPut, "/admin/entrance/"+id+"/restore", token, nil, &restored)
	return restored, err
}

// Users

type UserFilters struct {
	Name    string
	Email   string
	PhoneNo string
}

func (s *UpstreamService) ListUsers(ctx context.Context, token string, page, limit int, filters UserFilters) ([]models.User, models.ListMetadata, error) {
	query := pageQuery(page, limit)
	query.Set("name", filters.Name)
	query.Set("email", filters.Email)
	query.Set("phoneNo", filters.PhoneNo)

	var users []models.User
	metadata, err := s.list(ctx, "/admin/users", token, query, &users)
	return users, metadata, err
}

func (s *UpstreamService) GetUser(ctx context.Context, token, id string) (models.User, error) {
	var user models.User
	err := s.entity(ctx, http.MethodGet, "/admin/users/"+id, token, nil, &user)
	return user, err
}

// CreateUser registers a new operator account through the upstream auth
// collaborator; the gateway never sees or stores credentials.
func (s *UpstreamService) CreateUser(ctx context.Context, token string, user interface{}) (models.User, error) {
	var created models.User
	err := s.entity(ctx, http.MethodPost, "/admin/auth/register", token, user, &created)
	return created, err
}

func (s *UpstreamService) UpdateUser(ctx context.Context, token, id string, user models.User) (models.User, error) {
	var updated models.User
	err := s.entity(ctx, http.MethodPut, "/admin/users/"+id, token, user, &updated)
	return updated, err
}

func (s *UpstreamService) DeleteUser(ctx context.Context, token, id string) error {
	return s.entity(ctx, http.MethodDelete, "/admin/users/"+id, token, nil, nil)
}

func (s *UpstreamService) RestoreUser(ctx context.Context, token, id string) (models.User, error) {
	var restored models.User
	err := s.entity(ctx, http.MethodPut, "/admin/users/"+id+"/restore", token, nil, &restored)
	return restored, err
}

// Alerts (persisted records, distinct from the live socket stream)

type AlertFilters struct {
	EntranceID string
	IsDeleted  string
	IsResolved string
}

func (s *UpstreamService) ListAlerts(ctx context.Context, token string, page, limit int, filters AlertFilters) ([]models.Alert, models.ListMetadata, error) {
	query := pageQuery(page, limit)
	query.Set("entranceId", filters.EntranceID)
	query.Set("isDeleted", filters.IsDeleted)
	query.Set("isResolved", filters.IsResolved)

	var alerts []models.Alert
	metadata, err := s.list(ctx, "/admin/alert", token, query, &alerts)
	return alerts, metadata, err
}

func (s *UpstreamService) GetAlert(ctx context.Context, token, id string) (models.Alert, error) {
	var alert models.Alert
	err := s.entity(ctx, http.MethodGet, "/admin/alert/"+id, token, nil, &alert)
	return alert, err
}

func (s *UpstreamService) CreateAlert(ctx context.Context, token string, alert models.Alert) (models.Alert, error) {
	var created models.Alert
	err := s.entity(ctx, http.MethodPost, "/admin/alert", token, alert, &created)
	return created, err
}

func (s *UpstreamService) UpdateAlert(ctx context.Context, token, id string, alert models.Alert) (models.Alert, error) {
	var updated models.Alert
	err := s.entity(ctx, http.MethodPut, "/admin/alert/"+id, token, alert, &updated)
	return updated, err
}

func (s *UpstreamService) DeleteAlert(ctx context.Context, token, id string) error {
	return s.entity(ctx, http.MethodDelete, "/admin/alert/"+id, token, nil, nil)
}

func (s *UpstreamService) RestoreAlert(ctx context.Context, token, id string) (models.Alert, error) {
	var restored models.Alert
	err := s.entity(ctx, http.MethodPut, "/admin/alert/"+id+"/restore", token, nil, &restored)
	return restored, err
}

// Detections (read-only history of persisted count observations)

type DetectionFilters struct {
	CameraID   string
	EntranceID string
	IsDeleted  string
}

func (s *UpstreamService) ListDetections(ctx context.Context, token string, page, limit int, filters DetectionFilters) ([]models.Detection, models.ListMetadata, error) {
	query := pageQuery(page, limit)
	query.Set("cameraId", filters.CameraID)
	query.Set("entranceId", filters.EntranceID)
	query.Set("isDeleted", filters.IsDeleted)

	var detections []models.Detection
	metadata, err := s.list(ctx, "/admin/detection", token, query, &detections)
	return detections, metadata, err
}

func (s *UpstreamService) GetDetection(ctx context.Context, token, id string) (models.Detection, error) {
	var detection models.Detection
	err := s.entity(ctx, http.MethodGet, "/admin/detection/"+id, token, nil, &detection)
	return detection, err
}
