package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/client/models"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every call when no option overrides it.
const DefaultTimeout = 15 * time.Second

// classifier maps a non-2xx status of one operation to an error kind.
type classifier func(status int) error

// HTTPClient talks to the backend over HTTP/JSON.
type HTTPClient struct {
	baseURL   string
	timeout   time.Duration
	deviceID  string
	requestID func() string
	validate  *validator.Validate
	log       logging.Logger
}

type Option func(*HTTPClient)

// WithTimeout sets the per-call network timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithDeviceID sets the X-Device-ID sent with every request.
func WithDeviceID(id string) Option {
	return func(c *HTTPClient) { c.deviceID = id }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the backend rooted at baseURL
// (e.g. "https://api.example.com").
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		requestID: uuid.NewString,
		validate:  api.NewValidator(),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "gateway")
	return c
}

func (c *HTTPClient) RequestOTP(ctx context.Context, phone string, purpose api.Purpose) (*OTPResult, error) {
	const op = "request otp"

	req := api.SendOTPRequest{Phone: phone, Purpose: purpose}
	if err := c.check(op, req); err != nil {
		return nil, err
	}

	var resp api.SendOTPResponse
	if err := c.do(ctx, op, fiber.MethodPost, api.RouteSendOTP, "", req, &resp, classifyRequestOTP); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, newError(ErrProtocol, op, http.StatusOK, resp.Message, nil)
	}
	return &OTPResult{Success: true, Message: resp.Message, DevCode: resp.Code}, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, phone, code string) (*models.Session, error) {
	const op = "verify otp"

	req := api.VerifyOTPRequest{Phone: phone, Code: code}
	if err := c.check(op, req); err != nil {
		return nil, err
	}

	var resp api.AuthResponse
	if err := c.do(ctx, op, fiber.MethodPost, api.RouteVerifyOTP, "", req, &resp, classifyVerify); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, newError(ErrInvalidCode, op, http.StatusOK, resp.Message, nil)
	}
	return sessionFrom(op, resp)
}

func (c *HTTPClient) RefreshToken(ctx context.Context, current models.Token) (*models.Token, error) {
	const op = "refresh token"

	if current.Refresh == "" {
		return nil, newError(ErrSessionExpired, op, 0, "no refresh token", nil)
	}

	var resp api.RefreshTokenResponse
	req := api.RefreshTokenRequest{RefreshToken: current.Refresh}
	if err := c.do(ctx, op, fiber.MethodPost, api.RouteRefresh, "", req, &resp, classifyRefresh); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, newError(ErrProtocol, op, http.StatusOK, "empty access token", nil)
	}

	next := models.Token{Access: resp.AccessToken, Refresh: resp.RefreshToken}
	if next.Refresh == "" {
		next.Refresh = current.Refresh
	}
	return &next, nil
}

func (c *HTTPClient) Login(ctx context.Context, identifier, secret string) (*models.Session, error) {
	const op = "login"

	req := api.LoginRequest{Identifier: identifier, Secret: secret}
	if err := c.check(op, req); err != nil {
		return nil, err
	}

	var resp api.AuthResponse
	if err := c.do(ctx, op, fiber.MethodPost, api.RouteLogin, "", req, &resp, classifyLogin); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, newError(ErrUnauthorized, op, http.StatusOK, resp.Message, nil)
	}
	return sessionFrom(op, resp)
}

func (c *HTTPClient) Revoke(ctx context.Context, token models.Token) error {
	return c.do(ctx, "revoke", fiber.MethodPost, api.RouteLogout, token.Access, nil, nil, classifyAuthorized)
}

func (c *HTTPClient) Me(ctx context.Context, token models.Token) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, "get profile", fiber.MethodGet, api.RouteMe, token.Access, nil, &u, classifyAuthorized); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token models.Token, patch models.UserPatch) (*models.User, error) {
	const op = "update profile"

	req := api.UpdateProfileRequest{Name: patch.Name, Email: patch.Email, Address: patch.Address, Pincode: patch.Pincode}
	if err := c.check(op, req); err != nil {
		return nil, err
	}

	var u models.User
	if err := c.do(ctx, op, fiber.MethodPatch, api.RouteMe, token.Access, req, &u, classifyAuthorized); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) check(op string, req any) error {
	if err := c.validate.Struct(req); err != nil {
		return newError(ErrValidation, op, 0, api.Describe(err), nil)
	}
	return nil
}

type reply struct {
	status int
	body   []byte
	errs   []error
}

// do performs one request. The call returns as soon as ctx is done; the
// abandoned request still finishes in the background within the timeout.
func (c *HTTPClient) do(ctx context.Context, op, method, path, bearer string, in, out any, classify classifier) error {
	if err := ctx.Err(); err != nil {
		return newError(ErrNetwork, op, 0, "", err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return newError(ErrNetwork, op, 0, "", context.DeadlineExceeded)
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return newError(ErrNetwork, op, 0, "", err)
	}

	reqID := c.requestID()
	a.Set(common.RequestIDHeaderName, reqID)
	if c.deviceID != "" {
		a.Set(common.DeviceIDHeaderName, c.deviceID)
	}
	if bearer != "" {
		a.Set(common.AuthorizationHeaderName, common.BearerPrefix+bearer)
	}
	if in != nil {
		a.JSON(in)
	}
	a.Timeout(timeout)

	done := make(chan reply, 1)
	go func() {
		status, body, errs := a.Bytes()
		done <- reply{status: status, body: body, errs: errs}
	}()

	var r reply
	select {
	case <-ctx.Done():
		c.log.Warn(ctx, "request abandoned", "op", op, "request_id", reqID, "error", ctx.Err())
		return newError(ErrNetwork, op, 0, "", ctx.Err())
	case r = <-done:
	}

	if len(r.errs) > 0 {
		cause := errors.Join(r.errs...)
		c.log.Warn(ctx, "request failed", "op", op, "request_id", reqID, "error", cause)
		return newError(ErrNetwork, op, 0, "", cause)
	}

	if r.status >= 200 && r.status < 300 {
		if out != nil && len(r.body) > 0 {
			if err := json.Unmarshal(r.body, out); err != nil {
				return newError(ErrProtocol, op, r.status, "malformed response", err)
			}
		}
		c.log.Debug(ctx, "request ok", "op", op, "request_id", reqID, "status", r.status)
		return nil
	}

	var eb api.ErrorResponse
	_ = json.Unmarshal(r.body, &eb)
	c.log.Info(ctx, "request rejected", "op", op, "request_id", reqID, "status", r.status, "reason", eb.Error)
	return newError(classify(r.status), op, r.status, eb.Error, nil)
}

func sessionFrom(op string, resp api.AuthResponse) (*models.Session, error) {
	if resp.User == nil || resp.AccessToken == "" {
		return nil, newError(ErrProtocol, op, http.StatusOK, "incomplete session in response", nil)
	}
	return &models.Session{
		User:  resp.User,
		Token: &models.Token{Access: resp.AccessToken, Refresh: resp.RefreshToken},
	}, nil
}

func classifyCommon(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrNetwork
	default:
		return ErrProtocol
	}
}

func classifyRequestOTP(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	}
	return classifyCommon(status)
}

func classifyVerify(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusGone:
		return ErrInvalidCode
	}
	return classifyCommon(status)
}

func classifyRefresh(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return ErrSessionExpired
	}
	return classifyCommon(status)
}

func classifyLogin(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	}
	return classifyCommon(status)
}

func classifyAuthorized(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	}
	return classifyCommon(status)
}
