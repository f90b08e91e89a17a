// Package client is a Go SDK for the snapgram HTTP API. Besides the raw
// endpoints it carries the client-side data layer: a query cache with
// invalidation, cursor pagination, debounced search and optimistic post stats.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 30 * time.Second

// APIError is an error answered by the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 answered by the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == fiber.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 answered by the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == fiber.StatusUnauthorized
}

// IsConflict reports whether err is a 409, answered when a concurrent edit of
// the same post or profile won. The edit can be retried after a refetch.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == fiber.StatusConflict
}

type envelope[T any] struct {
	Data  T          `json:"data"`
	Page  model.Page `json:"page"`
	Error *APIError  `json:"error"`
}

// File is an image attached to a multipart request.
type File struct {
	Name    string
	Content []byte
}

type Client struct {
	BaseUrl string
	Timeout time.Duration

	mu          sync.RWMutex
	accessToken string
}

func New(baseUrl string) *Client {
	return &Client{
		BaseUrl: strings.TrimRight(baseUrl, "/"),
		Timeout: defaultTimeout,
	}
}

func (client *Client) SetAccessToken(accessToken string) {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.accessToken = accessToken
}

func (client *Client) AccessToken() string {
	client.mu.RLock()
	defer client.mu.RUnlock()
	return client.accessToken
}

func (client *Client) agent(method string, path string) *fiber.Agent {
	agent := fiber.AcquireAgent()
	agent.Request().Header.SetMethod(method)
	agent.Request().SetRequestURI(client.BaseUrl + path)
	agent.JSONEncoder(sonic.Marshal)
	agent.JSONDecoder(sonic.Unmarshal)

	if accessToken := client.AccessToken(); accessToken != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+accessToken)
	}

	return agent
}

// do sends the request built on agent and decodes the data envelope into out.
// A nil out discards the body.
func do[T any](ctx context.Context, client *Client, agent *fiber.Agent, out *T) (model.Page, error) {
	err := ctx.Err()
	if err != nil {
		fiber.ReleaseAgent(agent)
		return model.Page{}, err
	}

	timeout := client.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)

	err = agent.Parse()
	if err != nil {
		fiber.ReleaseAgent(agent)
		return model.Page{}, err
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return model.Page{}, errors.Join(errs...)
	}

	var response envelope[T]
	if len(body) > 0 {
		err = sonic.Unmarshal(body, &response)
		if err != nil && status < fiber.StatusBadRequest {
			return model.Page{}, fmt.Errorf("decode response: %w", err)
		}
	}

	if status >= fiber.StatusBadRequest {
		apiErr := response.Error
		if apiErr == nil {
			apiErr = &APIError{Code: "HTTP_ERROR", Message: strings.TrimSpace(string(body))}
		}
		apiErr.Status = status
		return model.Page{}, apiErr
	}

	if out != nil {
		*out = response.Data
	}

	return response.Page, nil
}

func multipart(agent *fiber.Agent, fields map[string]string, fieldName string, file *File) {
	if file != nil {
		agent.FileData(&fiber.FormFile{Fieldname: fieldName, Name: file.Name, Content: file.Content})
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	for key, value := range fields {
		args.Set(key, value)
	}

	agent.MultipartForm(args)
}
