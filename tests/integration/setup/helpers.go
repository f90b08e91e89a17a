package setup

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TruncateAllTables truncates all tables, children first.
func TruncateAllTables(t *testing.T, db *pgxpool.Pool, ctx context.Context) {
	t.Log("Truncating all database tables...")

	tables := []string{
		"saves",
		"post_likes",
		"posts",
		"users",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}
}

// CreateTestPNGImage encodes a small two-tone PNG that the image pipeline can
// decode and resize.
func CreateTestPNGImage(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if x < 32 {
				img.Set(x, y, color.RGBA{R: 240, G: 120, B: 40, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 30, G: 80, B: 200, A: 255})
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img), "failed to encode png")
	return buf.Bytes()
}

// CreateMultipartFormData builds a multipart body. An empty fileName leaves the
// file field out.
func CreateMultipartFormData(t *testing.T, fieldName, fileName string, fileData []byte, fields map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if fileName != "" {
		part, err := writer.CreateFormFile(fieldName, fileName)
		require.NoError(t, err, "failed to create form file field")

		_, err = part.Write(fileData)
		require.NoError(t, err, "failed to write file data")
	}

	for key, value := range fields {
		err := writer.WriteField(key, value)
		require.NoError(t, err, "failed to write form field %s", key)
	}

	require.NoError(t, writer.Close(), "failed to close multipart writer")

	return body, writer.FormDataContentType()
}

func CreateJSONRequest(method, url string, jsonBody []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func CreateAuthRequest(method, url string, jsonBody []byte, token string) *http.Request {
	req := CreateJSONRequest(method, url, jsonBody)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

func CreateAuthMultipartRequest(method, url string, body *bytes.Buffer, contentType string, token string) *http.Request {
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Status string         `json:"status,omitempty"`
	Data   any            `json:"data,omitempty"`
	Page   *PageInfo      `json:"page,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

type PageInfo struct {
	NextCursor string `json:"nextCursor"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

func ParseAPIResponse(t *testing.T, resp *http.Response) APIResponse {
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NotEmpty(t, body, "response body should not be empty")

	var apiResp APIResponse
	require.NoError(t, sonic.Unmarshal(body, &apiResp), "failed to parse JSON response: %s", body)

	return apiResp
}

func GetDataAsMap(t *testing.T, resp APIResponse) map[string]any {
	require.NotNil(t, resp.Data, "response should have data field")
	dataMap, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data field should be an object")
	return dataMap
}

func GetDataAsArray(t *testing.T, resp APIResponse) []any {
	require.NotNil(t, resp.Data, "response should have data field")
	dataArray, ok := resp.Data.([]any)
	require.True(t, ok, "data field should be an array")
	return dataArray
}

func GetNextCursor(t *testing.T, resp APIResponse) string {
	require.NotNil(t, resp.Page, "response should have page field")
	return resp.Page.NextCursor
}

// GetAccessToken reads the token out of a sign-up or sign-in response.
func GetAccessToken(t *testing.T, resp APIResponse) string {
	data := GetDataAsMap(t, resp)
	accessToken, ok := data["accessToken"].(string)
	require.True(t, ok, "accessToken should be a string")
	require.NotEmpty(t, accessToken, "accessToken should not be empty")
	return accessToken
}

// WaitForMail polls the MailHog API until a message addressed to email
// arrives and returns its body.
func WaitForMail(t *testing.T, mailhogURL, email string) string {
	apiURL := fmt.Sprintf("%s/api/v2/search?kind=to&query=%s", mailhogURL, email)

	type mailhogSearch struct {
		Items []struct {
			Content struct {
				Body string `json:"Body"`
			} `json:"Content"`
		} `json:"items"`
	}

	for attempt := 0; attempt < 20; attempt++ {
		// #nosec G107 -- apiURL is the local MailHog container
		resp, err := http.Get(apiURL)
		require.NoError(t, err, "failed to fetch messages from MailHog")

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.NoError(t, err, "failed to read MailHog response")

		var search mailhogSearch
		require.NoError(t, sonic.Unmarshal(body, &search), "failed to parse MailHog response")

		if len(search.Items) > 0 {
			return search.Items[0].Content.Body
		}

		time.Sleep(250 * time.Millisecond)
	}

	require.Fail(t, "no mail delivered", "recipient %s", email)
	return ""
}

// GenerateRandomString returns lowercase letters and digits for test data.
func GenerateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		// #nosec G404 -- test data only
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// SignUpBody builds a sign-up JSON body for a fresh random user.
func SignUpBody(name string) (body []byte, email string) {
	username := strings.ToLower(strings.ReplaceAll(name, " ", "")) + GenerateRandomString(4)
	email = username + "@example.com"
	body, _ = sonic.Marshal(map[string]string{
		"name":     name,
		"username": username,
		"email":    email,
		"password": "password123",
	})
	return body, email
}
