package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, region string, custom bool, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient:   &http.Client{Transport: &http.Transport{}},
	})

	return &Client{s3: client, region: region, custom: custom}
}

// xmlResponse is a helper to write S3-style XML responses.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

const accessDenied = `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>AccessDenied</Code>
  <Message>Access Denied</Message>
</Error>`

func TestNewClient(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		endpoint string
		custom   bool
	}{
		{"aws", "", false},
		{"wasabi", "https://s3.eu-central-1.wasabisys.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(context.Background(), tt.endpoint, "eu-central-1", "key", "secret")
			require.NoError(t, err)
			assert.Equal(t, "eu-central-1", client.region)
			assert.Equal(t, tt.custom, client.custom)
		})
	}
}

func TestCreateBucket_Success(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var method, path string
	client := testClient(t, "eu-central-1", true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		xmlResponse(w, 200, `<?xml version="1.0" encoding="UTF-8"?><CreateBucketResult/>`)
	}))

	require.NoError(t, client.CreateBucket(context.Background(), "horilla-backups"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/horilla-backups", path)
}

func TestCreateBucket_LocationConstraint(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		region     string
		custom     bool
		constraint bool
	}{
		{"aws outside us-east-1", "eu-central-1", false, true},
		{"aws us-east-1", "us-east-1", false, false},
		{"custom endpoint", "eu-central-1", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bodies := make(chan string, 1)
			client := testClient(t, tt.region, tt.custom, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				bodies <- string(body)
				xmlResponse(w, 200, `<CreateBucketResult/>`)
			}))

			require.NoError(t, client.CreateBucket(context.Background(), "bucket"))
			body := <-bodies
			if tt.constraint {
				assert.Contains(t, body, "<LocationConstraint>eu-central-1</LocationConstraint>")
			} else {
				assert.NotContains(t, body, "LocationConstraint")
			}
		})
	}
}

func TestCreateBucket_AlreadyOwnedByYou(t *testing.T) {
	t.Parallel()
	client := testClient(t, "us-east-1", true, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 409, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>BucketAlreadyOwnedByYou</Code>
  <Message>Your previous request to create the named bucket succeeded and you already own it.</Message>
  <BucketName>test-bucket</BucketName>
</Error>`)
	}))

	assert.NoError(t, client.CreateBucket(context.Background(), "test-bucket"))
}

func TestCreateBucket_OwnedBySomeoneElse(t *testing.T) {
	t.Parallel()
	client := testClient(t, "us-east-1", true, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 409, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>BucketAlreadyExists</Code>
  <Message>The requested bucket name is not available.</Message>
</Error>`)
	}))

	err := client.CreateBucket(context.Background(), "test-bucket")
	assert.ErrorContains(t, err, "failed to create bucket test-bucket")
}

func TestCreateBucket_AccessDenied(t *testing.T) {
	t.Parallel()
	client := testClient(t, "us-east-1", true, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		xmlResponse(w, 403, accessDenied)
	}))

	err := client.CreateBucket(context.Background(), "test-bucket")
	require.ErrorContains(t, err, "failed to create bucket test-bucket")
	assert.True(t, IsAuthError(err))
}

func TestBucketExists(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr string
	}{
		{"present", 200, "", true, ""},
		{"missing", 404, "", false, ""},
		{"missing with code", 404, `<Error><Code>NoSuchBucket</Code></Error>`, false, ""},
		{"denied", 403, accessDenied, false, "failed to check bucket test-bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := testClient(t, "us-east-1", true, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.body == "" {
					w.WriteHeader(tt.status)
					return
				}
				xmlResponse(w, tt.status, tt.body)
			}))

			exists, err := client.BucketExists(context.Background(), "test-bucket")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestIsAuthError(t *testing.T) {
	t.Parallel()
	assert.True(t, IsAuthError(fmt.Errorf("outer: %w", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"})))
	assert.True(t, IsAuthError(&smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}))
	assert.False(t, IsAuthError(&smithy.GenericAPIError{Code: "SlowDown"}))
	assert.False(t, IsAuthError(fmt.Errorf("dial tcp: connection refused")))
}

func TestIsBucketAlreadyOwnedByYou_WrappedErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped BucketAlreadyOwnedByYou", fmt.Errorf("outer: %w", &s3types.BucketAlreadyOwnedByYou{}), true},
		{"wrapped BucketAlreadyExists", fmt.Errorf("outer: %w", &s3types.BucketAlreadyExists{}), false},
		{"wrapped generic error", fmt.Errorf("outer: %w", fmt.Errorf("inner error")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isBucketAlreadyOwnedByYou(tt.err))
		})
	}
}

func TestIsNotFoundError_WrappedErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped NoSuchBucket", fmt.Errorf("outer: %w", &s3types.NoSuchBucket{}), true},
		{"wrapped NotFound", fmt.Errorf("outer: %w", &s3types.NotFound{}), true},
		{"wrapped generic error", fmt.Errorf("outer: %w", fmt.Errorf("inner error")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isNotFoundError(tt.err))
		})
	}
}
