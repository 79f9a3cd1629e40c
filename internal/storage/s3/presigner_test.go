package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

func newTestClient() *awss3.Client {
	return awss3.New(awss3.Options{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
}

func TestNewPresignerValidates(t *testing.T) {
	tests := []struct {
		name       string
		bucket     string
		expiration time.Duration
		wantErr    bool
	}{
		{"ok", "images", 5 * time.Minute, false},
		{"empty bucket", "", 5 * time.Minute, true},
		{"zero expiration", "images", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPresigner(newTestClient(), tt.bucket, tt.expiration)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUploadURL(t *testing.T) {
	p, err := NewPresigner(newTestClient(), "images", 300*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	uploadURL, objectURL, err := p.UploadURL(context.Background(), "item-123")
	if err != nil {
		t.Fatalf("upload url: %v", err)
	}

	if objectURL != "https://images.s3.amazonaws.com/item-123" {
		t.Errorf("objectUrl = %q", objectURL)
	}

	u, err := url.Parse(uploadURL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(u.Host, "images") || !strings.HasSuffix(u.Path, "item-123") {
		t.Errorf("upload url does not address the object: %s", uploadURL)
	}
	q := u.Query()
	if q.Get("X-Amz-Expires") != "300" {
		t.Errorf("X-Amz-Expires = %q, want 300", q.Get("X-Amz-Expires"))
	}
	if q.Get("X-Amz-Signature") == "" {
		t.Error("missing signature")
	}
}
