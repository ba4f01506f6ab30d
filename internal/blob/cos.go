package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

// COSGateway implements interfaces.BlobGateway against Tencent Cloud Object
// Storage, grounded on the teacher's go.mod tencentyun/cos-go-sdk-v5
// dependency (unused by the retrieved slice; this is its first concrete
// home, as the alternate-region backend SPEC_FULL calls for).
type COSGateway struct {
	client *cos.Client
}

// NewCOSGateway builds a COSGateway for a single bucket addressed by
// bucketURL, authenticating every request with secretID/secretKey.
func NewCOSGateway(bucketURL, secretID, secretKey string) (*COSGateway, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse cos bucket url: %w", err)
	}
	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{SecretID: secretID, SecretKey: secretKey},
	})
	return &COSGateway{client: client}, nil
}

// Upload ignores container (COS addresses a single bucket per client); key
// is used as the object name directly.
func (c *COSGateway) Upload(ctx context.Context, container, key, contentType string, metadata map[string]string, body io.Reader, size int64) (string, error) {
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: contentType,
		},
	}
	if len(metadata) > 0 {
		opt.ObjectPutHeaderOptions.XCosMetaXXX = &http.Header{}
		for k, v := range metadata {
			opt.ObjectPutHeaderOptions.XCosMetaXXX.Set("x-cos-meta-"+k, v)
		}
	}
	_, err := c.client.Object.Put(ctx, key, body, opt)
	if err != nil {
		return "", fmt.Errorf("cos upload: %w", err)
	}
	return key, nil
}

func (c *COSGateway) Download(ctx context.Context, container, key string) (io.ReadCloser, error) {
	resp, err := c.client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("cos download: %w", err)
	}
	return resp.Body, nil
}

func (c *COSGateway) Delete(ctx context.Context, container, key string) error {
	_, err := c.client.Object.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("cos delete: %w", err)
	}
	return nil
}

func (c *COSGateway) Exists(ctx context.Context, container, key string) (bool, error) {
	ok, err := c.client.Object.IsExist(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cos exists: %w", err)
	}
	return ok, nil
}
