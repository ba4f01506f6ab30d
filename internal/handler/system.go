package handler

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/driftmind/driftmind/internal/config"
	"github.com/driftmind/driftmind/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SystemHandler handles system-related requests: version/build info and
// diagnostics over the configured backends.
type SystemHandler struct {
	cfg *config.Config
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{cfg: cfg}
}

// GetSystemInfoResponse defines the response structure for system info.
type GetSystemInfoResponse struct {
	Version            string `json:"version"`
	CommitID           string `json:"commit_id,omitempty"`
	BuildTime          string `json:"build_time,omitempty"`
	GoVersion          string `json:"go_version,omitempty"`
	IndexDriver        string `json:"index_driver"`
	BlobDriver         string `json:"blob_driver"`
	EmbeddingProvider  string `json:"embedding_provider"`
	ChatProvider       string `json:"chat_provider"`
	AnalyticsEnabled   bool   `json:"analytics_enabled"`
}

// version info injected at build time via -ldflags.
var (
	Version   = "unknown"
	CommitID  = "unknown"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

// GetSystemInfo godoc
// @Summary      Get system info
// @Description  Returns build metadata and the currently configured backend drivers
// @Tags         system
// @Accept       json
// @Produce      json
// @Success      200  {object}  GetSystemInfoResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	ctx := logger.CloneContext(c.Request.Context())

	response := GetSystemInfoResponse{
		Version:           Version,
		CommitID:          CommitID,
		BuildTime:         BuildTime,
		GoVersion:         GoVersion,
		IndexDriver:       h.cfg.Index.Driver,
		BlobDriver:        h.cfg.Blob.Driver,
		EmbeddingProvider: h.cfg.Embedding.Provider,
		ChatProvider:      h.cfg.Chat.Provider,
		AnalyticsEnabled:  h.cfg.Analytics.Enabled,
	}

	logger.Info(ctx, "system info retrieved")
	c.JSON(200, gin.H{"code": 0, "msg": "success", "data": response})
}

// MinioBucketInfo represents bucket information with access policy.
type MinioBucketInfo struct {
	Name      string `json:"name"`
	Policy    string `json:"policy"` // "public", "private", "custom"
	CreatedAt string `json:"created_at,omitempty"`
}

// ListMinioBucketsResponse defines the response structure for listing buckets.
type ListMinioBucketsResponse struct {
	Buckets []MinioBucketInfo `json:"buckets"`
}

// ListMinioBuckets godoc
// @Summary      List MinIO buckets
// @Description  Lists the buckets visible to the configured blob gateway and their access policy
// @Tags         system
// @Accept       json
// @Produce      json
// @Success      200  {object}  ListMinioBucketsResponse
// @Failure      400  {object}  map[string]interface{}  "blob driver is not minio"
// @Failure      500  {object}  map[string]interface{}
// @Router       /system/minio/buckets [get]
func (h *SystemHandler) ListMinioBuckets(c *gin.Context) {
	ctx := logger.CloneContext(c.Request.Context())

	if h.cfg.Blob.Driver != "minio" {
		logger.Warn(ctx, "minio bucket listing requested but blob driver is not minio", "driver", h.cfg.Blob.Driver)
		c.JSON(400, gin.H{"code": 400, "msg": "blob driver is not minio", "success": false})
		return
	}

	mc := h.cfg.Blob.Minio
	minioClient, err := minio.New(mc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKeyID, mc.SecretAccessKey, ""),
		Secure: mc.UseSSL,
	})
	if err != nil {
		logger.Error(ctx, "failed to create minio client", "error", err)
		c.JSON(500, gin.H{"code": 500, "msg": "failed to connect to minio", "success": false})
		return
	}

	buckets, err := minioClient.ListBuckets(context.Background())
	if err != nil {
		logger.Error(ctx, "failed to list minio buckets", "error", err)
		c.JSON(500, gin.H{"code": 500, "msg": "failed to list buckets", "success": false})
		return
	}

	bucketInfos := make([]MinioBucketInfo, 0, len(buckets))
	for _, bucket := range buckets {
		policy := "private"
		if policyStr, err := minioClient.GetBucketPolicy(context.Background(), bucket.Name); err == nil && policyStr != "" {
			policy = parseBucketPolicy(policyStr)
		}
		bucketInfos = append(bucketInfos, MinioBucketInfo{
			Name:      bucket.Name,
			Policy:    policy,
			CreatedAt: bucket.CreationDate.Format("2006-01-02 15:04:05"),
		})
	}

	logger.Info(ctx, "listed minio buckets", "count", len(bucketInfos))
	c.JSON(200, gin.H{
		"code": 0, "msg": "success", "success": true,
		"data": ListMinioBucketsResponse{Buckets: bucketInfos},
	})
}

// BucketPolicy represents the S3 bucket policy structure.
type BucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// PolicyStatement represents a single statement in the bucket policy.
type PolicyStatement struct {
	Effect    string      `json:"Effect"`
	Principal interface{} `json:"Principal"`
	Action    interface{} `json:"Action"`
	Resource  interface{} `json:"Resource"`
}

func parseBucketPolicy(policyStr string) string {
	var policy BucketPolicy
	if err := json.Unmarshal([]byte(policyStr), &policy); err != nil {
		return "custom"
	}

	for _, stmt := range policy.Statement {
		if stmt.Effect != "Allow" {
			continue
		}
		if !isPrincipalPublic(stmt.Principal) {
			continue
		}
		if hasGetObjectAction(stmt.Action) {
			return "public"
		}
	}
	return "custom"
}

func isPrincipalPublic(principal interface{}) bool {
	switch p := principal.(type) {
	case string:
		return p == "*"
	case map[string]interface{}:
		if aws, ok := p["AWS"]; ok {
			switch a := aws.(type) {
			case string:
				return a == "*"
			case []interface{}:
				for _, v := range a {
					if s, ok := v.(string); ok && s == "*" {
						return true
					}
				}
			}
		}
	}
	return false
}

func hasGetObjectAction(action interface{}) bool {
	checkAction := func(a string) bool {
		a = strings.ToLower(a)
		return a == "s3:getobject" || a == "s3:*" || a == "*"
	}

	switch act := action.(type) {
	case string:
		return checkAction(act)
	case []interface{}:
		for _, v := range act {
			if s, ok := v.(string); ok && checkAction(s) {
				return true
			}
		}
	}
	return false
}
