package storage

import (
	"context"
	"fmt"
	"os"
)

type FactoryResult struct {
	Driver  string
	Archive Archive
}

// FromEnv builds the webhook-delivery archive named by ARCHIVE_DRIVER.
// "none" (the default) disables archiving: FactoryResult.Archive is
// nil and callers skip the write.
func FromEnv(ctx context.Context) (FactoryResult, error) {
	driver := os.Getenv("ARCHIVE_DRIVER")
	if driver == "" {
		driver = "none"
	}

	switch driver {
	case "none":
		return FactoryResult{Driver: "none"}, nil

	case "local":
		baseDir := envOr("ARCHIVE_LOCAL_DIR", "./storage/webhooks")
		return FactoryResult{Driver: "local", Archive: NewLocal(baseDir)}, nil

	case "s3":
		region := envOr("ARCHIVE_S3_REGION", "")
		bucket := envOr("ARCHIVE_S3_BUCKET", "")
		prefix := envOr("ARCHIVE_S3_PREFIX", "webhooks")
		if region == "" || bucket == "" {
			return FactoryResult{}, fmt.Errorf("S3 archive config missing: ARCHIVE_S3_REGION, ARCHIVE_S3_BUCKET required")
		}
		s, err := NewS3(ctx, S3Config{Region: region, Bucket: bucket, Prefix: prefix})
		if err != nil {
			return FactoryResult{}, err
		}
		return FactoryResult{Driver: "s3", Archive: s}, nil

	default:
		return FactoryResult{}, fmt.Errorf("unknown ARCHIVE_DRIVER: %s", driver)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
