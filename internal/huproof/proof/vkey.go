package proof

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrBadKeyRef = errors.New("proof: bad verification key reference")

// S3Config locates an S3-compatible store. Endpoint and the static keys are
// optional; when empty the SDK's default chain applies.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newObjectGetter = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ResolveKey turns a verification key reference into a local file path.
// Accepted forms are a plain path, file://path and
// s3://bucket/key?versionId=v. S3 objects are downloaded into cacheDir.
func ResolveKey(ctx context.Context, ref, cacheDir string, cfg S3Config) (string, error) {
	switch {
	case ref == "":
		return "", ErrBadKeyRef
	case strings.HasPrefix(ref, "file://"):
		return strings.TrimPrefix(ref, "file://"), nil
	case strings.HasPrefix(ref, "s3://"):
		return fetchS3Key(ctx, ref, cacheDir, cfg)
	default:
		return ref, nil
	}
}

func fetchS3Key(ctx context.Context, ref, cacheDir string, cfg S3Config) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadKeyRef, err)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", fmt.Errorf("%w: %s", ErrBadKeyRef, ref)
	}
	version := u.Query().Get("versionId")

	if cacheDir == "" {
		cacheDir = os.TempDir()
	}
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(ref))
	dst := filepath.Join(cacheDir, "vkey-"+hex.EncodeToString(sum[:8])+".json")

	// A pinned version never changes, so a previous download is reused.
	if version != "" {
		if _, err := os.Stat(dst); err == nil {
			return dst, nil
		}
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("aws config: %w", err)
	}

	client := newObjectGetter(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	in := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if version != "" {
		in.VersionId = aws.String(version)
	}
	out, err := client.GetObject(ctx, in)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", ref, err)
	}
	defer out.Body.Close()

	tmp, err := os.CreateTemp(cacheDir, "vkey-*.part")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return dst, nil
}
