package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	appErr "github.com/memento-app/memento-auth/internal/pkg/errors"
	"github.com/memento-app/memento-auth/internal/model"
)

type s3Config struct {
	Endpoint     string `json:"endpoint"`
	Region       string `json:"region"`
	SecretID     string `json:"secret_id"`
	SecretKey    string `json:"secret_key"`
	Bucket       string `json:"bucket"`
	Directory    string `json:"directory"`
	UsePathStyle bool   `json:"use_path_style"`
}

type s3Store struct {
	client *s3.Client
	bucket string
	dir    string
}

func init() {
	Register("s3", createS3Store)
}

func createS3Store(args interface{}) (Store, error) {
	config := &s3Config{}
	if err := decodeConfig(args, config); err != nil {
		return nil, err
	}
	if config.SecretID == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("s3 secret_id/secret_key are required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}
	if config.Bucket == "" {
		config.Bucket = "memento-users"
	}
	if config.Directory == "" {
		config.Directory = "users"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(config.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.SecretID,
			config.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		o.UsePathStyle = config.UsePathStyle
	})
	return &s3Store{
		client: client,
		bucket: config.Bucket,
		dir:    strings.Trim(config.Directory, "/"),
	}, nil
}

func (s *s3Store) EnsureNamespace(ctx context.Context) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var taken *types.BucketAlreadyExists
		if !errors.As(err, &owned) && !errors.As(err, &taken) {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	// Zero-byte marker so the directory shows up in hierarchical listings.
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.dir + "/"),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("create directory marker: %w", err)
	}
	return nil
}

func (s *s3Store) Exists(ctx context.Context, email string) (bool, error) {
	key, err := s.recordKey(email)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head record: %w", err)
	}
	return true, nil
}

func (s *s3Store) Write(ctx context.Context, user *model.User) error {
	return s.put(ctx, user, false)
}

func (s *s3Store) Create(ctx context.Context, user *model.User) error {
	return s.put(ctx, user, true)
}

func (s *s3Store) put(ctx context.Context, user *model.User, ifAbsent bool) error {
	key, err := s.recordKey(user.Email)
	if err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if ifAbsent {
		input.IfNoneMatch = aws.String("*")
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		var apiErr smithy.APIError
		if ifAbsent && errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return appErr.ErrConflict
		}
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

func (s *s3Store) Read(ctx context.Context, email string) (*model.User, error) {
	key, err := s.recordKey(email)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, appErr.ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read record body: %w", err)
	}
	user := &model.User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return user, nil
}

func (s *s3Store) recordKey(email string) (string, error) {
	name, err := recordFileName(email)
	if err != nil {
		return "", err
	}
	return s.dir + "/" + name, nil
}
