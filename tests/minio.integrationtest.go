//go:build integration

package tests

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/ory/dockertest/v3"

	"github.com/go-arrower/schoolstore/repository"
	"github.com/go-arrower/schoolstore/secret"
)

//nolint:gochecknoglobals // singleton, so all tests of a package share one container
var (
	muMinio        = &sync.Mutex{}
	singletonMinio *MinioDocker
)

const (
	minioUser     = "schoolstore"
	minioPassword = "schoolstore-secret"
)

// MinioDocker is a S3 compatible object storage running in docker.
type MinioDocker struct {
	endpoint      string
	cleanupDocker func() error
}

// GetMinioDockerForIntegrationTestingInstance starts MinIO once per test binary.
// In case of an issue, it panics.
func GetMinioDockerForIntegrationTestingInstance() *MinioDocker {
	muMinio.Lock()
	defer muMinio.Unlock()

	if singletonMinio != nil {
		return singletonMinio
	}

	var endpoint string

	retryFunc := func(resource *dockertest.Resource) func() error {
		endpoint = "http://" + resource.GetHostPort("9000/tcp")

		return func() error {
			store, err := repository.NewS3Store(context.Background(), s3Config(endpoint, "ping"))
			if err != nil {
				return err //nolint:wrapcheck
			}

			return store.CreateBucket(context.Background()) //nolint:wrapcheck
		}
	}

	options := &dockertest.RunOptions{ //nolint:exhaustruct // only set required configuration
		Name:       fmt.Sprintf("schoolstore-testing-minio-%d", rand.Intn(1000)), //nolint:gosec,mnd // prevent collisions only
		Repository: "minio/minio",
		Tag:        "latest",
		Cmd:        []string{"server", "/data"},
		Env: []string{
			"MINIO_ROOT_USER=" + minioUser,
			"MINIO_ROOT_PASSWORD=" + minioPassword,
		},
	}

	cleanup, err := StartDockerContainer(options, retryFunc)
	if err != nil {
		panic(err)
	}

	singletonMinio = &MinioDocker{endpoint: endpoint, cleanupDocker: cleanup}

	return singletonMinio
}

// NewTestBucket creates a new bucket and returns the config to connect to it.
func (md *MinioDocker) NewTestBucket() repository.S3Config {
	conf := s3Config(md.endpoint, randomDatabaseName()[:16])

	store, err := repository.NewS3Store(context.Background(), conf)
	if err != nil {
		panic(err)
	}

	if err := store.CreateBucket(context.Background()); err != nil {
		panic(err)
	}

	return conf
}

// NewTestStore returns a store on a new bucket.
func (md *MinioDocker) NewTestStore() *repository.S3Store {
	store, err := repository.NewS3Store(context.Background(), md.NewTestBucket())
	if err != nil {
		panic(err)
	}

	return store
}

// Config returns the connection values of the container for the bucket.
func (md *MinioDocker) Config(bucket string) repository.S3Config {
	return s3Config(md.endpoint, bucket)
}

// Cleanup removes the docker container. In case of an issue, it panics.
func (md *MinioDocker) Cleanup() {
	if err := md.cleanupDocker(); err != nil {
		panic(err)
	}
}

func s3Config(endpoint string, bucket string) repository.S3Config {
	return repository.S3Config{
		Bucket:          bucket,
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     minioUser,
		SecretAccessKey: secret.New(minioPassword),
		PathStyle:       true,
	}
}
