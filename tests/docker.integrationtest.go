//go:build integration

// Package tests starts the services the stores depend on in docker, for integration tests.
package tests

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

var ErrDockerFailure = errors.New("docker failure")

// RetryFunc returns the func used to connect to the started container.
// The returned func is called with exponential backoff, until the service in the container accepts connections.
type RetryFunc func(resource *dockertest.Resource) func() error

//nolint:gochecknoglobals // containers are shared between all tests of a package
var (
	muContainers = sync.Mutex{}
	containers   = map[string]*container{}
)

type container struct {
	pool     *dockertest.Pool
	resource *dockertest.Resource
	users    int
}

// StartDockerContainer starts a container for integration testing and waits for retryFunc to succeed.
// The most important dockertest.RunOptions are:
//   - Repository: the image to pull, e.g. "postgres"
//   - Tag: the tag to pull, e.g. "16-alpine"
//   - Env: the environment variables of the container
//
// The returned func stops and removes the container.
func StartDockerContainer(runOptions *dockertest.RunOptions, retryFunc RetryFunc) (func() error, error) {
	if runOptions == nil {
		return nil, fmt.Errorf("%w: invalid run options", ErrDockerFailure)
	}

	if retryFunc == nil {
		return nil, fmt.Errorf("%w: invalid retry func", ErrDockerFailure)
	}

	pool, err := dockertest.NewPool("") // uses a sensible default on windows (tcp/http) and linux/osx (socket)
	if err != nil {
		return nil, fmt.Errorf("%w: could not create new pool: %v", ErrDockerFailure, err)
	}

	if err = pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("%w: could not connect to docker: %v", ErrDockerFailure, err)
	}

	resource, err := pool.RunWithOptions(
		runOptions,
		func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{Name: "no", MaximumRetryCount: 0}
		})
	if err != nil {
		return nil, fmt.Errorf("%w: could not start resource: %v", ErrDockerFailure, err)
	}

	const dockerTimeout = 120
	_ = resource.Expire(dockerTimeout) // hard kill, if the tests never clean up

	pool.MaxWait = dockerTimeout * time.Second
	if err := pool.Retry(retryFunc(resource)); err != nil {
		_ = pool.Purge(resource)
		return nil, fmt.Errorf("%w: could not connect to container: %v", ErrDockerFailure, err)
	}

	muContainers.Lock()
	defer muContainers.Unlock()

	containers[resource.Container.Name] = &container{pool: pool, resource: resource, users: 1}

	return cleanupFunc(resource.Container.Name), nil
}

// ShareDockerContainer returns the cleanup func of the running container named runOptions.Name,
// or starts it. The container is only removed, once every user called the cleanup func.
func ShareDockerContainer(runOptions *dockertest.RunOptions, retryFunc RetryFunc) (func() error, error) {
	if runOptions == nil || runOptions.Name == "" {
		return nil, fmt.Errorf("%w: missing container name", ErrDockerFailure)
	}

	name := "/" + runOptions.Name

	muContainers.Lock()
	if c, ok := containers[name]; ok {
		c.users++
		muContainers.Unlock()

		return cleanupFunc(name), nil
	}
	muContainers.Unlock()

	return StartDockerContainer(runOptions, retryFunc)
}

func cleanupFunc(name string) func() error {
	return func() error {
		muContainers.Lock()
		defer muContainers.Unlock()

		c, ok := containers[name]
		if !ok {
			return nil
		}

		c.users--
		if c.users > 0 {
			return nil // still in use by other tests
		}

		delete(containers, name)

		if err := c.pool.Purge(c.resource); err != nil {
			return fmt.Errorf("%w: could not purge resource: %v", ErrDockerFailure, err)
		}

		return nil
	}
}
