package main

import (
	"context"
	"fmt"

	"dagger/leadline/internal/dagger"
)

// Image builds the linux server image running "leadline serve". The binary
// is built with cgo so every analytics publisher is available.
func (l *Leadline) Image(
	ctx context.Context,

	// Version string of build
	// +optional
	// +default="dev"
	version string,

	// Git commit SHA of build
	// +optional
	// +default="unknown"
	commit string,
) *dagger.Container {
	binary := l.goContainer().
		WithExec([]string{"go", "build", "-ldflags", releaseLdflags(version, commit), "-o", "/out/leadline", "./cli/leadline"}).
		File("/out/leadline")

	return dag.Container().
		From("debian:bookworm-slim").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "ca-certificates", "libsqlite3-0"}).
		WithFile("/usr/local/bin/leadline", binary).
		WithEnvVariable("LEADLINE_SERVER_LISTEN", ":8080").
		WithExposedPort(8080).
		WithEntrypoint([]string{"/usr/local/bin/leadline"}).
		WithDefaultArgs([]string{"serve"})
}

// Release builds the server image and publishes it under the version tag
// and "latest".
func (l *Leadline) Release(
	ctx context.Context,

	// Image repository, e.g. "us-docker.pkg.dev/christinevalmy/leadline/leadline"
	repository string,

	// Version string (e.g., "v1.0.0")
	version string,

	// Git commit SHA
	commit string,

	// Registry username
	username string,

	// Registry password or access token
	password *dagger.Secret,
) ([]string, error) {
	image := l.Image(ctx, version, commit).
		WithRegistryAuth(repository, username, password)

	refs := make([]string, 0, 2)
	for _, tag := range []string{version, "latest"} {
		ref, err := image.Publish(ctx, fmt.Sprintf("%s:%s", repository, tag))
		if err != nil {
			return refs, fmt.Errorf("could not publish %s image: %w", tag, err)
		}
		refs = append(refs, ref)
	}

	return refs, nil
}
