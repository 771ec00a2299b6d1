// Package version reports the build of speakerd and speakerctl.
//
// Release builds set the variables with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/speakerkit/version.Version=1.0.0 \
//	    -X github.com/kbukum/speakerkit/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Development builds fall back to the VCS stamp the Go toolchain embeds.
package version
