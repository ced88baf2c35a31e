// Command nux-mirror copies document metadata from a repository into a
// local directory tree of JSON files.
//
// Configuration comes from flags and environment variables (optionally
// via a .env file):
//
//	NUXEO_API_USER          repository username (default "Administrator")
//	NUXEO_API_PASS          repository password (default "Administrator")
//	NUXEO_REST_API          REST API root
//	NUXEO_FILEIMPORTER_API  file importer API root
//	REDIS_URL               optional redis address for the metadata cache
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mkarlsen/nuxeo-repo-client/pkg/cache"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/client"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/logging"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/mirror"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/pagination"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/repository"
)

func main() {
	query := flag.String("query", "", "NXQL query selecting the documents to mirror")
	path := flag.String("path", "", "repository path whose children are mirrored")
	out := flag.String("out", ".", "local directory to mirror into")
	pretty := flag.Bool("pretty", true, "human-readable log output")
	flag.Parse()

	// .env is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	logCfg := logging.DefaultConfig()
	logCfg.Pretty = *pretty
	logger := logging.Setup(logCfg)

	cfg := configFromEnv()
	nuxClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create client")
	}

	repo := repository.New(nuxClient)

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		ctx := context.Background()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis", redisURL).Msg("Failed to connect to Redis")
		}
		repo.SetMetadataCache(cache.NewStore(redisClient, 0))
		logger.Info().Str("redis", redisURL).Msg("Metadata cache enabled")
	}

	var stream *pagination.Stream
	switch {
	case *query != "" && *path != "":
		logger.Fatal().Msg("-query and -path are mutually exclusive")
	case *query != "":
		stream = repo.Query(*query)
	case *path != "":
		stream = repo.Children(*path)
	default:
		stream = repo.All()
	}

	m := mirror.New(repo)
	if err := m.Pull(context.Background(), stream, *out); err != nil {
		logger.Fatal().Err(err).Msg("Mirror pull failed")
	}

	fmt.Fprintf(os.Stderr, "mirrored into %s\n", *out)
}

// configFromEnv builds the client configuration from the environment,
// falling back to the defaults for a local repository instance.
func configFromEnv() client.Config {
	cfg := client.DefaultConfig(
		getEnv("NUXEO_API_USER", "Administrator"),
		getEnv("NUXEO_API_PASS", "Administrator"),
	)
	cfg.BaseURL = getEnv("NUXEO_REST_API", cfg.BaseURL)
	cfg.ImporterURL = getEnv("NUXEO_FILEIMPORTER_API", cfg.ImporterURL)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
