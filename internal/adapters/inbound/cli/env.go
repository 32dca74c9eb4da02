package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/sitegate/sitegate/internal/adapters/outbound/evidence"
	"github.com/sitegate/sitegate/internal/application"
	"github.com/sitegate/sitegate/internal/domain"
)

// GateOptions is the process environment of a gate run, read once at
// startup so the services never consult os.Getenv themselves.
type GateOptions struct {
	Strict      map[domain.Gate]bool
	EvidenceDir string
	RunID       string
	Verbose     bool
	Upload      evidence.S3Config
}

// loadDotEnv loads .env from the project and the working directory.
// Variables already set in the process win.
func loadDotEnv(projectPath string) {
	seen := map[string]bool{}
	for _, dir := range []string{projectPath, "."} {
		file, err := filepath.Abs(filepath.Join(dir, ".env"))
		if err != nil || seen[file] {
			continue
		}
		seen[file] = true
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("failed to load .env file")
			continue
		}
		log.Debug().Str("file", file).Msg("loaded .env file")
	}
}

// gateOptionsFromEnv reads TERMS_STRICT, REFS_STRICT, URLS_STRICT,
// EVIDENCE_DIR, RUN_ID, VERBOSE and the evidence upload settings.
func gateOptionsFromEnv() GateOptions {
	opts := GateOptions{
		Strict:      make(map[domain.Gate]bool, len(domain.AllGates)),
		EvidenceDir: envOrDefault("EVIDENCE_DIR", ""),
		RunID:       envOrDefault("RUN_ID", ulid.Make().String()),
		Verbose:     envBoolDefault("VERBOSE", false),
		Upload: evidence.S3Config{
			Endpoint:  envOrDefault("S3_ENDPOINT", "s3.amazonaws.com"),
			AccessKey: envOrDefault("S3_ACCESS_KEY", ""),
			SecretKey: envOrDefault("S3_SECRET_KEY", ""),
			UseSSL:    envBoolDefault("S3_USE_SSL", true),
			Bucket:    envOrDefault("EVIDENCE_BUCKET", ""),
			Prefix:    envOrDefault("EVIDENCE_PREFIX", ""),
		},
	}
	for _, g := range domain.AllGates {
		opts.Strict[g] = envBoolDefault(strictVar(g), false)
	}
	return opts
}

func strictVar(g domain.Gate) string {
	return strings.ToUpper(string(g)) + "_STRICT"
}

// Request builds the service request for one gate.
func (o GateOptions) Request(projectPath string, g domain.Gate) application.GateRequest {
	return application.GateRequest{
		ProjectPath: projectPath,
		Gate:        g,
		Mode:        domain.ModeFor(o.Strict[g]),
		EvidenceDir: o.EvidenceDir,
		RunID:       o.RunID,
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBoolDefault(key string, fallback bool) bool {
	if value, ok := envBool(key); ok {
		return value
	}
	return fallback
}

func envBool(key string) (bool, bool) {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "":
		return false, false
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Str("var", key).Str("value", value).Msg("ignoring non-boolean value")
		return false, false
	}
	return b, true
}
