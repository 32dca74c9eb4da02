package application

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/sitegate/sitegate/internal/domain"
	"github.com/sitegate/sitegate/internal/domain/gate"
	"github.com/sitegate/sitegate/internal/domain/rules"
	"github.com/sitegate/sitegate/internal/domain/waiver"
)

// GateRequest is the explicit input of one gate run.
type GateRequest struct {
	ProjectPath string
	Gate        domain.Gate
	Mode        domain.Mode
	EvidenceDir string // empty disables evidence output
	RunID       string // empty generates a ULID
}

// GateService orchestrates a gate run:
// load policy → build matchers → walk → scan → report → evidence → history.
type GateService struct {
	walker     domain.FileWalker
	policy     domain.PolicyLoader
	references domain.ReferenceLoader
	git        domain.GitInfo
	history    domain.RunHistory
	evidence   []domain.EvidenceWriter
	uploader   domain.EvidenceUploader
	now        func() time.Time
}

func NewGateService(
	walker domain.FileWalker,
	policy domain.PolicyLoader,
	references domain.ReferenceLoader,
	git domain.GitInfo,
	history domain.RunHistory,
) *GateService {
	return &GateService{
		walker:     walker,
		policy:     policy,
		references: references,
		git:        git,
		history:    history,
		now:        time.Now,
	}
}

// WithEvidence sets the writers used when a request names an evidence dir.
func (s *GateService) WithEvidence(writers ...domain.EvidenceWriter) *GateService {
	s.evidence = writers
	return s
}

// WithUploader copies written evidence to remote storage after each run.
func (s *GateService) WithUploader(u domain.EvidenceUploader) *GateService {
	s.uploader = u
	return s
}

// WithClock overrides the run timestamp source.
func (s *GateService) WithClock(now func() time.Time) *GateService {
	s.now = now
	return s
}

// lineScanner scans one file; skip reports files the variant ignores.
type lineScanner struct {
	scan func(file string, lines []string) []domain.Hit
	skip func(file string) bool
}

// Run executes one gate. Configuration problems and unreadable files are
// errors; findings never are. In strict mode a failed evidence upload is
// returned as an error together with the report.
func (s *GateService) Run(ctx context.Context, req GateRequest) (*domain.ScanReport, error) {
	policy, err := s.policy.Load(req.ProjectPath)
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}

	resolver := waiver.NewResolver(policy.Waiver)
	ls, err := s.scannerFor(req, policy, resolver)
	if err != nil {
		return nil, err
	}

	walk, err := s.walker.Walk(req.ProjectPath, policy.Target())
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	var hits []domain.Hit
	scanned := 0
	for _, f := range walk.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ls.skip != nil && ls.skip(f.Path) {
			continue
		}
		scanned++
		hits = append(hits, ls.scan(f.Path, f.Lines)...)
	}

	report := gate.BuildReport(req.Gate, req.Mode, hits, scanned)
	report.RunID = req.RunID
	if report.RunID == "" {
		report.RunID = ulid.Make().String()
	}
	report.Timestamp = s.now().UTC()
	report.TreeDigest = walk.TreeDigest
	if s.git != nil {
		if hash, err := s.git.CommitHash(req.ProjectPath); err == nil {
			report.CommitHash = hash
		} else {
			log.Debug().Err(err).Msg("commit hash unavailable")
		}
		if branch, err := s.git.Branch(req.ProjectPath); err == nil {
			report.Branch = branch
		}
	}

	log.Info().
		Str("gate", string(req.Gate)).
		Str("mode", string(req.Mode)).
		Str("run_id", report.RunID).
		Int("files", report.Summary.FilesScanned).
		Int("actionable", report.Summary.Actionable).
		Int("waived", report.Summary.Waived).
		Str("verdict", string(report.Verdict)).
		Msg("gate finished")

	uploadErr := s.writeEvidence(ctx, req, report)

	if s.history != nil {
		if err := s.history.Save(req.ProjectPath, domain.EntryFor(report)); err != nil {
			log.Warn().Err(err).Msg("recording run history failed")
		}
	}

	if uploadErr != nil {
		return report, uploadErr
	}
	return report, nil
}

// RunAll runs each request in order and stops at the first error.
func (s *GateService) RunAll(ctx context.Context, reqs []GateRequest) ([]*domain.ScanReport, error) {
	reports := make([]*domain.ScanReport, 0, len(reqs))
	for _, req := range reqs {
		r, err := s.Run(ctx, req)
		if r != nil {
			reports = append(reports, r)
		}
		if err != nil {
			return reports, fmt.Errorf("%s gate: %w", req.Gate, err)
		}
	}
	return reports, nil
}

// ExitCode returns the highest exit status across reports.
func ExitCode(reports ...*domain.ScanReport) int {
	code := 0
	for _, r := range reports {
		if c := gate.ExitCode(r.Gate, r.Mode, r.Verdict); c > code {
			code = c
		}
	}
	return code
}

func (s *GateService) scannerFor(req GateRequest, policy domain.Policy, w *waiver.Resolver) (lineScanner, error) {
	switch req.Gate {
	case domain.GateTerms:
		compiled, err := rules.CompileAll(policy.Terms.Rules)
		if err != nil {
			return lineScanner{}, &domain.ConfigError{Source: "terms rules", Err: err}
		}
		return lineScanner{scan: func(file string, lines []string) []domain.Hit {
			return gate.ScanLines(file, lines, compiled, w)
		}}, nil

	case domain.GateRefs:
		source := policy.Refs.Source
		known, err := s.references.LoadReferences(filepath.Join(req.ProjectPath, filepath.FromSlash(source)))
		if err != nil {
			return lineScanner{}, fmt.Errorf("loading references: %w", err)
		}
		checker, err := gate.NewRefChecker(policy.Refs.UsagePattern, known)
		if err != nil {
			return lineScanner{}, &domain.ConfigError{Source: "refs usage pattern", Err: err}
		}
		log.Debug().Int("keys", len(known)).Str("source", source).Msg("reference keys loaded")
		return lineScanner{
			scan: func(file string, lines []string) []domain.Hit {
				return checker.ScanLines(file, lines, w)
			},
			skip: func(file string) bool {
				return file == filepath.ToSlash(filepath.Clean(source))
			},
		}, nil

	case domain.GateURLs:
		checker := gate.NewURLChecker(policy.URLs.Hosts, policy.URLs.AllowFiles)
		rs := []*rules.Compiled{checker.Rule()}
		return lineScanner{
			scan: func(file string, lines []string) []domain.Hit {
				return gate.ScanLines(file, lines, rs, w)
			},
			skip: checker.Allowed,
		}, nil

	default:
		return lineScanner{}, fmt.Errorf("unknown gate %q", req.Gate)
	}
}

// writeEvidence writes and uploads artifacts. Write failures abort through
// the returned error; upload failures only do so in strict mode.
func (s *GateService) writeEvidence(ctx context.Context, req GateRequest, report *domain.ScanReport) error {
	if req.EvidenceDir == "" || len(s.evidence) == 0 {
		return nil
	}

	var files []string
	for _, w := range s.evidence {
		written, err := w.Write(report, req.EvidenceDir)
		files = append(files, written...)
		if err != nil {
			report.EvidenceFiles = files
			return fmt.Errorf("writing evidence: %w", err)
		}
	}
	report.EvidenceFiles = files
	log.Debug().Strs("files", files).Msg("evidence written")

	if s.uploader == nil {
		return nil
	}
	if err := s.uploader.Upload(ctx, files); err != nil {
		log.Warn().Err(err).Str("mode", string(req.Mode)).Msg("evidence upload failed")
		if req.Mode == domain.ModeStrict {
			return fmt.Errorf("uploading evidence: %w", err)
		}
		return nil
	}
	report.EvidenceUploaded = true
	return nil
}
