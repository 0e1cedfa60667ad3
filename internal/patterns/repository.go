package patterns

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"regexp/syntax"
	"strings"

	apperrors "bill-extraction-service/pkg/errors"
	"bill-extraction-service/pkg/logger"

	"gopkg.in/yaml.v3"
)

// Loader yields the patterns applicable to one user, admin tier first.
// Repository always reads fresh from disk; Cache adds bounded staleness.
type Loader interface {
	LoadAll(userID string) ([]Loaded, error)
}

// Repository reads pattern files from the two tier directories. The admin
// directory holds shared patterns; the user directory holds one
// subdirectory per user id.
//
// Loading is resilient: a malformed file is logged and skipped, never
// aborting the load, so one broken pattern cannot take extraction down for
// every vendor.
type Repository struct {
	adminDir string
	userDir  string
	log      logger.Logger
}

// NewRepository creates a repository over the given tier directories.
// Either directory may be empty to disable that tier. A nil logger falls
// back to the global instance.
func NewRepository(adminDir, userDir string, log logger.Logger) *Repository {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Repository{
		adminDir: adminDir,
		userDir:  userDir,
		log:      log.WithComponent("patterns"),
	}
}

// LoadReport is the outcome of one load pass: what loaded and what was
// skipped, with the reason per skipped file.
type LoadReport struct {
	Loaded  []Loaded                   `json:"loaded"`
	Skipped []*apperrors.BillscanError `json:"skipped,omitempty"`
}

// LoadAll returns every loadable pattern for the user: the admin tier
// first, then the user's own patterns, each tier in file name order.
func (r *Repository) LoadAll(userID string) ([]Loaded, error) {
	report := r.LoadWithReport(userID)
	return report.Loaded, nil
}

// LoadWithReport is LoadAll plus the per-file skip diagnostics, for the
// pattern lint tooling.
func (r *Repository) LoadWithReport(userID string) *LoadReport {
	report := &LoadReport{}

	if r.adminDir != "" {
		r.loadDir(r.adminDir, Source{Tier: TierAdmin}, "", report)
	}
	if r.userDir != "" && userID != "" {
		dir := filepath.Join(r.userDir, userID)
		r.loadDir(dir, Source{Tier: TierUser, UserID: userID}, "user-"+userID+"-", report)
	}

	r.log.WithFields(logger.Fields{
		"user_id": userID,
		"loaded":  len(report.Loaded),
		"skipped": len(report.Skipped),
	}).Debug("pattern load complete")

	return report
}

func (r *Repository) loadDir(dir string, source Source, idPrefix string, report *LoadReport) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.WithField("dir", dir).Debug("pattern directory absent, tier empty")
			return
		}
		skip := apperrors.FileError(apperrors.CodeDirectoryError, dir, err)
		report.Skipped = append(report.Skipped, skip)
		r.log.WithError(skip).Warn("pattern directory unreadable, tier skipped")
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, name)
		pattern, loadErr := loadFile(path, ext)
		if loadErr != nil {
			report.Skipped = append(report.Skipped, loadErr)
			r.log.WithError(loadErr).WithField("file", path).Warn("pattern skipped")
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		report.Loaded = append(report.Loaded, Loaded{
			Pattern: pattern,
			ID:      idPrefix + stem,
			Source:  source,
		})
	}
}

func loadFile(path, ext string) (*Pattern, *apperrors.BillscanError) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := apperrors.CodeFileNotFound
		if os.IsPermission(err) {
			code = apperrors.CodeFilePermission
		}
		return nil, apperrors.FileError(code, path, err)
	}

	// Decode generically first so the schema sees the raw document, then
	// into the typed pattern.
	var generic interface{}
	var pattern Pattern
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, apperrors.PatternError(apperrors.CodePatternInvalid, path, "not valid JSON", err)
		}
	default:
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, apperrors.PatternError(apperrors.CodePatternInvalid, path, "not valid YAML", err)
		}
	}

	if err := validateSchema(generic); err != nil {
		return nil, apperrors.PatternError(apperrors.CodePatternSchema, path, err.Error(), err)
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &pattern); err != nil {
			return nil, apperrors.PatternError(apperrors.CodePatternInvalid, path, err.Error(), err)
		}
	default:
		if err := yaml.Unmarshal(data, &pattern); err != nil {
			return nil, apperrors.PatternError(apperrors.CodePatternInvalid, path, err.Error(), err)
		}
	}

	if err := pattern.Compile(); err != nil {
		code := apperrors.CodePatternInvalid
		var synErr *syntax.Error
		if stderrors.As(err, &synErr) {
			code = apperrors.CodeRegexCompile
		}
		return nil, apperrors.PatternError(code, path, err.Error(), err)
	}

	return &pattern, nil
}
