// Package config assembles engine configurations and input data from CLI
// values.
package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"bill-extraction-service/internal/address"
	"bill-extraction-service/internal/engine"
	"bill-extraction-service/internal/models"
	"bill-extraction-service/internal/patterns"
	"bill-extraction-service/internal/report"
	apperrors "bill-extraction-service/pkg/errors"
	"bill-extraction-service/pkg/logger"
)

// CreateScorerConfig creates the address scorer configuration with the CLI
// confidence threshold applied.
func CreateScorerConfig(minConfidence int) *address.ScorerConfig {
	config := address.DefaultScorerConfig()
	if minConfidence > 0 {
		config.AcceptThreshold = minConfidence
	}
	return config
}

// CreateEngineConfig creates the engine configuration.
func CreateEngineConfig(minFields int, fallbackRules bool) *engine.Config {
	config := engine.DefaultConfig()
	if minFields > 0 {
		config.MinFieldsMatched = minFields
	}
	config.FallbackRules = fallbackRules
	return config
}

// CreateReportConfig creates a report configuration for the specified
// output format.
func CreateReportConfig(format string, includeRawFields bool) *report.Config {
	config := report.DefaultConfig()

	switch format {
	case "json":
		config.Format = report.FormatJSON
	case "csv":
		config.Format = report.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		config.Format = report.FormatConsole
	}
	config.IncludeRawFields = includeRawFields

	return config
}

// CreateLoader builds the pattern loader for the CLI run. With watch
// enabled it returns a filesystem-watching cache plus its closer; without
// it, a plain always-fresh repository and a no-op closer.
func CreateLoader(adminDir, userDir string, watch bool, log logger.Logger) (patterns.Loader, func() error, error) {
	repo := patterns.NewRepository(adminDir, userDir, log)
	if !watch {
		return repo, func() error { return nil }, nil
	}

	cache, err := patterns.NewCache(repo)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pattern cache: %w", err)
	}
	return cache, cache.Close, nil
}

// CreateRepository builds the bare repository, for commands that need the
// load diagnostics rather than the Loader interface.
func CreateRepository(adminDir, userDir string, log logger.Logger) *patterns.Repository {
	return patterns.NewRepository(adminDir, userDir, log)
}

// LoadProperties reads the landlord's property list from a CSV file with
// an "id" and an "address" column. Column order is free; unknown columns
// are ignored.
func LoadProperties(path string) ([]models.Property, error) {
	file, err := os.Open(path)
	if err != nil {
		code := apperrors.CodeFileNotFound
		if os.IsPermission(err) {
			code = apperrors.CodeFilePermission
		}
		return nil, apperrors.FileError(code, path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err).
			WithSuggestion("the properties file needs a header row with id and address columns")
	}

	idCol, addrCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id", "property_id":
			idCol = i
		case "address", "adresa", "property_address":
			addrCol = i
		}
	}
	if idCol < 0 || addrCol < 0 {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "id/address",
			strings.Join(header, ","), nil).
			WithSuggestion("the properties CSV must declare id and address columns")
	}

	var properties []models.Property
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.ValidationError(apperrors.CodeMissingField,
				fmt.Sprintf("line %d", line), "", err)
		}
		if idCol >= len(record) || addrCol >= len(record) {
			continue
		}
		prop := models.NewProperty(strings.TrimSpace(record[idCol]), strings.TrimSpace(record[addrCol]))
		if err := prop.Validate(); err != nil {
			logger.WithField("line", line).Warn("property row without id skipped")
			continue
		}
		properties = append(properties, prop)
	}

	if len(properties) == 0 {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "properties", path, nil).
			WithSuggestion("the properties file contains no usable rows")
	}
	return properties, nil
}
