package catalogsvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
)

// ErrMalformedCatalog is returned when the services document does not have the expected structure.
var ErrMalformedCatalog = errors.New("malformed catalog")

// FailureKind tells why a catalog could not be loaded.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureMissing
	FailureUnreadable
	FailureMalformed
	FailureInvalidEntry
)

//nolint:gochecknoglobals
var failureKindNames = map[FailureKind]string{
	FailureNone:         "none",
	FailureMissing:      "missing",
	FailureUnreadable:   "unreadable",
	FailureMalformed:    "malformed",
	FailureInvalidEntry: "invalid_entry",
}

func (k FailureKind) String() string {
	if name, ok := failureKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("FailureKind(%d)", int(k))
}

// Result is the outcome of loading a catalog.
// Catalog is only populated when Failure is FailureNone; it is never partial.
type Result struct {
	Catalog domain.Catalog
	Failure FailureKind
	Err     error
}

// OK reports whether the catalog was loaded.
func (r Result) OK() bool {
	return r.Failure == FailureNone
}

func failed(kind FailureKind, err error) Result {
	return Result{Catalog: domain.Catalog{}, Failure: kind, Err: err}
}

// Load reads and validates the services document at path.
//
// The document must be a mapping with an optional "services" sequence.
// A document without "services" yields an empty catalog. Unknown keys are ignored.
// Every entry needs string values for "name", "url" and "icon"; "description" is optional.
// If any entry is invalid, no entries are returned.
func Load(path string) Result {
	data, err := os.ReadFile(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return failed(FailureMissing, fmt.Errorf("read %s: %w", path, err))
	case err != nil:
		return failed(FailureUnreadable, fmt.Errorf("read %s: %w", path, err))
	}

	doc, err := decodeDocument(path, data)
	if err != nil {
		return failed(FailureMalformed, fmt.Errorf("%w: %s: %w", ErrMalformedCatalog, path, err))
	}

	catalog, kind, err := parseCatalog(doc)
	if err != nil {
		return failed(kind, fmt.Errorf("%s: %w", path, err))
	}

	return Result{Catalog: catalog, Failure: FailureNone, Err: nil}
}

func decodeDocument(path string, data []byte) (any, error) {
	var doc any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	return doc, nil
}

func parseCatalog(doc any) (domain.Catalog, FailureKind, error) {
	if doc == nil {
		return nil, FailureMalformed, fmt.Errorf("%w: empty document", ErrMalformedCatalog)
	}

	root, ok := asMapping(doc)
	if !ok {
		return nil, FailureMalformed, fmt.Errorf("%w: top level is %s, not a mapping", ErrMalformedCatalog, typeName(doc))
	}

	raw, ok := root["services"]
	if !ok || raw == nil {
		return domain.Catalog{}, FailureNone, nil
	}

	entries, ok := raw.([]any)
	if !ok {
		return nil, FailureMalformed, fmt.Errorf("%w: services is %s, not a sequence", ErrMalformedCatalog, typeName(raw))
	}

	catalog := make(domain.Catalog, 0, len(entries))

	for i, entry := range entries {
		service, err := parseService(entry)
		if err != nil {
			return nil, FailureInvalidEntry, fmt.Errorf("services[%d]: %w", i, err)
		}

		catalog = append(catalog, service)
	}

	return catalog, FailureNone, nil
}

func parseService(entry any) (domain.Service, error) {
	fields, ok := asMapping(entry)
	if !ok {
		return domain.Service{}, fmt.Errorf("%w: entry is %s, not a mapping", domain.ErrInvalidService, typeName(entry))
	}

	var (
		service domain.Service
		err     error
	)

	if service.Name, err = requiredString(fields, "name"); err != nil {
		return domain.Service{}, err
	}

	if service.URL, err = requiredString(fields, "url"); err != nil {
		return domain.Service{}, err
	}

	if service.Icon, err = requiredString(fields, "icon"); err != nil {
		return domain.Service{}, err
	}

	switch description := fields["description"].(type) {
	case nil:
	case string:
		service.Description = &description
	default:
		return domain.Service{}, fmt.Errorf("%w: description is %s, not a string", domain.ErrInvalidService, typeName(description))
	}

	if err := service.Validate(); err != nil {
		return domain.Service{}, err //nolint:wrapcheck
	}

	return service, nil
}

func requiredString(fields map[string]any, key string) (string, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: missing %s", domain.ErrInvalidService, key)
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %s, not a string", domain.ErrInvalidService, key, typeName(raw))
	}

	return value, nil
}

// asMapping accepts both map shapes the YAML decoder produces.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		converted := make(map[string]any, len(m))

		for key, value := range m {
			converted[fmt.Sprint(key)] = value
		}

		return converted, true
	default:
		return nil, false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int, int64, uint64, float64:
		return "a number"
	case []any:
		return "a sequence"
	case map[string]any, map[any]any:
		return "a mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
