package catalogsvc_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	"github.com/mkrupp/homecase-dashboard/internal/svc/catalogsvc"
)

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func TestLoad_SingleEntry(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, "services.yaml", `
services:
  - name: Router
    url: http://router.local
    icon: wifi
`)

	res := catalogsvc.Load(path)
	if !res.OK() {
		t.Fatalf("Load() failed: %s: %v", res.Failure, res.Err)
	}

	if res.Catalog.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", res.Catalog.Len())
	}

	got := res.Catalog[0]
	if got.Name != "Router" || got.URL != "http://router.local" || got.Icon != "wifi" {
		t.Errorf("service = %+v", got)
	}

	if got.Description != nil {
		t.Errorf("Description = %q, want none", *got.Description)
	}
}

func TestLoad_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		file      string
		content   string
		wantNames []string
		wantDescs []string
	}{
		{
			name: "yaml keeps declaration order",
			file: "services.yaml",
			content: `
title: ignored
services:
  - name: Zeta
    url: http://z.local
    icon: z
    description: Last letter
  - name: Alpha
    url: http://a.local
    icon: a.png
    color: unknown keys are ignored
  - name: Mid
    url: http://m.local
    icon: m
    description: null
`,
			wantNames: []string{"Zeta", "Alpha", "Mid"},
			wantDescs: []string{"Last letter", "", ""},
		},
		{
			name: "json with comments",
			file: "services.jsonc",
			content: `{
  // reachable from the LAN only
  "services": [
    {"name": "NAS", "url": "http://nas.local", "icon": "disk", "description": "Storage"},
    {"name": "Printer", "url": "http://printer.local", "icon": "print",},
  ],
}`,
			wantNames: []string{"NAS", "Printer"},
			wantDescs: []string{"Storage", ""},
		},
		{
			name:      "plain json",
			file:      "services.json",
			content:   `{"services": [{"name": "Wiki", "url": "http://wiki.local", "icon": "book"}]}`,
			wantNames: []string{"Wiki"},
			wantDescs: []string{""},
		},
		{
			name:      "no services key",
			file:      "services.yaml",
			content:   "title: Home\n",
			wantNames: []string{},
		},
		{
			name:      "empty services",
			file:      "services.yaml",
			content:   "services: []\n",
			wantNames: []string{},
		},
		{
			name:      "null services",
			file:      "services.yml",
			content:   "services:\n",
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := catalogsvc.Load(writeCatalog(t, tt.file, tt.content))
			if !res.OK() {
				t.Fatalf("Load() failed: %s: %v", res.Failure, res.Err)
			}

			if res.Catalog == nil {
				t.Fatal("Catalog is nil, want non-nil")
			}

			if res.Catalog.Len() != len(tt.wantNames) {
				t.Fatalf("Len() = %d, want %d", res.Catalog.Len(), len(tt.wantNames))
			}

			for i, service := range res.Catalog {
				if service.Name != tt.wantNames[i] {
					t.Errorf("services[%d].Name = %q, want %q", i, service.Name, tt.wantNames[i])
				}

				if service.Summary() != tt.wantDescs[i] {
					t.Errorf("services[%d].Summary() = %q, want %q", i, service.Summary(), tt.wantDescs[i])
				}
			}
		})
	}
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     string
		content  string
		wantKind catalogsvc.FailureKind
		wantErr  error
	}{
		{
			name:     "empty file",
			file:     "services.yaml",
			content:  "",
			wantKind: catalogsvc.FailureMalformed,
			wantErr:  catalogsvc.ErrMalformedCatalog,
		},
		{
			name:     "comments only",
			file:     "services.yaml",
			content:  "# nothing here\n",
			wantKind: catalogsvc.FailureMalformed,
			wantErr:  catalogsvc.ErrMalformedCatalog,
		},
		{
			name:     "yaml syntax error",
			file:     "services.yaml",
			content:  "services: [\n  - name: Router\n",
			wantKind: catalogsvc.FailureMalformed,
			wantErr:  catalogsvc.ErrMalformedCatalog,
		},
		{
			name:     "json syntax error",
			file:     "services.json",
			content:  `{"services": [`,
			wantKind: catalogsvc.FailureMalformed,
			wantErr:  catalogsvc.ErrMalformedCatalog,
		},
		{
			name:     "top level sequence",
			file:     "services.yaml",
			content:  "- name: Router\n  url: http://router.local\n  icon: wifi\n",
			wantKind: catalogsvc.FailureMalformed,
			wantErr:  catalogsvc.ErrMalformedCatalog,
		},
		{
			name:     "services is a mapping",
			file:     "services.yaml",
			content:  "services:\n  router: http://router.local\n",
			wantKind: catalogsvc.FailureMalformed,
			wantErr:  catalogsvc.ErrMalformedCatalog,
		},
		{
			name:     "entry missing name",
			file:     "services.yaml",
			content:  "services:\n  - url: http://router.local\n    icon: wifi\n",
			wantKind: catalogsvc.FailureInvalidEntry,
			wantErr:  domain.ErrInvalidService,
		},
		{
			name:     "entry missing url",
			file:     "services.yaml",
			content:  "services:\n  - name: Router\n    icon: wifi\n",
			wantKind: catalogsvc.FailureInvalidEntry,
			wantErr:  domain.ErrInvalidService,
		},
		{
			name:     "entry missing icon",
			file:     "services.yaml",
			content:  "services:\n  - name: Router\n    url: http://router.local\n",
			wantKind: catalogsvc.FailureInvalidEntry,
			wantErr:  domain.ErrInvalidService,
		},
		{
			name:     "entry with empty name",
			file:     "services.yaml",
			content:  "services:\n  - name: \"  \"\n    url: http://router.local\n    icon: wifi\n",
			wantKind: catalogsvc.FailureInvalidEntry,
			wantErr:  domain.ErrInvalidService,
		},
		{
			name:     "entry with numeric name",
			file:     "services.yaml",
			content:  "services:\n  - name: 42\n    url: http://router.local\n    icon: wifi\n",
			wantKind: catalogsvc.FailureInvalidEntry,
			wantErr:  domain.ErrInvalidService,
		},
		{
			name:     "entry with list description",
			file:     "services.yaml",
			content:  "services:\n  - name: Router\n    url: http://router.local\n    icon: wifi\n    description: [a, b]\n",
			wantKind: catalogsvc.FailureInvalidEntry,
			wantErr:  domain.ErrInvalidService,
		},
		{
			name:     "entry is a string",
			file:     "services.yaml",
			content:  "services:\n  - Router\n",
			wantKind: catalogsvc.FailureInvalidEntry,
			wantErr:  domain.ErrInvalidService,
		},
		{
			name: "one bad entry after good ones",
			file: "services.yaml",
			content: `
services:
  - name: Router
    url: http://router.local
    icon: wifi
  - name: NAS
    icon: disk
`,
			wantKind: catalogsvc.FailureInvalidEntry,
			wantErr:  domain.ErrInvalidService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := catalogsvc.Load(writeCatalog(t, tt.file, tt.content))

			if res.Failure != tt.wantKind {
				t.Fatalf("Failure = %s, want %s (err: %v)", res.Failure, tt.wantKind, res.Err)
			}

			if !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", res.Err, tt.wantErr)
			}

			if res.Catalog == nil || res.Catalog.Len() != 0 {
				t.Errorf("Catalog = %v, want empty", res.Catalog)
			}
		})
	}
}

func TestLoad_InvalidEntryNamesIndex(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, "services.yaml", `
services:
  - name: Router
    url: http://router.local
    icon: wifi
  - name: NAS
    icon: disk
`)

	res := catalogsvc.Load(path)
	if res.Err == nil {
		t.Fatal("Load() succeeded, want failure")
	}

	if want := "services[1]"; !strings.Contains(res.Err.Error(), want) {
		t.Errorf("Err = %q, want it to mention %q", res.Err, want)
	}
}

func TestLoad_FileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantKind catalogsvc.FailureKind
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.yaml"), wantKind: catalogsvc.FailureMissing},
		{name: "directory", path: dir, wantKind: catalogsvc.FailureUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := catalogsvc.Load(tt.path)

			if res.Failure != tt.wantKind {
				t.Errorf("Failure = %s, want %s (err: %v)", res.Failure, tt.wantKind, res.Err)
			}

			if res.Catalog == nil || res.Catalog.Len() != 0 {
				t.Errorf("Catalog = %v, want empty", res.Catalog)
			}
		})
	}
}

func TestFailureKind_String(t *testing.T) {
	t.Parallel()

	tests := map[catalogsvc.FailureKind]string{
		catalogsvc.FailureNone:         "none",
		catalogsvc.FailureMissing:      "missing",
		catalogsvc.FailureUnreadable:   "unreadable",
		catalogsvc.FailureMalformed:    "malformed",
		catalogsvc.FailureInvalidEntry: "invalid_entry",
		catalogsvc.FailureKind(99):     "FailureKind(99)",
	}

	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestCatalogService_Services(t *testing.T) {
	t.Parallel()

	valid := writeCatalog(t, "services.yaml", "services:\n  - name: Router\n    url: http://router.local\n    icon: wifi\n")
	invalid := writeCatalog(t, "services.yaml", "services:\n  - url: http://router.local\n")

	tests := []struct {
		name    string
		path    string
		wantLen int
	}{
		{name: "valid", path: valid, wantLen: 1},
		{name: "invalid entry", path: invalid, wantLen: 0},
		{name: "missing", path: filepath.Join(t.TempDir(), "nope.yaml"), wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := catalogsvc.NewCatalogService(catalogsvc.CatalogConfig{Path: tt.path})

			got := svc.Services(context.Background())
			if got == nil || got.Len() != tt.wantLen {
				t.Errorf("Services() = %v, want %d entries", got, tt.wantLen)
			}
		})
	}
}

func TestCatalogService_ReloadsOnEveryCall(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, "services.yaml", "services: []\n")
	svc := catalogsvc.NewCatalogService(catalogsvc.CatalogConfig{Path: path})

	if got := svc.Services(context.Background()).Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}

	content := "services:\n  - name: Router\n    url: http://router.local\n    icon: wifi\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("rewrite catalog: %v", err)
	}

	if got := svc.Services(context.Background()).Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestCatalogService_CancelledContext(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, "services.yaml", "services:\n  - name: Router\n    url: http://router.local\n    icon: wifi\n")
	svc := catalogsvc.NewCatalogService(catalogsvc.CatalogConfig{Path: path})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if res := svc.Load(ctx); res.OK() {
		t.Error("Load() succeeded on a cancelled context")
	}
}

func TestCatalogService_CancelledContextLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      func(t *testing.T) string
		cancelled bool
		wantLevel string
	}{
		{
			name:      "cancelled request",
			path:      func(t *testing.T) string { return writeCatalog(t, "services.yaml", "services: []\n") },
			cancelled: true,
			wantLevel: "DEBUG",
		},
		{
			name:      "unreadable file",
			path:      func(t *testing.T) string { return t.TempDir() },
			wantLevel: "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			svc := catalogsvc.NewCatalogService(catalogsvc.CatalogConfig{Path: tt.path(t)})
			//nolint:exhaustruct
			svc.Log = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if tt.cancelled {
				cancel()
			}

			if got := svc.Services(ctx); got.Len() != 0 {
				t.Errorf("Services() = %v, want empty", got)
			}

			out := buf.String()
			if !strings.Contains(out, `"level":"`+tt.wantLevel+`"`) {
				t.Errorf("log %q has no %s record", out, tt.wantLevel)
			}

			if tt.wantLevel != "ERROR" && strings.Contains(out, `"level":"ERROR"`) {
				t.Errorf("log %q has an ERROR record", out)
			}
		})
	}
}
