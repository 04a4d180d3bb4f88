package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-blog/internal/runtimeconfig"
)

func TestConfigValidate_Defaults(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_AllowsDisabledGeneratorWithoutOutput(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = false
	cfg.Generator.OutputDir = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresOutputDirWhenGeneratorEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = true
	cfg.Generator.OutputDir = " "

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrGeneratorOutputDirRequired) {
		t.Fatalf("expected ErrGeneratorOutputDirRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresContentDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = "  "

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrContentDirRequired) {
		t.Fatalf("expected ErrContentDirRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsRelativeBaseURL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.BaseURL = "blog/posts"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrSiteBaseURLInvalid) {
		t.Fatalf("expected ErrSiteBaseURLInvalid, got %v", err)
	}
}

func TestConfigValidate_MathModes(t *testing.T) {
	cases := []struct {
		mode    string
		wantErr bool
	}{
		{"", false},
		{"none", false},
		{"mathjax", false},
		{"KaTeX", false},
		{"latex", true},
	}
	for _, tc := range cases {
		cfg := runtimeconfig.DefaultConfig()
		cfg.Markdown.Math.Mode = tc.mode
		err := cfg.Validate()
		if tc.wantErr && !errors.Is(err, runtimeconfig.ErrMathModeInvalid) {
			t.Fatalf("mode %q: expected ErrMathModeInvalid, got %v", tc.mode, err)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("mode %q: unexpected error: %v", tc.mode, err)
		}
	}
}

func TestConfigValidate_TOCDepthRange(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markdown.TOC.Enabled = true
	cfg.Markdown.TOC.Depth = 7

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrTOCDepthInvalid) {
		t.Fatalf("expected ErrTOCDepthInvalid, got %v", err)
	}

	cfg.Markdown.TOC.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled toc should skip depth check, got %v", err)
	}
}

func TestConfigValidate_CatalogRequiresDSN(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Catalog = true
	cfg.Catalog.DSN = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrCatalogDSNRequired) {
		t.Fatalf("expected ErrCatalogDSNRequired, got %v", err)
	}
}

func TestConfigValidate_CatalogRejectsUnknownDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Catalog = true
	cfg.Catalog.Driver = "mysql"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrCatalogDriverUnknown) {
		t.Fatalf("expected ErrCatalogDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_PreviewRequiresAddr(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Preview = true
	cfg.Server.Addr = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrServerAddrRequired) {
		t.Fatalf("expected ErrServerAddrRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
