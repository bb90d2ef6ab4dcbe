package httpapi

import (
	"reflect"
	"testing"
)

func TestRuntimeModeFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		devMode    string
		production string
		want       RuntimeMode
		wantErr    bool
	}{
		{name: "defaults to production", want: RuntimeModeProduction},
		{name: "dev mode", devMode: "true", want: RuntimeModeDevelopment},
		{name: "production mode", production: "true", want: RuntimeModeProduction},
		{name: "dev false falls through", devMode: "false", want: RuntimeModeProduction},
		{name: "blank values ignored", devMode: "  ", production: "", want: RuntimeModeProduction},
		{name: "both set", devMode: "true", production: "true", wantErr: true},
		{name: "garbage value", devMode: "yes please", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envDevMode, tt.devMode)
			t.Setenv(envProductionMode, tt.production)

			mode, err := runtimeModeFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got mode %q", mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.want {
				t.Fatalf("mode = %q, want %q", mode, tt.want)
			}
		})
	}
}

func TestLoadRuntimeConfigFromEnvDevelopment(t *testing.T) {
	t.Setenv(envDevMode, "true")
	t.Setenv(envProductionMode, "")
	t.Setenv(envCORSAllowedOrigins, "")

	config, err := LoadRuntimeConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !config.Mode.IsDevelopment() {
		t.Fatalf("mode = %q, want development", config.Mode)
	}
	if !config.AllowAnyCORSOrigin {
		t.Fatalf("development without an origin list must allow any origin")
	}
}

func TestLoadRuntimeConfigFromEnvProductionOrigins(t *testing.T) {
	t.Setenv(envDevMode, "")
	t.Setenv(envProductionMode, "true")
	t.Setenv(envCORSAllowedOrigins, "https://a.example.com, https://b.example.com ,https://a.example.com")

	config, err := LoadRuntimeConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.AllowAnyCORSOrigin {
		t.Fatalf("production must never allow any origin")
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(config.CORSAllowedOrigins, want) {
		t.Fatalf("origins = %v, want %v", config.CORSAllowedOrigins, want)
	}
}

func TestLoadRuntimeConfigFromEnvRejectsProductionWildcard(t *testing.T) {
	t.Setenv(envDevMode, "")
	t.Setenv(envProductionMode, "true")
	t.Setenv(envCORSAllowedOrigins, "https://a.example.com,*")

	if _, err := LoadRuntimeConfigFromEnv(); err == nil {
		t.Fatalf("expected wildcard rejection in production")
	}
}

func TestDefaultListenAddr(t *testing.T) {
	if got := DefaultListenAddr(RuntimeModeDevelopment); got != "127.0.0.1:8080" {
		t.Fatalf("development addr = %q", got)
	}
	if got := DefaultListenAddr(RuntimeModeProduction); got != ":8080" {
		t.Fatalf("production addr = %q", got)
	}
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "", want: []string{}},
		{input: " , ,", want: []string{}},
		{input: "a,b", want: []string{"a", "b"}},
		{input: " a , b , a ", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := parseCSV(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("parseCSV(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
