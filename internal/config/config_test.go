package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("expected default port 8081, got %s", cfg.Port)
	}
	if cfg.Rules.InitialTaxi != 10 {
		t.Errorf("expected default initial taxi tickets 10, got %d", cfg.Rules.InitialTaxi)
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	os.Setenv("SCOTLANDYARD_PORT", "9000")
	defer os.Unsetenv("SCOTLANDYARD_PORT")

	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected env override port 9000, got %s", cfg.Port)
	}
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	os.Setenv("SCOTLANDYARD_PORT", "9000")
	defer os.Unsetenv("SCOTLANDYARD_PORT")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("port", "", "")
	flags.Set("port", "7000")

	cfg, err := Load(flags, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("expected flag override port 7000, got %s", cfg.Port)
	}
}

func TestToRules(t *testing.T) {
	rc := RulesConfig{InitialTaxi: 1, InitialBus: 2, InitialUnderground: 3, InitialHidden: 4, InitialDouble: 5}
	rules := rc.ToRules()
	if rules.InitialTaxi != 1 || rules.InitialBus != 2 || rules.InitialUnderground != 3 || rules.InitialHidden != 4 || rules.InitialDouble != 5 {
		t.Errorf("unexpected conversion: %+v", rules)
	}
}
