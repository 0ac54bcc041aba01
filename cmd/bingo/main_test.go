package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/bingo/internal/config"
	"github.com/verte-zerg/bingo/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.Cards == nil || *cfg.Game.Cards != defaultCards {
		t.Fatalf("expected cards %d, got %v", defaultCards, cfg.Game.Cards)
	}
	if cfg.Game.Labels == nil || strings.Join(*cfg.Game.Labels, ",") != "N,A,T,A,L" {
		t.Fatalf("unexpected labels %v", cfg.Game.Labels)
	}
	if cfg.Simulate.Runs == nil || *cfg.Simulate.Runs != defaultRuns {
		t.Fatalf("expected runs %d, got %v", defaultRuns, cfg.Simulate.Runs)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addGameFlags(cmd)
	if err := cmd.Flags().Set("cards", "12"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	cards, rows := 40, 3
	labels := []string{"B", "I", "N", "G", "O"}
	applyGameConfig(cmd, config.GameConfig{Cards: &cards, Rows: &rows, Labels: &labels})

	cfg, err := currentGameConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Cards != 12 {
		t.Fatalf("expected flag value 12, got %d", cfg.Cards)
	}
	if cfg.Rows != 3 {
		t.Fatalf("expected config rows 3, got %d", cfg.Rows)
	}
	if strings.Join(cfg.Labels, "") != "BINGO" {
		t.Fatalf("expected BINGO labels, got %v", cfg.Labels)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.GameConfig{Cards: 70, Rows: 5, Universe: 75, Labels: []string{"N", "A", "T", "A", "L"}}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cases := []model.GameConfig{
		{Cards: 0, Rows: 5, Universe: 75, Labels: valid.Labels},
		{Cards: 70, Rows: 0, Universe: 75, Labels: valid.Labels},
		{Cards: 70, Rows: 5, Universe: 75},
		{Cards: 70, Rows: 5, Universe: 4, Labels: valid.Labels},
		{Cards: 70, Rows: 5, Universe: 25, Labels: valid.Labels},
	}
	for i, cfg := range cases {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestSessionFilter(t *testing.T) {
	filter, err := sessionFilter("finished", " Friday ", 3)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if filter.Status != model.StatusFinished || filter.Name != "Friday" || filter.Limit != 3 {
		t.Fatalf("unexpected filter %+v", filter)
	}
	if _, err := sessionFilter("paused", "", 0); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if _, err := sessionFilter("", "", -1); err == nil {
		t.Fatalf("expected error for negative limit")
	}
}

func TestResolveSeedKeepsExplicitSeed(t *testing.T) {
	if got := resolveSeed(42); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := resolveSeed(0); got == 0 {
		t.Fatalf("expected a clock seed")
	}
}
