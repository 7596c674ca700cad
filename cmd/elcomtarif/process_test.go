package main

import (
	"reflect"
	"testing"

	"github.com/elcomtarif/elcomtarif/internal/config"
)

func TestProcessConfig_DoesNotMutateShared(t *testing.T) {
	origYear, origOutDir := processYear, processOutputDir
	origSchemaDir, origOutFile := processSchemaDir, processOutputFile
	t.Cleanup(func() {
		processYear, processOutputDir = origYear, origOutDir
		processSchemaDir, processOutputFile = origSchemaDir, origOutFile
	})

	base := config.DefaultConfig()
	baseYear := base.Pipeline.Year

	processYear = 2023
	processOutputDir = "/tmp/out"
	processSchemaDir = "/tmp/schemas"
	processOutputFile = "custom_{operator}.json"

	cfg, outputFile := processConfig(base)

	if cfg.Pipeline.Year != 2023 || cfg.Pipeline.OutputDir != "/tmp/out" || cfg.Pipeline.SchemaDir != "/tmp/schemas" {
		t.Errorf("overrides not applied to the copy: %+v", cfg.Pipeline)
	}
	if outputFile != "custom_{operator}.json" {
		t.Errorf("unexpected output file: %q", outputFile)
	}

	if base.Pipeline.Year != baseYear || base.Pipeline.OutputDir != "" || base.Pipeline.SchemaDir != "" {
		t.Errorf("shared config was mutated: %+v", base.Pipeline)
	}
}

func TestProcessConfig_NoOverrides(t *testing.T) {
	origYear, origOutDir := processYear, processOutputDir
	origSchemaDir, origOutFile := processSchemaDir, processOutputFile
	t.Cleanup(func() {
		processYear, processOutputDir = origYear, origOutDir
		processSchemaDir, processOutputFile = origSchemaDir, origOutFile
	})

	processYear, processOutputDir, processSchemaDir, processOutputFile = 0, "", "", ""

	base := config.DefaultConfig()
	cfg, outputFile := processConfig(base)

	if !reflect.DeepEqual(cfg.Pipeline, base.Pipeline) {
		t.Errorf("expected configured defaults, got %+v", cfg.Pipeline)
	}
	if outputFile != base.Pipeline.OutputFile {
		t.Errorf("expected configured output file, got %q", outputFile)
	}
}

func TestParseOperators(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    []int
		wantErr bool
	}{
		{name: "single", raw: "525", want: []int{525}},
		{name: "csv", raw: "525,486,19", want: []int{525, 486, 19}},
		{name: "csv with spaces", raw: " 525 , 486 ", want: []int{525, 486}},
		{name: "json array", raw: "[525, 486]", want: []int{525, 486}},
		{name: "empty", raw: "", wantErr: true},
		{name: "not a number", raw: "525,abc", wantErr: true},
		{name: "non-positive", raw: "0", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseOperators(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOperators: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
