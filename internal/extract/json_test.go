package extract

import (
	"testing"
)

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantKey string
		wantVal any
		wantErr bool
	}{
		{
			name:    "plain object",
			input:   `{"field1":"v1"}`,
			wantKey: "field1",
			wantVal: "v1",
		},
		{
			name:    "fenced object",
			input:   "```json\n{\"field1\":\"v1\"}\n```",
			wantKey: "field1",
			wantVal: "v1",
		},
		{
			name:    "object with surrounding prose",
			input:   "Here is the JSON you asked for:\n{\"tariff\": \"H4\"}\nLet me know if you need more.",
			wantKey: "tariff",
			wantVal: "H4",
		},
		{
			name:    "whitespace padding",
			input:   "  \n {\"a\": true} \n ",
			wantKey: "a",
			wantVal: true,
		},
		{
			name:    "not json",
			input:   "the document does not contain tariff data",
			wantErr: true,
		},
		{
			name:    "json array rejected",
			input:   `[1,2,3]`,
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSONObject(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got[tt.wantKey] != tt.wantVal {
				t.Errorf("expected %s=%v, got %v", tt.wantKey, tt.wantVal, got[tt.wantKey])
			}
		})
	}
}
