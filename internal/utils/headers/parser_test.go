package headers

import (
	"testing"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  map[string]string
	}{
		{
			"single header",
			[]string{"User-Agent: test-agent"},
			map[string]string{"User-Agent": "test-agent"},
		},
		{
			"value with colon",
			[]string{"Referer: https://www.flipkart.com/"},
			map[string]string{"Referer": "https://www.flipkart.com/"},
		},
		{
			"whitespace trimmed",
			[]string{"  X-Custom :  value  "},
			map[string]string{"X-Custom": "value"},
		},
		{
			"malformed dropped",
			[]string{"not-a-header", "Key: Value"},
			map[string]string{"Key": "Value"},
		},
		{
			"empty input",
			nil,
			map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHeaders(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d headers, want %d: %v", len(got), len(tt.want), got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
