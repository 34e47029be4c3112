package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"todosync/internal/logging"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		quiet     bool
		wantDebug bool
		wantWarn  bool
	}{
		{"default", false, false, false, true},
		{"debug", true, false, true, true},
		{"quiet", false, true, false, false},
		{"debug wins", true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logging.New(&buf, tt.debug, tt.quiet)

			log.Debug("dispatching", "op", "create")
			log.Warn("rolled back", "op", "delete")
			out := buf.String()

			if got := strings.Contains(out, "dispatching"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v (%q)", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "rolled back"); got != tt.wantWarn {
				t.Errorf("warn line present = %v, want %v (%q)", got, tt.wantWarn, out)
			}
		})
	}
}
