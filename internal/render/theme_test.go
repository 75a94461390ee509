package render

import (
	"strings"
	"testing"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status string
		want   any
	}{
		{"RUNNING", Success},
		{"active", Success},
		{"STOPPED", Error},
		{"DEPROVISIONING", Error},
		{"PENDING", Warning},
		{"PROVISIONING", Warning},
		{"whatever", Muted},
	}
	for _, tt := range tests {
		if got := StatusColor(tt.status); got != tt.want {
			t.Errorf("StatusColor(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestTheme_Status(t *testing.T) {
	plain := NewTheme(false)
	if got := plain.Status("RUNNING"); got != "RUNNING" {
		t.Errorf("plain status = %q", got)
	}

	colored := NewTheme(true)
	got := colored.Status("RUNNING")
	if !strings.Contains(got, "●") || !strings.HasSuffix(got, " RUNNING") {
		t.Errorf("colored status = %q, want bullet and status", got)
	}
	if colored.Status("") != "" {
		t.Error("empty status should stay empty")
	}
}
