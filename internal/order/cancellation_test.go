package order

import (
	"testing"
)

func TestValidateReason(t *testing.T) {
	catalog := DefaultReasons()

	tests := []struct {
		name    string
		reason  string
		wantErr error
	}{
		{name: "catalogReasonAccepted", reason: "Quality issue", wantErr: nil},
		{name: "emptyReasonRejected", reason: "", wantErr: ErrReasonRequired},
		{name: "freeTextRejected", reason: "felt like it", wantErr: ErrUnknownReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateReason(tt.reason, catalog); err != tt.wantErr {
				t.Errorf("ValidateReason(%q) error = %v, want %v", tt.reason, err, tt.wantErr)
			}
		})
	}
}

func TestDefaultReasons(t *testing.T) {
	reasons := DefaultReasons()
	if len(reasons) == 0 {
		t.Fatal("DefaultReasons() returned no entries")
	}
	for _, r := range reasons {
		if r.Label == "" {
			t.Error("DefaultReasons() produced an entry with empty label")
		}
	}
}
