package cpu

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/evenbily/processor-trace/internal/ipt"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    CPU
		wantErr bool
	}{
		{in: "6/61", want: CPU{Vendor: VendorIntel, Family: 6, Model: 61}},
		{in: "6/78/3", want: CPU{Vendor: VendorIntel, Family: 6, Model: 78, Stepping: 3}},
		{in: "0x6/0x3d", want: CPU{Vendor: VendorIntel, Family: 6, Model: 0x3d}},
		{in: "6", wantErr: true},
		{in: "6/", wantErr: true},
		{in: "/61", wantErr: true},
		{in: "0/61", wantErr: true},
		{in: "6/256", wantErr: true},
		{in: "6/61/2/1", wantErr: true},
		{in: "six/61", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ipt.ErrInvalid) {
					t.Fatalf("Parse(%q) err = %v, want %v", tc.in, err, ipt.ErrInvalid)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.in, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := (CPU{}).String(); got != "none" {
		t.Errorf("zero cpu = %q", got)
	}
	c := CPU{Vendor: VendorIntel, Family: 6, Model: 61, Stepping: 4}
	if got := c.String(); got != "intel 6/61/4" {
		t.Errorf("cpu = %q", got)
	}
}

func TestErrataFor(t *testing.T) {
	tests := []struct {
		name string
		cpu  CPU
		want Errata
	}{
		{"none", CPU{}, Errata{}},
		{"broadwell", CPU{Vendor: VendorIntel, Family: 6, Model: 0x3d}, Errata{BDM70: true, BDM64: true}},
		{"skylake", CPU{Vendor: VendorIntel, Family: 6, Model: 0x5e},
			Errata{BDM70: true, SKD007: true, SKD022: true, SKD010: true, SKL014: true}},
		{"other model", CPU{Vendor: VendorIntel, Family: 6, Model: 0x2a}, Errata{}},
		{"other vendor", CPU{Vendor: VendorUnknown, Family: 6, Model: 0x3d}, Errata{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ErrataFor(tc.cpu)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ErrataFor mismatch (-want +got):\n%s", diff)
			}
			if got.Any() != (tc.want != Errata{}) {
				t.Errorf("Any() = %v", got.Any())
			}
		})
	}
}
