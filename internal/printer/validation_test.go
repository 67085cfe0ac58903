package printer

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		printer *Printer
		wantErr error
	}{
		{
			name: "valid usb printer",
			printer: &Printer{
				Name:      "Kitchen USB",
				Kind:      KindUSB,
				Role:      RoleKitchen,
				VendorID:  "04b8",
				ProductID: "0202",
			},
			wantErr: nil,
		},
		{
			name: "valid network printer",
			printer: &Printer{
				Name:      "Bar",
				Kind:      KindNetwork,
				Role:      RoleReceipt,
				IPAddress: "10.0.0.50",
				Port:      9100,
			},
			wantErr: nil,
		},
		{
			name:    "nil printer",
			printer: nil,
			wantErr: ErrInvalid,
		},
		{
			name: "empty name",
			printer: &Printer{
				Name:      "   ",
				Kind:      KindNetwork,
				Role:      RoleKitchen,
				IPAddress: "10.0.0.50",
			},
			wantErr: ErrInvalid,
		},
		{
			name: "name too long",
			printer: &Printer{
				Name:      strings.Repeat("x", maxNameLength+1),
				Kind:      KindNetwork,
				Role:      RoleKitchen,
				IPAddress: "10.0.0.50",
			},
			wantErr: ErrInvalid,
		},
		{
			name: "unknown kind",
			printer: &Printer{
				Name: "Printer",
				Kind: "bluetooth",
				Role: RoleKitchen,
			},
			wantErr: ErrInvalidKind,
		},
		{
			name: "unknown role",
			printer: &Printer{
				Name:      "Printer",
				Kind:      KindNetwork,
				Role:      "label",
				IPAddress: "10.0.0.50",
			},
			wantErr: ErrInvalidRole,
		},
		{
			name: "usb printer missing identity",
			printer: &Printer{
				Name: "Printer",
				Kind: KindUSB,
				Role: RoleKitchen,
			},
			wantErr: ErrIdentityMismatch,
		},
		{
			name: "usb printer with network identity",
			printer: &Printer{
				Name:      "Printer",
				Kind:      KindUSB,
				Role:      RoleKitchen,
				VendorID:  "04b8",
				ProductID: "0202",
				IPAddress: "10.0.0.50",
			},
			wantErr: ErrIdentityMismatch,
		},
		{
			name: "network printer missing address",
			printer: &Printer{
				Name: "Printer",
				Kind: KindNetwork,
				Role: RoleKitchen,
			},
			wantErr: ErrIdentityMismatch,
		},
		{
			name: "network printer with usb identity",
			printer: &Printer{
				Name:      "Printer",
				Kind:      KindNetwork,
				Role:      RoleKitchen,
				IPAddress: "10.0.0.50",
				VendorID:  "04b8",
				ProductID: "0202",
			},
			wantErr: ErrIdentityMismatch,
		},
		{
			name: "network printer port out of range",
			printer: &Printer{
				Name:      "Printer",
				Kind:      KindNetwork,
				Role:      RoleKitchen,
				IPAddress: "10.0.0.50",
				Port:      70000,
			},
			wantErr: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.printer)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateID_Unique(t *testing.T) {
	a := GenerateID()
	b := GenerateID()
	if a == "" || a == b {
		t.Errorf("GenerateID() produced %q and %q, want unique non-empty IDs", a, b)
	}
}
