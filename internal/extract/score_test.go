package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   int
	}{
		{
			name: "all fields present",
			fields: Fields{
				CustomerName:        "Ramesh Sharma",
				CustomerPhone:       "9876543210",
				LocationAddress:     "Flat 101, Shanti Nagar, Thane",
				ServiceType:         ServiceRentAgreement,
				SpecialInstructions: "Urgent, need by evening",
			},
			want: 100,
		},
		{
			name:   "address only",
			fields: Fields{LocationAddress: "Hill Road, Bandra West"},
			want:   38,
		},
		{
			name:   "short address earns nothing",
			fields: Fields{LocationAddress: "Bandra"},
			want:   0,
		},
		{
			name:   "ten char address is still too short",
			fields: Fields{LocationAddress: "1234567890"},
			want:   0,
		},
		{
			name:   "other category earns nothing",
			fields: Fields{ServiceType: ServiceOther},
			want:   0,
		},
		{
			name: "name phone service",
			fields: Fields{
				CustomerName:  "Sunita",
				CustomerPhone: "9820012345",
				ServiceType:   ServiceACService,
			},
			want: 75,
		},
		{
			name: "everything but instructions",
			fields: Fields{
				CustomerName:    "Sunita",
				CustomerPhone:   "9820012345",
				LocationAddress: "B-404, Green Park, Malad East",
				ServiceType:     ServiceACService,
			},
			want: 100,
		},
		{
			name:   "empty fields",
			fields: Fields{},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.fields))
		})
	}
}
