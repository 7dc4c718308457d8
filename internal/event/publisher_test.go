package event

import "testing"

func TestStreamKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{KindIdentity, "stream:identity_created"},
		{KindCar, "stream:car_created"},
		{KindParking, "stream:parking_created"},
	}

	for _, tt := range tests {
		if got := StreamKey(tt.kind); got != tt.want {
			t.Errorf("StreamKey(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
