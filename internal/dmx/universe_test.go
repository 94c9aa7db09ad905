package dmx

import "testing"

func TestUniverse_SetGet(t *testing.T) {
	u := NewUniverse()

	for _, ch := range []int{MinChannel, 2, 100, 256, MaxChannel} {
		u.Set(ch, 200)
		if got := u.Get(ch); got != 200 {
			t.Errorf("Get(%d) = %d after Set(%d, 200)", ch, got, ch)
		}
	}
}

func TestUniverse_OutOfRange(t *testing.T) {
	u := NewUniverse()
	u.Set(1, 255)

	tests := []struct {
		name    string
		channel int
	}{
		{"zero", 0},
		{"negative", -4},
		{"just above max", 513},
		{"far above max", 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := u.Get(tt.channel); got != 0 {
				t.Errorf("Get(%d) = %d, want 0", tt.channel, got)
			}

			// Writes outside the range must not disturb anything.
			u.Set(tt.channel, 99)
			if got := u.Get(1); got != 255 {
				t.Errorf("Set(%d, 99) disturbed channel 1: got %d", tt.channel, got)
			}
		})
	}
}

func TestUniverse_Bytes(t *testing.T) {
	u := NewUniverse()
	u.Set(1, 10)
	u.Set(512, 20)

	b := u.Bytes()
	if len(b) != ChannelCount {
		t.Fatalf("Bytes() length = %d, want %d", len(b), ChannelCount)
	}
	if b[0] != 10 {
		t.Errorf("channel 1 at offset 0 = %d, want 10", b[0])
	}
	if b[511] != 20 {
		t.Errorf("channel 512 at offset 511 = %d, want 20", b[511])
	}

	// Bytes must be a copy, not a view.
	b[0] = 77
	if u.Get(1) != 10 {
		t.Error("mutating Bytes() result changed the universe")
	}
}

func TestFromBytes(t *testing.T) {
	// Short input zero-fills the tail.
	u := FromBytes([]byte{1, 2, 3})
	if u.Get(1) != 1 || u.Get(2) != 2 || u.Get(3) != 3 {
		t.Error("FromBytes did not preserve leading values")
	}
	if u.Get(4) != 0 || u.Get(512) != 0 {
		t.Error("FromBytes did not zero-fill missing channels")
	}

	// Oversized input is truncated.
	long := make([]byte, 600)
	for i := range long {
		long[i] = 9
	}
	u = FromBytes(long)
	if u.Get(512) != 9 {
		t.Error("FromBytes dropped channel 512")
	}
}

func TestUniverse_Clone(t *testing.T) {
	u := NewUniverse()
	u.Set(5, 50)

	c := u.Clone()
	c.Set(5, 100)

	if u.Get(5) != 50 {
		t.Errorf("Clone() is not independent: original channel 5 = %d", u.Get(5))
	}
	if c.Get(5) != 100 {
		t.Errorf("clone channel 5 = %d, want 100", c.Get(5))
	}
}
