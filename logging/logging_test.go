package logging

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		kv   []interface{}
		want string
	}{
		{
			name: "no pairs",
			msg:  "block accepted",
			want: "block accepted",
		},
		{
			name: "pairs",
			msg:  "block accepted",
			kv:   []interface{}{"block", 3, "crc", "0x31C3"},
			want: "block accepted block=3 crc=0x31C3",
		},
		{
			name: "odd count",
			msg:  "nak",
			kv:   []interface{}{"reason"},
			want: "nak reason=<missing>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.msg, tt.kv...); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNopDiscards(t *testing.T) {
	var l Logger = Nop()
	l.Debug("x", "k", 1)
	l.Info("x")
	l.Error("x")
}
