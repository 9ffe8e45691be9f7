package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Append two values in reverse order and check the series stays sorted.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}
	if h.days[0] != d2 || h.days[1] != d1 {
		t.Errorf("history days = %v want [%v %v]", h.days, d2, d1)
	}
	if h.values[0] != v2 || h.values[1] != v1 {
		t.Errorf("history values = %v want [%v %v]", h.values, v2, v1)
	}

	// overwrite
	h.Append(d1, "again")
	if got, _ := h.Get(d1); got != "again" {
		t.Errorf("Get(d1) = %q want %q", got, "again")
	}
	if h.Len() != 2 {
		t.Errorf("overwrite changed Len() = %v want 2", h.Len())
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2025, 1, 10), 10).Append(New(2025, 1, 20), 20)

	tests := []struct {
		day    Date
		want   float64
		wantOK bool
	}{
		{New(2025, 1, 9), 0, false},
		{New(2025, 1, 10), 10, true},
		{New(2025, 1, 15), 10, true},
		{New(2025, 1, 25), 20, true},
	}
	for _, tt := range tests {
		got, ok := h.ValueAsOf(tt.day)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tt.day, got, ok, tt.want, tt.wantOK)
		}
	}
	if day, v := h.Latest(); day != New(2025, 1, 20) || v != 20 {
		t.Errorf("Latest() = %v, %v", day, v)
	}
}
