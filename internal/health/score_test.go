package health

import (
	"testing"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

func f(v float64) *float64 { return &v }

func TestScore_AllUnknown(t *testing.T) {
	score, status := Score(nil, nil, nil)
	if score != 0 || status != model.StatusUnknown {
		t.Errorf("Score(nil,nil,nil) = (%d, %v), want (0, Unknown)", score, status)
	}
}

func TestScore_HighCPURAMLowDisk(t *testing.T) {
	score, status := Score(f(95), f(92), f(8))
	if score < 0 || score > 40 {
		t.Errorf("score = %d, want within [0,40]", score)
	}
	if status != model.StatusCritical {
		t.Errorf("status = %v, want Critical", status)
	}
}

func TestScore_Healthy(t *testing.T) {
	score, status := Score(f(15), f(30), f(45))
	if score < 70 || score > 100 {
		t.Errorf("score = %d, want within [70,100]", score)
	}
	if status != model.StatusOk {
		t.Errorf("status = %v, want Ok", status)
	}
}

func TestScore_Tiers(t *testing.T) {
	tests := []struct {
		name      string
		cpu, ram  *float64
		disk      *float64
		wantScore int
	}{
		{"cpu 90", f(90), nil, nil, 70},
		{"cpu 80", f(80), nil, nil, 80},
		{"cpu 70", f(70), nil, nil, 90},
		{"cpu 69.99", f(69.99), nil, nil, 100},
		{"ram 95", nil, f(95), nil, 70},
		{"ram 85", nil, f(85), nil, 80},
		{"ram 75", nil, f(75), nil, 90},
		{"ram 74", nil, f(74), nil, 100},
		{"disk 10", nil, nil, f(10), 70},
		{"disk 15", nil, nil, f(15), 80},
		{"disk 20", nil, nil, f(20), 90},
		{"disk 20.01", nil, nil, f(20.01), 100},
		{"all worst", f(100), f(100), f(0), 10},
		{"unknown cpu not worst case", nil, f(50), f(50), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Score(tt.cpu, tt.ram, tt.disk)
			if got != tt.wantScore {
				t.Errorf("Score() = %d, want %d", got, tt.wantScore)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		score int
		want  model.HealthStatus
	}{
		{100, model.StatusOk},
		{70, model.StatusOk},
		{69, model.StatusWarning},
		{40, model.StatusWarning},
		{39, model.StatusCritical},
		{0, model.StatusCritical},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.score); got != tt.want {
			t.Errorf("StatusFor(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

// Worsening any single metric never raises the score.
func TestScore_Monotonic(t *testing.T) {
	fixed := []float64{0, 50, 72, 83, 91, 100}

	for _, a := range fixed {
		for _, b := range fixed {
			prev := 101
			for v := 0.0; v <= 100; v += 0.5 {
				s, _ := Score(f(v), f(a), f(100-b))
				if s > prev {
					t.Fatalf("cpu %v: score rose from %d to %d", v, prev, s)
				}
				prev = s
			}

			prev = 101
			for v := 0.0; v <= 100; v += 0.5 {
				s, _ := Score(f(a), f(v), f(100-b))
				if s > prev {
					t.Fatalf("ram %v: score rose from %d to %d", v, prev, s)
				}
				prev = s
			}

			prev = 101
			for v := 100.0; v >= 0; v -= 0.5 {
				s, _ := Score(f(a), f(b), f(v))
				if s > prev {
					t.Fatalf("disk free %v: score rose from %d to %d", v, prev, s)
				}
				prev = s
			}
		}
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	for cpu := -10.0; cpu <= 110; cpu += 10 {
		for ram := -10.0; ram <= 110; ram += 10 {
			for disk := -10.0; disk <= 110; disk += 10 {
				s, status := Score(f(cpu), f(ram), f(disk))
				if s < 0 || s > 100 {
					t.Fatalf("Score(%v,%v,%v) = %d out of range", cpu, ram, disk, s)
				}
				if status != StatusFor(s) {
					t.Fatalf("status %v does not match score %d", status, s)
				}
			}
		}
	}
}

func TestRecommendations(t *testing.T) {
	healthy := model.Snapshot{CPUPercent: f(10), RAMPercent: f(20), DiskFreePercent: f(60)}
	recs := Recommendations(healthy)
	if len(recs) != 1 || recs[0].Severity != model.StatusOk {
		t.Fatalf("healthy snapshot: got %+v", recs)
	}

	stressed := model.Snapshot{CPUPercent: f(85), RAMPercent: f(90), DiskFreePercent: f(5)}
	recs = Recommendations(stressed)
	if len(recs) != 3 {
		t.Fatalf("stressed snapshot: got %d recommendations, want 3", len(recs))
	}
	for _, r := range recs {
		if r.Severity != model.StatusWarning {
			t.Errorf("%q severity = %v, want Warning", r.Title, r.Severity)
		}
	}

	if recs := Recommendations(model.Snapshot{}); len(recs) != 1 || recs[0].Title != "All clear" {
		t.Errorf("unknown metrics should not trigger warnings, got %+v", recs)
	}
}
